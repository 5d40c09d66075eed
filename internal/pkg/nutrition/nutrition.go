// Package nutrition adds up the nutrition facts of an order's meals.
package nutrition

// Facts are the values of one portion.
type Facts struct {
	Calories int
	Protein  int
	Carbs    int
	Fat      int
}

type Summary struct {
	Meals int
	Total Facts
}

// Add counts qty portions. Non-positive quantities are ignored.
func (s *Summary) Add(f Facts, qty int) {
	if qty <= 0 {
		return
	}
	s.Meals += qty
	s.Total.Calories += f.Calories * qty
	s.Total.Protein += f.Protein * qty
	s.Total.Carbs += f.Carbs * qty
	s.Total.Fat += f.Fat * qty
}

// PerMeal is the rounded average portion.
func (s Summary) PerMeal() Facts {
	if s.Meals == 0 {
		return Facts{}
	}
	avg := func(v int) int { return (v + s.Meals/2) / s.Meals }
	return Facts{
		Calories: avg(s.Total.Calories),
		Protein:  avg(s.Total.Protein),
		Carbs:    avg(s.Total.Carbs),
		Fat:      avg(s.Total.Fat),
	}
}

// MacroSplit returns the share of calories from protein, carbs and fat in
// percent, using 4/4/9 kcal per gram.
func (s Summary) MacroSplit() (protein, carbs, fat int) {
	p := s.Total.Protein * 4
	c := s.Total.Carbs * 4
	f := s.Total.Fat * 9
	sum := p + c + f
	if sum == 0 {
		return 0, 0, 0
	}
	protein = p * 100 / sum
	carbs = c * 100 / sum
	fat = 100 - protein - carbs
	return protein, carbs, fat
}
