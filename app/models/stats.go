package models

// DailyStats is one day of the order chart on the admin dashboard.
type DailyStats struct {
	Date   string `json:"date"`
	Orders int    `json:"orders"`
	Meals  int    `json:"meals"`
}
