package mail

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/ManuelReschke/BaanBox/internal/pkg/env"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ActivationData fills templates/activation.html.
type ActivationData struct {
	Name string
	Link string
}

// OrderMeal is one line of the confirmation mail.
type OrderMeal struct {
	Name     string
	Quantity int
}

// OrderConfirmationData fills templates/order_confirmation.html.
type OrderConfirmationData struct {
	Name          string
	OrderNumber   string
	PlanName      string
	BillingCycle  string
	Total         string
	Currency      string
	PaymentMethod string
	StartDate     string
	DeliveryDays  []string
	Meals         []OrderMeal
	StatusLink    string
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PublicURL joins path onto PUBLIC_DOMAIN.
func PublicURL(path string) string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + path
}

func SendActivation(to string, data ActivationData) error {
	body, err := render("activation.html", data)
	if err != nil {
		return err
	}
	return send(to, "Activate your BaanBox account", body)
}

func SendOrderConfirmation(to string, data OrderConfirmationData) error {
	body, err := render("order_confirmation.html", data)
	if err != nil {
		return err
	}
	return send(to, "Your BaanBox order #"+data.OrderNumber, body)
}
