package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/clothing-store-backend/internal/orders"
)

//go:embed templates/*.html
var templateFS embed.FS

var orderConfirmationTmpl = template.Must(
	template.New("order_confirmation.html").
		Funcs(template.FuncMap{
			"money":     formatMoney,
			"orderDate": formatOrderDate,
		}).
		ParseFS(templateFS, "templates/order_confirmation.html"),
)

type orderConfirmationView struct {
	CustomerName string
	Order        orders.OrderDTO
}

// RenderOrderConfirmation renders the confirmation email body for order.
func RenderOrderConfirmation(order orders.OrderDTO, customerName string) (string, error) {
	var buf bytes.Buffer
	view := orderConfirmationView{CustomerName: customerName, Order: order}
	if err := orderConfirmationTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render order confirmation: %w", err)
	}
	return buf.String(), nil
}

// OrderConfirmationSubject is the subject line for an order's confirmation email.
func OrderConfirmationSubject(order orders.OrderDTO) string {
	return fmt.Sprintf("Order Confirmation - Order #%s", order.ID)
}

func formatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

func formatOrderDate(t time.Time) string {
	return t.UTC().Format("January 2, 2006 at 03:04 PM UTC")
}
