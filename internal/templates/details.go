package templates

import "fmt"

// OrderDetails is the flat bundle every lifecycle email is built from.
type OrderDetails struct {
	CustomerName        string
	OrderNumber         string
	OrderDate           string
	PackageName         string
	ShoeType            string
	Quantity            int
	SpecialInstructions string
}

// Pairs renders a quantity of shoes: "1 pair", "2 pairs", "0 pairs".
func Pairs(n int) string {
	if n == 1 {
		return "1 pair"
	}
	return fmt.Sprintf("%d pairs", n)
}

func detailsSection(d OrderDetails) Section {
	lines := []Line{
		{Label: "Order Number", Text: d.OrderNumber},
		{Label: "Order Date", Text: d.OrderDate},
		{Label: "Service", Text: d.PackageName},
		{Label: "Shoe Type", Text: d.ShoeType},
		{Label: "Quantity", Text: Pairs(d.Quantity)},
	}
	if d.SpecialInstructions != "" {
		lines = append(lines, Line{Label: "Special Instructions", Text: d.SpecialInstructions})
	}
	return Section{Heading: "Order Details", Tone: ToneNeutral, Lines: lines}
}

func greeting(d OrderDetails) string { return "Hi " + d.CustomerName + "," }
