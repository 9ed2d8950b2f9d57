package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBrand = Brand{Name: "OFFseason", LogoURL: "https://example.com/logo.png", SupportEmail: "help@example.com"}

func sampleDetails() OrderDetails {
	return OrderDetails{
		CustomerName: "Jane Doe",
		OrderNumber:  "OS-1001",
		OrderDate:    "1 October 2026",
		PackageName:  "Deep Clean",
		ShoeType:     "Trainers",
		Quantity:     2,
	}
}

func TestPairs(t *testing.T) {
	assert.Equal(t, "1 pair", Pairs(1))
	assert.Equal(t, "2 pairs", Pairs(2))
	assert.Equal(t, "0 pairs", Pairs(0))
}

func TestQuantityLine(t *testing.T) {
	d := sampleDetails()
	d.Quantity = 1
	doc := LabelReady(testBrand, d)

	q, ok := doc.Detail("Quantity")
	require.True(t, ok)
	assert.Equal(t, "1 pair", q)

	html, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>Quantity:</strong> 1 pair</p>")
}

func TestSpecialInstructions(t *testing.T) {
	builders := map[string]func(OrderDetails) Document{
		"label":    func(d OrderDetails) Document { return LabelReady(testBrand, d) },
		"received": func(d OrderDetails) Document { return ShipmentReceived(testBrand, d, "Monday, 5 October 2026") },
		"shipped":  func(d OrderDetails) Document { return ReadyToShip(testBrand, d, "Saturday, 3 October 2026", "") },
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			doc := build(sampleDetails())
			_, ok := doc.Detail("Special Instructions")
			assert.False(t, ok)
			html, err := doc.HTML()
			require.NoError(t, err)
			assert.NotContains(t, html, "Special Instructions")
			assert.NotContains(t, doc.Text(), "Special Instructions")

			d := sampleDetails()
			d.SpecialInstructions = "Please avoid bleach on the white soles"
			doc = build(d)
			got, ok := doc.Detail("Special Instructions")
			assert.True(t, ok)
			assert.Equal(t, d.SpecialInstructions, got)
			html, err = doc.HTML()
			require.NoError(t, err)
			assert.Contains(t, html, "<strong>Special Instructions:</strong> Please avoid bleach on the white soles</p>")
			assert.Contains(t, doc.Text(), "Special Instructions: Please avoid bleach on the white soles\n")
		})
	}
}

func TestTrackingNumberLine(t *testing.T) {
	doc := ReadyToShip(testBrand, sampleDetails(), "Saturday, 3 October 2026", "")
	assert.NotContains(t, doc.Text(), "Tracking Number")

	doc = ReadyToShip(testBrand, sampleDetails(), "Saturday, 3 October 2026", "RM123456789GB")
	text := doc.Text()
	assert.Contains(t, text, "Tracking Number: RM123456789GB")
	assert.Contains(t, text, "Estimated Delivery: Saturday, 3 October 2026")
}

func TestShipmentReceivedChecklist(t *testing.T) {
	doc := ShipmentReceived(testBrand, sampleDetails(), "Monday, 5 October 2026")

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "What's Next?", doc.Sections[0].Heading)
	assert.Equal(t, "Monday, 5 October 2026", doc.Sections[0].Lines[2].Text)
	assert.Len(t, doc.Sections[1].Lines, 5)
}

func TestHTMLEscapesInput(t *testing.T) {
	d := sampleDetails()
	d.CustomerName = "<script>alert(1)</script>"
	html, err := LabelReady(testBrand, d).HTML()
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderingIsDeterministic(t *testing.T) {
	d := sampleDetails()
	a, err := ReadyToShip(testBrand, d, "Saturday, 3 October 2026", "RM1").HTML()
	require.NoError(t, err)
	b, err := ReadyToShip(testBrand, d, "Saturday, 3 October 2026", "RM1").HTML()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDocumentSkeleton(t *testing.T) {
	html, err := LabelReady(testBrand, sampleDetails()).HTML()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `src="https://example.com/logo.png"`)
	assert.Contains(t, html, "Hi Jane Doe,")
	assert.Contains(t, html, "<strong>OS-1001</strong>")
	assert.Contains(t, html, `href="mailto:help@example.com"`)
	assert.Contains(t, html, "background-color:#fff3cd")
}
