package templates

// LabelReady is sent with the prepaid shipping label attached.
func LabelReady(b Brand, d OrderDetails) Document {
	return Document{
		Brand:    b,
		Preview:  "Your shipping label is ready - " + d.OrderNumber,
		Title:    "Your Shipping Label is Ready!",
		Greeting: greeting(d),
		Intro: Paragraph{
			Before: "Great news! Your prepaid shipping label for order ",
			Strong: d.OrderNumber,
			After:  " is attached to this email.",
		},
		Details: detailsSection(d),
		Sections: []Section{
			{
				Heading: "Shipping Instructions",
				Tone:    ToneWarning,
				Lines: []Line{
					{Marker: "1.", Label: "Print the attached label", Text: "and securely attach it to your package"},
					{Marker: "2.", Label: "Package your shoes", Text: "in a sturdy box with adequate protection"},
					{Marker: "3.", Label: "Drop off at any Royal Mail location", Text: "or schedule a collection"},
					{Marker: "4.", Label: "Keep your receipt", Text: "for tracking purposes"},
				},
			},
			{
				Tone: ToneSuccess,
				Lines: []Line{
					{Text: "Once we receive your shoes, we'll send you a confirmation email and begin the cleaning process immediately."},
				},
			},
		},
		Closing: "Thank you for choosing " + b.Name + " for your shoe cleaning needs!",
	}
}

// ShipmentReceived confirms the shoes arrived and gives the expected finish date.
func ShipmentReceived(b Brand, d OrderDetails, estimatedCompletion string) Document {
	return Document{
		Brand:    b,
		Preview:  "We've received your shoes - " + d.OrderNumber,
		Title:    "We've Received Your Shoes! 👟",
		Greeting: greeting(d),
		Intro: Paragraph{
			Before: "Great news! We've successfully received your shoes for order ",
			Strong: d.OrderNumber,
			After:  " and our expert cleaning team has begun the process.",
		},
		Details: detailsSection(d),
		Sections: []Section{
			{
				Heading: "What's Next?",
				Tone:    ToneSuccess,
				Lines: []Line{
					{Marker: "✅", Label: "Received:", Text: "Your shoes have arrived safely at our facility"},
					{Marker: "🔄", Label: "In Progress:", Text: "Our team is carefully cleaning your shoes"},
					{Marker: "📦", Label: "Estimated Completion:", Text: estimatedCompletion},
				},
			},
			{
				Heading: "Our Cleaning Process",
				Tone:    ToneMuted,
				Lines: []Line{
					{Marker: "1.", Label: "Inspection:", Text: "Thorough assessment of your shoes' condition"},
					{Marker: "2.", Label: "Pre-treatment:", Text: "Removal of dirt, stains, and scuff marks"},
					{Marker: "3.", Label: "Deep Clean:", Text: "Professional cleaning using premium products"},
					{Marker: "4.", Label: "Protection:", Text: "Application of protective coatings"},
					{Marker: "5.", Label: "Quality Check:", Text: "Final inspection before return shipping"},
				},
			},
		},
		Footer:  []string{"We'll send you another email once your shoes are cleaned and ready to ship back to you."},
		Closing: "Thank you for trusting " + b.Name + " with your shoes!",
	}
}

// ReadyToShip tells the customer the cleaned shoes are on their way back.
// An empty trackingNumber leaves the tracking line out.
func ReadyToShip(b Brand, d OrderDetails, estimatedDelivery, trackingNumber string) Document {
	shipping := []Line{
		{Marker: "📦", Label: "Status:", Text: "Your shoes have been shipped!"},
		{Marker: "🚚", Label: "Estimated Delivery:", Text: estimatedDelivery},
	}
	if trackingNumber != "" {
		shipping = append(shipping, Line{Marker: "📋", Label: "Tracking Number:", Text: trackingNumber})
	}

	return Document{
		Brand:    b,
		Preview:  "Your shoes are ready and on their way! - " + d.OrderNumber,
		Title:    "Your Shoes Are Sparkling Clean! ✨",
		Greeting: greeting(d),
		Intro: Paragraph{
			Before: "Fantastic news! Your shoes from order ",
			Strong: d.OrderNumber,
			After:  " have been professionally cleaned and are now on their way back to you.",
		},
		Details: detailsSection(d),
		Sections: []Section{
			{Heading: "Shipping Information", Tone: ToneSuccess, Lines: shipping},
			{
				Heading: "What We've Done",
				Tone:    ToneInfo,
				Lines: []Line{
					{Marker: "✅", Label: "Thorough Inspection:", Text: "Assessed your shoes' condition and cleaning needs"},
					{Marker: "✅", Label: "Professional Cleaning:", Text: "Deep cleaned using premium, shoe-safe products"},
					{Marker: "✅", Label: "Stain Removal:", Text: "Treated and removed stubborn stains and scuff marks"},
					{Marker: "✅", Label: "Protection Applied:", Text: "Added protective coating to help maintain cleanliness"},
					{Marker: "✅", Label: "Quality Check:", Text: "Final inspection to ensure perfect results"},
				},
			},
			{
				Heading: "Care Tips for Your Clean Shoes",
				Tone:    ToneWarning,
				Lines: []Line{
					{Marker: "•", Text: "Store in a cool, dry place away from direct sunlight"},
					{Marker: "•", Text: "Use shoe trees to maintain shape when not wearing"},
					{Marker: "•", Text: "Clean spills and dirt promptly to prevent staining"},
					{Marker: "•", Text: "Consider regular cleaning every 3-6 months for best results"},
				},
			},
		},
		Footer: []string{
			"We hope you love your refreshed shoes! If you have any questions about your order or our cleaning process, please don't hesitate to reach out.",
		},
		Closing: "Thank you for choosing " + b.Name + " - we look forward to serving you again!",
	}
}
