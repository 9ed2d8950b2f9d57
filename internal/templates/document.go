// Package templates builds the lifecycle emails as structured documents and
// renders them to HTML and plain text. Everything here is pure.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneSuccess Tone = "success"
	ToneInfo    Tone = "info"
	ToneWarning Tone = "warning"
	ToneMuted   Tone = "muted"
)

var toneColors = map[Tone][2]string{
	ToneNeutral: {"#f8f9fa", "#e9ecef"},
	ToneSuccess: {"#d4edda", "#c3e6cb"},
	ToneInfo:    {"#cce5ff", "#99d6ff"},
	ToneWarning: {"#fff3cd", "#ffeaa7"},
	ToneMuted:   {"#e2e3e5", "#d6d8db"},
}

func (t Tone) Style() template.CSS {
	c, ok := toneColors[t]
	if !ok {
		c = toneColors[ToneNeutral]
	}
	return template.CSS(fmt.Sprintf(
		"background-color:%s;border:1px solid %s;border-radius:8px;padding:20px;margin:20px 0", c[0], c[1]))
}

// Line is one row of a block: an optional marker ("1.", "✅", "•"), an
// optional bold label and the text.
type Line struct {
	Marker string
	Label  string
	Text   string
}

type Section struct {
	Heading string
	Tone    Tone
	Lines   []Line
}

// Paragraph is text with one emphasised span in the middle.
type Paragraph struct {
	Before string
	Strong string
	After  string
}

type Brand struct {
	Name         string
	LogoURL      string
	SupportEmail string
}

type Document struct {
	Brand    Brand
	Preview  string
	Title    string
	Greeting string
	Intro    Paragraph
	Details  Section
	Sections []Section
	Footer   []string // above the support line
	Closing  string   // below the support line
}

// Detail returns the text of the order-detail line with the given label.
func (d Document) Detail(label string) (string, bool) {
	for _, l := range d.Details.Lines {
		if l.Label == label {
			return l.Text, true
		}
	}
	return "", false
}

var page = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="background-color:#ffffff;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Oxygen-Sans,Ubuntu,Cantarell,'Helvetica Neue',sans-serif">
<div style="display:none;max-height:0;overflow:hidden">{{.Preview}}</div>
<div style="margin:0 auto;padding:20px 0 48px;max-width:600px">
<div style="padding:20px 0;text-align:center"><img src="{{.Brand.LogoURL}}" width="150" alt="{{.Brand.Name}}" style="margin:0 auto"></div>
<div style="padding:20px">
<h1 style="color:#1a1a1a;font-size:28px;font-weight:bold;text-align:center;margin:20px 0">{{.Title}}</h1>
<p style="color:#444;font-size:16px;line-height:24px;margin:16px 0">{{.Greeting}}</p>
<p style="color:#444;font-size:16px;line-height:24px;margin:16px 0">{{.Intro.Before}}<strong>{{.Intro.Strong}}</strong>{{.Intro.After}}</p>
<div style="{{.Details.Tone.Style}}">
<h2 style="color:#1a1a1a;font-size:20px;font-weight:bold;margin:20px 0 10px">{{.Details.Heading}}</h2>
{{range .Details.Lines}}<p style="color:#444;font-size:14px;line-height:20px;margin:8px 0"><strong>{{.Label}}:</strong> {{.Text}}</p>
{{end}}</div>
{{range .Sections}}<div style="{{.Tone.Style}}">
{{if .Heading}}<h2 style="color:#1a1a1a;font-size:20px;font-weight:bold;margin:20px 0 10px">{{.Heading}}</h2>
{{end}}{{range .Lines}}<p style="color:#444;font-size:16px;line-height:24px;margin:16px 0">{{if .Marker}}{{.Marker}} {{end}}{{if .Label}}<strong>{{.Label}}</strong> {{end}}{{.Text}}</p>
{{end}}</div>
{{end}}<hr style="border-color:#e9ecef;margin:20px 0">
<div style="text-align:center;margin:20px 0">
{{range .Footer}}<p style="color:#6c757d;font-size:14px;line-height:20px;margin:8px 0">{{.}}</p>
{{end}}<p style="color:#6c757d;font-size:14px;line-height:20px;margin:8px 0">Questions? Reply to this email or contact us at <a href="mailto:{{.Brand.SupportEmail}}" style="color:#007bff;text-decoration:underline">{{.Brand.SupportEmail}}</a></p>
<p style="color:#6c757d;font-size:14px;line-height:20px;margin:8px 0">{{.Closing}}</p>
</div>
</div>
</div>
</body>
</html>
`))

func (d Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render %q: %w", d.Title, err)
	}
	return buf.String(), nil
}

// Text is the plain-text alternative of the same document.
func (d Document) Text() string {
	var b strings.Builder
	b.WriteString(d.Title + "\n\n")
	b.WriteString(d.Greeting + "\n\n")
	b.WriteString(d.Intro.Before + d.Intro.Strong + d.Intro.After + "\n\n")

	b.WriteString(d.Details.Heading + "\n")
	for _, l := range d.Details.Lines {
		b.WriteString(l.Label + ": " + l.Text + "\n")
	}
	for _, s := range d.Sections {
		b.WriteString("\n")
		if s.Heading != "" {
			b.WriteString(s.Heading + "\n")
		}
		for _, l := range s.Lines {
			var parts []string
			if l.Marker != "" {
				parts = append(parts, l.Marker)
			}
			if l.Label != "" {
				parts = append(parts, l.Label)
			}
			parts = append(parts, l.Text)
			b.WriteString(strings.Join(parts, " ") + "\n")
		}
	}

	b.WriteString("\n---\n")
	for _, f := range d.Footer {
		b.WriteString(f + "\n")
	}
	b.WriteString("Questions? Reply to this email or contact us at " + d.Brand.SupportEmail + "\n")
	b.WriteString(d.Closing + "\n")
	return b.String()
}
