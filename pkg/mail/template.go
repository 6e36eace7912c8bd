package mail

import (
	"fmt"
	"html"
	"strings"
)

// RenderShell wraps the given inner HTML in the shared notification layout:
// a colored banner with the title followed by the body card.
func RenderShell(title, inner string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body style="margin:0;padding:0;background-color:#f4f4f4;font-family:Arial,sans-serif;">`)
	b.WriteString(`<div style="max-width:600px;margin:20px auto;background-color:#ffffff;border-radius:8px;overflow:hidden;">`)
	b.WriteString(`<div style="background-color:#1b5e20;color:#ffffff;padding:16px 24px;">`)
	b.WriteString(fmt.Sprintf(`<h2 style="margin:0;font-size:18px;">%s</h2>`, html.EscapeString(title)))
	b.WriteString(`</div>`)
	b.WriteString(`<div style="padding:24px;color:#333333;font-size:14px;line-height:1.5;">`)
	b.WriteString(inner)
	b.WriteString(`</div>`)
	b.WriteString(`<div style="padding:12px 24px;color:#999999;font-size:11px;border-top:1px solid #eeeeee;">`)
	b.WriteString(`This message was sent automatically by the TST Bank. Please do not reply.`)
	b.WriteString(`</div></div></body></html>`)
	return b.String()
}

// Paragraph renders one escaped paragraph for the shell body.
func Paragraph(text string) string {
	return fmt.Sprintf(`<p style="margin:0 0 12px 0;">%s</p>`, html.EscapeString(text))
}

// DetailTable renders label/value pairs as a two-column table.
func DetailTable(pairs [][2]string) string {
	var b strings.Builder
	b.WriteString(`<table style="border-collapse:collapse;width:100%;margin:0 0 12px 0;">`)
	for _, pair := range pairs {
		b.WriteString(`<tr>`)
		b.WriteString(fmt.Sprintf(`<td style="padding:4px 8px;border:1px solid #dddddd;font-weight:bold;white-space:nowrap;">%s</td>`, html.EscapeString(pair[0])))
		b.WriteString(fmt.Sprintf(`<td style="padding:4px 8px;border:1px solid #dddddd;">%s</td>`, html.EscapeString(pair[1])))
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table>`)
	return b.String()
}

// Button renders a link styled as a button.
func Button(label, url, color string) string {
	if color == "" {
		color = "#1b5e20"
	}
	return fmt.Sprintf(
		`<a href="%s" style="display:inline-block;padding:10px 20px;margin:4px 8px 4px 0;background-color:%s;color:#ffffff;text-decoration:none;border-radius:4px;">%s</a>`,
		url, color, html.EscapeString(label),
	)
}
