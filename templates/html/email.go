package templates

import (
	"html"
	"html/template"
	"strings"
)

// emailLayout wraps every transactional mail. The body arrives as plain
// text; blank lines separate paragraphs and single newlines become breaks.
var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:24px 0;background:#eef2f1;font-family:Helvetica,Arial,sans-serif;color:#1f2937;">
<span style="display:none;max-height:0;overflow:hidden;">{{.Preview}}</span>
<table role="presentation" width="100%" cellpadding="0" cellspacing="0">
<tr><td align="center">
<table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;">
<tr><td style="padding:20px 32px;border-bottom:3px solid #0f766e;font-size:13px;letter-spacing:2px;text-transform:uppercase;color:#0f766e;">Victim DAO</td></tr>
<tr><td style="padding:28px 32px 8px;font-size:20px;font-weight:bold;">{{.Subject}}</td></tr>
<tr><td style="padding:0 32px 24px;font-size:15px;line-height:1.6;">
{{- range .Paragraphs}}
<p style="margin:16px 0 0;">{{range $i, $line := .}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
{{- end}}
</td></tr>
<tr><td style="padding:16px 32px;background:#f9fafb;font-size:12px;color:#6b7280;border-radius:0 0 8px 8px;">
You are receiving this because of activity on your Victim DAO account.
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>
`))

type emailView struct {
	Subject    string
	Preview    string
	Paragraphs [][]string
}

// RenderEmail lays out a plain text message as the branded HTML mail
func RenderEmail(subject, body string) string {
	view := emailView{Subject: subject, Paragraphs: paragraphs(body)}
	if len(view.Paragraphs) > 0 {
		view.Preview = view.Paragraphs[0][0]
	}

	var b strings.Builder
	if err := emailLayout.Execute(&b, view); err != nil {
		// the layout only ranges over strings, fall back to escaped text
		return "<pre>" + html.EscapeString(body) + "</pre>"
	}
	return b.String()
}

func paragraphs(body string) [][]string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out [][]string
	for _, block := range strings.Split(body, "\n\n") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			out = append(out, lines)
		}
	}
	return out
}
