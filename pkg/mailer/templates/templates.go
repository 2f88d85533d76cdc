package templates

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

// Render returns subject, text and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	tpl, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	text, err = renderText(tpl.text, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderHTML(tpl.html, data)
	if err != nil {
		return "", "", "", err
	}
	return tpl.subject, text, html, nil
}

type emailTemplate struct {
	subject string
	text    string
	html    string
}

var registry = map[string]emailTemplate{
	"welcome": {
		subject: "Welcome to your language course",
		text: `Hello {{.Name}},

Your registration is complete. You are enrolled in the {{.Language}} course at level {{.Level}}.

See you in class!`,
		html: `<p>Hello {{.Name}},</p>
<p>Your registration is complete. You are enrolled in the <strong>{{.Language}}</strong> course at level <strong>{{.Level}}</strong>.</p>
<p>See you in class!</p>`,
	},
}

func renderText(tpl string, data map[string]any) (string, error) {
	t, err := texttpl.New("text").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(tpl string, data map[string]any) (string, error) {
	t, err := htmltpl.New("html").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
