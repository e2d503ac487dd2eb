package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names accepted in EmailJob.Template.
const (
	Welcome = "welcome"
)

var subjects = map[string]string{
	Welcome: "Welcome to {{.AppName}}",
}

// Render renders subject, text and html bodies for the named template.
// Templates live next to this file as <name>.txt.tmpl and <name>.html.tmpl.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	subjSrc, ok := subjects[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = renderText("subject", subjSrc, data); err != nil {
		return "", "", "", err
	}

	textSrc, err := FS.ReadFile(name + ".txt.tmpl")
	if err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name, string(textSrc), data); err != nil {
		return "", "", "", err
	}

	ht, err := htmpl.ParseFS(FS, name+".html.tmpl")
	if err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	if err := ht.Execute(&buf, data); err != nil {
		return "", "", "", err
	}
	return subject, text, buf.String(), nil
}

func renderText(name, src string, data map[string]any) (string, error) {
	t, err := texttpl.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
