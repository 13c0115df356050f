package notify

import (
	"bytes"
	"errors"
	"text/template"
)

const DefaultTemplate = `[Power Factor Alert]
Time: {{.Timestamp}}
Overall PF: {{printf "%.3f" .OverallPF}} (threshold {{printf "%.2f" .Threshold}})
{{- range .LowPhases}}
Phase {{.Phase}}: {{printf "%.3f" .PowerFactor}}
{{- end}}`

// Template renders notification content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses a notification template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("pf-notification").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to the event.
func (t *Template) Render(event Event) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("pf notify: nil template")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, event); err != nil {
		return "", err
	}
	return buf.String(), nil
}
