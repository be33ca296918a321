package output

import (
	"bytes"
	"sync"
	"text/template"

	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/types"
)

// TemplateFormatter formats output using a custom Go text/template.
// The template receives the *analyze.Result.
type TemplateFormatter struct {
	templateStr string
	template    *template.Template
	mu          sync.Mutex
}

// NewTemplateFormatter creates a new template formatter with the given template string.
func NewTemplateFormatter(templateStr string) *TemplateFormatter {
	return &TemplateFormatter{
		templateStr: templateStr,
	}
}

// SetTemplate sets or updates the template string.
func (f *TemplateFormatter) SetTemplate(templateStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templateStr = templateStr
	f.template = nil
}

// templateFuncs returns the custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// bytes formats a size in bytes as a human-readable string.
		// Usage: {{bytes .TotalSize}}
		"bytes": types.FormatSize,

		// comma formats a size with thousands separators.
		// Usage: {{comma .SmallSum}}
		"comma": types.FormatExact,
	}
}

// Format writes the formatted output to the buffer.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *analyze.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.template == nil {
		tmpl, err := template.New("output").Funcs(templateFuncs()).Parse(f.templateStr)
		if err != nil {
			return err
		}
		f.template = tmpl
	}

	return f.template.Execute(w, r)
}

// defaultTemplate prints the two answers, one per line.
const defaultTemplate = `{{.SmallSum}}
{{if .Candidate}}{{.Candidate.Size}}{{else}}0{{end}}
`

func init() {
	Register("template", func() Formatter {
		return NewTemplateFormatter(defaultTemplate)
	})
}

// Ensure TemplateFormatter implements Formatter.
var _ Formatter = (*TemplateFormatter)(nil)
