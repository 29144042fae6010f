package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"
)

//go:embed templates
var TemplatesFS embed.FS

//go:embed static
var StaticFS embed.FS

// Funcs are available to every page and document template.
var Funcs = template.FuncMap{
	"money": FormatMoney,
	"date": func(t time.Time) string {
		return t.Format("02/01/2006")
	},
	"upper": strings.ToUpper,
	"lineTotal": func(price float64, quantity int) float64 {
		return price * float64(quantity)
	},
}

// FormatMoney renders an amount in euros, French style: 12 345,60 €.
func FormatMoney(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	out := b.String() + "," + frac + " €"
	if neg {
		out = "-" + out
	}
	return out
}

// Pages holds one template set per dashboard page. Pages define the same
// blocks, so they cannot share a namespace.
type Pages struct {
	sets map[string]*template.Template
}

// ExecuteTemplate renders the page registered under name.
func (p *Pages) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	set, ok := p.sets[name]
	if !ok {
		return fmt.Errorf("page %q not found", name)
	}
	return set.Execute(w, data)
}

// LoadTemplates parses every page of the embedded filesystem over the base
// layout.
func LoadTemplates() (*Pages, error) {
	baseContent, err := fs.ReadFile(TemplatesFS, "templates/layouts/base.html")
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(TemplatesFS, "templates/pages")
	if err != nil {
		return nil, err
	}

	pages := &Pages{sets: make(map[string]*template.Template, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pageContent, err := fs.ReadFile(TemplatesFS, "templates/pages/"+entry.Name())
		if err != nil {
			return nil, err
		}

		// Base first, then the page blocks it renders
		set := template.New(entry.Name()).Funcs(Funcs)
		if _, err := set.Parse(string(baseContent)); err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", entry.Name(), err)
		}
		if _, err := set.Parse(string(pageContent)); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		pages.sets[entry.Name()] = set
	}

	return pages, nil
}

// GetStaticFS returns the static file system for serving static files
func GetStaticFS() (fs.FS, error) {
	return fs.Sub(StaticFS, "static")
}
