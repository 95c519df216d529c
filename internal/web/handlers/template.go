package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/shindakun/loginpage/internal/models"
	"github.com/shindakun/loginpage/internal/web/templates"
	"github.com/shindakun/loginpage/internal/web/ui"
)

const (
	cacheControlValue = "no-store, no-cache, must-revalidate, max-age=0"
	pragmaValue       = "no-cache"
	expiresValue      = "0"
)

// pageNames lists the templates under pages/ that are rendered inside the base layout
var pageNames = []string{"login", "404"}

// templateFuncs returns custom template functions
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"cn": func(parts ...string) string {
			return ui.MergeClasses(parts...)
		},
		"invalidClass": func(message string) string {
			if message == "" {
				return ""
			}
			return "border-destructive"
		},
		"workingLabel": func() string {
			return models.SubmissionStateSubmitting.SubmitLabel()
		},
	}
}

// parsePages parses every page together with the base layout and all partials
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs()).ParseFS(
			templates.FS,
			"layouts/base.html",
			"pages/"+name+".html",
			"partials/*.html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// renderTemplate renders a page inside the base layout with the given status
func (h *Handlers) renderTemplate(w http.ResponseWriter, status int, pageName string, data models.LoginPageData) error {
	return h.execute(w, status, pageName, "base", data)
}

// renderPartial renders a partial template (for HTMX)
func (h *Handlers) renderPartial(w http.ResponseWriter, status int, partialName string, data models.LoginPageData) error {
	return h.execute(w, status, "login", partialName, data)
}

func (h *Handlers) execute(w http.ResponseWriter, status int, pageName, templateName string, data models.LoginPageData) error {
	tmpl, ok := h.pages[pageName]
	if !ok {
		return fmt.Errorf("unknown page %q", pageName)
	}

	// Render fully before writing so a template error can still become a 500
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, templateName, data); err != nil {
		return err
	}

	setNoCacheHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WithError(err).Debug("Client went away while writing page")
	}
	return nil
}

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", cacheControlValue)
	w.Header().Set("Pragma", pragmaValue)
	w.Header().Set("Expires", expiresValue)
}
