// Package web renders the server-side HTML pages from embedded templates.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var files embed.FS

// Renderer executes embedded page templates. Pages render into a buffer
// first so a template error never emits a partial response.
type Renderer struct {
	t      *template.Template
	logger *zap.SugaredLogger
}

func NewRenderer(logger *zap.SugaredLogger) (*Renderer, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"usd":  formatUSD,
		"date": formatDate,
	}).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t, logger: logger}, nil
}

// Page renders the named template to bytes, suitable for caching.
func (r *Renderer) Page(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Write renders the named template and writes it with the given status.
// Render failures become a plain 500.
func (r *Renderer) Write(w http.ResponseWriter, status int, name string, data any) {
	body, err := r.Page(name, data)
	if err != nil {
		r.logger.Errorw("render page", "template", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	WriteHTML(w, status, body)
}

// WriteHTML writes a pre-rendered page body.
func WriteHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// formatUSD renders integer cents as dollars, e.g. 5000 -> "$50.00".
func formatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
