package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// View renders a page from typed props.
type View[P any] interface {
	Render(w io.Writer, props P) error
}

// ViewFunc adapts a function to View.
type ViewFunc[P any] func(w io.Writer, props P) error

func (f ViewFunc[P]) Render(w io.Writer, props P) error {
	return f(w, props)
}

// templateView renders one of the embedded templates.
func templateView[P any](name string) View[P] {
	return ViewFunc[P](func(w io.Writer, props P) error {
		return templates.ExecuteTemplate(w, name, props)
	})
}

// Page serves view with props built from each request. Output is buffered so a
// failing render never sends a partial page.
func Page[P any](view View[P], props func(*http.Request) P, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeView(w, r, http.StatusOK, view, props(r), logger)
	})
}

func writeView[P any](w http.ResponseWriter, r *http.Request, status int, view View[P], props P, logger *slog.Logger) {
	var buf bytes.Buffer
	if err := view.Render(&buf, props); err != nil {
		logger.ErrorContext(r.Context(), "render failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
