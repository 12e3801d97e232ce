package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Jakkalsie/thought-scratching/internal/auth"
	"github.com/Jakkalsie/thought-scratching/internal/model"
)

//go:embed html
var htmlFS embed.FS

const layoutFile = "html/base.layout.html"

// HTMLData is the data handed to page templates.
type HTMLData struct {
	Title     string
	Session   *auth.Session
	SignInURL string
	Post      *model.Post
	PostID    string
	Posts     []*model.Post
	Article   template.HTML
	Error     string
}

var functions = template.FuncMap{
	// firstName returns the text before the first space, the way the
	// byline shows authors.
	"firstName": func(name string) string {
		if fields := strings.Fields(name); len(fields) > 0 {
			return fields[0]
		}

		return ""
	},
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}

		return t.Format("Mon Jan 02 2006")
	},
}

// Templates holds the parsed page set: each page file is paired with
// the shared layout, plus the standalone article fragment used by the
// page cache.
type Templates struct {
	pages   map[string]*template.Template
	article *template.Template
}

func NewTemplates() (*Templates, error) {
	pageFiles := []string{
		"home.page.html",
		"post.page.html",
		"edit.page.html",
		"error.page.html",
	}

	pages := make(map[string]*template.Template, len(pageFiles))

	for _, pf := range pageFiles {
		t, err := template.New(pf).Funcs(functions).ParseFS(htmlFS, layoutFile, "html/"+pf)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", pf, err)
		}

		pages[pf] = t
	}

	article, err := template.New("article.partial.html").Funcs(functions).ParseFS(htmlFS, "html/article.partial.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse article partial: %w", err)
	}

	return &Templates{pages: pages, article: article}, nil
}

func (t *Templates) RenderPage(w io.Writer, page string, data *HTMLData) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("web: unknown page %q", page)
	}

	if data == nil {
		data = &HTMLData{}
	}

	if data.Title == "" {
		data.Title = "Blog | thought-scratching"
	}

	// Render to a buffer first so a template failure never leaves a
	// half-written response.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return err
	}

	_, err := buf.WriteTo(w)

	return err
}

// RenderArticle renders the viewer-independent article fragment that
// the page cache stores.
func (t *Templates) RenderArticle(w io.Writer, p *model.Post) error {
	return t.article.ExecuteTemplate(w, "article", p)
}

// RenderHTML writes a page and falls back to a plain 500 if even the
// template fails.
func (app *App) RenderHTML(w http.ResponseWriter, page string, data *HTMLData) {
	if err := app.templates.RenderPage(w, page, data); err != nil {
		app.sugarLogger.Errorw("page render failed", "page", page, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
