// Package view renders the site's HTML pages from embedded templates.
//
// Every page is parsed together with exactly one layout: "clean" for the
// login and registration forms, "main" (with the navigation bar) for the
// rest. The route table is exposed to templates through the url and navLink
// helpers, so no template hard-codes a path.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/JoshBaneyCS/betanito/internal/routes"
	"github.com/JoshBaneyCS/betanito/internal/users"
)

//go:embed templates
var templatesFS embed.FS

// Page names.
const (
	PageHome          = "home"
	PageProfile       = "profile"
	PageTransactions  = "transactions"
	PageRegister      = "register"
	PageLogin         = "login"
	PageAboutUs       = "about-us"
	PageRouletteRules = "roulette-rules"
	PageRoulette      = "roulette"
)

const (
	layoutMain  = "main"
	layoutClean = "clean"
)

// Page describes one renderable page.
type Page struct {
	Title  string
	Layout string
}

// Pages lists every page with its title and layout.
var Pages = map[string]Page{
	PageHome:          {Title: "Inicio", Layout: layoutMain},
	PageProfile:       {Title: "Perfil", Layout: layoutMain},
	PageTransactions:  {Title: "Transacciones", Layout: layoutMain},
	PageRegister:      {Title: "Registro", Layout: layoutClean},
	PageLogin:         {Title: "Inicio de sesión", Layout: layoutClean},
	PageAboutUs:       {Title: "Sobre Nosotros", Layout: layoutMain},
	PageRouletteRules: {Title: "Reglas de la Ruleta", Layout: layoutMain},
	PageRoulette:      {Title: "Ruleta", Layout: layoutMain},
}

// Data is what templates see. Title is filled in by Render.
type Data struct {
	Title string

	// DisplayName comes from the username cookie and is only shown in the
	// header; it does not identify anyone.
	DisplayName string

	// User is set on pages behind the session gate.
	User *users.User
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates.
func New(table *routes.Table) (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	return NewFromFS(sub, table)
}

// NewFromFS parses templates from fsys, which must hold layouts/<layout>.html
// and pages/<page>.html for every entry in Pages.
func NewFromFS(fsys fs.FS, table *routes.Table) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}

	for name, page := range Pages {
		tmpl, err := template.New(name).
			Funcs(table.FuncMap()).
			ParseFS(fsys, "layouts/"+page.Layout+".html", "pages/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Render writes page with the given status. The page is rendered to a
// buffer first so a template error never leaves a half-written response;
// the caller answers the returned error.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Data) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	data.Title = Pages[name].Title

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render page %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
