// Package routes maps symbolic page names to URL paths.
//
// The table is built once at startup and never modified, so a single *Table
// is shared by the router, the session gate and the template helpers.
package routes

import (
	"fmt"
	"html/template"
)

// Name identifies a page independently of where it is mounted.
type Name string

const (
	Home          Name = "home"
	Profile       Name = "profile"
	Transactions  Name = "transactions"
	Register      Name = "register"
	Login         Name = "login"
	Logout        Name = "logout"
	RouletteRules Name = "rouletteRules"
	AboutUs       Name = "aboutUs"
	Roulette      Name = "roulette"
	Bienvenida    Name = "bienvenida"
)

// Table is an immutable name -> path mapping.
type Table struct {
	paths map[Name]string
}

// New returns the site's route table.
func New() *Table {
	return FromMap(map[Name]string{
		Home: "/",

		Profile:      "/account/profile",
		Transactions: "/account/transactions",
		Register:     "/account/register",
		Login:        "/account/login",
		Logout:       "/account/logout",

		RouletteRules: "/info/roulette-rules",
		AboutUs:       "/info/about-us",

		Roulette:   "/roulette",
		Bienvenida: "/bienvenida",
	})
}

// FromMap builds a table from a copy of paths.
func FromMap(paths map[Name]string) *Table {
	cp := make(map[Name]string, len(paths))
	for k, v := range paths {
		cp[k] = v
	}
	return &Table{paths: cp}
}

// Lookup resolves name to a path.
func (t *Table) Lookup(name Name) (string, bool) {
	p, ok := t.paths[name]
	return p, ok
}

// Path resolves name and panics if it is not in the table. Route names are
// compile-time constants, so a miss is a programming error.
func (t *Table) Path(name Name) string {
	p, ok := t.paths[name]
	if !ok {
		panic(fmt.Sprintf("routes: unknown route %q", name))
	}
	return p
}

// URL is the error-returning form of Path used by templates, where a failed
// helper aborts rendering instead of crashing the request goroutine.
func (t *Table) URL(name string) (string, error) {
	p, ok := t.paths[Name(name)]
	if !ok {
		return "", fmt.Errorf("routes: unknown route %q", name)
	}
	return p, nil
}

// NavLink renders one navigation entry. The entry for the page being viewed
// (currentTitle == linkTitle) is a plain marker instead of an anchor.
func (t *Table) NavLink(currentTitle, linkTitle, name string) (template.HTML, error) {
	title := template.HTMLEscapeString(linkTitle)
	if currentTitle == linkTitle {
		return template.HTML(`<li class="nav-actual">` + title + `</li>`), nil
	}

	url, err := t.URL(name)
	if err != nil {
		return "", err
	}
	return template.HTML(`<li><a href="` + template.HTMLEscapeString(url) + `">` + title + `</a></li>`), nil
}

// FuncMap exposes the table to html/template as the url and navLink helpers.
func (t *Table) FuncMap() template.FuncMap {
	return template.FuncMap{
		"url":     t.URL,
		"navLink": t.NavLink,
	}
}
