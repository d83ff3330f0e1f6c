package web

import (
	"net/http"

	"github.com/desertthunder/agentes/internal/server"
)

// placeholders are the sections that exist in the navigation but have no content yet.
var placeholders = []struct {
	path  string
	title string
}{
	{"/blog", "Blog"},
	{"/contato", "Contato"},
	{"/casos-de-uso", "Casos de Uso"},
	{"/onboarding", "Onboarding"},
}

type plan struct {
	Name     string
	Price    string
	Features []string
}

var plans = []plan{
	{"Essencial", "R$ 97/mês", []string{"1 agente", "1 canal", "1.000 conversas/mês"}},
	{"Profissional", "R$ 297/mês", []string{"5 agentes", "Todos os canais", "10.000 conversas/mês"}},
	{"Empresa", "Sob consulta", []string{"Agentes ilimitados", "Integrações sob medida", "Suporte dedicado"}},
}

func (a *App) registerPages(r *server.BasicRouter) {
	r.HandleFunc(http.MethodGet, "/{$}", a.home)
	r.HandleFunc(http.MethodGet, "/precos", a.pricing)

	for _, p := range placeholders {
		title := p.title
		r.HandleFunc(http.MethodGet, p.path, func(w http.ResponseWriter, r *http.Request) {
			a.render(w, r, http.StatusOK, "placeholder", view{Title: title})
		})
	}
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "home", view{})
}

func (a *App) pricing(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "pricing", view{Data: map[string]any{"Plans": plans}})
}
