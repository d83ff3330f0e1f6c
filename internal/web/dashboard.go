package web

import (
	"errors"
	"net/http"

	"github.com/desertthunder/agentes/internal/models"
	"github.com/desertthunder/agentes/internal/server"
	"github.com/desertthunder/agentes/internal/shared"
)

type agentFormData struct {
	ID         string
	Action     string
	Input      models.AgentInput
	Errors     models.ValidationErrors
	Objectives []models.Option
	Tones      []models.Option
	Channels   []models.Option
}

func newAgentForm(id string, in models.AgentInput, errs models.ValidationErrors) agentFormData {
	action := "/dashboard/agents"
	if id != "" {
		action += "/" + id
	}
	return agentFormData{
		ID:         id,
		Action:     action,
		Input:      in,
		Errors:     errs,
		Objectives: models.Objectives,
		Tones:      models.Tones,
		Channels:   models.Channels,
	}
}

// agentInput reads the agent form. An unchecked checkbox is absent from the form, hence inactive.
func agentInput(r *http.Request) models.AgentInput {
	return models.AgentInput{
		Name:         r.PostForm.Get("name"),
		Company:      r.PostForm.Get("company"),
		Objective:    r.PostForm.Get("objective"),
		Tone:         r.PostForm.Get("tone"),
		Channel:      r.PostForm.Get("channel"),
		Greeting:     r.PostForm.Get("greeting"),
		Instructions: r.PostForm.Get("instructions"),
		Active:       r.PostForm.Get("active") != "",
	}
}

// store returns the session and its agent repository; on failure the response has been written.
func (a *App) store(w http.ResponseWriter, r *http.Request) (*server.Session, models.Repository[*models.Agent], bool) {
	session := server.SessionFrom(r.Context())
	if session == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, nil, false
	}

	repo, err := a.agents(r)
	if err != nil {
		a.serverError(w, r, err)
		return nil, nil, false
	}
	return session, repo, true
}

// ownedAgent loads the {id} agent and hides agents of other users behind a 404.
func (a *App) ownedAgent(w http.ResponseWriter, r *http.Request) (*server.Session, models.Repository[*models.Agent], *models.Agent, bool) {
	session, repo, ok := a.store(w, r)
	if !ok {
		return nil, nil, nil, false
	}

	agent, err := repo.Get(r.PathValue("id"))
	switch {
	case errors.Is(err, shared.ErrAgentNotFound):
		a.notFound(w, r)
		return nil, nil, nil, false
	case err != nil:
		a.serverError(w, r, err)
		return nil, nil, nil, false
	case !agent.OwnedBy(session.User.ID):
		a.logger.Warn("agent access denied", "agent", agent.ID(), "user", session.User.ID, "error", models.ErrNotOwner)
		a.notFound(w, r)
		return nil, nil, nil, false
	}
	return session, repo, agent, true
}

func (a *App) dashboard(w http.ResponseWriter, r *http.Request) {
	session, repo, ok := a.store(w, r)
	if !ok {
		return
	}

	agents, err := repo.List(map[string]any{"user_id": session.User.ID})
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "dashboard", view{Data: map[string]any{"Agents": agents}})
}

func (a *App) newAgent(w http.ResponseWriter, r *http.Request) {
	in := models.AgentInput{
		Objective: string(models.ObjectiveSales),
		Tone:      string(models.ToneFriendly),
		Channel:   string(models.ChannelWhatsApp),
		Active:    true,
	}
	a.render(w, r, http.StatusOK, "agent_form", view{Data: newAgentForm("", in, nil)})
}

func (a *App) createAgent(w http.ResponseWriter, r *http.Request) {
	session, repo, ok := a.store(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	in := agentInput(r)
	agent := models.NewAgent(0, session.User.ID, in)
	if err := repo.Create(agent); err != nil {
		a.formError(w, r, "", in, err)
		return
	}

	a.reporter.Track(r.Context(), "agent_created", map[string]any{
		"agent_id": agent.ID(), "objective": string(agent.Objective()), "channel": string(agent.Channel()),
	})
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

func (a *App) editAgent(w http.ResponseWriter, r *http.Request) {
	_, _, agent, ok := a.ownedAgent(w, r)
	if !ok {
		return
	}
	a.render(w, r, http.StatusOK, "agent_form", view{Data: newAgentForm(agent.ID(), agent.Input(), nil)})
}

func (a *App) updateAgent(w http.ResponseWriter, r *http.Request) {
	_, repo, agent, ok := a.ownedAgent(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	in := agentInput(r)
	agent.Apply(in)
	if err := repo.Update(agent); err != nil {
		a.formError(w, r, agent.ID(), in, err)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

func (a *App) deleteAgent(w http.ResponseWriter, r *http.Request) {
	_, repo, agent, ok := a.ownedAgent(w, r)
	if !ok {
		return
	}

	if err := repo.Delete(agent.ID()); err != nil {
		if errors.Is(err, shared.ErrAgentNotFound) {
			a.notFound(w, r)
			return
		}
		a.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

func (a *App) toggleAgent(w http.ResponseWriter, r *http.Request) {
	_, repo, agent, ok := a.ownedAgent(w, r)
	if !ok {
		return
	}

	agent.SetActive(!agent.Active())
	if err := repo.Update(agent); err != nil {
		a.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// formError re-renders the agent form with 422 for validation failures and answers 500 otherwise.
func (a *App) formError(w http.ResponseWriter, r *http.Request, id string, in models.AgentInput, err error) {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		a.render(w, r, http.StatusUnprocessableEntity, "agent_form", view{Data: newAgentForm(id, in, verrs)})
		return
	}
	if errors.Is(err, shared.ErrAgentNotFound) {
		a.notFound(w, r)
		return
	}
	a.serverError(w, r, err)
}
