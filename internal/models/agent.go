package models

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Objective is what an agent is configured to achieve in a conversation.
type Objective string

const (
	ObjectiveSales         Objective = "vendas"
	ObjectiveSupport       Objective = "suporte"
	ObjectiveScheduling    Objective = "agendamento"
	ObjectiveQualification Objective = "qualificacao"
)

// Tone is the conversational register of an agent.
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneFriendly     Tone = "amigavel"
	ToneConsultative Tone = "consultivo"
)

// Channel is where an agent talks to leads.
type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelInstagram Channel = "instagram"
	ChannelSite      Channel = "site"
	ChannelEmail     Channel = "email"
)

// Option is a value/label pair rendered in form selects.
type Option struct {
	Value string
	Label string
}

var (
	Objectives = []Option{
		{string(ObjectiveSales), "Vendas"},
		{string(ObjectiveSupport), "Suporte"},
		{string(ObjectiveScheduling), "Agendamento"},
		{string(ObjectiveQualification), "Qualificação de leads"},
	}
	Tones = []Option{
		{string(ToneFormal), "Formal"},
		{string(ToneFriendly), "Amigável"},
		{string(ToneConsultative), "Consultivo"},
	}
	Channels = []Option{
		{string(ChannelWhatsApp), "WhatsApp"},
		{string(ChannelInstagram), "Instagram"},
		{string(ChannelSite), "Chat do site"},
		{string(ChannelEmail), "E-mail"},
	}
)

const (
	MaxNameLength         = 80
	MaxGreetingLength     = 500
	MaxInstructionsLength = 4000
)

// ErrNotOwner is returned when a user touches an agent that belongs to someone else.
var ErrNotOwner = errors.New("agent belongs to another user")

// Agent is a conversational agent configuration.
type Agent struct {
	base
	userID       string
	name         string
	company      string
	objective    Objective
	tone         Tone
	channel      Channel
	greeting     string
	instructions string
	active       bool
}

// AgentInput holds user-editable agent fields, as submitted by the dashboard form.
type AgentInput struct {
	Name         string
	Company      string
	Objective    string
	Tone         string
	Channel      string
	Greeting     string
	Instructions string
	Active       bool
}

// NewAgent creates an active agent for userID from input. Text fields are trimmed.
func NewAgent(sequence int, userID string, in AgentInput) *Agent {
	a := &Agent{base: newBase(sequence), userID: userID}
	a.Apply(in)
	return a
}

// Apply copies user-editable fields from in.
func (a *Agent) Apply(in AgentInput) {
	a.name = strings.TrimSpace(in.Name)
	a.company = strings.TrimSpace(in.Company)
	a.objective = Objective(strings.TrimSpace(in.Objective))
	a.tone = Tone(strings.TrimSpace(in.Tone))
	a.channel = Channel(strings.TrimSpace(in.Channel))
	a.greeting = strings.TrimSpace(in.Greeting)
	a.instructions = strings.TrimSpace(in.Instructions)
	a.active = in.Active
}

// Input returns the user-editable fields, for pre-filling forms.
func (a *Agent) Input() AgentInput {
	return AgentInput{
		Name:         a.name,
		Company:      a.company,
		Objective:    string(a.objective),
		Tone:         string(a.tone),
		Channel:      string(a.channel),
		Greeting:     a.greeting,
		Instructions: a.instructions,
		Active:       a.active,
	}
}

func (a *Agent) UserID() string       { return a.userID }
func (a *Agent) Name() string         { return a.name }
func (a *Agent) Company() string      { return a.company }
func (a *Agent) Objective() Objective { return a.objective }
func (a *Agent) Tone() Tone           { return a.tone }
func (a *Agent) Channel() Channel     { return a.channel }
func (a *Agent) Greeting() string     { return a.greeting }
func (a *Agent) Instructions() string { return a.instructions }
func (a *Agent) Active() bool         { return a.active }
func (a *Agent) SetActive(v bool)     { a.active = v }

// ObjectiveLabel returns the display label for the agent's objective.
func (a *Agent) ObjectiveLabel() string { return label(Objectives, string(a.objective)) }

// ToneLabel returns the display label for the agent's tone.
func (a *Agent) ToneLabel() string { return label(Tones, string(a.tone)) }

// ChannelLabel returns the display label for the agent's channel.
func (a *Agent) ChannelLabel() string { return label(Channels, string(a.channel)) }

// OwnedBy reports whether userID owns the agent.
func (a *Agent) OwnedBy(userID string) bool {
	return userID != "" && a.userID == userID
}

// Validate checks required fields, enumerations and lengths.
// The returned error is a [ValidationErrors] when any field is invalid.
func (a *Agent) Validate() error {
	var errs ValidationErrors

	if a.userID == "" {
		errs = append(errs, &ValidationError{"user_id", "obrigatório"})
	}
	switch n := utf8.RuneCountInString(a.name); {
	case n == 0:
		errs = append(errs, &ValidationError{"name", "informe um nome para o agente"})
	case n > MaxNameLength:
		errs = append(errs, &ValidationError{"name", "máximo de 80 caracteres"})
	}
	if !valid(Objectives, string(a.objective)) {
		errs = append(errs, &ValidationError{"objective", "escolha um objetivo"})
	}
	if !valid(Tones, string(a.tone)) {
		errs = append(errs, &ValidationError{"tone", "escolha um tom de voz"})
	}
	if !valid(Channels, string(a.channel)) {
		errs = append(errs, &ValidationError{"channel", "escolha um canal"})
	}
	if utf8.RuneCountInString(a.greeting) > MaxGreetingLength {
		errs = append(errs, &ValidationError{"greeting", "máximo de 500 caracteres"})
	}
	if utf8.RuneCountInString(a.instructions) > MaxInstructionsLength {
		errs = append(errs, &ValidationError{"instructions", "máximo de 4000 caracteres"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func valid(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func label(opts []Option, v string) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Label
		}
	}
	return v
}
