package supabase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/agentes/internal/models"
	"github.com/desertthunder/agentes/internal/shared"
	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const agentsTable = "agent_configs"

// invalidTextRepresentation is the Postgres code for a malformed uuid literal.
const invalidTextRepresentation = "(22P02)"

// checkID rejects ids that cannot name an agent_configs row.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAgentNotFound, id)
	}
	return nil
}

// queryError wraps a PostgREST failure; a malformed id reported by Postgres is not found.
func queryError(op, id string, err error) error {
	if strings.HasPrefix(err.Error(), invalidTextRepresentation) {
		return fmt.Errorf("%w: %s", shared.ErrAgentNotFound, id)
	}
	return fmt.Errorf("failed to %s agent: %w", op, err)
}

// agentRow is the JSON shape of an agent_configs row.
type agentRow struct {
	ID           string     `json:"id,omitempty"`
	Sequence     int        `json:"sequence,omitempty"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Company      string     `json:"company"`
	Objective    string     `json:"objective"`
	Tone         string     `json:"tone"`
	Channel      string     `json:"channel"`
	Greeting     string     `json:"greeting"`
	Instructions string     `json:"instructions"`
	Active       bool       `json:"active"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// agentPatch carries the columns an update may change.
type agentPatch struct {
	Name         string    `json:"name"`
	Company      string    `json:"company"`
	Objective    string    `json:"objective"`
	Tone         string    `json:"tone"`
	Channel      string    `json:"channel"`
	Greeting     string    `json:"greeting"`
	Instructions string    `json:"instructions"`
	Active       bool      `json:"active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRow(a *models.Agent) agentRow {
	created, updated := a.CreatedAt(), a.UpdatedAt()
	return agentRow{
		UserID:       a.UserID(),
		Name:         a.Name(),
		Company:      a.Company(),
		Objective:    string(a.Objective()),
		Tone:         string(a.Tone()),
		Channel:      string(a.Channel()),
		Greeting:     a.Greeting(),
		Instructions: a.Instructions(),
		Active:       a.Active(),
		CreatedAt:    &created,
		UpdatedAt:    &updated,
	}
}

func fromRow(r agentRow) *models.Agent {
	agent := models.NewAgent(r.Sequence, r.UserID, models.AgentInput{
		Name:         r.Name,
		Company:      r.Company,
		Objective:    r.Objective,
		Tone:         r.Tone,
		Channel:      r.Channel,
		Greeting:     r.Greeting,
		Instructions: r.Instructions,
		Active:       r.Active,
	})
	agent.SetID(r.ID)
	if r.CreatedAt != nil {
		agent.SetCreatedAt(*r.CreatedAt)
	}
	if r.UpdatedAt != nil {
		agent.SetUpdatedAt(*r.UpdatedAt)
	}
	agent.SetDeletedAt(r.DeletedAt)
	return agent
}

// AgentStore implements [models.Repository] for [models.Agent] on the agent_configs table.
//
// Row visibility follows the client it is built with: a user-token client only sees that user's rows.
type AgentStore struct {
	client *supabase.Client
}

// NewAgentStore creates an [AgentStore] on client.
func NewAgentStore(client *supabase.Client) *AgentStore {
	return &AgentStore{client: client}
}

// Create inserts agent; the database assigns id and sequence.
func (s *AgentStore) Create(agent *models.Agent) error {
	if err := agent.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var rows []agentRow
	_, err := s.client.From(agentsTable).
		Insert(toRow(agent), false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("failed to insert agent: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("failed to insert agent: no row returned")
	}

	agent.SetID(rows[0].ID)
	agent.SetSequence(rows[0].Sequence)
	return nil
}

// Get retrieves an agent by ID, excluding soft-deleted agents.
func (s *AgentStore) Get(id string) (*models.Agent, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var rows []agentRow
	_, err := s.client.From(agentsTable).
		Select("*", "", false).
		Eq("id", id).
		Is("deleted_at", "null").
		ExecuteTo(&rows)
	if err != nil {
		return nil, queryError("query", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrAgentNotFound, id)
	}
	return fromRow(rows[0]), nil
}

// Update writes the editable fields of agent.
func (s *AgentStore) Update(agent *models.Agent) error {
	if err := checkID(agent.ID()); err != nil {
		return err
	}
	if err := agent.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	in := agent.Input()
	patch := agentPatch{
		Name:         in.Name,
		Company:      in.Company,
		Objective:    in.Objective,
		Tone:         in.Tone,
		Channel:      in.Channel,
		Greeting:     in.Greeting,
		Instructions: in.Instructions,
		Active:       in.Active,
		UpdatedAt:    time.Now().UTC(),
	}

	var rows []agentRow
	_, err := s.client.From(agentsTable).
		Update(patch, "representation", "").
		Eq("id", agent.ID()).
		Is("deleted_at", "null").
		ExecuteTo(&rows)
	if err != nil {
		return queryError("update", agent.ID(), err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAgentNotFound, agent.ID())
	}

	agent.SetUpdatedAt(patch.UpdatedAt)
	return nil
}

// Delete soft-deletes an agent by ID.
func (s *AgentStore) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	var rows []agentRow
	_, err := s.client.From(agentsTable).
		Update(map[string]any{"deleted_at": time.Now().UTC()}, "representation", "").
		Eq("id", id).
		Is("deleted_at", "null").
		ExecuteTo(&rows)
	if err != nil {
		return queryError("delete", id, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAgentNotFound, id)
	}
	return nil
}

// List retrieves agents matching criteria ("user_id", "active"), ordered by sequence.
func (s *AgentStore) List(criteria map[string]any) ([]*models.Agent, error) {
	query := s.client.From(agentsTable).
		Select("*", "", false).
		Is("deleted_at", "null")

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query = query.Eq("user_id", userID)
	}
	if active, ok := criteria["active"].(bool); ok {
		query = query.Eq("active", strconv.FormatBool(active))
	}

	var rows []agentRow
	if _, err := query.Order("sequence", &postgrest.OrderOpts{Ascending: true}).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}

	agents := make([]*models.Agent, 0, len(rows))
	for _, r := range rows {
		agents = append(agents, fromRow(r))
	}
	return agents, nil
}
