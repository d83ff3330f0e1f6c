package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/agentes/internal/models"
	"github.com/desertthunder/agentes/internal/shared"
)

const agentColumns = `id, sequence, user_id, name, company, objective, tone, channel, greeting, instructions, active,
		created_at, updated_at, deleted_at`

// AgentRepository implements [models.Repository] for [models.Agent] persistence.
type AgentRepository struct {
	db *sql.DB
}

// NewAgentRepository creates a new [AgentRepository] with the given database connection
func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// Create inserts a new agent with generated ID and sequence
func (r *AgentRepository) Create(agent *models.Agent) error {
	if err := agent.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	ctx := context.Background()
	sequence, err := NextSequence(ctx, r.db, "agent_configs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO agent_configs (id, sequence, user_id, name, company, objective, tone, channel, greeting, instructions,
			active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query, id, sequence, agent.UserID(), agent.Name(), agent.Company(),
		string(agent.Objective()), string(agent.Tone()), string(agent.Channel()), agent.Greeting(), agent.Instructions(),
		agent.Active(), agent.CreatedAt(), agent.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert agent: %w", err)
	}

	agent.SetID(id)
	agent.SetSequence(sequence)
	return nil
}

// Get retrieves an agent by ID, excluding soft-deleted agents
func (r *AgentRepository) Get(id string) (*models.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agent_configs WHERE id = ? AND deleted_at IS NULL`

	agent, err := scanAgent(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrAgentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query agent: %w", err)
	}

	return agent, nil
}

// Update modifies an existing agent's editable fields
func (r *AgentRepository) Update(agent *models.Agent) error {
	if err := agent.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	query := `
		UPDATE agent_configs
		SET name = ?, company = ?, objective = ?, tone = ?, channel = ?, greeting = ?, instructions = ?, active = ?,
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, agent.Name(), agent.Company(), string(agent.Objective()), string(agent.Tone()),
		string(agent.Channel()), agent.Greeting(), agent.Instructions(), agent.Active(), now, agent.ID())
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}

	if err := expectOneRow(result, agent.ID()); err != nil {
		return err
	}

	agent.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes an agent by ID
func (r *AgentRepository) Delete(id string) error {
	query := `UPDATE agent_configs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}

	return expectOneRow(result, id)
}

// List retrieves agents matching criteria, ordered by sequence.
//
// Supported criteria: "user_id" (string) and "active" (bool).
func (r *AgentRepository) List(criteria map[string]any) ([]*models.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agent_configs WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if active, ok := criteria["active"].(bool); ok {
		query += " AND active = ?"
		args = append(args, active)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	var agents []*models.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, agent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return agents, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAgent(s scanner) (*models.Agent, error) {
	var (
		id, userID, name, company, objective, tone, channel, greeting, instructions string
		sequence                                                                  int
		active                                                                    bool
		createdAt, updatedAt                                                      time.Time
		deletedAt                                                                 sql.NullTime
	)

	err := s.Scan(&id, &sequence, &userID, &name, &company, &objective, &tone, &channel, &greeting, &instructions,
		&active, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	agent := models.NewAgent(sequence, userID, models.AgentInput{
		Name:         name,
		Company:      company,
		Objective:    objective,
		Tone:         tone,
		Channel:      channel,
		Greeting:     greeting,
		Instructions: instructions,
		Active:       active,
	})
	agent.SetID(id)
	agent.SetCreatedAt(createdAt)
	agent.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		agent.SetDeletedAt(&deletedAt.Time)
	}

	return agent, nil
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAgentNotFound, id)
	}
	return nil
}
