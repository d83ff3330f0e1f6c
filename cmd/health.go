package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/agentes/internal/shared"
	"github.com/urfave/cli/v3"
)

type healthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health requests /api/health and reports the result. A non-200 answer is an error.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	endpoint := strings.TrimRight(cmd.String("url"), "/") + "/api/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.writePlain("%s\n", r.palette.Status(false, endpoint, err.Error()))
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.writePlain("%s\n", r.palette.Status(false, endpoint, resp.Status))
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, resp.Status)
	}

	var status healthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("%w: invalid health response: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(status, false); err != nil {
			return err
		}
	} else {
		r.writePlain("%s\n", r.palette.Status(status.Status == "ok", endpoint, status.Timestamp))
	}

	if status.Status != "ok" {
		return fmt.Errorf("%w: status %q", shared.ErrServiceUnavailable, status.Status)
	}
	return nil
}
