package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

// ListSessions prints the stored session IDs.
func ListSessions(ctx context.Context, w io.Writer, store ports.StateStore) error {
	sessions, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Sessions:")
	for _, s := range sessions {
		fmt.Fprintln(w, "- "+s)
	}
	return nil
}

// InspectSession prints the stored state and its display as indented JSON.
func InspectSession(ctx context.Context, w io.Writer, store ports.StateStore, sessionID string) error {
	state, err := store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", sessionID, err)
	}
	data, err := json.MarshalIndent(struct {
		State   *domain.State  `json:"state"`
		Display domain.Display `json:"display"`
	}{state, domain.Render(state)}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions deletes each session, reporting every failure.
func RemoveSessions(ctx context.Context, w io.Writer, store ports.StateStore, sessionIDs []string) error {
	failed := 0
	for _, id := range sessionIDs {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d of %d sessions", failed, len(sessionIDs))
	}
	return nil
}
