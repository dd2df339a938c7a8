package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/twelve-week-sync/internal/app"
	"github.com/comitanigiacomo/twelve-week-sync/internal/config"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
	"github.com/comitanigiacomo/twelve-week-sync/internal/ui"
)

var (
	ErrNoMatch   = errors.New("no item matches")
	ErrAmbiguous = errors.New("id prefix is ambiguous")
)

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func openBackend(ctx context.Context) (*app.Backend, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	backend, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return backend, cfg, nil
}

// openStore loads every cycle of the configured user. Store errors are echoed to stderr as they happen.
func openStore(ctx context.Context, cmd *cobra.Command) (*services.CycleStore, func(), error) {
	backend, cfg, err := openBackend(ctx)
	if err != nil {
		return nil, nil, err
	}

	store := services.NewCycleStore(backend.Gateway, cfg.User)
	unsubscribe := store.Subscribe(func(e services.Event) {
		if e.Type == services.EventError {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Bad.Render(ui.IconWarn+" "+e.Message))
		}
	})
	cleanup := func() {
		unsubscribe()
		backend.Close()
	}

	if err := store.FetchAll(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return store, cleanup, nil
}

func currentCycle(store *services.CycleStore) (*domain.Cycle, error) {
	c, err := store.CurrentCycle()
	if err != nil {
		return nil, fmt.Errorf("%w (create one with `twelveweek cycle new`)", err)
	}
	return c, nil
}

// resolveID accepts a full id or any unique prefix of one.
func resolveID(kind string, ids []string, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	var matches []string
	for _, id := range ids {
		if id == arg {
			return id, nil
		}
		if arg != "" && strings.HasPrefix(id, arg) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s %q", ErrNoMatch, kind, arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s %q matches %d items", ErrAmbiguous, kind, arg, len(matches))
	}
}

func cycleIDs(cycles []*domain.Cycle) []string {
	ids := make([]string, len(cycles))
	for i, c := range cycles {
		ids[i] = c.ID
	}
	return ids
}

func goalIDs(c *domain.Cycle) []string {
	ids := make([]string, len(c.Goals))
	for i, g := range c.Goals {
		ids[i] = g.ID
	}
	return ids
}

func taskIDs(c *domain.Cycle) []string {
	ids := make([]string, len(c.WeeklyTasks))
	for i, t := range c.WeeklyTasks {
		ids[i] = t.ID
	}
	return ids
}

func actionIDs(c *domain.Cycle) []string {
	ids := make([]string, len(c.DailyActions))
	for i, a := range c.DailyActions {
		ids[i] = a.ID
	}
	return ids
}

func habitIDs(c *domain.Cycle) []string {
	ids := make([]string, len(c.Habits))
	for i, h := range c.Habits {
		ids[i] = h.ID
	}
	return ids
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
