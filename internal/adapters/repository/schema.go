package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the cycle tables if they do not exist. Column types are rendered per dialect.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	timestampType, boolType, floatType := "TIMESTAMPTZ", "BOOLEAN", "DOUBLE PRECISION"
	if isSQLite(db) {
		timestampType, boolType, floatType = "DATETIME", "INTEGER", "REAL"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			vision TEXT NOT NULL DEFAULT '',
			current_week INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT 'active',
			created_at {{TIMESTAMP}} NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			target_date TEXT,
			progress INTEGER NOT NULL DEFAULT 0,
			created_at {{TIMESTAMP}} NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS weekly_tasks (
			id TEXT PRIMARY KEY,
			cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
			goal_id TEXT REFERENCES goals(id) ON DELETE SET NULL,
			title TEXT NOT NULL,
			completed {{BOOLEAN}} NOT NULL DEFAULT FALSE,
			due_date TEXT,
			created_at {{TIMESTAMP}} NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS daily_actions (
			id TEXT PRIMARY KEY,
			cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			completed {{BOOLEAN}} NOT NULL DEFAULT FALSE,
			date TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'medium',
			created_at {{TIMESTAMP}} NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			target_days_per_week INTEGER NOT NULL DEFAULT 7,
			created_at {{TIMESTAMP}} NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS habit_completions (
			id TEXT PRIMARY KEY,
			habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
			completed_date TEXT NOT NULL,
			UNIQUE (habit_id, completed_date)
		);`,
		`CREATE TABLE IF NOT EXISTS weekly_scores (
			id TEXT PRIMARY KEY,
			cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
			week_number INTEGER NOT NULL,
			planned_tasks INTEGER NOT NULL DEFAULT 0,
			completed_tasks INTEGER NOT NULL DEFAULT 0,
			execution_rate INTEGER NOT NULL DEFAULT 0,
			UNIQUE (cycle_id, week_number)
		);`,
		`CREATE TABLE IF NOT EXISTS lead_indicators (
			id TEXT PRIMARY KEY,
			weekly_score_id TEXT NOT NULL REFERENCES weekly_scores(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			target {{REAL}} NOT NULL DEFAULT 0,
			actual {{REAL}} NOT NULL DEFAULT 0,
			unit TEXT NOT NULL DEFAULT '',
			created_at {{TIMESTAMP}} NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_user_id ON cycles(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_goals_cycle_id ON goals(cycle_id);`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_tasks_cycle_id ON weekly_tasks(cycle_id);`,
		`CREATE INDEX IF NOT EXISTS idx_daily_actions_cycle_id_date ON daily_actions(cycle_id, date);`,
		`CREATE INDEX IF NOT EXISTS idx_habits_cycle_id ON habits(cycle_id);`,
		`CREATE INDEX IF NOT EXISTS idx_lead_indicators_score_id ON lead_indicators(weekly_score_id);`,
	}

	r := strings.NewReplacer("{{TIMESTAMP}}", timestampType, "{{BOOLEAN}}", boolType, "{{REAL}}", floatType)
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
