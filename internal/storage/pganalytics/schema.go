package pganalytics

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS global_stats (
  id SMALLINT PRIMARY KEY CHECK (id = 1),
  total_lookups BIGINT NOT NULL DEFAULT 0,
  unique_visitors BIGINT NOT NULL DEFAULT 0,
  last_activity TIMESTAMPTZ NOT NULL,
  version BIGINT NOT NULL DEFAULT 0
)`,
		// Единственная строка-агрегат; все мутации идут через версию.
		`
INSERT INTO global_stats (id, total_lookups, unique_visitors, last_activity, version)
VALUES (1, 0, 0, now(), 0)
ON CONFLICT (id) DO NOTHING
`,
		`
CREATE TABLE IF NOT EXISTS visitor_profiles (
  visitor_id TEXT PRIMARY KEY,
  first_seen TIMESTAMPTZ NOT NULL,
  last_seen TIMESTAMPTZ NOT NULL,
  visit_count BIGINT NOT NULL DEFAULT 1,
  latest_city TEXT NOT NULL DEFAULT '',
  latest_country TEXT NOT NULL DEFAULT '',
  device TEXT NOT NULL DEFAULT ''
)`,
		`
CREATE TABLE IF NOT EXISTS lookup_events (
  id BIGSERIAL PRIMARY KEY,
  event_time TIMESTAMPTZ NOT NULL,
  visitor_id TEXT NOT NULL,
  search_kind TEXT NOT NULL,
  search_value TEXT NOT NULL DEFAULT '',
  outcome TEXT NOT NULL,
  error_detail TEXT NOT NULL DEFAULT '',
  is_mobile BOOLEAN NOT NULL DEFAULT FALSE,
  user_agent TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_lookup_events_visitor_time ON lookup_events(visitor_id, event_time DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_lookup_events_event_time ON lookup_events(event_time DESC)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
