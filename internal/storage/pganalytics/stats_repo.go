package pganalytics

import (
	"context"

	"github.com/Murali1801/Wareiq-API/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) GetGlobalStats(ctx context.Context) (models.GlobalStats, error) {
	var st models.GlobalStats
	err := s.db.QueryRow(ctx, `
SELECT total_lookups, unique_visitors, last_activity, version
FROM global_stats
WHERE id = 1
`).Scan(&st.TotalLookups, &st.UniqueVisitors, &st.LastActivity, &st.Version)
	if err != nil {
		return models.GlobalStats{}, errors.Wrap(err, "select global stats")
	}
	return st, nil
}

func (s *Storage) GetVisitorProfile(ctx context.Context, visitorID string) (*models.VisitorProfile, error) {
	var p models.VisitorProfile
	err := s.db.QueryRow(ctx, `
SELECT visitor_id, first_seen, last_seen, visit_count, latest_city, latest_country, device
FROM visitor_profiles
WHERE visitor_id = $1
`, visitorID).Scan(&p.VisitorID, &p.FirstSeen, &p.LastSeen, &p.VisitCount, &p.LatestCity, &p.LatestCountry, &p.Device)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select visitor profile")
	}
	return &p, nil
}

func (s *Storage) ListLookupEvents(ctx context.Context, visitorID string, limit int) ([]*models.LookupEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.db.Query(ctx, `
SELECT
  id, event_time, visitor_id, search_kind, search_value, outcome, error_detail,
  is_mobile, user_agent, city, country, created_at
FROM lookup_events
WHERE visitor_id = $1
ORDER BY event_time DESC
LIMIT $2
`, visitorID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select lookup events")
	}
	defer rows.Close()

	var out []*models.LookupEvent
	for rows.Next() {
		var e models.LookupEvent
		if err := rows.Scan(
			&e.ID, &e.EventTime, &e.VisitorID, &e.SearchKind, &e.SearchValue, &e.Outcome, &e.ErrorDetail,
			&e.IsMobile, &e.UserAgent, &e.City, &e.Country, &e.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan lookup event")
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
