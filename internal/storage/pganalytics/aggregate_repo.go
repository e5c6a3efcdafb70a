package pganalytics

import (
	"context"
	"time"

	"github.com/Murali1801/Wareiq-API/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// maxApplyAttempts ограничивает оптимистичные ретраи; агрегат best-effort.
const maxApplyAttempts = 10

var errVersionConflict = errors.New("global_stats version conflict")

// ApplyLookupEvent commits the whole aggregation as one transaction: the
// version-checked stats bump, the visitor profile upsert and the journal
// append. Losing an optimistic race (stats version moved, or a concurrent
// first-sight insert of the same visitor) retries the transaction from the
// read, so unique_visitors rises exactly once per new visitor id.
func (s *Storage) ApplyLookupEvent(ctx context.Context, ev models.LookupEvent) error {
	var lastErr error
	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		err := s.applyOnce(ctx, ev)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
		time.Sleep(time.Duration(10*(attempt+1)) * time.Millisecond)
	}
	return errors.Wrap(lastErr, "apply lookup event: retries exhausted")
}

func (s *Storage) applyOnce(ctx context.Context, ev models.LookupEvent) error {
	now := time.Now().UTC()
	eventTime := ev.EventTime
	if eventTime.IsZero() {
		eventTime = now
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var total, unique, version int64
	err = tx.QueryRow(ctx, `
SELECT total_lookups, unique_visitors, version FROM global_stats WHERE id = 1
`).Scan(&total, &unique, &version)
	if err != nil {
		return errors.Wrap(err, "read global stats")
	}

	var visitCount int64
	newVisitor := false
	err = tx.QueryRow(ctx, `
SELECT visit_count FROM visitor_profiles WHERE visitor_id = $1
`, ev.VisitorID).Scan(&visitCount)
	if err == pgx.ErrNoRows {
		newVisitor = true
	} else if err != nil {
		return errors.Wrap(err, "read visitor profile")
	}

	total++
	if newVisitor {
		unique++
	}

	tag, err := tx.Exec(ctx, `
UPDATE global_stats
SET total_lookups = $1, unique_visitors = $2, last_activity = $3, version = version + 1
WHERE id = 1 AND version = $4
`, total, unique, eventTime, version)
	if err != nil {
		return errors.Wrap(err, "update global stats")
	}
	if tag.RowsAffected() == 0 {
		return errVersionConflict
	}

	device := "desktop"
	if ev.IsMobile {
		device = "mobile"
	}

	if newVisitor {
		// Проигравший параллельную первую вставку получит 23505 и ретрай.
		_, err = tx.Exec(ctx, `
INSERT INTO visitor_profiles (visitor_id, first_seen, last_seen, visit_count, latest_city, latest_country, device)
VALUES ($1, $2, $2, 1, $3, $4, $5)
`, ev.VisitorID, eventTime, ev.City, ev.Country, device)
		if err != nil {
			return errors.Wrap(err, "insert visitor profile")
		}
	} else {
		_, err = tx.Exec(ctx, `
UPDATE visitor_profiles
SET last_seen = $2, visit_count = visit_count + 1, latest_city = $3, latest_country = $4, device = $5
WHERE visitor_id = $1
`, ev.VisitorID, eventTime, ev.City, ev.Country, device)
		if err != nil {
			return errors.Wrap(err, "update visitor profile")
		}
	}

	_, err = tx.Exec(ctx, `
INSERT INTO lookup_events (
  event_time, visitor_id, search_kind, search_value, outcome, error_detail,
  is_mobile, user_agent, city, country, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`, eventTime, ev.VisitorID, ev.SearchKind, ev.SearchValue, ev.Outcome, ev.ErrorDetail,
		ev.IsMobile, ev.UserAgent, ev.City, ev.Country, now)
	if err != nil {
		return errors.Wrap(err, "insert lookup event")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, errVersionConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// unique_violation (проигранная первая вставка) или serialization_failure.
		return pgErr.Code == "23505" || pgErr.Code == "40001"
	}
	return false
}
