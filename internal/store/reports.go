package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/parley/internal/composer"
	"github.com/MikeSquared-Agency/parley/internal/errs"
)

// ReportRow is an archived session report.
type ReportRow struct {
	ID                 uuid.UUID       `json:"id"`
	SessionID          uuid.UUID       `json:"session_id"`
	TotalLines         int             `json:"total_lines"`
	CharactersAnalyzed int             `json:"characters_analyzed"`
	Report             composer.Report `json:"report"`
	ArchivedAt         time.Time       `json:"archived_at"`
}

// SaveReport archives a snapshot of a session's report and returns its id.
func (s *Store) SaveReport(ctx context.Context, sessionID uuid.UUID, rep composer.Report) (uuid.UUID, error) {
	payload, err := json.Marshal(rep)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal report: %w", err)
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO analysis_reports (id, session_id, total_lines, characters_analyzed, report)
		VALUES ($1, $2, $3, $4, $5)`,
		id, sessionID, rep.TotalLines, rep.CharactersAnalyzed, payload,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert report: %w", err)
	}
	return id, nil
}

// LatestReport returns the most recent archived report for a session.
func (s *Store) LatestReport(ctx context.Context, sessionID uuid.UUID) (*ReportRow, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, total_lines, characters_analyzed, report, archived_at
		FROM analysis_reports WHERE session_id = $1
		ORDER BY archived_at DESC LIMIT 1`, sessionID)

	r, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("no archived report for session %s", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("query latest report: %w", err)
	}
	return r, nil
}

// ListReports returns a session's archived reports, newest first.
func (s *Store) ListReports(ctx context.Context, sessionID uuid.UUID, limit int) ([]ReportRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, total_lines, characters_analyzed, report, archived_at
		FROM analysis_reports WHERE session_id = $1
		ORDER BY archived_at DESC LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanReport(row pgx.Row) (*ReportRow, error) {
	var r ReportRow
	var payload []byte
	if err := row.Scan(&r.ID, &r.SessionID, &r.TotalLines, &r.CharactersAnalyzed, &payload, &r.ArchivedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &r.Report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
