package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zjrosen/bloom/internal/garden"
	"github.com/zjrosen/bloom/internal/session"
)

const elementColumns = `id, kind, x, y, size, rotation, color, grow_time_ms, intention, created_at`

// gardenStore implements garden.Store.
type gardenStore struct {
	db *sql.DB
}

func newGardenStore(db *sql.DB) *gardenStore {
	return &gardenStore{db: db}
}

var _ garden.Store = (*gardenStore)(nil)

func scanElement(scanner interface{ Scan(...any) error }) (garden.Element, error) {
	var (
		e         garden.Element
		kind      string
		growMS    int64
		createdAt int64
	)
	err := scanner.Scan(&e.ID, &kind, &e.X, &e.Y, &e.Size, &e.Rotation, &e.Color, &growMS, &e.Intention, &createdAt)
	e.Kind = garden.Kind(kind)
	e.GrowTime = time.Duration(growMS) * time.Millisecond
	e.CreatedAt = time.UnixMilli(createdAt)
	return e, err
}

// Load reads every element, oldest first, and the session tally.
func (s *gardenStore) Load(ctx context.Context) (garden.Oasis, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+elementColumns+` FROM oasis_elements ORDER BY created_at, rowid`)
	if err != nil {
		return garden.Oasis{}, fmt.Errorf("failed to query oasis elements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var oasis garden.Oasis
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return garden.Oasis{}, fmt.Errorf("failed to scan oasis element: %w", err)
		}
		oasis.Elements = append(oasis.Elements, e)
	}
	if err := rows.Err(); err != nil {
		return garden.Oasis{}, fmt.Errorf("failed to iterate oasis elements: %w", err)
	}

	var last sql.NullInt64
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*), MAX(completed_at) FROM oasis_sessions`).
		Scan(&oasis.TotalSessions, &last)
	if err != nil {
		return garden.Oasis{}, fmt.Errorf("failed to count oasis sessions: %w", err)
	}
	if last.Valid {
		oasis.LastSessionAt = time.UnixMilli(last.Int64)
	}
	return oasis, nil
}

// AddElements inserts elements in one transaction.
func (s *gardenStore) AddElements(ctx context.Context, elements ...garden.Element) error {
	if len(elements) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO oasis_elements (`+elementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare element insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range elements {
		_, err := stmt.ExecContext(ctx,
			e.ID, string(e.Kind), e.X, e.Y, e.Size, e.Rotation, e.Color,
			e.GrowTime.Milliseconds(), e.Intention, e.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert element %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit elements: %w", err)
	}
	return nil
}

// RecordSession appends a completed session.
func (s *gardenStore) RecordSession(ctx context.Context, c session.Completion) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO oasis_sessions (intention, pattern_name, cycles_completed, duration_seconds, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Intention, c.PatternName, c.CyclesCompleted, c.DurationSeconds,
		c.StartedAt.UnixMilli(), c.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record oasis session: %w", err)
	}
	return nil
}
