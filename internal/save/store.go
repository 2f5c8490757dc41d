package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"github.com/samdwyer/dualcrawl/internal/save/migrations"
	"github.com/samdwyer/dualcrawl/internal/stats"
	"github.com/samdwyer/dualcrawl/internal/telemetry"
)

// ErrNotFound reports a missing save slot.
var ErrNotFound = errors.New("save slot not found")

// Store persists save slots and finished runs in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	tracer trace.Tracer
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("save path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{
		db:     db,
		logger: logger.With("component", "save"),
		tracer: telemetry.Tracer("save"),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SlotInfo summarises one save slot.
type SlotInfo struct {
	Slot      string
	SessionID string
	State     string
	Level     int
	SavedAt   time.Time
}

// SaveSlot writes snap into slot, replacing what was there.
func (s *Store) SaveSlot(ctx context.Context, slot string, snap Snapshot) error {
	ctx, span := s.tracer.Start(ctx, "save.store")
	defer span.End()
	span.SetAttributes(attribute.String("slot", slot), attribute.Int("level.number", snap.Level.Number))

	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(slot) == "" {
		return fmt.Errorf("slot name is required")
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO save_slots (slot, session_id, version, state, level, snapshot, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   session_id = excluded.session_id,
		   version = excluded.version,
		   state = excluded.state,
		   level = excluded.level,
		   snapshot = excluded.snapshot,
		   saved_at = excluded.saved_at`,
		slot, snap.SessionID, snap.Version, snap.ResolveState().String(), snap.Level.Number, data, toMillis(snap.SavedAt),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("save slot %q: %w", slot, err)
	}
	s.logger.DebugContext(ctx, "slot saved", "slot", slot, "level", snap.Level.Number, "bytes", len(data))
	return nil
}

// LoadSlot reads the snapshot in slot. It returns ErrNotFound for an empty slot.
func (s *Store) LoadSlot(ctx context.Context, slot string) (Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "save.load")
	defer span.End()
	span.SetAttributes(attribute.String("slot", slot))

	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM save_slots WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, fmt.Errorf("load slot %q: %w", slot, err)
	}
	snap, err := Decode(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, fmt.Errorf("load slot %q: %w", slot, err)
	}
	return snap, nil
}

// DeleteSlot removes slot. Deleting an empty slot is not an error.
func (s *Store) DeleteSlot(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM save_slots WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("delete slot %q: %w", slot, err)
	}
	return nil
}

// ListSlots returns every slot, most recently saved first.
func (s *Store) ListSlots(ctx context.Context) ([]SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, session_id, state, level, saved_at FROM save_slots ORDER BY saved_at DESC, slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var savedAt int64
		if err := rows.Scan(&info.Slot, &info.SessionID, &info.State, &info.Level, &savedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		info.SavedAt = fromMillis(savedAt)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return out, nil
}

// Run is one finished game on the leaderboard.
type Run struct {
	ID        int64
	SessionID string
	Victory   bool
	Level     int
	Treasure  int
	Enemies   int
	Reason    string
	Stats     stats.Statistics
	EndedAt   time.Time
}

// RecordRun appends run to the leaderboard and returns its id.
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if run.EndedAt.IsZero() {
		run.EndedAt = time.Now().UTC()
	}
	blob, err := json.Marshal(run.Stats)
	if err != nil {
		return 0, fmt.Errorf("encode run stats: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (session_id, victory, level, treasure, enemies_defeated, reason, stats, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.SessionID, run.Victory, run.Level, run.Treasure, run.Enemies, run.Reason, string(blob), toMillis(run.EndedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	s.logger.InfoContext(ctx, "run recorded", "id", id, "victory", run.Victory, "level", run.Level, "treasure", run.Treasure)
	return id, nil
}

// TopRuns returns up to limit runs ranked by treasure, then depth, then age.
func (s *Store) TopRuns(ctx context.Context, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, victory, level, treasure, enemies_defeated, reason, stats, ended_at
		 FROM runs
		 ORDER BY treasure DESC, level DESC, ended_at ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var blob string
		var endedAt int64
		if err := rows.Scan(&run.ID, &run.SessionID, &run.Victory, &run.Level, &run.Treasure,
			&run.Enemies, &run.Reason, &blob, &endedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &run.Stats); err != nil {
			return nil, fmt.Errorf("decode run %d stats: %w", run.ID, err)
		}
		run.EndedAt = fromMillis(endedAt)
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top runs: %w", err)
	}
	return out, nil
}
