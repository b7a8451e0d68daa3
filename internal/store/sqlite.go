package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/cjeanneret/PlanCam/internal/plan"
	"github.com/cjeanneret/PlanCam/internal/plan/geometry"
)

const schema = `
CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS cameras (
	id       TEXT PRIMARY KEY,
	plan_id  TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
	name     TEXT NOT NULL,
	center_x REAL NOT NULL,
	center_y REAL NOT NULL,
	settings TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS walls (
	id      TEXT PRIMARY KEY,
	plan_id TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
	x1 REAL NOT NULL, y1 REAL NOT NULL,
	x2 REAL NOT NULL, y2 REAL NOT NULL
);
`

// SQLiteStore persists plans in a local sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the plan database at path and
// bootstraps the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SavePlan writes the plan and replaces its cameras and walls.
func (s *SQLiteStore) SavePlan(ctx context.Context, p *plan.Plan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO plans (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, p.ID.String(), p.Name); err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cameras WHERE plan_id = ?`, p.ID.String()); err != nil {
		return fmt.Errorf("clear cameras: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM walls WHERE plan_id = ?`, p.ID.String()); err != nil {
		return fmt.Errorf("clear walls: %w", err)
	}

	for i := range p.Cameras {
		if err := insertCamera(ctx, tx, p.ID, &p.Cameras[i]); err != nil {
			return err
		}
	}
	for _, w := range p.Walls {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO walls (id, plan_id, x1, y1, x2, y2) VALUES (?, ?, ?, ?, ?, ?)
		`, w.ID.String(), p.ID.String(),
			w.Segment.P1.X, w.Segment.P1.Y, w.Segment.P2.X, w.Segment.P2.Y); err != nil {
			return fmt.Errorf("insert wall: %w", err)
		}
	}

	return tx.Commit()
}

func insertCamera(ctx context.Context, tx *sql.Tx, planID uuid.UUID, cam *plan.Camera) error {
	blob, err := json.Marshal(cam.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cameras (id, plan_id, name, center_x, center_y, settings)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			center_x = excluded.center_x,
			center_y = excluded.center_y,
			settings = excluded.settings
	`, cam.ID.String(), planID.String(), cam.Name, cam.Center.X, cam.Center.Y, string(blob)); err != nil {
		return fmt.Errorf("upsert camera: %w", err)
	}
	return nil
}

// GetPlan loads a plan with its cameras and walls.
func (s *SQLiteStore) GetPlan(ctx context.Context, id uuid.UUID) (*plan.Plan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name FROM plans WHERE id = ?`, id.String())

	var idStr, name string
	if err := row.Scan(&idStr, &name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}

	p := &plan.Plan{ID: id, Name: name}

	camRows, err := s.db.QueryContext(ctx, `
		SELECT id, name, center_x, center_y, settings FROM cameras WHERE plan_id = ?
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query cameras: %w", err)
	}
	defer camRows.Close()
	for camRows.Next() {
		var cam plan.Camera
		var camID, blob string
		if err := camRows.Scan(&camID, &cam.Name, &cam.Center.X, &cam.Center.Y, &blob); err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cam.ID, err = uuid.Parse(camID)
		if err != nil {
			return nil, fmt.Errorf("parse camera id: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &cam.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
		p.Cameras = append(p.Cameras, cam)
	}
	if err := camRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cameras: %w", err)
	}

	wallRows, err := s.db.QueryContext(ctx, `
		SELECT id, x1, y1, x2, y2 FROM walls WHERE plan_id = ?
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("query walls: %w", err)
	}
	defer wallRows.Close()
	for wallRows.Next() {
		var w plan.Wall
		var wallID string
		var seg geometry.WallSegment
		if err := wallRows.Scan(&wallID, &seg.P1.X, &seg.P1.Y, &seg.P2.X, &seg.P2.Y); err != nil {
			return nil, fmt.Errorf("scan wall: %w", err)
		}
		w.ID, err = uuid.Parse(wallID)
		if err != nil {
			return nil, fmt.Errorf("parse wall id: %w", err)
		}
		w.Segment = seg
		p.Walls = append(p.Walls, w)
	}
	if err := wallRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate walls: %w", err)
	}

	return p, nil
}

// ListPlans returns summaries of all stored plans.
func (s *SQLiteStore) ListPlans(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name,
			(SELECT COUNT(*) FROM cameras c WHERE c.plan_id = p.id),
			(SELECT COUNT(*) FROM walls w WHERE w.plan_id = p.id)
		FROM plans p ORDER BY p.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var idStr string
		if err := rows.Scan(&idStr, &sum.Name, &sum.Cameras, &sum.Walls); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse plan id: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeletePlan removes a plan and, via cascade, its cameras and walls.
func (s *SQLiteStore) DeletePlan(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveCamera upserts a single camera, e.g. after a completed drag.
func (s *SQLiteStore) SaveCamera(ctx context.Context, planID uuid.UUID, cam *plan.Camera) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM plans WHERE id = ?`, planID.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check plan: %w", err)
	}

	if err := insertCamera(ctx, tx, planID, cam); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
