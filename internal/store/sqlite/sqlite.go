package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/store"
)

// New opens a SQLite-backed store at the given path.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a SQLite store over an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users     { return &users{db: s.db} }
func (s *sqliteStore) Plans() store.Plans     { return &plans{db: s.db} }
func (s *sqliteStore) Recipes() store.Recipes { return &recipes{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the underlying connection (local-only use case).
func (s *sqliteStore) DB() *sql.DB { return s.db }

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()
	id := m.UserID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, name, email, password_hash, creation_time)
        VALUES (?,?,?,?,?)
    `, id, m.Name, m.Email, m.PasswordHash, now)
	if err != nil {
		return nil, mapErr(err)
	}
	out := *m
	out.UserID = id
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, name, email, password_hash, creation_time
        FROM users WHERE user_id = ?
    `, userID)
	return scanUser(row)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, name, email, password_hash, creation_time
        FROM users WHERE email = ?
    `, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var out model.User
	if err := row.Scan(&out.UserID, &out.Name, &out.Email, &out.PasswordHash, &out.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// --- Plans ---

type plans struct{ db *sql.DB }

func (p *plans) Save(ctx context.Context, ownerID, name string, doc *model.PlanDocument, makeActive bool) (*model.Plan, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Deactivate-others runs first so the single-active invariant holds
	// within this transaction regardless of the upsert branch taken.
	if makeActive {
		if _, err := tx.ExecContext(ctx, `UPDATE diet_plans SET is_active = 0 WHERE owner_id = ?`, ownerID); err != nil {
			return nil, err
		}
	}

	var planID string
	err = tx.QueryRowContext(ctx, `SELECT plan_id FROM diet_plans WHERE owner_id = ? AND plan_name = ?`, ownerID, name).Scan(&planID)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `
            UPDATE diet_plans SET plan_data = ?, is_active = ?, updated_at = ? WHERE plan_id = ?
        `, string(docJSON), boolToInt(makeActive), now, planID); err != nil {
			return nil, err
		}
	case errors.Is(err, sql.ErrNoRows):
		planID = uuid.New().String()
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO diet_plans (plan_id, owner_id, plan_name, plan_data, is_active, updated_at)
            VALUES (?,?,?,?,?,?)
        `, planID, ownerID, name, string(docJSON), boolToInt(makeActive), now); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	// Fan-out: a plan save always refreshes the shared recipe catalog.
	for i := range doc.Library {
		if err := upsertRecipeTx(ctx, tx, ownerID, &doc.Library[i], now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &model.Plan{
		PlanID:    planID,
		OwnerID:   ownerID,
		Name:      name,
		Document:  *doc,
		IsActive:  makeActive,
		UpdatedAt: now,
	}, nil
}

func (p *plans) List(ctx context.Context, ownerID string) ([]*model.PlanSummary, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT plan_id, plan_name, is_active, updated_at
        FROM diet_plans WHERE owner_id = ? ORDER BY updated_at DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.PlanSummary
	for rows.Next() {
		var s model.PlanSummary
		var active int
		if err := rows.Scan(&s.PlanID, &s.Name, &active, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.IsActive = active != 0
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (p *plans) Get(ctx context.Context, ownerID, planID string) (*model.Plan, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT plan_id, plan_name, plan_data, is_active, updated_at
        FROM diet_plans WHERE owner_id = ? AND plan_id = ?
    `, ownerID, planID)
	return scanPlan(row, ownerID)
}

func (p *plans) GetActive(ctx context.Context, ownerID string) (*model.Plan, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT plan_id, plan_name, plan_data, is_active, updated_at
        FROM diet_plans WHERE owner_id = ? AND is_active = 1 LIMIT 1
    `, ownerID)
	return scanPlan(row, ownerID)
}

func (p *plans) Delete(ctx context.Context, ownerID, planID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM diet_plans WHERE owner_id = ? AND plan_id = ?`, ownerID, planID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanPlan(row *sql.Row, ownerID string) (*model.Plan, error) {
	var out model.Plan
	var docJSON string
	var active int
	if err := row.Scan(&out.PlanID, &out.Name, &docJSON, &active, &out.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal([]byte(docJSON), &out.Document); err != nil {
		return nil, err
	}
	out.OwnerID = ownerID
	out.IsActive = active != 0
	return &out, nil
}

// --- Recipes ---

type recipes struct{ db *sql.DB }

func (r *recipes) Upsert(ctx context.Context, ownerID string, rec *model.Recipe) (*model.Recipe, error) {
	now := time.Now().UTC()
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()
	if err := upsertRecipeTx(ctx, tx, ownerID, rec, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out := *rec
	out.OwnerID = ownerID
	out.UpdatedAt = now
	return &out, nil
}

func (r *recipes) Get(ctx context.Context, ownerID, recipeID string) (*model.Recipe, error) {
	var docJSON string
	var updated time.Time
	row := r.db.QueryRowContext(ctx, `
        SELECT doc, updated_at FROM recipes WHERE owner_id = ? AND recipe_id = ?
    `, ownerID, recipeID)
	if err := row.Scan(&docJSON, &updated); err != nil {
		return nil, mapErr(err)
	}
	var out model.Recipe
	if err := json.Unmarshal([]byte(docJSON), &out); err != nil {
		return nil, err
	}
	out.OwnerID = ownerID
	out.UpdatedAt = updated
	return &out, nil
}

func (r *recipes) List(ctx context.Context, ownerID string) ([]*model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT doc, updated_at FROM recipes WHERE owner_id = ? ORDER BY recipe_id
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Recipe
	for rows.Next() {
		var docJSON string
		var updated time.Time
		if err := rows.Scan(&docJSON, &updated); err != nil {
			return nil, err
		}
		var rec model.Recipe
		if err := json.Unmarshal([]byte(docJSON), &rec); err != nil {
			return nil, err
		}
		rec.OwnerID = ownerID
		rec.UpdatedAt = updated
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// upsertRecipeTx is the per-identifier write shared by Recipes().Upsert and
// the plan save fan-out. Last writer wins on (owner_id, recipe_id).
func upsertRecipeTx(ctx context.Context, tx *sql.Tx, ownerID string, rec *model.Recipe, now time.Time) error {
	docJSON, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
        INSERT INTO recipes (owner_id, recipe_id, name, category, doc, updated_at)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT (owner_id, recipe_id)
        DO UPDATE SET name = excluded.name, category = excluded.category,
                      doc = excluded.doc, updated_at = excluded.updated_at
    `, ownerID, rec.RecipeID, rec.Name, rec.Category, string(docJSON), now)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
