package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users     { return &users{db: s.db} }
func (s *pgStore) Plans() store.Plans     { return &plans{db: s.db} }
func (s *pgStore) Recipes() store.Recipes { return &recipes{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the underlying *sql.DB.
func (s *pgStore) DB() *sql.DB { return s.db }

// Bootstrap verifies connectivity and applies the idempotent schema from
// schema.sql. Intended for dev and test databases; production schema is
// owned by deployment migrations.
func Bootstrap(ctx context.Context, dsn string) error {
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	for _, stmt := range DefaultDDLStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	id := m.UserID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, name, email, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, id, m.Name, m.Email, m.PasswordHash)
	if err := row.Scan(&created); err != nil {
		return nil, mapErr(err)
	}
	out := *m
	out.UserID = id
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, name, email, password_hash, creation_time
        FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.Name, &out.Email, &out.PasswordHash, &out.CreationTime); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, name, email, password_hash, creation_time
        FROM users WHERE email=$1
    `, email)
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

	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Deactivate-others runs before the upsert so the single-active
	// invariant holds at commit for this transaction.
	if makeActive {
		if _, err := tx.ExecContext(ctx, `UPDATE diet_plans SET is_active = FALSE WHERE owner_id = $1`, ownerID); err != nil {
			return nil, err
		}
	}

	var planID string
	var updated time.Time
	err = tx.QueryRowContext(ctx, `SELECT plan_id FROM diet_plans WHERE owner_id=$1 AND plan_name=$2`, ownerID, name).Scan(&planID)
	switch {
	case err == nil:
		if err := tx.QueryRowContext(ctx, `
            UPDATE diet_plans SET plan_data=$1, is_active=$2, updated_at=now()
            WHERE plan_id=$3
            RETURNING updated_at
        `, docJSON, makeActive, planID).Scan(&updated); err != nil {
			return nil, err
		}
	case errors.Is(err, sql.ErrNoRows):
		planID = uuid.New().String()
		if err := tx.QueryRowContext(ctx, `
            INSERT INTO diet_plans (plan_id, owner_id, plan_name, plan_data, is_active)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING updated_at
        `, planID, ownerID, name, docJSON, makeActive).Scan(&updated); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	// Fan-out: refresh the shared recipe catalog from the document library.
	for i := range doc.Library {
		if err := upsertRecipeTx(ctx, tx, ownerID, &doc.Library[i]); err != nil {
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
		UpdatedAt: updated,
	}, nil
}

func (p *plans) List(ctx context.Context, ownerID string) ([]*model.PlanSummary, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT plan_id, plan_name, is_active, updated_at
        FROM diet_plans WHERE owner_id=$1 ORDER BY updated_at DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.PlanSummary
	for rows.Next() {
		var s model.PlanSummary
		if err := rows.Scan(&s.PlanID, &s.Name, &s.IsActive, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (p *plans) Get(ctx context.Context, ownerID, planID string) (*model.Plan, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT plan_id, plan_name, plan_data, is_active, updated_at
        FROM diet_plans WHERE owner_id=$1 AND plan_id=$2
    `, ownerID, planID)
	return scanPlan(row, ownerID)
}

func (p *plans) GetActive(ctx context.Context, ownerID string) (*model.Plan, error) {
	row := p.db.QueryRowContext(ctx, `
        SELECT plan_id, plan_name, plan_data, is_active, updated_at
        FROM diet_plans WHERE owner_id=$1 AND is_active LIMIT 1
    `, ownerID)
	return scanPlan(row, ownerID)
}

func (p *plans) Delete(ctx context.Context, ownerID, planID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM diet_plans WHERE owner_id=$1 AND plan_id=$2`, ownerID, planID)
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
	var docJSON []byte
	if err := row.Scan(&out.PlanID, &out.Name, &docJSON, &out.IsActive, &out.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(docJSON, &out.Document); err != nil {
		return nil, err
	}
	out.OwnerID = ownerID
	return &out, nil
}

// --- Recipes ---

type recipes struct{ db *sql.DB }

func (r *recipes) Upsert(ctx context.Context, ownerID string, rec *model.Recipe) (*model.Recipe, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()
	if err := upsertRecipeTx(ctx, tx, ownerID, rec); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out := *rec
	out.OwnerID = ownerID
	return &out, nil
}

func (r *recipes) Get(ctx context.Context, ownerID, recipeID string) (*model.Recipe, error) {
	var docJSON []byte
	var updated time.Time
	row := r.db.QueryRowContext(ctx, `
        SELECT doc, updated_at FROM recipes WHERE owner_id=$1 AND recipe_id=$2
    `, ownerID, recipeID)
	if err := row.Scan(&docJSON, &updated); err != nil {
		return nil, mapErr(err)
	}
	var out model.Recipe
	if err := json.Unmarshal(docJSON, &out); err != nil {
		return nil, err
	}
	out.OwnerID = ownerID
	out.UpdatedAt = updated
	return &out, nil
}

func (r *recipes) List(ctx context.Context, ownerID string) ([]*model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT doc, updated_at FROM recipes WHERE owner_id=$1 ORDER BY recipe_id
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Recipe
	for rows.Next() {
		var docJSON []byte
		var updated time.Time
		if err := rows.Scan(&docJSON, &updated); err != nil {
			return nil, err
		}
		var rec model.Recipe
		if err := json.Unmarshal(docJSON, &rec); err != nil {
			return nil, err
		}
		rec.OwnerID = ownerID
		rec.UpdatedAt = updated
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func upsertRecipeTx(ctx context.Context, tx *sql.Tx, ownerID string, rec *model.Recipe) error {
	docJSON, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
        INSERT INTO recipes (owner_id, recipe_id, name, category, doc, updated_at)
        VALUES ($1,$2,$3,$4,$5,now())
        ON CONFLICT (owner_id, recipe_id)
        DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,
                      doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
    `, ownerID, rec.RecipeID, rec.Name, rec.Category, docJSON)
	return err
}
