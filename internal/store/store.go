package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mosgamer/promptplay/internal/model"
)

// Verify at compile time that Store implements all interfaces.
var (
	_ ArtifactReader     = (*Store)(nil)
	_ ArtifactWriter     = (*Store)(nil)
	_ AnalysisUpdater    = (*Store)(nil)
	_ ArtifactRepository = (*Store)(nil)
)

// Store provides data access to the SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate brings the schema to its current shape. The migration is additive
// and idempotent: the base table is created if absent, then each optional
// column is added only when missing, so databases written by any earlier
// schema keep working unchanged.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id          TEXT PRIMARY KEY,
		prompt      TEXT NOT NULL,
		document    TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		votes       INTEGER NOT NULL DEFAULT 0,
		complexity  INTEGER NOT NULL DEFAULT 0,
		user_rating INTEGER,
		tags        TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_created ON artifacts(created_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create artifacts table: %w", err)
	}

	existing, err := s.columnSet("artifacts")
	if err != nil {
		return fmt.Errorf("inspect artifacts columns: %w", err)
	}

	// Columns added after the original two-column (prompt, document) schema.
	additions := []struct {
		name string
		ddl  string
	}{
		{"title", `ALTER TABLE artifacts ADD COLUMN title TEXT NOT NULL DEFAULT ''`},
		{"votes", `ALTER TABLE artifacts ADD COLUMN votes INTEGER NOT NULL DEFAULT 0`},
		{"complexity", `ALTER TABLE artifacts ADD COLUMN complexity INTEGER NOT NULL DEFAULT 0`},
		{"user_rating", `ALTER TABLE artifacts ADD COLUMN user_rating INTEGER`},
		{"tags", `ALTER TABLE artifacts ADD COLUMN tags TEXT NOT NULL DEFAULT ''`},
	}
	for _, a := range additions {
		if existing[a.name] {
			continue
		}
		if _, err := s.db.Exec(a.ddl); err != nil {
			return fmt.Errorf("add column %s: %w", a.name, err)
		}
	}
	return nil
}

// columnSet returns the names of the columns currently on a table.
func (s *Store) columnSet(table string) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Insert persists a new artifact. Every generation produces a fresh row;
// improvements never overwrite the row they started from.
func (s *Store) Insert(ctx context.Context, a model.Artifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, prompt, document, title, votes, complexity, user_rating, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Prompt, a.Document, a.Title, a.Votes, a.Complexity,
		ratingValue(a.UserRating), model.JoinTags(a.Tags), a.CreatedAt,
	)
	return err
}

// Get returns a single artifact including its document body.
func (s *Store) Get(ctx context.Context, id string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, prompt, document, title, votes, complexity, user_rating, tags, created_at
		FROM artifacts WHERE id = ?`, id)
	return scanArtifact(row)
}

// List returns summaries of all artifacts, newest first. Document bodies are
// excluded to keep listings cheap.
func (s *Store) List(ctx context.Context) ([]model.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, title, votes, complexity, user_rating, tags, created_at
		FROM artifacts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []model.Summary{}
	for rows.Next() {
		var sm model.Summary
		var rating sql.NullInt64
		var tags string
		if err := rows.Scan(&sm.ID, &sm.Prompt, &sm.Title, &sm.Votes, &sm.Complexity, &rating, &tags, &sm.CreatedAt); err != nil {
			return nil, err
		}
		sm.UserRating = ratingPtr(rating)
		sm.Tags = model.SplitTags(tags)
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

// Delete removes an artifact. It reports whether a row existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	return s.exec(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
}

// Rename updates an artifact's title. It reports whether a row existed.
func (s *Store) Rename(ctx context.Context, id, title string) (bool, error) {
	return s.exec(ctx, `UPDATE artifacts SET title = ? WHERE id = ?`, title, id)
}

// AdjustVotes applies a vote delta. It reports whether a row existed.
func (s *Store) AdjustVotes(ctx context.Context, id string, delta int) (bool, error) {
	return s.exec(ctx, `UPDATE artifacts SET votes = votes + ? WHERE id = ?`, delta, id)
}

// SetUserRating records the user's star rating. It reports whether a row
// existed.
func (s *Store) SetUserRating(ctx context.Context, id string, rating int) (bool, error) {
	return s.exec(ctx, `UPDATE artifacts SET user_rating = ? WHERE id = ?`, rating, id)
}

// SetComplexity overwrites the stored complexity rating.
func (s *Store) SetComplexity(ctx context.Context, id string, value int) (bool, error) {
	return s.exec(ctx, `UPDATE artifacts SET complexity = ? WHERE id = ?`, value, id)
}

// SetTags overwrites the stored tag list.
func (s *Store) SetTags(ctx context.Context, id string, tags []string) (bool, error) {
	return s.exec(ctx, `UPDATE artifacts SET tags = ? WHERE id = ?`, model.JoinTags(tags), id)
}

// MissingComplexity returns the id and document of every artifact that has
// never been scored.
func (s *Store) MissingComplexity(ctx context.Context) ([]model.Artifact, error) {
	return s.partial(ctx, `SELECT id, document, '' FROM artifacts WHERE complexity = 0`)
}

// MissingTags returns the id and prompt of every artifact that has never been
// classified.
func (s *Store) MissingTags(ctx context.Context) ([]model.Artifact, error) {
	return s.partial(ctx, `SELECT id, '', prompt FROM artifacts WHERE tags = ''`)
}

func (s *Store) partial(ctx context.Context, query string) ([]model.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Artifact
	for rows.Next() {
		var a model.Artifact
		if err := rows.Scan(&a.ID, &a.Document, &a.Prompt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// exec runs a single-row write and reports whether it affected a row.
func (s *Store) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row scanner) (*model.Artifact, error) {
	var a model.Artifact
	var rating sql.NullInt64
	var tags string
	err := row.Scan(&a.ID, &a.Prompt, &a.Document, &a.Title, &a.Votes, &a.Complexity, &rating, &tags, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.UserRating = ratingPtr(rating)
	a.Tags = model.SplitTags(tags)
	return &a, nil
}

func ratingValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func ratingPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
