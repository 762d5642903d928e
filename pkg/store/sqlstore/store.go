// Package sqlstore implements animal.Store on database/sql. It supports an
// embedded SQLite file (modernc.org/sqlite, no cgo) and PostgreSQL through
// the pgx stdlib driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/errors"
)

const timeLayout = time.RFC3339Nano

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Store implements animal.Store on a SQL database.
type Store struct {
	db      *sql.DB
	dialect dialect
}

var _ animal.Store = (*Store)(nil)

// Open connects to the database, verifies the connection and creates the
// schema if it does not exist. For sqlite, dsn is a file path and parent
// directories are created.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown sql driver %q (use sqlite or postgres)", driver)
	}
	if driver == DriverSQLite {
		if dsn == "" {
			dsn = "pedigree.db"
		}
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
	}
	db, err := sql.Open(d.sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// Single connection: sqlite allows one writer and the foreign key
		// pragma is per connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s := &Store{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if s.dialect.name == DriverSQLite {
		if _, err := s.db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			return fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

const animalColumns = `id, identifier, name, gender, birth_date, type_id, type_name,
	mother_id, father_id, is_active, description, notes, created_at, updated_at`

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) GetAnimal(ctx context.Context, id string) (*animal.Record, error) {
	recs, err := s.selectAnimals(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, animal.NotFound("animal", id)
	}
	return recs[0], nil
}

// GetAnimals fetches all ids in a single query.
func (s *Store) GetAnimals(ctx context.Context, ids []string) ([]*animal.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.selectAnimals(ctx, `SELECT `+animalColumns+` FROM animals WHERE id IN (`+placeholders(len(ids))+`)`, args...)
}

func (s *Store) ListAnimals(ctx context.Context, f animal.Filter) ([]*animal.Record, error) {
	var where []string
	var args []any
	if f.TypeID != "" {
		where = append(where, "type_id = ?")
		args = append(args, f.TypeID)
	}
	if f.Active != nil {
		where = append(where, "is_active = ?")
		args = append(args, *f.Active)
	}
	if f.Search != "" {
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(identifier) LIKE ? ESCAPE '\')`)
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		args = append(args, pattern, pattern)
	}
	q := `SELECT ` + animalColumns + ` FROM animals`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return s.selectAnimals(ctx, q+" ORDER BY identifier", args...)
}

func (s *Store) Children(ctx context.Context, id string) ([]*animal.Record, error) {
	return s.selectAnimals(ctx, `SELECT `+animalColumns+` FROM animals WHERE mother_id = ? OR father_id = ?`, id, id)
}

func (s *Store) InsertAnimal(ctx context.Context, r *animal.Record) error {
	_, err := s.exec(ctx, `INSERT INTO animals (`+animalColumns+`) VALUES (`+placeholders(14)+`)`, animalArgs(r)...)
	return s.writeErr(err, r)
}

func (s *Store) ReplaceAnimal(ctx context.Context, r *animal.Record) error {
	args := animalArgs(r)
	res, err := s.exec(ctx, `UPDATE animals SET identifier = ?, name = ?, gender = ?, birth_date = ?,
		type_id = ?, type_name = ?, mother_id = ?, father_id = ?, is_active = ?, description = ?,
		notes = ?, created_at = ?, updated_at = ? WHERE id = ?`, append(args[1:], r.ID)...)
	if err != nil {
		return s.writeErr(err, r)
	}
	return mustAffect(res, "animal", r.ID)
}

func (s *Store) RemoveAnimal(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM animals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete animal: %w", err)
	}
	return mustAffect(res, "animal", id)
}

func (s *Store) InsertType(ctx context.Context, t *animal.Type) error {
	_, err := s.exec(ctx, `INSERT INTO animal_types (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		if s.dialect.isUnique(err) {
			return errors.New(errors.ErrCodeConflict, "animal type %q already exists", t.Name)
		}
		return fmt.Errorf("insert animal type: %w", err)
	}
	return nil
}

func (s *Store) GetType(ctx context.Context, id string) (*animal.Type, error) {
	types, err := s.selectTypes(ctx, `SELECT id, name, description, created_at FROM animal_types WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, animal.NotFound("animal type", id)
	}
	return types[0], nil
}

func (s *Store) ListTypes(ctx context.Context) ([]*animal.Type, error) {
	return s.selectTypes(ctx, `SELECT id, name, description, created_at FROM animal_types ORDER BY name`)
}

func (s *Store) writeErr(err error, r *animal.Record) error {
	if err == nil {
		return nil
	}
	if s.dialect.isUnique(err) {
		return errors.New(errors.ErrCodeConflict, "identifier %q is already used by another %s", r.Identifier, r.TypeName)
	}
	return fmt.Errorf("write animal: %w", err)
}

func mustAffect(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return animal.NotFound(kind, id)
	}
	return nil
}

func animalArgs(r *animal.Record) []any {
	var birth any
	if r.BirthDate != nil {
		birth = r.BirthDate.String()
	}
	return []any{
		r.ID, r.Identifier, r.Name, string(r.Gender), birth, r.TypeID, r.TypeName,
		nullable(r.MotherID), nullable(r.FatherID), r.Active, r.Description, r.Notes,
		r.CreatedAt.UTC().Format(timeLayout), r.UpdatedAt.UTC().Format(timeLayout),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) selectAnimals(ctx context.Context, query string, args ...any) ([]*animal.Record, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select animals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*animal.Record
	for rows.Next() {
		var (
			r                animal.Record
			gender           string
			birth, mom, dad  sql.NullString
			created, updated string
		)
		if err := rows.Scan(&r.ID, &r.Identifier, &r.Name, &gender, &birth, &r.TypeID, &r.TypeName,
			&mom, &dad, &r.Active, &r.Description, &r.Notes, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan animal: %w", err)
		}
		r.Gender = animal.Gender(gender)
		r.MotherID = mom.String
		r.FatherID = dad.String
		if birth.Valid {
			d, err := animal.ParseDate(birth.String)
			if err != nil {
				return nil, fmt.Errorf("animal %s: %w", r.ID, err)
			}
			r.BirthDate = &d
		}
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if r.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Store) selectTypes(ctx context.Context, query string, args ...any) ([]*animal.Type, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select animal types: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*animal.Type
	for rows.Next() {
		var (
			t       animal.Type
			created string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &created); err != nil {
			return nil, fmt.Errorf("scan animal type: %w", err)
		}
		if t.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp: %w", err)
	}
	return t, nil
}
