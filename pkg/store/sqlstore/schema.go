package sqlstore

// Timestamps and birth dates are stored as text so both dialects read them
// back identically.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS animal_types (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS animals (
		id          TEXT PRIMARY KEY,
		identifier  TEXT NOT NULL,
		name        TEXT NOT NULL DEFAULT '',
		gender      TEXT NOT NULL,
		birth_date  TEXT,
		type_id     TEXT NOT NULL REFERENCES animal_types(id),
		type_name   TEXT NOT NULL DEFAULT '',
		mother_id   TEXT,
		father_id   TEXT,
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT NOT NULL DEFAULT '',
		notes       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		UNIQUE (type_id, identifier)
	)`,
	`CREATE INDEX IF NOT EXISTS animals_mother_idx ON animals (mother_id)`,
	`CREATE INDEX IF NOT EXISTS animals_father_idx ON animals (father_id)`,
}
