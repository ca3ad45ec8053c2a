package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		statements := []string{
			`
			CREATE TABLE roles (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				is_system BOOLEAN NOT NULL DEFAULT FALSE
			)
`,
			`CREATE UNIQUE INDEX ux_roles_name ON roles (name COLLATE NOCASE)`,
			`
			CREATE TABLE permissions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				role_id INTEGER REFERENCES roles (id) ON DELETE CASCADE NOT NULL,
				resource TEXT NOT NULL,
				operation TEXT NOT NULL
			)
`,
			`CREATE UNIQUE INDEX ux_permissions_role_resource_operation ON permissions (role_id, resource, operation)`,
			`
			CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				username TEXT NOT NULL,
				email TEXT,
				password_hash TEXT NOT NULL,
				role_id INTEGER REFERENCES roles (id) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				must_change_password BOOLEAN NOT NULL DEFAULT FALSE
			)
`,
			`CREATE UNIQUE INDEX ux_users_username ON users (username COLLATE NOCASE)`,
			`CREATE UNIQUE INDEX ux_users_email ON users (email COLLATE NOCASE) WHERE email IS NOT NULL`,
			`
			CREATE TABLE profiles (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				date_of_birth TIMESTAMPTZ,
				photo TEXT
			)
`,
			`CREATE UNIQUE INDEX ux_profiles_user_id ON profiles (user_id)`,
			`
			CREATE TABLE authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				first_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL,
				date_of_birth TIMESTAMPTZ,
				date_of_death TIMESTAMPTZ
			)
`,
			`CREATE INDEX ix_authors_name ON authors (last_name, first_name)`,
			`
			CREATE TABLE genres (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL
			)
`,
			`CREATE UNIQUE INDEX ux_genres_name ON genres (name COLLATE NOCASE)`,
			`
			CREATE TABLE locations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				owner_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				title TEXT NOT NULL,
				parent_id INTEGER REFERENCES locations (id) ON DELETE CASCADE,
				is_leaf BOOLEAN NOT NULL DEFAULT FALSE
			)
`,
			`CREATE INDEX ix_locations_owner_id ON locations (owner_id)`,
			`CREATE INDEX ix_locations_parent_id ON locations (parent_id)`,
			`
			CREATE TABLE book_copies (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				title TEXT NOT NULL,
				author_id INTEGER REFERENCES authors (id) ON DELETE SET NULL,
				summary TEXT NOT NULL DEFAULT '',
				isbn TEXT,
				loan_start_date TIMESTAMPTZ,
				reserved_at TIMESTAMPTZ,
				owner_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				loaner_id INTEGER REFERENCES users (id) ON DELETE SET NULL,
				location_id INTEGER REFERENCES locations (id) ON DELETE SET NULL,
				cover_image TEXT,
				status TEXT NOT NULL DEFAULT 'available'
			)
`,
			`CREATE INDEX ix_book_copies_status ON book_copies (status)`,
			`CREATE INDEX ix_book_copies_owner_id ON book_copies (owner_id)`,
			`CREATE INDEX ix_book_copies_loaner_id ON book_copies (loaner_id)`,
			`CREATE INDEX ix_book_copies_author_id ON book_copies (author_id)`,
			`CREATE INDEX ix_book_copies_location_id ON book_copies (location_id)`,
			`
			CREATE TABLE book_copy_genres (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_copy_id TEXT REFERENCES book_copies (id) ON DELETE CASCADE NOT NULL,
				genre_id INTEGER REFERENCES genres (id) ON DELETE CASCADE NOT NULL
			)
`,
			`CREATE UNIQUE INDEX ux_book_copy_genres ON book_copy_genres (book_copy_id, genre_id)`,
			`CREATE INDEX ix_book_copy_genres_genre_id ON book_copy_genres (genre_id)`,
			`
			CREATE TABLE history_entries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_copy_id TEXT REFERENCES book_copies (id) ON DELETE SET NULL,
				loaner_id INTEGER REFERENCES users (id) ON DELETE SET NULL,
				comment TEXT NOT NULL
			)
`,
			`CREATE INDEX ix_history_entries_book_copy_created ON history_entries (book_copy_id, created_at)`,
			`
			CREATE TABLE ratings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_copy_id TEXT REFERENCES book_copies (id) ON DELETE CASCADE NOT NULL,
				user_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL,
				value INTEGER NOT NULL DEFAULT 5 CHECK (value BETWEEN 1 AND 5)
			)
`,
			`CREATE UNIQUE INDEX ux_ratings_book_copy_user ON ratings (book_copy_id, user_id)`,
			`
			CREATE TABLE favorites (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_copy_id TEXT REFERENCES book_copies (id) ON DELETE CASCADE NOT NULL,
				user_id INTEGER REFERENCES users (id) ON DELETE CASCADE NOT NULL
			)
`,
			`CREATE UNIQUE INDEX ux_favorites_book_copy_user ON favorites (book_copy_id, user_id)`,
		}

		for _, stmt := range statements {
			if _, err := db.Exec(stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		tables := []string{
			"favorites",
			"ratings",
			"history_entries",
			"book_copy_genres",
			"book_copies",
			"locations",
			"genres",
			"authors",
			"profiles",
			"users",
			"permissions",
			"roles",
		}
		for _, table := range tables {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
