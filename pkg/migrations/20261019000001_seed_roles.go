package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		roles := map[string][]string{
			// Admins manage everything, including other accounts.
			"admin": {"books", "locations", "authors", "genres", "history", "users"},
			// Members lend and borrow but can't touch accounts.
			"member": {"books", "locations", "authors", "genres", "history"},
		}
		operations := []string{"read", "write"}

		for _, name := range []string{"admin", "member"} {
			_, err := db.Exec(`INSERT INTO roles (name, is_system) VALUES (?, TRUE)`, name)
			if err != nil {
				return errors.WithStack(err)
			}

			var roleID int
			err = db.QueryRow(`SELECT id FROM roles WHERE name = ?`, name).Scan(&roleID)
			if err != nil {
				return errors.WithStack(err)
			}

			for _, resource := range roles[name] {
				for _, operation := range operations {
					// History is append-only through book updates, so nobody
					// gets to write it directly.
					if resource == "history" && operation == "write" {
						continue
					}
					_, err = db.Exec(`INSERT INTO permissions (role_id, resource, operation) VALUES (?, ?, ?)`,
						roleID, resource, operation)
					if err != nil {
						return errors.WithStack(err)
					}
				}
			}
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DELETE FROM permissions WHERE role_id IN (SELECT id FROM roles WHERE name IN ('admin', 'member'))`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`DELETE FROM roles WHERE name IN ('admin', 'member')`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
