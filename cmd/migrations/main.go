package main

import (
	"os"
	"strings"

	"github.com/bookcross/bookcross/pkg/config"
	"github.com/bookcross/bookcross/pkg/database"
	"github.com/bookcross/bookcross/pkg/migrations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	app := &cli.App{
		Name:  "migrations",
		Usage: "manage the bookcross database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					group, err := migrations.BringUpToDate(c.Context, db)
					if err != nil {
						return err
					}
					if group.IsZero() {
						log.Info("schema already up to date")
						return nil
					}
					log.Info("migrated", logger.Data{"group": group.String()})
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					group, err := migrations.RollbackLast(c.Context, db)
					if err != nil {
						return err
					}
					if group.IsZero() {
						log.Info("nothing to roll back")
						return nil
					}
					log.Info("rolled back", logger.Data{"group": group.String()})
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "list pending migrations",
				Action: func(c *cli.Context) error {
					pending, err := migrations.Pending(c.Context, db)
					if err != nil {
						return err
					}
					log.Info("migration status", logger.Data{"pending": pending.String()})
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "scaffold a new Go migration",
				ArgsUsage: "<words describing the change>",
				Action: func(c *cli.Context) error {
					return create(c, db, log)
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("migrations failed")
	}
}

func create(c *cli.Context, db *bun.DB, log logger.Logger) error {
	if c.NArg() == 0 {
		return errors.New("a migration name is required")
	}
	migrator, err := migrations.NewMigrator(c.Context, db)
	if err != nil {
		return err
	}
	name := strings.Join(c.Args().Slice(), "_")
	mf, err := migrator.CreateGoMigration(c.Context, name, migrate.WithGoTemplate(scaffold))
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info("created migration", logger.Data{"name": mf.Name, "path": mf.Path})
	return nil
}

const scaffold = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
