package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/bookcross/bookcross/pkg/books"
	"github.com/bookcross/bookcross/pkg/config"
	"github.com/bookcross/bookcross/pkg/database"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/migrations"
	"github.com/bookcross/bookcross/pkg/server"
	"github.com/bookcross/bookcross/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/uptrace/bun"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logger.New()
	log.Info("starting bookcross", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Err(err).Error("database close error")
		}
	}()

	srv, err := setup(context.Background(), cfg, db, log)
	if err != nil {
		log.Err(err).Fatal("startup error")
	}

	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", srv.Addr)
	if err != nil {
		log.Err(err).Fatal("failed to bind port")
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", logger.Data{"addr": listener.Addr().String()})
		serveErr <- srv.Serve(listener)
	}()

	select {
	case <-signals.Setup():
		log.Info("shutting down")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Error("server stopped unexpectedly")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}

// setup migrates the schema and builds the HTTP server with its label set and
// media store.
func setup(ctx context.Context, cfg *config.Config, db *bun.DB, log logger.Logger) (*http.Server, error) {
	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		return nil, errors.Wrap(err, "migrations")
	}
	if !group.IsZero() {
		log.Info("applied migrations", logger.Data{"group_id": group.ID, "migrations": group.Migrations.String()})
	}

	labels, err := books.NewLabels(cfg.Locale)
	if err != nil {
		return nil, errors.Wrap(err, "locale")
	}

	media, err := mediastore.New(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "media store")
	}

	return server.New(cfg, db, labels, media)
}
