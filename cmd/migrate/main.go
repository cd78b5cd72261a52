// Command migrate applies or rolls back the embedded schema migrations
// without starting the server.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"socialite/internal/config"
	"socialite/internal/database/migrations"

	"github.com/golang-migrate/migrate/v4"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	if err := run(direction); err != nil {
		logger.Error("Migration failed", "direction", direction, "error", err)
		os.Exit(1)
	}
	logger.Info("Migration complete", "direction", direction)
}

func run(direction string) error {
	cfg := config.NewConfig()

	m, err := migrations.New(cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown direction %q (want up or down)", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
