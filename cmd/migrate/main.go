package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/bryanwahyu/smartdocs/internal/config"
	"github.com/bryanwahyu/smartdocs/internal/infra/db/migrations"
	"github.com/bryanwahyu/smartdocs/internal/logger"
)

func main() {
	var (
		configPath  string
		databaseURL string
		command     string
	)
	flag.StringVar(&configPath, "config", config.Path(), "config file")
	flag.StringVar(&databaseURL, "database", os.Getenv("DATABASE_URL"), "database URL (overrides the config)")
	flag.StringVar(&command, "command", "up", "migration command: up, down, version, force")
	flag.Parse()

	log := logger.Setup()
	fail := func(msg string, args ...any) {
		log.Error(msg, args...)
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fail("config.load_failed", "error", err)
	}

	driver := cfg.Database.Driver
	if databaseURL == "" {
		databaseURL, err = cfg.MigrateURL()
		if err != nil {
			fail("migrate.no_database", "error", err)
		}
	} else {
		driver = driverOf(databaseURL)
	}

	dir, err := migrations.Dir(driver)
	if err != nil {
		fail("migrate.no_migrations", "driver", driver, "error", err)
	}
	src, err := iofs.New(dir, ".")
	if err != nil {
		fail("migrate.source_failed", "error", err)
	}

	log.Info("migrate.connecting", "driver", driver)
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		fail("migrate.init_failed", "error", err)
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("migrate.up_to_date")
			return
		}
		if err != nil {
			fail("migrate.up_failed", "error", err)
		}
		log.Info("migrate.up_done")

	case "down":
		err = m.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fail("migrate.down_failed", "error", err)
		}
		log.Info("migrate.down_done")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migration applied")
			return
		}
		if err != nil {
			fail("migrate.version_failed", "error", err)
		}
		fmt.Printf("version %d (dirty: %v)\n", version, dirty)

	case "force":
		if flag.NArg() < 1 {
			fail("migrate.force_needs_version", "usage", "-command force <version>")
		}
		version, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			fail("migrate.bad_version", "error", err)
		}
		if err := m.Force(version); err != nil {
			fail("migrate.force_failed", "error", err)
		}
		log.Info("migrate.forced", "version", version)

	default:
		fail("migrate.unknown_command", "command", command, "allowed", "up, down, version, force")
	}
}

// driverOf maps a database URL scheme to the migrations directory.
func driverOf(url string) string {
	scheme, _, _ := strings.Cut(url, "://")
	switch scheme {
	case "postgres", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return scheme
	}
}
