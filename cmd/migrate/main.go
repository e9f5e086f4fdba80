// Команда migrate применяет и откатывает миграции схем сервисов магазина в PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/shoplab/internal/storage/postgres"
)

const (
	defaultTimeout = 30 * time.Second
	envPostgresDSN = "POSTGRES_DSN"
)

var errDSNRequired = errors.New(envPostgresDSN + " (or -dsn) is required")

type options struct {
	direction string
	steps     int
	dsn       string
	schemas   []postgres.Schema
}

// parseOptions разбирает флаги; DSN берётся из POSTGRES_DSN, если флаг пуст.
func parseOptions(args []string, getenv func(string) string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.direction, "direction", "up", "migration direction: up|down|status")
	fs.IntVar(&opts.steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	fs.StringVar(&opts.dsn, "dsn", "", "PostgreSQL DSN (fallback: "+envPostgresDSN+")")
	service := fs.String("service", "all", "schema to migrate: products|orders|all")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch name := strings.ToLower(strings.TrimSpace(*service)); name {
	case "all", "":
		opts.schemas = postgres.Schemas()
	default:
		schema, err := postgres.SchemaByName(name)
		if err != nil {
			return options{}, err
		}
		opts.schemas = []postgres.Schema{schema}
	}

	opts.direction = strings.ToLower(strings.TrimSpace(opts.direction))
	switch opts.direction {
	case "up", "down", "status":
	default:
		return options{}, fmt.Errorf("unsupported direction: %s (use up|down|status)", opts.direction)
	}
	if opts.steps < 0 {
		return options{}, fmt.Errorf("steps must be >= 0, got %d", opts.steps)
	}
	if opts.direction == "down" && opts.steps == 0 {
		opts.steps = 1
	}

	opts.dsn = strings.TrimSpace(opts.dsn)
	if opts.dsn == "" {
		opts.dsn = strings.TrimSpace(getenv(envPostgresDSN))
	}
	if opts.dsn == "" {
		return options{}, errDSNRequired
	}
	return opts, nil
}

func run(ctx context.Context, opts options, out io.Writer) error {
	store, err := postgres.Open(ctx, opts.dsn)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer store.Close()

	for _, schema := range opts.schemas {
		if err := runSchema(ctx, store, schema, opts, out); err != nil {
			return err
		}
	}
	return nil
}

func runSchema(ctx context.Context, store *postgres.Store, schema postgres.Schema, opts options, out io.Writer) error {
	switch opts.direction {
	case "up":
		if err := store.MigrateUp(ctx, schema, opts.steps); err != nil {
			return fmt.Errorf("migrate %s up failed: %w", schema.Name, err)
		}
	case "down":
		if err := store.MigrateDown(ctx, schema, opts.steps); err != nil {
			return fmt.Errorf("migrate %s down failed: %w", schema.Name, err)
		}
	}

	version, count, err := store.MigrationStatus(ctx, schema)
	if err != nil {
		return fmt.Errorf("migration status %s failed: %w", schema.Name, err)
	}
	if opts.direction == "status" {
		_, _ = fmt.Fprintf(out, "migration status %s: version=%d applied=%d\n", schema.Name, version, count)
		return nil
	}
	_, _ = fmt.Fprintf(out, "migrate %s %s ok: version=%d applied=%d\n", schema.Name, opts.direction, version, count)
	return nil
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Getenv)
	if err != nil {
		fail("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil {
		cancel()
		fail("%v", err)
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
