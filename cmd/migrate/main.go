// Command migrate inspects and changes the schema of the users database.
//
//	migrate status [-json]       list embedded migrations and whether they ran
//	migrate up [-dry-run]        apply pending SQL migrations
//	migrate down [version]       revert one migration, the latest by default
//	migrate auto                 run gorm AutoMigrate over the models
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"patisson-users/internal/config"
	"patisson-users/internal/database"
	"patisson-users/internal/middleware"

	"gorm.io/gorm"
)

var errUsage = errors.New("usage: migrate <status|up|down|auto> [flags]")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, errUsage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectWithOptions(ctx, cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		middleware.Logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close(db) }()

	if err := run(ctx, os.Args[1:], db, cfg, os.Stdout); err != nil {
		middleware.Logger.Error("migrate failed", "command", os.Args[1], "error", err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, db *gorm.DB, cfg *config.Config, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	m := database.NewMigrator(db)
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "status":
		fs := flag.NewFlagSet("status", flag.ContinueOnError)
		asJSON := fs.Bool("json", false, "print the status as JSON")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return status(ctx, m, cfg, out, *asJSON)

	case "up":
		fs := flag.NewFlagSet("up", flag.ContinueOnError)
		dryRun := fs.Bool("dry-run", false, "list pending migrations without applying them")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		pending, err := m.Pending(ctx)
		if err != nil {
			return err
		}
		if *dryRun {
			for _, mig := range pending {
				fmt.Fprintf(out, "would apply %s\n", mig)
			}
			return nil
		}
		n, err := m.Up(ctx)
		if err != nil {
			return fmt.Errorf("applied %d of %d migrations: %w", n, len(pending), err)
		}
		middleware.Logger.InfoContext(ctx, "migrations applied", "count", n)
		fmt.Fprintf(out, "applied %d migration(s)\n", n)
		return nil

	case "down":
		version, err := downTarget(ctx, m, rest)
		if err != nil {
			return err
		}
		if err := m.Down(ctx, version); err != nil {
			return err
		}
		middleware.Logger.InfoContext(ctx, "migration reverted", "version", version)
		fmt.Fprintf(out, "reverted %06d\n", version)
		return nil

	case "auto":
		auto := *cfg
		auto.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, &auto); err != nil {
			return err
		}
		fmt.Fprintln(out, "automigrate complete")
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

// downTarget resolves the version to revert: the explicit argument, or the
// latest applied migration.
func downTarget(ctx context.Context, m *database.Migrator, args []string) (int, error) {
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("invalid version %q", args[0])
		}
		return v, nil
	}
	latest, err := m.Latest(ctx)
	if err != nil {
		return 0, err
	}
	if latest == 0 {
		return 0, errors.New("no applied migrations to revert")
	}
	return latest, nil
}

type statusRow struct {
	Version   int        `json:"version"`
	Name      string     `json:"name"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

type statusReport struct {
	Mode        string      `json:"mode"`
	Environment string      `json:"environment"`
	SQL         bool        `json:"sql"`
	Auto        bool        `json:"auto"`
	Migrations  []statusRow `json:"migrations"`
}

func status(ctx context.Context, m *database.Migrator, cfg *config.Config, out io.Writer, asJSON bool) error {
	plan, err := database.PlanSchema(cfg)
	if err != nil {
		return err
	}
	history, err := m.History(ctx)
	if err != nil {
		return err
	}

	report := statusReport{Mode: plan.Mode, Environment: cfg.Env, SQL: plan.SQL, Auto: plan.Auto}
	for _, st := range history {
		report.Migrations = append(report.Migrations, statusRow{
			Version: st.Version, Name: st.Name, Applied: st.Applied(), AppliedAt: st.AppliedAt,
		})
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "mode=%s env=%s sql=%t auto=%t\n", report.Mode, report.Environment, report.SQL, report.Auto)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tSTATE\tAPPLIED AT")
	for _, r := range report.Migrations {
		state, at := "pending", "-"
		if r.Applied {
			state, at = "applied", r.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%06d\t%s\t%s\t%s\n", r.Version, r.Name, state, at)
	}
	return tw.Flush()
}
