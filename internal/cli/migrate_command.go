package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"todo-list/internal/config"
	"todo-list/internal/errors"
	"todo-list/internal/repository/sqldb/migrations"
)

// MigrateCommand applies, rolls back or lists schema migrations.
type MigrateCommand struct {
	config *config.Config
	out    io.Writer
}

// NewMigrateCommand creates a new migrate command handler
func NewMigrateCommand(cfg *config.Config, out io.Writer) *MigrateCommand {
	return &MigrateCommand{config: cfg, out: out}
}

// Execute runs the migrate command. The single argument is up, down or
// status.
func (c *MigrateCommand) Execute(ctx context.Context, args []string) error {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}
	if action != "up" && action != "down" && action != "status" {
		return errors.NewInvalidInputError("action", action, "usage: todo migrate [up|down|status]")
	}

	store, err := config.OpenStoreWithoutMigrations(ctx, c.config)
	if err != nil {
		return err
	}
	defer store.Close()

	db, bind := store.DB(), store.Dialect().Rebind
	switch action {
	case "up":
		if err := migrations.RunMigrations(ctx, db, bind); err != nil {
			return errors.NewDatabaseError("migrate up", err)
		}
		fmt.Fprintln(c.out, "Schema is up to date")
		return nil
	case "down":
		version, err := migrations.RollbackLast(ctx, db, bind)
		if err != nil {
			return errors.NewDatabaseError("migrate down", err)
		}
		if version == 0 {
			fmt.Fprintln(c.out, "No migrations to roll back")
			return nil
		}
		fmt.Fprintf(c.out, "Rolled back migration %d\n", version)
		return nil
	default:
		statuses, err := migrations.List(ctx, db)
		if err != nil {
			return errors.NewDatabaseError("migrate status", err)
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED")
		for _, s := range statuses {
			fmt.Fprintf(tw, "%03d\t%s\t%t\n", s.Version, s.Name, s.Applied)
		}
		return tw.Flush()
	}
}
