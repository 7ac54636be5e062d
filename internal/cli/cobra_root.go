package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"todo-list/internal/config"
	"todo-list/internal/logging"
)

// annotationStore marks commands that need an open task store.
const annotationStore = "todo.store"

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	out    io.Writer
	errOut io.Writer

	configFile string
	envFile    string
	owner      string

	config *config.Config
	logger *logrus.Logger
	rt     *runtime
	app    *App
}

// taskCommandHelp describes the task commands held by the registry.
var taskCommandHelp = map[string]struct {
	use   string
	short string
	long  string
}{
	"add": {
		use:   "add <title> [flags]",
		short: "Create a task",
		long: `Create a task at the end of the list.

Examples:
  todo add "Write report" -p high --due 2d
  todo add Buy milk -t shopping,home -c errands`,
	},
	"list": {
		use:   "list [time] [text]",
		short: "List tasks",
		long: `List tasks with optional filtering, sorting and paging.

A leading time shorthand (30m, 2h, 1d, 2w, 3mo, 1y) keeps tasks due
within that window from now. Remaining words search title and description.

Examples:
  todo list
  todo list 1w report
  todo list --status pending --sort dueDate --limit 10
  todo list --all --format csv`,
	},
	"show": {
		use:   "show <id>",
		short: "Show one task",
	},
	"edit": {
		use:   "edit <id> [flags]",
		short: "Change fields of a task",
		long: `Change fields of a task. Only the flags given are applied.

Examples:
  todo edit 5f0c... --title "New title"
  todo edit 5f0c... --clear-due --tags ""`,
	},
	"status": {
		use:   "status <id> <pending|in_progress|completed|archived>",
		short: "Set the status of a task",
	},
	"move": {
		use:   "move <id> <position>",
		short: "Move a task to a position in the list",
	},
	"reorder": {
		use:   "reorder <id>...",
		short: "Set the order of tasks to the order given",
	},
	"delete": {
		use:   "delete <id>",
		short: "Delete a task",
	},
	"batch-status": {
		use:   "batch-status <status> <id>...",
		short: "Set the status of several tasks",
	},
	"batch-delete": {
		use:   "batch-delete <id>...",
		short: "Delete several tasks",
	},
	"export": {
		use:   "export format=csv|json",
		short: "Export every task",
		long: `Export every task in list order.

Example:
  todo export format=csv > tasks.csv`,
	},
}

// NewRootCommand creates the root cobra command with global flags. Output
// goes to out; logs and help errors go to errOut.
func NewRootCommand(out, errOut io.Writer) *RootCommand {
	root := &RootCommand{
		out:    out,
		errOut: errOut,
	}
	root.app = NewApp(nil, "", out)

	root.cmd = &cobra.Command{
		Use:   "todo",
		Short: "A multi-user todo list service and command line client",
		Long: `todo manages per-owner task lists with ordering, filtering and batch
operations. It runs as an HTTP API (todo serve) or works directly against
the task store from the command line.

EXAMPLES:
  todo add "Write report" -p high --due 2d  # Create a task
  todo list 1w report                       # Tasks due within a week matching "report"
  todo move <id> 0                          # Move a task to the top
  todo batch-status completed <id> <id>     # Complete several tasks
  todo export format=json > tasks.json      # Export every task
  todo serve                                # Run the HTTP API
  todo token --ttl 1h                       # Sign a bearer token for --owner

CONFIGURATION:
  Priority: command-line flags > environment variables > .env file > todo.toml > defaults

  TODO_OWNER                     Owner the task commands act for
  TODO_DB_DRIVER                 sqlite or postgres (default: sqlite)
  TODO_DB_DSN                    Connection string (postgres, or a sqlite path)
  TODO_DB_DIR                    SQLite directory (default: ~/.todo)
  TODO_DB_FILENAME               SQLite filename (default: todo.db)
  TODO_DB_QUERY_TIMEOUT          Query timeout (default: 10s)
  TODO_DB_WRITE_TIMEOUT          Write timeout (default: 5s)
  TODO_SERVER_ADDRESS            HTTP listen address (default: :3001)
  TODO_SERVER_CORS_ORIGINS       Comma-separated allowed origins
  TODO_AUTH_JWT_SECRET           HS256 signing secret
  TODO_AUTH_JWKS_URL             JWKS endpoint for RS256 tokens
  TODO_CACHE_REDIS_URL           Redis URL enabling the query cache
  TODO_LOG_LEVEL                 Log level (default: info)
  TODO_LOG_FORMAT                json or text (default: json)
  TODO_APP_TIMEOUT               Command timeout (default: 60s)

TIME FORMATS:
  30m, 2h, 1d, 2w, 3mo, 1y`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd)
		},
	}
	root.cmd.SetOut(out)
	root.cmd.SetErr(errOut)

	root.addGlobalFlags()
	root.addTaskCommands()
	root.addServiceCommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and releases the store
// afterwards.
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	defer r.close()
	return r.cmd.ExecuteContext(ctx)
}

// SetArgs overrides the command line arguments.
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

func (r *RootCommand) close() {
	if r.rt == nil {
		return
	}
	if err := r.rt.Close(); err != nil && r.logger != nil {
		r.logger.WithError(err).Warn("failed to close task store")
	}
	r.rt = nil
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.StringVar(&r.configFile, "config", "", "TOML config file (default ./todo.toml when present)")
	flags.StringVar(&r.envFile, "env-file", ".env", "Dotenv file to load; empty disables it")
	flags.StringVar(&r.owner, "owner", "", "Owner the task commands act for (overrides TODO_OWNER)")

	// Database configuration
	flags.String("db-driver", "", "Database driver: sqlite or postgres (overrides TODO_DB_DRIVER)")
	flags.String("db-dsn", "", "Database connection string (overrides TODO_DB_DSN)")
	flags.String("db-dir", "", "SQLite directory (overrides TODO_DB_DIR)")
	flags.String("db-filename", "", "SQLite filename (overrides TODO_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TODO_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TODO_DB_WRITE_TIMEOUT)")

	// Service configuration
	flags.String("server-address", "", "HTTP listen address (overrides TODO_SERVER_ADDRESS)")
	flags.String("jwt-secret", "", "HS256 token secret (overrides TODO_AUTH_JWT_SECRET)")
	flags.String("redis-url", "", "Redis URL for the query cache (overrides TODO_CACHE_REDIS_URL)")

	// Logging and application configuration
	flags.String("log-level", "", "Log level (overrides TODO_LOG_LEVEL)")
	flags.String("log-format", "", "Log format: json or text (overrides TODO_LOG_FORMAT)")
	flags.Duration("app-timeout", 0, "Command timeout (overrides TODO_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides TODO_APP_VERBOSE)")
}

// addTaskCommands exposes every registry command as a cobra subcommand.
func (r *RootCommand) addTaskCommands() {
	for _, name := range r.app.registry.Names() {
		command, _ := r.app.registry.Get(name)
		help := taskCommandHelp[name]
		if help.use == "" {
			help.use = name
		}

		sub := &cobra.Command{
			Use:         help.use,
			Short:       help.short,
			Long:        help.long,
			Annotations: map[string]string{annotationStore: "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), r.appTimeout())
				defer cancel()
				return r.app.errors.Handle(name, command.Execute(ctx, args))
			},
		}
		if binder, ok := command.(FlagBinder); ok {
			binder.BindFlags(sub.Flags())
		}
		r.cmd.AddCommand(sub)
	}
}

// addServiceCommands adds the server and maintenance commands.
func (r *RootCommand) addServiceCommands() {
	serveCmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the HTTP API",
		Long:        "Run the HTTP API until interrupted. Requests authenticate with a bearer token.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewServeCommand(r.rt).Execute(cmd.Context(), args)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Manage the database schema",
		Long: `Apply pending migrations (up, the default), roll back the latest one
(down) or list every migration and whether it is applied (status).`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), r.appTimeout())
			defer cancel()
			return r.app.errors.Handle("migrate", NewMigrateCommand(r.config, r.out).Execute(ctx, args))
		},
	}

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for --owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, _ := cmd.Flags().GetDuration("ttl")
			return r.app.errors.Handle("sign token", NewTokenCommand(r.config, r.owner, ttl, r.out).Execute(cmd.Context(), args))
		},
	}
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default auth.token_ttl)")

	r.cmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

// setup loads the configuration and, for commands that need it, opens the
// task store.
func (r *RootCommand) setup(cmd *cobra.Command) error {
	cfg, err := config.NewLoader().
		WithConfigFile(r.configFile).
		WithEnvFile(r.envFile).
		LoadWithOverrides(overridesFromFlags(cmd.Flags()))
	if err != nil {
		return err
	}
	r.config = cfg

	r.logger = logging.New(cfg.Logging, r.errOut)
	if cfg.Application.Verbose {
		r.logger.SetLevel(logrus.DebugLevel)
	}

	if !cmd.Flags().Changed("owner") {
		r.owner = os.Getenv("TODO_OWNER")
	}

	if cmd.Annotations[annotationStore] != "true" {
		return nil
	}
	rt, err := openRuntime(cmd.Context(), cfg, r.logger)
	if err != nil {
		return err
	}
	r.rt = rt
	r.app.tasks = rt.services.TaskService
	r.app.owner = r.owner
	return nil
}

// appTimeout returns the configured application timeout
func (r *RootCommand) appTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// overridesFromFlags collects the configuration flags set on the command
// line. Flags left at their defaults do not override lower layers.
func overridesFromFlags(flags *pflag.FlagSet) *config.ConfigOverrides {
	overrides := &config.ConfigOverrides{}

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	dur := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}

	overrides.DBDriver = str("db-driver")
	overrides.DBDSN = str("db-dsn")
	overrides.DBDir = str("db-dir")
	overrides.DBFilename = str("db-filename")
	overrides.DBQueryTimeout = dur("db-query-timeout")
	overrides.DBWriteTimeout = dur("db-write-timeout")
	overrides.ServerAddress = str("server-address")
	overrides.JWTSecret = str("jwt-secret")
	overrides.RedisURL = str("redis-url")
	overrides.LogLevel = str("log-level")
	overrides.LogFormat = str("log-format")
	overrides.Timeout = dur("app-timeout")
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}

	return overrides
}
