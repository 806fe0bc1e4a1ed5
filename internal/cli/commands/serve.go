package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/astromind-labs/astromind/internal/cli/config"
	"github.com/astromind-labs/astromind/internal/engine"
	"github.com/astromind-labs/astromind/internal/interpreter"
	"github.com/astromind-labs/astromind/internal/server"
	"github.com/astromind-labs/astromind/internal/state"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Astromind API server",
		Long: `Start the HTTP API server.

Endpoints cover chart calculation, AI interpretation (plain and
streamed month by month), report rendering, and persistence of users
and saved charts. Interpretation endpoints need a completions API key;
without one the server starts with calculation only.`,
		Example: `  # Start on the default port with a local SQLite database
  astromind serve

  # Custom port and PostgreSQL persistence
  astromind serve --port 9000 --database postgres://localhost/astromind`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	return cmd
}

func runServe(cmd *cobra.Command) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := engine.New(engine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	st, err := state.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = st.Close() }()
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var interp *interpreter.Interpreter
	if cfg.APIKey != "" {
		client, err := newChatClient(cfg)
		if err != nil {
			return err
		}
		interp = interpreter.New(client, interpreter.WithLogger(logger))
	} else {
		logger.Warn("no API key configured, interpretation endpoints disabled")
	}

	srv := server.New(server.Config{
		Engine: eng,
		Interp: interp,
		Store:  st,
		Port:   cfg.Port,
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}

// newChatClient builds the completions client from configuration.
func newChatClient(cfg *config.Config) (*interpreter.Client, error) {
	var opts []interpreter.ClientOption
	if cfg.APIBaseURL != "" {
		opts = append(opts, interpreter.WithBaseURL(cfg.APIBaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, interpreter.WithModel(cfg.Model))
	}
	client, err := interpreter.NewClient(cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create completions client: %w", err)
	}
	return client, nil
}
