// Package cli is the terminal frontend. It shares the session store,
// auth controller and resource cache with the GUI; only the presentation
// differs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"logdeck/api"
	"logdeck/auth"
	"logdeck/cache"
	"logdeck/db"
	"logdeck/session"
	"logdeck/utils"
)

var Version = "0.1.0"

// NewRootCmd builds the logdeck command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "logdeck",
		Short: "Dashboard client for the LogDeck logging platform",
		Long: "LogDeck is a client for a hosted logging platform: manage projects and API keys,\n" +
			"browse event and LLM logs, view analytics, and export CSV data.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("config", "", "Path to configuration file")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newWhoamiCmd(),
		newProjectsCmd(),
		newKeysCmd(),
		newLogsCmd(),
		newExportCmd(),
		newStatsCmd(),
		newNotifyCmd(),
		newAppCmd(),
	)

	root.Version = Version
	root.SetVersionTemplate(fmt.Sprintf("logdeck %s\n", Version))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Env bundles the core services a command needs. Built per invocation;
// the CLI is short-lived so there is no long-running state beyond the
// persisted session.
type Env struct {
	Config    *utils.Config
	Logger    *utils.Logger
	DB        *db.DB
	Store     *session.Store
	Client    *api.Client
	Auth      *auth.Controller
	Resources *cache.Resources
}

// newEnv loads config, opens the session database and wires the core.
func newEnv(cmd *cobra.Command) (*Env, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		var err error
		configPath, err = utils.EnsureDefaultConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	config, err := utils.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := utils.NewLogger(utils.GetLogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	database, err := db.New(config.Data.DBPath)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	store := session.NewStore(database)
	client := api.NewClient(api.Config{
		BaseURL: config.API.BaseURL,
		Timeout: time.Duration(config.API.TimeoutSeconds) * time.Second,
	}, store.Tokens)
	controller := auth.NewController(client, store, logger)

	return &Env{
		Config:    config,
		Logger:    logger,
		DB:        database,
		Store:     store,
		Client:    client,
		Auth:      controller,
		Resources: cache.New(client),
	}, nil
}

// Close releases the env's resources.
func (e *Env) Close() {
	if e.DB != nil {
		e.DB.Close()
	}
	if e.Logger != nil {
		e.Logger.Close()
	}
}

// requireSession reconstructs the persisted session and fails when the
// user is not logged in. This is the CLI's route guard.
func (e *Env) requireSession(ctx context.Context) error {
	if err := e.Auth.LoadSessionOnBoot(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !e.Store.Authenticated() {
		return errors.New("not logged in; run `logdeck login` first")
	}
	return nil
}

// surfaceError maps the API error taxonomy onto CLI-friendly messages.
func surfaceError(err error) error {
	var netErr *api.NetworkError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return errors.New("session expired; run `logdeck login` again")
	case errors.Is(err, api.ErrNotFound):
		return errors.New("not found; it may have been deleted elsewhere")
	case errors.As(err, &netErr):
		return fmt.Errorf("could not reach the API: %v (check your connection and retry)", netErr.Err)
	default:
		return err
	}
}
