package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nshafer/penlive/internal/api"
	"github.com/nshafer/penlive/internal/auth"
	"github.com/nshafer/penlive/internal/config"
	"github.com/nshafer/penlive/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const rootCmdExample = `# Log in and watch the dashboard
penwatch login --username farmer
penwatch pens

# Watch the live chart of one pen
penwatch pen room_12`

var configPath string

var rootCmd = &cobra.Command{
	Use:           "penwatch",
	Short:         "Watch the pig-pen dashboard from a terminal",
	Long:          "penwatch shows the pig-pen monitoring dashboard and pen charts, kept up to date over the live websocket feeds.",
	Example:       rootCmdExample,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(pensCmd)
	rootCmd.AddCommand(penCmd)
}

// app is what every subcommand needs, built from the config
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	api     *api.Client
	session *auth.Session
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	tokenFile := cfg.Auth.TokenFile
	if tokenFile == "" {
		tokenFile = defaultTokenFile()
	}
	session, err := auth.NewSession(tokenFile, nil, log.Named("auth"))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		api:     api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, cfg.API.InsecureSkipVerify, log.Named("api")),
		session: session,
	}, nil
}

// token returns the session token or tells the user to log in.
func (a *app) token() (string, error) {
	token, err := a.session.Token()
	if errors.Is(err, auth.ErrNoSession) {
		return "", fmt.Errorf("%w, run 'penwatch login' first", err)
	}
	return token, err
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "penwatch", "token")
}
