package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/foodgram/internal/config"
	"github.com/sakif/foodgram/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "foodgram",
	Short:        "foodgram serves recipes, favorites and shopping lists",
	Long:         "foodgram is a recipe sharing API: users publish recipes, follow authors and download a merged shopping list of their cart.",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file (default $"+config.EnvConfigPath+")")
	rootCmd.AddCommand(serveCmd, shoppingListCmd)
}

// loadConfig resolves the config file from --config or the environment
// and builds the logger it describes, writing to w.
func loadConfig(w io.Writer) (*config.Config, *slog.Logger, error) {
	path := configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(logger.Config{
		Writer:      w,
		Format:      cfg.Log.Format,
		Environment: cfg.Log.Environment,
		Level:       logger.ParseLevel(cfg.Log.Level),
		AddSource:   cfg.Log.Environment == "production",
	})
	return cfg, log, nil
}
