package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kutbudev/duedeck/internal/logging"
	"github.com/kutbudev/duedeck/pkg/config"
)

var Version = "dev"

func main() {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:           "duedeck-server",
		Short:         "duedeck API server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (default ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().String("db-driver", "", "postgres or sqlite")
	_ = v.BindPFlag("config_file", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))

	// Add subcommands
	rootCmd.AddCommand(serveCmd(v))
	rootCmd.AddCommand(migrateCmd(v))
	rootCmd.AddCommand(seedCmd(v))
	rootCmd.AddCommand(hashTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the configuration and builds the logger for a command.
func load(v *viper.Viper) (*config.Config, *logrus.Logger, error) {
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("could not set up logging: %w", err)
	}
	return cfg, log, nil
}
