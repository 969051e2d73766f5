package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kutbudev/duedeck/repository"
)

func migrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(v)
			if err != nil {
				return err
			}
			// NewDatabase migrates on open.
			db, err := repository.NewDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			log.Info("Schema is up to date")
			return nil
		},
	}
}

func seedCmd(v *viper.Viper) *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with random lists, tags and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(v)
			if err != nil {
				return err
			}
			db, err := repository.NewDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			var rng *rand.Rand
			if seed != 0 {
				rng = rand.New(rand.NewPCG(seed, 0))
			}
			if err := repository.Seed(cmd.Context(), db, rng, time.Now()); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d lists, %d tags and %d tasks\n",
				repository.SeedLists, repository.SeedTags, repository.SeedTasks)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	return cmd
}
