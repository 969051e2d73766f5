package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kutbudev/duedeck/api"
	"github.com/kutbudev/duedeck/repository"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the duedeck HTTP API.

Examples:
  duedeck-server serve
  duedeck-server serve --port 9090 --db-driver sqlite
  DUEDECK_SERVER_API_TOKEN=... duedeck-server serve`,
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

			if log.GetLevel() < logrus.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			if cfg.Server.APIToken == "" {
				log.Warn("server.api_token is empty, /v1 accepts unauthenticated requests")
			}

			srv := &http.Server{
				Addr: cfg.Server.Addr(),
				Handler: api.NewRouter(db, api.Options{
					APIToken: cfg.Server.APIToken,
					Health:   db.Health,
					Log:      log,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", srv.Addr).Info("Starting server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().Int("port", 0, "listen port")
	cmd.Flags().String("timezone", "", "time zone for due-date buckets, e.g. Europe/Istanbul")
	_ = v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("server.timezone", cmd.Flags().Lookup("timezone"))

	return cmd
}
