package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"cinescope/internal/catalog"
	"cinescope/internal/handler"
	"cinescope/internal/logging"
	"cinescope/internal/models"
	"cinescope/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var filterKind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the backup scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseKind(filterKind)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), ctx, kind)
		},
	}
	cmd.Flags().StringVar(&filterKind, "filter-kind", "movie", "Catalog kind whose actor list the filters follow")
	return cmd
}

func runServe(cmdCtx context.Context, ctx *commandContext, filterKind models.Kind) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return ctx.withSession(func(s *session) error {
		cat, err := catalog.Load(afero.NewOsFs(), s.cfg.Catalog.Path)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		unbind := cat.BindFilters(s.store, filterKind)
		defer unbind()

		scheduler := service.NewScheduler(s.backups, s.cfg.Backup.Interval)
		scheduler.Start()
		defer scheduler.Stop()

		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.Use(gin.Recovery(), handler.RequestLogger())
		handler.NewHTTPHandler(s.store, cat, s.backups, s.cfg.Server.APIToken).RegisterRoutes(r)

		srv := &http.Server{
			Addr:              s.cfg.Server.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logging.Info().
				Str("addr", srv.Addr).
				Str("backend", s.cfg.Storage.Backend).
				Int("movies", len(cat.Movies())).
				Int("series", len(cat.Series())).
				Msg("cinescope listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-signalCtx.Done():
		}

		logging.Info().Msg("shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
}
