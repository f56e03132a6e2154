package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/modesim/api/iterations"
	"github.com/kilianp07/modesim/infra/logger"
	"github.com/kilianp07/modesim/infra/output"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr, token string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored iteration statistics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			store, err := output.OpenStore(cfg.Output, cfg.Controller.OutputDirectory)
			if err != nil {
				return err
			}
			defer store.Close()

			log := logger.New("api")
			mux := http.NewServeMux()
			mux.Handle("/api/iterations", iterations.NewHandler(store, token))
			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Errorf("api shutdown: %v", err)
				}
			}()
			log.Infof("serving iterations on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&token, "token", os.Getenv("MODESIM_API_TOKEN"), "bearer token required by clients")
	return cmd
}
