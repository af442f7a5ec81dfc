package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TechXTT/oraconsole"
	"github.com/TechXTT/oraconsole/internal/driver/sqldriver"
	"github.com/TechXTT/oraconsole/pkg/history"
	"github.com/TechXTT/oraconsole/pkg/server"
	"github.com/TechXTT/oraconsole/pkg/session"
)

// NewServeCmd builds the `serve` command.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if addr == "" {
				addr = cfg.Addr
			}

			oraconsole.Init(sqldriver.NewOracleConnector(cfg.DSN()), session.WithLogger(logger))
			reg := oraconsole.Registry()
			defer func() {
				if err := reg.Close(); err != nil {
					logger.Warn("failed to release sessions", zap.Error(err))
				}
			}()

			hist, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(reg, hist, logger).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $ORACLE_CONSOLE_ADDR or :3000)")
	return cmd
}
