package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dish-catalog/internal/api"
	"github.com/sells-group/dish-catalog/internal/monitoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the persisted catalog and run history over HTTP",
	Long:  "Serves the read-only catalog API. With monitoring.webhook_url set, recent runs are also checked periodically and alerts are posted to the webhook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		if mcfg := cfg.Monitoring; mcfg.WebhookURL != "" {
			checker := monitoring.NewChecker(
				monitoring.NewCollector(st, mcfg.StaleAfter),
				monitoring.NewAlerter(mcfg),
				mcfg,
			)
			go checker.Run(ctx)
		}

		srv := api.NewServer(st, port, cfg.Server.AllowedOrigins)
		if err := srv.ListenAndServe(ctx); err != nil {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
