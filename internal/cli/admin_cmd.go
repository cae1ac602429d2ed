package cli

import (
	"fmt"
	"time"

	"meal-planner/internal/api"
	"meal-planner/internal/app"
	"meal-planner/internal/cli/formatter"

	"github.com/spf13/cobra"
)

func tokenService(a *app.App, ttl time.Duration) (api.TokenService, error) {
	cfg := a.Config()
	if err := cfg.ValidateAPI(); err != nil {
		return api.TokenService{}, err
	}
	if ttl <= 0 {
		ttl = cfg.APITokenTTL
	}
	return api.TokenService{
		Secret:   []byte(cfg.APIJWTSecret),
		Issuer:   api.DefaultIssuer,
		Duration: ttl,
	}, nil
}

func newServeCmd(a *app.App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := tokenService(a, 0)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.Config().APIAddr
			}
			return api.NewServer(a, tokens, a.Logger()).Run(commandContext(cmd), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to API_ADDR)")
	return cmd
}

func newTokenCmd(a *app.App) *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := tokenService(a, ttl)
			if err != nil {
				return err
			}
			token, exp, err := tokens.Sign(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintln(cmd.ErrOrStderr(), formatter.Dim("expires "+exp.Format(time.RFC3339)))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "cli", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to API_TOKEN_TTL)")
	return cmd
}

func newMetricsCmd(a *app.App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show catalog API usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.Metrics()
			if store == nil {
				return fmt.Errorf("metrics are not recorded")
			}
			usage, err := store.GetDailyUsage(commandContext(cmd), days)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header("Catalog API usage"))
			fmt.Fprint(out, formatter.FormatUsage(usage))

			h := a.Health()
			fmt.Fprintf(out, "\n%s\n", formatter.Dim(fmt.Sprintf("mem %d MB, goroutines %d, data %s", h.AllocMB, h.Goroutines, h.DataSize)))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "number of days to show")
	return cmd
}

func newMetricsCleanupCmd(a *app.App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old metric records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.Metrics()
			if store == nil {
				return fmt.Errorf("metrics are not recorded")
			}
			affected, err := store.Cleanup(commandContext(cmd), days)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Removed %d old metric records", affected)))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "keep records for the last N days")
	return cmd
}
