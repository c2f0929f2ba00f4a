package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long: `Report whether the server is up, with its live room and connection counts.

With --wait the check is retried until the server answers or the wait runs out,
which is handy right after starting a server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult
			if err := pollHealth(cmd.Context(), wait, time.Second, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying for up to this long")

	return cmd
}

// pollHealth fetches the health endpoint, retrying every interval until wait
// has elapsed. The last error is returned if the server never answered.
func pollHealth(ctx context.Context, wait, interval time.Duration, result *HealthResult) error {
	deadline := time.Now().Add(wait)
	for {
		err := client.Get(ctx, "/api/v1/health", result)
		if err == nil || !time.Now().Before(deadline) {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(interval):
		}
	}
}
