package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/astrokernel/imperium/internal/domain/catalog"
)

// NewTickCommand creates the tick command
func NewTickCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one scheduler and tick pass",
		Long: `Run a single construction scheduling sweep followed by a single
completion tick, then exit. Useful for cron-driven deployments and debugging;
the serve command normally drives the loop in-process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewContainer(configPath, false)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			summary := c.Loop.RunOnce(ctx)

			kinds := []catalog.Kind{
				catalog.KindTech, catalog.KindUnit,
				catalog.KindStructure, catalog.KindDefense,
			}
			for _, kind := range kinds {
				completed := summary.Completed[kind]
				cancelled := summary.Cancelled[kind]
				errored := summary.Errored[kind]
				if completed+cancelled+errored > 0 {
					fmt.Printf("%-10s completed=%d cancelled=%d errored=%d\n",
						kind, completed, cancelled, errored)
				}
			}
			if summary.IncomePaid != 0 {
				fmt.Printf("income paid: %d credits\n", summary.IncomePaid)
			}

			return nil
		},
	}

	return cmd
}
