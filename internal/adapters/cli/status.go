package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/astrokernel/imperium/internal/application/admission"
	"github.com/astrokernel/imperium/internal/domain/shared"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	var empireID int
	var coordValue string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show empire or base status",
		Long: `Show the empire overview, or with --coord the full status of one
base: energy ledger, capacities, structures, defenses and the live queue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := shared.NewEmpireID(empireID)
			if err != nil {
				return err
			}

			c, err := NewContainer(configPath, false)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if coordValue == "" {
				return printEmpireOverview(ctx, c, id)
			}

			coord, err := shared.NewCoord(coordValue)
			if err != nil {
				return err
			}
			return printBaseStatus(ctx, c, id, coord)
		},
	}

	cmd.Flags().IntVar(&empireID, "empire-id", 0, "Empire ID (required)")
	cmd.Flags().StringVar(&coordValue, "coord", "", "Base coordinate (e.g. A04:22:18:10)")
	_ = cmd.MarkFlagRequired("empire-id")

	return cmd
}

func printEmpireOverview(ctx context.Context, c *Container, id shared.EmpireID) error {
	response, err := c.Mediator.Send(ctx, &admission.EmpireOverviewQuery{EmpireID: id})
	if err != nil {
		return err
	}
	overview := response.(*admission.EmpireOverview)

	fmt.Printf("Empire:  %s (#%d)\n", overview.Name, overview.ID)
	fmt.Printf("Credits: %d\n", overview.Credits)

	if len(overview.TechLevels) > 0 {
		fmt.Println("\nTech levels:")
		for tech, level := range overview.TechLevels {
			fmt.Printf("  %-25s %d\n", tech, level)
		}
	}
	if len(overview.UnitCounts) > 0 {
		fmt.Println("\nUnits:")
		for unit, count := range overview.UnitCounts {
			fmt.Printf("  %-25s %d\n", unit, count)
		}
	}
	if len(overview.Bases) > 0 {
		fmt.Println("\nBases:")
		for _, coord := range overview.Bases {
			fmt.Printf("  %s\n", coord)
		}
	}
	return nil
}

func printBaseStatus(ctx context.Context, c *Container, id shared.EmpireID, coord shared.Coord) error {
	response, err := c.Mediator.Send(ctx, &admission.BaseStatusQuery{EmpireID: id, Coord: coord})
	if err != nil {
		return err
	}
	status := response.(*admission.BaseStatus)

	fmt.Printf("Base:       %s (%s)\n", status.Name, status.Coord)
	fmt.Printf("Energy:     produced=%d consumed=%d balance=%d\n",
		status.Energy.Produced, status.Energy.Consumed, status.Energy.Balance)
	fmt.Printf("Area:       %d/%d\n", status.AreaUsed, status.AreaTotal)
	fmt.Printf("Population: %d/%d\n", status.PopulationUsed, status.PopulationCapacity)
	fmt.Printf("Capacity:   construction=%d/h production=%d/h research=%d/h economy=%d/h\n",
		status.Capacities.ConstructionPerHour, status.Capacities.ProductionPerHour,
		status.Capacities.ResearchPerHour, status.Capacities.EconomyPerHour)

	if len(status.Structures) > 0 {
		fmt.Println("\nStructures:")
		printRecords(status.Structures)
	}
	if len(status.Defenses) > 0 {
		fmt.Println("\nDefenses:")
		printRecords(status.Defenses)
	}

	if len(status.Queue) > 0 {
		fmt.Println("\nQueue:")
		fmt.Printf("  %-38s %-10s %-22s %-9s %s\n", "ID", "TYPE", "KEY", "STATUS", "ETA")
		for _, e := range status.Queue {
			eta := "-"
			if e.EtaSeconds > 0 {
				eta = (time.Duration(e.EtaSeconds) * time.Second).String()
			}
			fmt.Printf("  %-38s %-10s %-22s %-9s %s\n",
				e.ID, e.Type, e.CatalogKey, e.Status, eta)
		}
	}
	return nil
}

func printRecords(records []admission.RecordStatus) {
	fmt.Printf("  %-22s %-6s %-8s %s\n", "KEY", "LEVEL", "ACTIVE", "UPGRADING")
	for _, r := range records {
		fmt.Printf("  %-22s %-6d %-8t %t\n",
			r.CatalogKey, r.Level, r.IsActive, r.PendingUpgrade)
	}
}
