package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-world/internal/orchestrators/location"
)

var describeLocationID int64

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe a location as a player would see it",
	RunE:  runDescribe,
}

func init() {
	describeCmd.Flags().Int64Var(&describeLocationID, "location-id", 0, "location ID (required)")
	_ = describeCmd.MarkFlagRequired("location-id") // nolint:errcheck // safe to ignore in init
}

func runDescribe(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.cleanup()

	desc, err := s.engine.DescribeLocation(s.ctx, &location.DescribeLocationInput{
		LocationID: describeLocationID,
	})
	if err != nil {
		return fmt.Errorf("failed to describe location: %w", err)
	}

	fmt.Printf("%s\n\n%s\n", desc.Location.Name, desc.Description)
	if desc.IsDark {
		fmt.Println("\nIt is too dark to see any exits.")
		return nil
	}

	if len(desc.Exits) > 0 {
		fmt.Println("\nExits:")
		for _, exit := range desc.Exits {
			state := ""
			switch {
			case exit.IsLocked:
				state = " (locked)"
			case !exit.IsOpen:
				state = " (closed)"
			}
			fmt.Printf("  - %s: %s%s\n", exit.Direction, exit.ConnectionType, state)
		}
	}

	chars, err := s.engine.ListCharactersAt(s.ctx, &location.ListAtInput{LocationID: describeLocationID})
	if err != nil {
		return fmt.Errorf("failed to list characters: %w", err)
	}
	if len(chars.Characters) > 0 {
		fmt.Println("\nCharacters:")
		for _, ch := range chars.Characters {
			fmt.Printf("  - %s (%d/%d HP)\n", ch.Name, ch.CurrentHP, ch.MaxHP)
		}
	}

	items, err := s.engine.ListItemsAt(s.ctx, &location.ListAtInput{LocationID: describeLocationID})
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	if len(items.Items) > 0 {
		fmt.Println("\nItems:")
		for _, it := range items.Items {
			fmt.Printf("  - %s x%d\n", it.Name, it.Quantity)
		}
	}
	return nil
}
