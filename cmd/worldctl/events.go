package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-world/internal/orchestrators/eventlog"
)

var (
	eventsWorldID   int64
	eventsLimit     int
	eventsType      string
	eventsOperation string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the event history of a world",
	Long:  `Show recent events, or every event matching --type or --operation-id. Events are listed newest first.`,
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().Int64Var(&eventsWorldID, "world-id", 0, "world ID (required)")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "number of recent events; defaults to the configured limit")
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "only events of this type")
	eventsCmd.Flags().StringVar(&eventsOperation, "operation-id", "", "only events logged by this operation")
	_ = eventsCmd.MarkFlagRequired("world-id") // nolint:errcheck // safe to ignore in init
}

func runEvents(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.cleanup()

	if eventsType == "" && eventsOperation == "" {
		input := &eventlog.GetRecentEventsInput{WorldID: eventsWorldID, Limit: eventsLimit}
		if roomID > 0 {
			input.RoomID = &roomID
		}
		out, err := s.engine.GetRecentEvents(s.ctx, input)
		if err != nil {
			return fmt.Errorf("failed to get events: %w", err)
		}
		return printJSON(out.Events)
	}

	var filter eventlog.Filter
	if eventsType != "" {
		filter.EventType = &eventsType
	}
	if eventsOperation != "" {
		filter.OperationID = &eventsOperation
	}
	out, err := s.engine.GetEvents(s.ctx, &eventlog.GetEventsInput{WorldID: eventsWorldID, Filter: filter})
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}
	return printJSON(out.Events)
}
