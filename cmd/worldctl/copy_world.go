package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-world/internal/orchestrators/builder"
)

var (
	sourceWorldID int64
	copyName      string
	copyDesc      string
)

var copyWorldCmd = &cobra.Command{
	Use:   "copy-world",
	Short: "Copy a world into a fresh playable instance",
	RunE:  runCopyWorld,
}

func init() {
	copyWorldCmd.Flags().Int64Var(&sourceWorldID, "world-id", 0, "source world ID (required)")
	copyWorldCmd.Flags().StringVar(&copyName, "name", "", "name of the copy (required)")
	copyWorldCmd.Flags().StringVar(&copyDesc, "description", "", "description of the copy")
	_ = copyWorldCmd.MarkFlagRequired("world-id") // nolint:errcheck // safe to ignore in init
	_ = copyWorldCmd.MarkFlagRequired("name")     // nolint:errcheck // safe to ignore in init
}

func runCopyWorld(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.cleanup()

	out, err := s.engine.CopyWorld(s.ctx, &builder.CopyWorldInput{
		SourceWorldID: sourceWorldID,
		Name:          copyName,
		Description:   copyDesc,
	})
	if err != nil {
		return fmt.Errorf("failed to copy world: %w", err)
	}

	fmt.Printf("Copied world %d into %d (%s)\n", sourceWorldID, out.World.ID, out.World.Name)
	return printJSON(out.Counts)
}
