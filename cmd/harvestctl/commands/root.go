package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"umaharvest-backend/services/harvester"
)

var snapshotDir string

var rootCmd = &cobra.Command{
	Use:   "harvestctl",
	Short: "harvestctl inspects harvest checkpoints and plans runs.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&snapshotDir, "snapshot", "harvest", "directory holding the run snapshot")
}

func loadSnapshot() *harvester.RunSnapshot {
	snapshot, err := harvester.NewCheckpointStore(snapshotDir).Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	return snapshot
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
