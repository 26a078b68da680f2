package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"umaharvest-backend/cmd/harvestctl/utils"
)

var eventsCategory string

func init() {
	eventsCmd.Flags().StringVar(&eventsCategory, "category", "", "only show events of this category")
	rootCmd.AddCommand(eventsCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List captured events.",
	Run: func(cmd *cobra.Command, args []string) {
		snapshot := loadSnapshot()

		t := utils.NewTable()
		t.AppendHeader(table.Row{"id", "category", "name", "choices"})
		for _, e := range snapshot.Events {
			if eventsCategory != "" && e.Category != eventsCategory {
				continue
			}
			t.AppendRow(table.Row{e.Id, e.Category, e.Name, len(e.Choices)})
		}
		t.Render()

		fmt.Printf("progress: %d/%d (%.1f%%)\n",
			snapshot.Progress.Completed,
			snapshot.Progress.Total,
			snapshot.Progress.Percentage)
	},
}
