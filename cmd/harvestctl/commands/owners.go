package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"umaharvest-backend/cmd/harvestctl/utils"
	"umaharvest-backend/services/harvester"
)

func init() {
	rootCmd.AddCommand(ownersCmd)
}

var ownersCmd = &cobra.Command{
	Use:   "owners",
	Short: "List every owner in the snapshot with its event counts.",
	Run: func(cmd *cobra.Command, args []string) {
		snapshot := loadSnapshot()

		t := utils.NewTable()
		t.AppendHeader(table.Row{"type", "id", "name", "rarity", "events"})
		appendOwners(t, "character", snapshot.Characters)
		appendOwners(t, "support", snapshot.SupportCards)
		appendOwners(t, "scenario", snapshot.Scenarios)
		t.Render()
	},
}

func appendOwners(t table.Writer, kind string, groups []harvester.OwnerGroup) {
	for _, g := range groups {
		total := 0
		for _, ids := range g.EventsByCategory {
			total += len(ids)
		}
		t.AppendRow(table.Row{kind, g.OwnerId, g.DisplayName, g.Rarity, total})
	}
}
