package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"umaharvest-backend/cmd/harvestctl/utils"
	"umaharvest-backend/lib/scrapers/gametora"
	"umaharvest-backend/services/harvester"
)

var planBaseUrl string

func init() {
	planCmd.Flags().StringVar(&planBaseUrl, "base-url", "", "catalog base url override")
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Fetch the catalog and print the combinations a run would visit.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client, err := gametora.NewClient(ctx, gametora.ClientOptions{BaseUrl: planBaseUrl})
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		characters, err := client.Characters(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		cards, err := client.SupportCards(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		scenarios, err := client.Scenarios(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		plan := harvester.Plan(
			toEntities(characters, harvester.KindCharacter),
			scenarios,
			toEntities(cards, harvester.KindSupportCard))

		t := utils.NewTable()
		t.AppendHeader(table.Row{"#", "character", "scenario", "cards", "scenario events"})
		for _, c := range plan {
			names := make([]string, len(c.Cards))
			for i, card := range c.Cards {
				names[i] = card.DisplayName
			}
			t.AppendRow(table.Row{
				c.Index, c.Character.DisplayName, c.Scenario,
				strings.Join(names, ", "), c.AllowScenarioEvent,
			})
		}
		t.Render()

		fmt.Printf("%d combinations for %d characters, %d cards, %d scenarios\n",
			len(plan), len(characters), len(cards), len(scenarios))
	},
}

func toEntities(entries []gametora.Entry, kind harvester.EntityKind) []harvester.CatalogEntity {
	out := make([]harvester.CatalogEntity, len(entries))
	for i, e := range entries {
		out[i] = harvester.CatalogEntity{
			Id:          e.Id,
			DisplayName: e.DisplayName,
			ImageRef:    e.ImageRef,
			Rarity:      e.Rarity,
			Kind:        kind,
		}
	}
	return out
}
