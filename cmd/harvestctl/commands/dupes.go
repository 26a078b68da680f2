package commands

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"umaharvest-backend/cmd/harvestctl/utils"
)

func init() {
	rootCmd.AddCommand(dupesCmd)
}

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Show events captured more than once under the same name and category.",
	Long: "Events are stored once per capture without de-duplication, so the same " +
		"event appearing under several combinations produces several records. This " +
		"lists those groups for manual review.",
	Run: func(cmd *cobra.Command, args []string) {
		snapshot := loadSnapshot()

		type key struct{ name, category string }
		ids := map[key][]int64{}
		for _, e := range snapshot.Events {
			k := key{e.Name, e.Category}
			ids[k] = append(ids[k], e.Id)
		}

		keys := make([]key, 0, len(ids))
		for k, v := range ids {
			if len(v) > 1 {
				keys = append(keys, k)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			if len(ids[keys[i]]) != len(ids[keys[j]]) {
				return len(ids[keys[i]]) > len(ids[keys[j]])
			}
			return keys[i].name < keys[j].name
		})

		t := utils.NewTable()
		t.AppendHeader(table.Row{"name", "category", "count", "ids"})
		for _, k := range keys {
			t.AppendRow(table.Row{k.name, k.category, len(ids[k]), fmt.Sprint(ids[k])})
		}
		t.Render()

		fmt.Printf("%d duplicated event groups out of %d events\n", len(keys), len(snapshot.Events))
	},
}
