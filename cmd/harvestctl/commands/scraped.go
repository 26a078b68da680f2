package commands

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"umaharvest-backend/cmd/harvestctl/utils"
	"umaharvest-backend/services/harvester/db"
)

var scrapedDbPath string

func init() {
	scrapedCmd.Flags().StringVar(&scrapedDbPath, "db", "harvester.db", "path to the scrape index database")
	rootCmd.AddCommand(scrapedCmd)
}

var scrapedCmd = &cobra.Command{
	Use:   "scraped",
	Short: "List the entities the scrape index has recorded.",
	Run: func(cmd *cobra.Command, args []string) {
		sqlite, err := sql.Open("sqlite", scrapedDbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		defer sqlite.Close()
		if _, err := sqlite.Exec(db.Schema); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		entities, err := db.New(sqlite).ListScrapedEntities(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"id", "kind", "name", "scraped at"})
		for _, e := range entities {
			t.AppendRow(table.Row{
				e.EntityID, e.Kind, e.DisplayName,
				time.Unix(e.ScrapedAt, 0).Format(time.RFC3339),
			})
		}
		t.Render()
	},
}
