package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franz/score-stand/internal/settings"
	"github.com/franz/score-stand/internal/store"
	"github.com/franz/score-stand/internal/util"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed scores",
	Long: `List the scores in the library index as a table.

Filters combine: --composer matches the composer exactly (case
folded), --search matches a title substring, and every --tag given
must be present on the score. Without --sort the order saved in
settings applies.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("composer", "c", "", "only scores by this composer")
	listCmd.Flags().StringP("search", "s", "", "substring match on the title")
	listCmd.Flags().StringSliceP("tag", "t", nil, "require this tag (repeatable)")
	listCmd.Flags().String("sort", "composer", "sort order: composer or title")
}

func runList(cmd *cobra.Command, args []string) error {
	composer, _ := cmd.Flags().GetString("composer")
	search, _ := cmd.Flags().GetString("search")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	sortOrder, _ := cmd.Flags().GetString("sort")

	// The saved sort preference applies when no flag overrides it.
	if !cmd.Flags().Changed("sort") {
		if s, err := settings.Load(settingsPath()); err == nil && s.SortByTitle {
			sortOrder = "title"
		}
	}

	var byTitle bool
	switch sortOrder {
	case "composer":
	case "title":
		byTitle = true
	default:
		return fmt.Errorf("invalid sort order %q (expected composer or title)", sortOrder)
	}

	db, err := openStore(databasePath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	scores, err := db.SearchScores(store.SearchOptions{
		Title:    search,
		Composer: composer,
		Tags:     tags,
		ByTitle:  byTitle,
	})
	if err != nil {
		return fmt.Errorf("failed to search index: %w", err)
	}

	if len(scores) == 0 {
		util.InfoLog("No scores match. Run 'msv scan' to index the library.")
		return nil
	}

	rows := make([][]string, 0, len(scores))
	for _, sc := range scores {
		rows = append(rows, []string{sc.Composer, sc.Title, strings.Join(sc.Tags, " "), sc.Path})
	}

	tbl := renderTable(
		[]string{"Composer", "Title", "Tags", "Path"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	)
	fmt.Fprint(os.Stdout, tbl)
	fmt.Printf("\n%d scores\n", len(scores))

	return nil
}
