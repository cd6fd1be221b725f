package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listing-parser/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Look a society up in the Meilisearch directory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().String("meili-url", "http://localhost:7700", "Meilisearch URL")
	searchCmd.Flags().String("meili-key", "", "Meilisearch API key (or LISTINGCTL_MEILI_KEY)")
	searchCmd.Flags().String("index", "societies", "index name")
	searchCmd.Flags().Int("limit", 5, "maximum hits")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("meili-url")
	key, _ := cmd.Flags().GetString("meili-key")
	index, _ := cmd.Flags().GetString("index")
	limit, _ := cmd.Flags().GetInt("limit")

	dir, err := search.NewSocietyDirectory(search.SearchConfig{
		Host:      url,
		APIKey:    firstNonEmpty(key, envString("meili_key")),
		IndexName: index,
	}, newLogger(cmd))
	if err != nil {
		return err
	}
	hits, err := dir.Search(strings.Join(args, " "), "", limit)
	if err != nil {
		return err
	}
	for _, h := range hits {
		fmt.Fprintf(cmd.OutOrStdout(), "%.3f\t%s\t%s\n", h.Score, h.Canonical, strings.Join(h.Aliases, ", "))
	}
	return nil
}
