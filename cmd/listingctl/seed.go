package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listing-parser/internal/search"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Push the society dictionary into the Meilisearch directory",
	Long: `Seed configures the society index and uploads one document per society
of the active dictionary (built-in, or --dictionary), tagged with its version.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().String("meili-url", "http://localhost:7700", "Meilisearch URL")
	seedCmd.Flags().String("meili-key", "", "Meilisearch API key (or LISTINGCTL_MEILI_KEY)")
	seedCmd.Flags().String("index", "societies", "index name")
	seedCmd.Flags().Duration("timeout", 30*time.Second, "HTTP timeout")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("meili-url")
	key, _ := cmd.Flags().GetString("meili-key")
	key = firstNonEmpty(key, envString("meili_key"))
	index, _ := cmd.Flags().GetString("index")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	logger := newLogger(cmd)
	dir, err := search.NewSocietyDirectory(search.SearchConfig{
		Host:      url,
		APIKey:    key,
		IndexName: index,
		Timeout:   timeout,
	}, logger)
	if err != nil {
		return err
	}
	if err := dir.EnsureSettings(); err != nil {
		return err
	}

	_, rules, _, err := localServices(cmd, dir)
	if err != nil {
		return err
	}
	n, err := rules.SyncDirectory(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("Seed finished", zap.Int("societies", n))
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d societies (version %s) into %s\n", n, rules.Version(), index)
	return nil
}
