package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listing-parser/app/requests"
)

var parseCmd = &cobra.Command{
	Use:   "parse [text...]",
	Short: "Parse one listing and print its record as JSON",
	Long: `Parse joins its arguments into one listing, or reads the listing from
stdin when no argument is given, and prints the extracted record.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("block-style", "", "block rendering: title or letter (default from config)")
	parseCmd.Flags().Bool("fuzzy", false, "enable the approximate society fallback")
	parseCmd.Flags().Bool("compact", false, "print single-line JSON")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}

	listings, _, _, err := localServices(cmd, nil)
	if err != nil {
		return err
	}
	result, _, err := listings.Parse(cmd.Context(), text, parseOptionsFromFlags(cmd))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if compact, _ := cmd.Flags().GetBool("compact"); !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result.Record)
}

func parseOptionsFromFlags(cmd *cobra.Command) requests.ParseOptions {
	var opts requests.ParseOptions
	opts.BlockStyle, _ = cmd.Flags().GetString("block-style")
	if cmd.Flags().Changed("fuzzy") {
		fuzzy, _ := cmd.Flags().GetBool("fuzzy")
		opts.FuzzySocieties = &fuzzy
	}
	return opts
}
