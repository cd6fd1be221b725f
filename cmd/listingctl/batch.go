package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/listing-parser/app/models"
	"github.com/listing-parser/app/services"
)

const maxLineBytes = 1 << 20

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Parse a file of listings into NDJSON records",
	Long: `Batch reads listings from --in (stdin by default) and writes one JSON
record per line to --out (stdout by default), in input order.

Input formats:
  blocks  listings separated by blank lines (default)
  ndjson  one JSON string or {"text": "..."} object per line`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("in", "", "input file (default stdin)")
	batchCmd.Flags().String("out", "", "output file (default stdout)")
	batchCmd.Flags().String("format", "blocks", "input format: blocks or ndjson")
	batchCmd.Flags().Int("workers", 0, "parallel workers (default from config)")
	batchCmd.Flags().String("block-style", "", "block rendering: title or letter (default from config)")
	batchCmd.Flags().Bool("fuzzy", false, "enable the approximate society fallback")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if path, _ := cmd.Flags().GetString("in"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	format, _ := cmd.Flags().GetString("format")
	texts, err := readListings(in, format)
	if err != nil {
		return err
	}

	listings, _, cfg, err := localServices(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.Batch.MaxListings > 0 && len(texts) > cfg.Batch.MaxListings {
		return fmt.Errorf("%d listings exceed the batch limit of %d", len(texts), cfg.Batch.MaxListings)
	}
	workers, _ := cmd.Flags().GetInt("workers")

	start := time.Now()
	results, err := listings.ParseBatch(cmd.Context(), texts, parseOptionsFromFlags(cmd), workers, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	ch := make(chan *models.ListingResult)
	go func() {
		defer close(ch)
		for _, r := range results {
			ch <- r
		}
	}()
	if err := services.WriteNDJSON(w, ch); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "parsed %d listings in %s\n", len(results), time.Since(start).Round(time.Millisecond))
	return nil
}

// readListings splits input into listing texts.
func readListings(r io.Reader, format string) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var texts []string
	switch format {
	case "blocks":
		var block []string
		flush := func() {
			if len(block) > 0 {
				texts = append(texts, strings.Join(block, "\n"))
				block = block[:0]
			}
		}
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				flush()
				continue
			}
			block = append(block, line)
		}
		flush()
	case "ndjson":
		for n := 1; sc.Scan(); n++ {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			text, err := decodeListingLine([]byte(line))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			texts = append(texts, text)
		}
	default:
		return nil, fmt.Errorf("unknown input format %q (want blocks or ndjson)", format)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}

func decodeListingLine(line []byte) (string, error) {
	if line[0] == '"' {
		var s string
		err := json.Unmarshal(line, &s)
		return s, err
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(line, &obj); err != nil {
		return "", err
	}
	return obj.Text, nil
}
