package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hbollon/go-edlib"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/wayfind/internal/snapshot"
)

var (
	kindFlag   string
	fuzzyFlag  bool
	searchFlag bool
	limitFlag  int
)

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols <name>",
	Short: "Query the snapshot database by symbol name",
	Long: `Query the most recent snapshot written by 'wayfind index'.

Examples:
  # Exact name lookup
  wayfind symbols handleRequest

  # Only functions
  wayfind symbols handleRequest --kind function

  # Tolerate typos
  wayfind symbols handleRequst --fuzzy

  # Substring search
  wayfind symbols handle --search`,
	Args: cobra.ExactArgs(1),
	RunE: runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "Filter by symbol kind (function, class, method, ...)")
	symbolsCmd.Flags().BoolVarP(&fuzzyFlag, "fuzzy", "f", false, "Approximate name matching")
	symbolsCmd.Flags().BoolVarP(&searchFlag, "search", "s", false, "Substring search instead of exact lookup")
	symbolsCmd.Flags().IntVarP(&limitFlag, "limit", "n", 50, "Maximum number of results")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	name := args[0]

	reader, err := snapshot.NewReader(cfg.Snapshot.Path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer reader.Close()

	info, err := reader.Latest()
	if err != nil {
		return err
	}
	if info == nil {
		return fmt.Errorf("no snapshot found in %s; run 'wayfind index' first", cfg.Snapshot.Path)
	}

	var records []snapshot.Record
	switch {
	case searchFlag:
		records, err = reader.Search(info.ID, name, limitFlag)
	case fuzzyFlag:
		records, err = fuzzyLookup(reader, info.ID, name, limitFlag)
	default:
		records, err = reader.Lookup(info.ID, name, kindFlag, limitFlag)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "no symbols matching %q\n", name)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	for _, rec := range records {
		sig := rec.Signature
		if sig == "" {
			sig = rec.Name
		}
		fmt.Fprintf(w, "%s:%d\t%s\t%s\n", rec.Path, rec.StartLine+1, rec.Kind, sig)
	}
	return nil
}

// fuzzyLookup widens an exact miss to names within a small edit distance.
// The snapshot schema has no edit-distance operator, so candidates come from
// a substring probe on the name's first characters plus a full scan fallback.
func fuzzyLookup(reader *snapshot.Reader, snapshotID, name string, limit int) ([]snapshot.Record, error) {
	// Exact hits first.
	exact, err := reader.Lookup(snapshotID, name, kindFlag, limit)
	if err != nil || len(exact) > 0 {
		return exact, err
	}

	probe := name
	if len(probe) > 3 {
		probe = probe[:3]
	}
	candidates, err := reader.Search(snapshotID, probe, 0)
	if err != nil {
		return nil, err
	}

	maxDist := len(name)/2 + 1
	var out []snapshot.Record
	for _, rec := range candidates {
		if kindFlag != "" && rec.Kind != kindFlag {
			continue
		}
		if edlib.LevenshteinDistance(name, rec.Name) <= maxDist {
			out = append(out, rec)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
