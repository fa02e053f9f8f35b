// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcordovilla/obsidian-curator-sub000/internal/store"
	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Query and export stored curation results",
	Long: `Results serves queries over the curation results database. Use
subcommands to list results with filters, search rationales with
full-text queries, export runs to YAML or JSON, or list past runs.`,
}

// --- list subcommand ---

var resultsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List curation results with full-text search and filters",
	Long: `List queries stored curation results. A positional query searches
rationale and justification text with FTS5; flags add structured
filters for run, note, verdict, and theme.`,
	RunE: runResultsList,
}

func runResultsList(cmd *cobra.Command, args []string) error {
	vcfg := vaultConfig(cmd)
	s, err := store.NewStore(vcfg.ResultsDir)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := resultOptsFromFlags(cmd, args)
	results, err := s.Results(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatResults(results, jsonOutput)
}

func formatResults(results []types.CurationResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-40s  %-8s  %-9s  %-30s  %s\n",
		"Note", "Verdict", "Composite", "Top theme", "Rationale")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))

	for _, r := range results {
		verdict := "rejected"
		if r.Accepted {
			verdict = "accepted"
		}
		theme := "-"
		if top, ok := r.TopTheme(); ok {
			theme = top.Path
		}
		note := r.NoteID
		if len(note) > 40 {
			note = note[:37] + "..."
		}
		rationale := r.Rationale
		if len(rationale) > 60 {
			rationale = rationale[:57] + "..."
		}
		if len(theme) > 30 {
			theme = theme[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-40s  %-8s  %-9.2f  %-30s  %s\n",
			note, verdict, r.Composite, theme, rationale)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export curation results to YAML or JSON",
	Long: `Export writes stored curation results (or a filtered subset) to
export.yaml or export.json in the results directory. Supports the same
filter flags as list for partial exports.`,
	RunE: runResultsExport,
}

func runResultsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	vcfg := vaultConfig(cmd)
	s, err := store.NewStore(vcfg.ResultsDir)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := resultOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", vcfg.ResultsDir)
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", vcfg.ResultsDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- runs subcommand ---

var resultsRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past batch runs",
	RunE:  runResultsRuns,
}

func runResultsRuns(cmd *cobra.Command, args []string) error {
	vcfg := vaultConfig(cmd)
	s, err := store.NewStore(vcfg.ResultsDir)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs(context.Background())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs stored.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-20s  %8s  %8s  %8s  %8s\n",
		"Run", "Started", "Model", "Analyzed", "Accepted", "Rejected", "Skipped")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-20s  %8d  %8d  %8d  %8d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Model,
			r.Analyzed, r.Accepted, r.Rejected, r.Skipped)
	}
	return nil
}

// --- shared helpers ---

func resultOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	runID, _ := cmd.Flags().GetString("run")
	noteID, _ := cmd.Flags().GetString("note")
	verdict, _ := cmd.Flags().GetString("verdict")
	theme, _ := cmd.Flags().GetString("theme")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:      queryText,
		RunID:      runID,
		NoteID:     noteID,
		Verdict:    store.Verdict(verdict),
		Theme:      theme,
		MaxResults: limit,
	}
}

func init() {
	for _, c := range []*cobra.Command{resultsListCmd, resultsExportCmd} {
		c.Flags().String("query", "", "full-text search over rationale and justification")
		c.Flags().String("run", "", "filter by run ID")
		c.Flags().String("note", "", "filter by note ID")
		c.Flags().String("verdict", "", "filter by verdict: accepted or rejected")
		c.Flags().String("theme", "", "filter by taxonomy path")
		c.Flags().Int("limit", 0, "maximum results (0 = default)")
	}
	resultsListCmd.Flags().Bool("json", false, "output results as JSON")
	resultsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsRunsCmd)

	rootCmd.AddCommand(resultsCmd)
}
