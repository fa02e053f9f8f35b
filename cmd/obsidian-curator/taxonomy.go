// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcordovilla/obsidian-curator-sub000/internal/taxonomy"
	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect the theme taxonomy",
	Long: `Taxonomy loads and validates the taxonomy YAML file. With no
arguments it lists every node path. Use resolve to test how a free-form
theme label maps onto the tree.`,
	RunE: runTaxonomyList,
}

func runTaxonomyList(cmd *cobra.Command, args []string) error {
	tax, err := loadTaxonomy(cmd)
	if err != nil {
		return err
	}
	for _, path := range tax.Paths() {
		fmt.Println(path)
	}
	fmt.Fprintf(os.Stdout, "\n%d nodes\n", tax.Len())
	return nil
}

var taxonomyResolveCmd = &cobra.Command{
	Use:   "resolve <label>...",
	Short: "Resolve free-form theme labels against the taxonomy",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaxonomyResolve,
}

func runTaxonomyResolve(cmd *cobra.Command, args []string) error {
	tax, err := loadTaxonomy(cmd)
	if err != nil {
		return err
	}
	threshold, _ := cmd.Flags().GetFloat64("match-threshold")
	if threshold == 0 {
		threshold = taxonomy.DefaultMatchThreshold
	}

	labels := make([]types.RawTheme, len(args))
	for i, a := range args {
		labels[i] = types.RawTheme{Label: a, Confidence: 1.0}
	}

	assignments, unresolved := tax.Resolve(labels, threshold)
	for _, a := range assignments {
		fmt.Fprintf(os.Stdout, "%-40s  %.2f\n", a.Path, a.Confidence)
	}
	for _, u := range unresolved {
		fmt.Fprintf(os.Stdout, "%-40s  unresolved\n", u)
	}
	return nil
}

func loadTaxonomy(cmd *cobra.Command) (*taxonomy.Taxonomy, error) {
	vcfg := vaultConfig(cmd)
	return taxonomy.Load(vcfg.TaxonomyPath)
}

func init() {
	taxonomyResolveCmd.Flags().Float64("match-threshold", 0, "minimum match similarity")

	taxonomyCmd.AddCommand(taxonomyResolveCmd)
	rootCmd.AddCommand(taxonomyCmd)
}
