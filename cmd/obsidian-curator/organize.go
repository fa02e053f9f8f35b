// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcordovilla/obsidian-curator-sub000/internal/organize"
	"github.com/jcordovilla/obsidian-curator-sub000/internal/store"
	"github.com/jcordovilla/obsidian-curator-sub000/internal/vault"
)

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "File accepted notes into the curated directory tree",
	Long: `Organize reads the curation results of a run (the most recent by
default), copies each accepted note into the curated directory under
its highest-confidence taxonomy path, and stamps curation metadata into
the front matter. Notes with no resolved theme land in the
miscellaneous bucket. The source vault is never modified.`,
	RunE: runOrganize,
}

func runOrganize(cmd *cobra.Command, args []string) error {
	vcfg := vaultConfig(cmd)
	ctx := context.Background()

	s, err := store.NewStore(vcfg.ResultsDir)
	if err != nil {
		return err
	}
	defer s.Close()

	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		runID, err = s.LatestRunID(ctx)
		if err != nil {
			return err
		}
	}

	results, err := s.Results(ctx, store.QueryOptions{RunID: runID, MaxResults: 1000000})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("run %s has no stored results", runID)
	}

	notes, err := vault.Scan(vcfg.VaultDir, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "organizing run %s into %s\n", runID, vcfg.CuratedDir)
	summary, err := organize.Organize(notes, results, vcfg.CuratedDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d note(s) failed to organize", summary.Failed)
	}
	return nil
}

func init() {
	organizeCmd.Flags().String("run", "", "run ID to organize (default: most recent)")

	rootCmd.AddCommand(organizeCmd)
}
