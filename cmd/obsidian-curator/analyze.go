// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcordovilla/obsidian-curator-sub000/internal/analyze"
	"github.com/jcordovilla/obsidian-curator-sub000/internal/store"
	"github.com/jcordovilla/obsidian-curator-sub000/internal/taxonomy"
	"github.com/jcordovilla/obsidian-curator-sub000/internal/vault"
	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score vault notes and record curation verdicts",
	Long: `Analyze scans the vault, sends each note to the configured oracle for
quality scoring and theme labeling, applies the acceptance gates, and
stores one curation result per note. Use --sample with --seed for a
reproducible trial run over a subset of the vault.

Interrupting a run keeps the verdicts already produced; notes still in
flight are omitted, never recorded half-done.`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	vcfg := vaultConfig(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tax, err := taxonomy.Load(vcfg.TaxonomyPath)
	if err != nil {
		return err
	}

	notes, err := vault.Scan(vcfg.VaultDir, os.Stderr)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return fmt.Errorf("no notes found in %s", vcfg.VaultDir)
	}
	fmt.Fprintf(os.Stdout, "scanned %d notes from %s\n", len(notes), vcfg.VaultDir)

	acfg := analysisConfig(cmd)
	oracle, err := analyze.NewOracle(acfg.OracleConfig)
	if err != nil {
		return err
	}

	analyzer, err := analyze.New(oracle, tax, acfg)
	if err != nil {
		return err
	}

	bcfg := types.BatchConfig{
		Concurrency: settingInt(cmd, "concurrency", "batch.concurrency"),
		SampleSize:  settingInt(cmd, "sample", "batch.sample_size"),
		SampleSeed:  int64(settingInt(cmd, "seed", "batch.sample_seed")),
	}

	started := time.Now().UTC()
	out := analyzer.RunBatch(ctx, notes, bcfg, os.Stdout)

	fmt.Fprintf(os.Stdout, "\nrun %s: analyzed %d, accepted %d, rejected %d, skipped %d (accept rate %.1f%%)\n",
		out.RunID, out.Stats.Analyzed, out.Stats.Accepted, out.Stats.Rejected,
		out.Stats.Skipped, out.Stats.AcceptRate*100)

	if len(out.Results) == 0 {
		return fmt.Errorf("no results produced")
	}

	s, err := store.NewStore(vcfg.ResultsDir)
	if err != nil {
		return err
	}
	defer s.Close()

	run := store.RunSummary{
		ID:        out.RunID,
		StartedAt: started,
		Model:     acfg.ResolvedModel(),
		Analyzed:  out.Stats.Analyzed,
		Accepted:  out.Stats.Accepted,
		Rejected:  out.Stats.Rejected,
		Skipped:   out.Stats.Skipped,
	}
	if err := s.SaveRun(context.Background(), run, out.Results); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	fmt.Fprintf(os.Stdout, "results stored in %s\n", vcfg.ResultsDir)

	return nil
}

// analysisConfig assembles oracle, threshold, and matching settings
// from flags, config file, and secrets.
func analysisConfig(cmd *cobra.Command) types.AnalysisConfig {
	thresholds := types.DefaultThresholds()
	thresholds.Quality = settingFloat(cmd, "quality-threshold", "analysis.thresholds.quality_threshold", thresholds.Quality)
	thresholds.Relevance = settingFloat(cmd, "relevance-threshold", "analysis.thresholds.relevance_threshold", thresholds.Relevance)
	thresholds.ProfessionalWriting = settingFloat(cmd, "writing-threshold", "analysis.thresholds.professional_writing_threshold", thresholds.ProfessionalWriting)
	if v := settingInt(cmd, "min-length", "analysis.thresholds.min_content_length"); v > 0 {
		thresholds.MinContentLength = v
	}

	backend := setting(cmd, "backend", "analysis.backend", string(types.BackendOllama))

	return types.AnalysisConfig{
		OracleConfig: types.OracleConfig{
			Backend:       types.OracleBackend(backend),
			Model:         setting(cmd, "model", "analysis.model", ""),
			AnalysisModel: setting(cmd, "analysis-model", "analysis.analysis_model", ""),
			BaseURL:       secretDefault("ollama-base-url", setting(cmd, "base-url", "analysis.base_url", "")),
			APIKey:        secretDefault("anthropic-api-key", ""),
			MaxAttempts:   settingInt(cmd, "max-attempts", "analysis.max_attempts"),
			Timeout:       settingDuration(cmd, "timeout", "analysis.timeout"),
		},
		Thresholds:     thresholds,
		MatchThreshold: settingFloat(cmd, "match-threshold", "analysis.match_threshold", taxonomy.DefaultMatchThreshold),
	}
}

func init() {
	analyzeCmd.Flags().String("backend", "", "oracle backend: ollama or anthropic")
	analyzeCmd.Flags().String("model", "", "model identifier for analysis")
	analyzeCmd.Flags().String("analysis-model", "", "override model for the analysis sub-task")
	analyzeCmd.Flags().String("base-url", "", "oracle base URL (ollama)")
	analyzeCmd.Flags().Int("max-attempts", 0, "total oracle attempts per note (0 = default)")
	analyzeCmd.Flags().Duration("timeout", 0, "per-call oracle timeout (0 = default)")
	analyzeCmd.Flags().Int("concurrency", 0, "parallel analyses (0 = default)")
	analyzeCmd.Flags().Int("sample", 0, "analyze a random subset of this size")
	analyzeCmd.Flags().Int("seed", 0, "sampling seed for reproducible subsets")
	analyzeCmd.Flags().Float64("quality-threshold", 0, "overall quality gate")
	analyzeCmd.Flags().Float64("relevance-threshold", 0, "relevance gate")
	analyzeCmd.Flags().Float64("writing-threshold", 0, "professional writing gate")
	analyzeCmd.Flags().Int("min-length", 0, "minimum note body length in characters")
	analyzeCmd.Flags().Float64("match-threshold", 0, "minimum taxonomy match similarity")

	rootCmd.AddCommand(analyzeCmd)
}
