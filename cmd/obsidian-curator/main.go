// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the obsidian-curator CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jcordovilla/obsidian-curator-sub000/internal/secrets"
	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the obsidian-curator CLI.
var rootCmd = &cobra.Command{
	Use:   "obsidian-curator",
	Short: "LLM-driven quality curation for Obsidian vaults",
	Long: `obsidian-curator analyzes the notes in an Obsidian vault with a language
model, scores each note on independent quality dimensions, assigns themes
from a fixed taxonomy, and files accepted notes into a curated directory
tree. Every verdict is stored with a full rationale for later review.

The pipeline stages are subcommands: analyze scores a vault, organize
files accepted notes, results queries past runs, and taxonomy inspects
the theme tree.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./obsidian-curator.yaml or ~/.config/obsidian-curator/config.yaml)")
	rootCmd.PersistentFlags().String("vault", "", "Obsidian vault directory")
	rootCmd.PersistentFlags().String("curated-dir", "", "output directory for accepted notes")
	rootCmd.PersistentFlags().String("results-dir", "", "directory for the results database and exports")
	rootCmd.PersistentFlags().String("taxonomy", "", "taxonomy YAML file")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("obsidian-curator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "obsidian-curator"))
		}
	}

	viper.SetEnvPrefix("OBSIDIAN_CURATOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// vaultConfig resolves filesystem locations from flags, config file,
// and defaults, in that order.
func vaultConfig(cmd *cobra.Command) types.VaultConfig {
	return types.VaultConfig{
		VaultDir:     setting(cmd, "vault", "vault.vault_dir", "vault"),
		CuratedDir:   setting(cmd, "curated-dir", "vault.curated_dir", "curated"),
		ResultsDir:   setting(cmd, "results-dir", "vault.results_dir", "results"),
		TaxonomyPath: setting(cmd, "taxonomy", "vault.taxonomy_path", "taxonomy.yaml"),
	}
}

// setting returns the flag value if set, then the config file value,
// then the fallback.
func setting(cmd *cobra.Command, flag, key, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func settingInt(cmd *cobra.Command, flag, key string) int {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		v, _ := cmd.Flags().GetInt(flag)
		return v
	}
	return viper.GetInt(key)
}

func settingFloat(cmd *cobra.Command, flag, key string, fallback float64) float64 {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		v, _ := cmd.Flags().GetFloat64(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return fallback
}

func settingDuration(cmd *cobra.Command, flag, key string) time.Duration {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		v, _ := cmd.Flags().GetDuration(flag)
		return v
	}
	return viper.GetDuration(key)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
