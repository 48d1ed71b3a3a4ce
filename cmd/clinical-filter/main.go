// Package main provides the clinical-filter command-line tool.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinical-filter",
		Short: "Filter trio variant calls for clinically reportable candidates",
		Long: `clinical-filter screens a family trio's variant calls for candidates
consistent with Mendelian inheritance, combining per-variant filtering
rules with trio genotype resolution and a de novo confidence check.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}

	cmd.AddCommand(newFilterCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.clinical-filter.yaml and environment overrides.
func initConfig() {
	viper.SetConfigName(".clinical-filter")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("CLINICAL_FILTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("pp_dnm_threshold", 0.9)
	viper.SetDefault("maf_limit", 0.01)
	viper.SetDefault("consequence_fields", []string{"CQ", "VCQ"})
	viper.SetDefault("populations", []string{
		"AFR_AF", "AMR_AF", "ASN_AF", "DDD_AF", "EAS_AF",
		"ESP_AF", "EUR_AF", "MAX_AF", "SAS_AF", "UK10K_cohort_AF",
	})

	// a missing config file just means defaults apply
	_ = viper.ReadInConfig()
}
