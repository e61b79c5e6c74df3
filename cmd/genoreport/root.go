package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/genoreport/internal/log"
	"github.com/nao1215/genoreport/internal/model"
)

// NewRootCmd creates the root command for genoreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genoreport",
		Short: "Descriptive reports for SNP and presence/absence marker data",
		Long: `genoreport reads genotype tables and prints descriptive statistics of
one marker statistic per run: a summary, a quantile threshold table and a
boxplot stacked on a histogram. Charts can be saved as native snapshots and
rendered images. Every report is archived for later review.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().IntP("verbosity", "V", int(log.DefaultVerbosity),
		"Verbosity: 0 silent, 1 banners, 2 progress, 3 results, 5 detail")
	cmd.PersistentFlags().Bool("log-json", false, "Write log records as JSON lines")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .genoreport in current, XDG config or home directory)")

	for _, kind := range model.Kinds() {
		cmd.AddCommand(NewReportCmd(kind))
	}
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
