package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputDir      string
	configPath     string
	verbosity      string
	logDir         string
	sourceDirs     []string
	moduleDirs     []string
	tabWidth       int
	sourceEncoding string
	bundleNames    []string

	// Root command
	rootCmd = &cobra.Command{
		Use:   "coverage-compare",
		Short: "Compare the code coverage of several runs side by side",
		Long: `coverage-compare renders HTML reports that show the coverage of two or
more bundles next to each other, down to annotated source lines.

The first bundle is the primary bundle: it decides which packages, classes
and methods appear and how tables are sorted. Bundles are read from Go
coverage profiles or from YAML/JSON coverage trees.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "./coverage-report", "Output directory for the report")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML report configuration file")
	rootCmd.PersistentFlags().StringVar(&verbosity, "verbosity", "info", "Log verbosity (error, info, debug, trace)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for a timestamped log file (no log file when empty)")
	rootCmd.PersistentFlags().StringArrayVar(&sourceDirs, "source-dir", nil, "Source directory, one sub directory per package (repeatable)")
	rootCmd.PersistentFlags().StringArrayVar(&moduleDirs, "module-dir", nil, "Go module directory containing go.mod (repeatable)")
	rootCmd.PersistentFlags().IntVar(&tabWidth, "tab-width", 4, "Tab width used in source pages")
	rootCmd.PersistentFlags().StringVar(&sourceEncoding, "source-encoding", "", "Character encoding of source files (default UTF-8)")
	rootCmd.PersistentFlags().StringArrayVar(&bundleNames, "name", nil, "Bundle name for the coverage file at the same position (repeatable)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
