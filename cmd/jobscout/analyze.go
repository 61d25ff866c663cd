package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/model"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <cv-file>",
	Short: "Score a plain-text CV for ATS readiness",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readCV(args[0])
	if err != nil {
		return err
	}

	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	analysis, err := a.enricher.AnalyzeCV(cmd.Context(), filepath.Base(args[0]), text)
	if err != nil {
		return err
	}

	if analyzeJSON {
		return writeJSON(cmd.OutOrStdout(), analysis)
	}
	return writeAnalysis(cmd.OutOrStdout(), analysis)
}

func readCV(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &model.ValidationError{Field: "cv", Message: err.Error()}
	}
	return string(data), nil
}
