package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/scoring"
)

var (
	matchKeywords     []string
	matchRequirements []string
)

var matchCmd = &cobra.Command{
	Use:   "match <cv-file>",
	Short: "Score a CV against a posting's keywords and requirements",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringSliceVarP(&matchKeywords, "keywords", "k", nil, "posting keywords (comma separated)")
	matchCmd.Flags().StringSliceVarP(&matchRequirements, "requirements", "r", nil, "posting requirement phrases (comma separated)")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	text, err := readCV(args[0])
	if err != nil {
		return err
	}
	score := scoring.MatchScore(text, matchKeywords, matchRequirements)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\n", score)
	return err
}
