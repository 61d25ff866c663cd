package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/enrich"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/scoring"
	"github.com/amishk599/jobscout/internal/store"
)

var (
	tailorJobID        string
	tailorKeywords     []string
	tailorRequirements []string
	tailorApplied      bool
	tailorJSON         bool
)

var tailorCmd = &cobra.Command{
	Use:   "tailor <cv-file>",
	Short: "Check a CV against one posting and track the application status",
	Long: "Runs a CV tailoring pass for --job-id: the posting moves to generating while the CV is " +
		"analysed and compared with the posting's keywords and requirements, then to tailored. " +
		"--applied records the application afterwards. Counts against the cvTailoring budget.",
	Args: cobra.ExactArgs(1),
	RunE: runTailor,
}

func init() {
	tailorCmd.Flags().StringVar(&tailorJobID, "job-id", "", "posting id, e.g. seek-12345 (required)")
	tailorCmd.Flags().StringSliceVarP(&tailorKeywords, "keywords", "k", nil, "posting keywords (comma separated)")
	tailorCmd.Flags().StringSliceVarP(&tailorRequirements, "requirements", "r", nil, "posting requirement phrases (comma separated)")
	tailorCmd.Flags().BoolVar(&tailorApplied, "applied", false, "mark the posting as applied after tailoring")
	tailorCmd.Flags().BoolVar(&tailorJSON, "json", false, "print the report as JSON")
	tailorCmd.MarkFlagRequired("job-id")
	rootCmd.AddCommand(tailorCmd)
}

// tailorReport is what one tailoring pass found.
type tailorReport struct {
	JobID           string                  `json:"job_id"`
	Status          model.ApplicationStatus `json:"status"`
	ATSScore        int                     `json:"ats_score"`
	MatchScore      int                     `json:"match_score"`
	MissingKeywords []string                `json:"missing_keywords"`
	Suggestions     []string                `json:"suggestions"`
}

func runTailor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text, err := readCV(args[0])
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tracker, err := store.NewSQLiteStore(store.MemoryDSN, a.limiter, a.logger)
	if err != nil {
		return &model.AppError{ErrCode: "store_failed", Message: "opening session store", Err: err}
	}
	defer tracker.Close()

	report, err := tailorPosting(ctx, tracker, a.enricher, tailorJobID, filepath.Base(args[0]), text,
		splitKeywords(tailorKeywords), tailorRequirements)
	if err != nil {
		return err
	}

	if tailorApplied {
		if report.Status, err = tracker.SetStatus(ctx, tailorJobID, model.StatusApplied); err != nil {
			return err
		}
	}

	if tailorJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return writeTailorReport(cmd.OutOrStdout(), report)
}

// tailorPosting runs the tailoring pass for jobID through the tracker so the
// posting is generating while it runs and tailored once it succeeds.
func tailorPosting(ctx context.Context, tracker *store.SQLiteStore, e *enrich.Enricher, jobID, fileName, text string, kws, reqs []string) (tailorReport, error) {
	report := tailorReport{JobID: jobID}
	err := tracker.Tailor(ctx, jobID, func(ctx context.Context) error {
		analysis, err := e.AnalyzeCV(ctx, fileName, text)
		if err != nil {
			return err
		}
		report.ATSScore = analysis.ATSScore
		report.Suggestions = analysis.Suggestions
		report.MatchScore = e.MatchScore(text, kws, reqs)
		report.MissingKeywords = scoring.MissingKeywords(text, kws)
		return nil
	})
	if err != nil {
		return tailorReport{}, err
	}

	report.Status, err = tracker.Status(ctx, jobID)
	if err != nil {
		return tailorReport{}, err
	}
	return report, nil
}

func writeTailorReport(w io.Writer, r tailorReport) error {
	fmt.Fprintf(w, "Posting:   %s (%s)\n", r.JobID, r.Status)
	fmt.Fprintf(w, "ATS score: %d/100\n", r.ATSScore)
	fmt.Fprintf(w, "Match:     %d%%\n", r.MatchScore)
	if len(r.MissingKeywords) > 0 {
		fmt.Fprintf(w, "Missing:   %s\n", strings.Join(r.MissingKeywords, ", "))
	}
	for _, s := range r.Suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	return nil
}
