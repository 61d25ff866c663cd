package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/amishk599/jobscout/internal/model"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJobs(w io.Writer, jobs []model.Job) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, "No postings found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCH\tSOURCE\tTITLE\tCOMPANY\tLOCATION\tPOSTED\tURL")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%d%%\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.MatchScore, j.Source, j.Title, j.Company, j.Location, j.DatePosted.Format("2006-01-02"), j.URL)
	}
	return tw.Flush()
}

func writeAnalysis(w io.Writer, a model.CVAnalysis) error {
	fmt.Fprintf(w, "File:      %s\n", a.FileName)
	fmt.Fprintf(w, "ATS score: %d/100\n", a.ATSScore)
	fmt.Fprintf(w, "Keywords:  %s\n", strings.Join(a.Keywords, ", "))
	if len(a.Suggestions) > 0 {
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range a.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	return nil
}
