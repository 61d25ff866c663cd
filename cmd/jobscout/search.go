package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/search"
)

var (
	searchLocation string
	searchProfile  string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>...",
	Short: "Search every enabled source once and print the merged results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "location to search in")
	searchCmd.Flags().StringVarP(&searchProfile, "profile", "p", "", "YAML profile used for match scoring")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if searchProfile != "" {
		p, err := loadProfile(searchProfile)
		if err != nil {
			return err
		}
		if err := a.service.SetProfile(search.DefaultProfileID, p); err != nil {
			return err
		}
	}

	jobs, err := a.service.SearchJobs(cmd.Context(), splitKeywords(args), searchLocation)
	if err != nil {
		return err
	}

	if searchJSON {
		return writeJSON(cmd.OutOrStdout(), jobs)
	}
	return writeJobs(cmd.OutOrStdout(), jobs)
}

// splitKeywords accepts both "go, rust" and separate arguments.
func splitKeywords(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, k := range strings.Split(arg, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}

func loadProfile(path string) (model.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Profile{}, &model.ValidationError{Field: "profile", Message: err.Error()}
	}
	var p model.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return model.Profile{}, &model.ValidationError{Field: "profile", Message: fmt.Sprintf("parse %s: %v", path, err)}
	}
	return p, nil
}
