package notifier

import (
	"log/slog"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one line per posting. It never fails.
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		args := []any{
			"job_id", j.ID,
			"source", j.Source,
			"company", j.Company,
			"title", j.Title,
			"location", j.Location,
			"salary", j.Salary,
			"match_score", j.MatchScore,
			"url", j.URL,
		}
		if !j.DatePosted.IsZero() {
			args = append(args, "posted", j.DatePosted.Format("2006-01-02"))
		}
		if len(j.Keywords) > 0 {
			args = append(args, "keywords", strings.Join(j.Keywords, ","))
		}
		n.logger.Info("new job", args...)
	}
	if len(jobs) > 0 {
		n.logger.Info("watch batch reported", "count", len(jobs))
	}
	return nil
}
