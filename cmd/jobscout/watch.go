package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/filter"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/notifier"
	"github.com/amishk599/jobscout/internal/poller"
	"github.com/amishk599/jobscout/internal/scheduler"
	"github.com/amishk599/jobscout/internal/search"
	"github.com/amishk599/jobscout/internal/store"
)

var (
	watchLocation   string
	watchProfile    string
	watchOnce       bool
	watchTestNotify bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [keyword]...",
	Short: "Re-run searches on an interval and report postings not seen before",
	Long: "Runs every saved search from watch.queries (or the keywords given on the command line) " +
		"each watch.interval and reports only postings that have not been reported in this session. " +
		"Blocks until SIGINT/SIGTERM.",
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchLocation, "location", "l", "", "location for command-line keywords")
	watchCmd.Flags().StringVarP(&watchProfile, "profile", "p", "", "YAML profile used for match scoring")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run one cycle and exit")
	watchCmd.Flags().BoolVar(&watchTestNotify, "test-notify", false, "send a sample notification and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	n := setupNotifier(a.cfg.Watch.Notification, a.httpClient, a.logger)
	if watchTestNotify {
		if err := notifier.SendTestMessage(n); err != nil {
			return &model.AppError{ErrCode: "notify_failed", Message: "sending test notification", Err: err}
		}
		a.logger.Info("test notification sent")
		return nil
	}

	if watchProfile != "" {
		p, err := loadProfile(watchProfile)
		if err != nil {
			return err
		}
		if err := a.service.SetProfile(search.DefaultProfileID, p); err != nil {
			return err
		}
	}

	queries := a.cfg.Watch.Queries
	if len(args) > 0 {
		queries = []config.QueryConfig{{Keywords: splitKeywords(args), Location: watchLocation}}
	}
	if len(queries) == 0 {
		return &model.ValidationError{Field: "keywords", Message: "give keywords or configure watch.queries"}
	}

	tracker, err := store.NewSQLiteStore(store.MemoryDSN, a.limiter, a.logger)
	if err != nil {
		return &model.AppError{ErrCode: "store_failed", Message: "opening session store", Err: err}
	}
	defer tracker.Close()

	f := a.cfg.Watch.Filters
	jobFilter := filter.NewWatchFilter(filter.Criteria{
		TitleKeywords:   f.TitleKeywords,
		ExcludeKeywords: f.TitleExcludeKeywords,
		Locations:       f.Locations,
		MinMatchScore:   f.MinMatchScore,
	})

	pollers := make([]scheduler.Poller, 0, len(queries))
	for _, q := range queries {
		pollers = append(pollers, poller.NewSearchPoller(
			q.Name,
			a.service,
			model.Query{Keywords: q.Keywords, Location: q.Location},
			jobFilter,
			tracker,
			n,
			a.logger,
		))
	}

	sched := scheduler.NewScheduler(pollers, a.cfg.Watch.Interval, a.cfg.Watch.Gap, a.logger).
		WithCleanup(tracker, a.cfg.Watch.Retention)

	if watchOnce {
		res := sched.RunOnce(ctx)
		if res.Polled > 0 && res.Failed == res.Polled {
			return &model.AppError{ErrCode: "watch_failed", Message: fmt.Sprintf("all %d searches failed", res.Failed)}
		}
		return nil
	}
	if err := sched.Run(ctx); err != nil {
		return err
	}
	a.logger.Info("goodbye")
	return nil
}

func setupNotifier(cfg config.NotificationConfig, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}
