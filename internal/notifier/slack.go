package notifier

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

var _ model.Notifier = (*SlackNotifier)(nil)

// DefaultSlackPause separates consecutive webhook posts.
const DefaultSlackPause = 500 * time.Millisecond

// slackAttempts is the number of posts per message when Slack answers 429.
const slackAttempts = 2

// SlackNotifier posts one Block Kit message per posting to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	pause      time.Duration
	sleep      func(time.Duration)
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier for webhookURL.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		pause:      DefaultSlackPause,
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// Notify fails only when every message fails; partial failures are logged.
func (s *SlackNotifier) Notify(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	var errs []error
	for i, j := range jobs {
		if i > 0 && s.pause > 0 {
			s.sleep(s.pause)
		}
		if err := s.deliver(j); err != nil {
			s.logger.Error("slack notification failed", "job_id", j.ID, "title", j.Title, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", j.ID, err))
		}
	}

	if len(errs) == len(jobs) {
		return fmt.Errorf("all %d slack notifications failed: %w", len(errs), errors.Join(errs...))
	}
	s.logger.Info("slack notifications complete", "sent", len(jobs)-len(errs), "failed", len(errs))
	return nil
}

// deliver posts j, waiting out one Retry-After when Slack throttles.
func (s *SlackNotifier) deliver(j model.Job) error {
	body, err := json.Marshal(buildPayload(j))
	if err != nil {
		return fmt.Errorf("encoding slack payload: %w", err)
	}

	var status int
	for attempt := 1; attempt <= slackAttempts; attempt++ {
		var wait time.Duration
		status, wait, err = s.post(body)
		if err != nil {
			return err
		}
		if status != http.StatusTooManyRequests || attempt == slackAttempts {
			break
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after", wait.String())
		s.sleep(wait)
	}

	if status != http.StatusOK {
		return &model.HTTPError{StatusCode: status, Err: fmt.Errorf("slack webhook answered %d", status)}
	}
	s.logger.Debug("slack message sent", "job_id", j.ID)
	return nil
}

// post returns the status and how long Slack asked us to wait (at least 1s).
func (s *SlackNotifier) post(body []byte) (int, time.Duration, error) {
	req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("posting to slack: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	return resp.StatusCode, time.Duration(max(secs, 1)) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

// SendTestMessage sends a sample posting to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	testJob := model.Job{
		ID:         "test-001",
		Title:      "Integration Check",
		Company:    "jobscout",
		Location:   "Everywhere",
		Salary:     model.SalaryNotSpecified,
		URL:        "https://www.seek.com.au",
		DatePosted: time.Now().UTC().Truncate(24 * time.Hour),
		Source:     "test",
	}
	return n.Notify([]model.Job{testJob})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func mrkdwn(label, value string) slackText {
	return slackText{Type: "mrkdwn", Text: "*" + label + ":*\n" + value}
}

func fieldsSection(fields ...slackText) slackBlock {
	return slackBlock{Type: "section", Fields: fields}
}

// buildPayload lays out one posting: header, who and where, facts, optional
// keywords, a listing button and a divider.
func buildPayload(j model.Job) slackPayload {
	posted := "Unknown"
	if !j.DatePosted.IsZero() {
		posted = j.DatePosted.Format("Mon 2 Jan 2006")
	}
	salary := cmp.Or(j.Salary, model.SalaryNotSpecified)

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: "🔎 " + j.Company + ": " + j.Title}},
		fieldsSection(mrkdwn("Company", j.Company), mrkdwn("Location", j.Location)),
		fieldsSection(
			mrkdwn("Posted", posted),
			mrkdwn("Salary", salary),
			mrkdwn("Source", capitalize(string(j.Source))),
			mrkdwn("Match", fmt.Sprintf("%d%%", j.MatchScore)),
		),
	}
	if len(j.Keywords) > 0 {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Keywords:* " + strings.Join(j.Keywords, ", ")},
		})
	}

	button := slackElement{
		Type:  "button",
		Text:  slackText{Type: "plain_text", Text: "View Listing"},
		URL:   j.URL,
		Style: "primary",
	}
	blocks = append(blocks,
		slackBlock{Type: "actions", Elements: []slackElement{button}},
		slackBlock{Type: "divider"},
	)
	return slackPayload{Blocks: blocks}
}
