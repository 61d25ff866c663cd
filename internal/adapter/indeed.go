package adapter

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobscout/internal/model"
)

const indeedBaseURL = "https://au.indeed.com"

type indeedSite struct {
	baseURL string
}

// NewIndeedBoard returns a board for indeed. An empty baseURL uses the public site.
func NewIndeedBoard(baseURL string, client *http.Client, opts BoardOptions) *Board {
	if baseURL == "" {
		baseURL = indeedBaseURL
	}
	return newBoard(&indeedSite{baseURL: strings.TrimRight(baseURL, "/")}, client, opts)
}

func (s *indeedSite) source() model.Source { return model.SourceIndeed }

func (s *indeedSite) searchURL(q model.Query) string {
	params := url.Values{}
	params.Set("q", q.Terms())
	if loc := strings.TrimSpace(q.Location); loc != "" {
		params.Set("l", loc)
	}
	return s.baseURL + "/jobs?" + params.Encode()
}

func (s *indeedSite) cardSelector() string { return "div.job_seen_beacon" }

func (s *indeedSite) detailSelector() string { return "#jobDescriptionText" }

func (s *indeedSite) parseCard(card *goquery.Selection) (listing, error) {
	link := card.Find("a[data-jk]").First()
	jk, _ := link.Attr("data-jk")
	jk = strings.TrimSpace(jk)

	title := firstText(card, "h2.jobTitle span[title]")
	if title == "" {
		title = firstText(card, "h2.jobTitle")
	}

	salary := firstText(card, ".salary-snippet-container")
	if salary == "" {
		salary = firstText(card, `[data-testid="attribute_snippet_testid"]`)
	}

	var detail string
	if jk != "" {
		detail = s.baseURL + "/viewjob?jk=" + url.QueryEscape(jk)
	}

	return listing{
		job: model.Job{
			Title:    title,
			Company:  firstText(card, `[data-testid="company-name"]`),
			Location: firstText(card, `[data-testid="text-location"]`),
			Salary:   salary,
			URL:      detail,
		},
		id:     jk,
		posted: firstText(card, "span.date"),
	}, nil
}
