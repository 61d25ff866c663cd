package adapter

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	linkedinBaseURL    = "https://www.linkedin.com"
	linkedinSearchPath = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedinURNPrefix  = "urn:li:jobPosting:"
)

type linkedinSite struct {
	baseURL string
}

// NewLinkedInBoard returns a board for the linkedin guest jobs API. An empty
// baseURL uses the public site.
func NewLinkedInBoard(baseURL string, client *http.Client, opts BoardOptions) *Board {
	if baseURL == "" {
		baseURL = linkedinBaseURL
	}
	return newBoard(&linkedinSite{baseURL: strings.TrimRight(baseURL, "/")}, client, opts)
}

func (s *linkedinSite) source() model.Source { return model.SourceLinkedIn }

func (s *linkedinSite) searchURL(q model.Query) string {
	params := url.Values{}
	params.Set("keywords", q.Terms())
	if loc := strings.TrimSpace(q.Location); loc != "" {
		params.Set("location", loc)
	}
	params.Set("start", "0")
	return s.baseURL + linkedinSearchPath + "?" + params.Encode()
}

func (s *linkedinSite) cardSelector() string { return "div.base-card" }

func (s *linkedinSite) detailSelector() string { return ".show-more-less-html__markup" }

func (s *linkedinSite) parseCard(card *goquery.Selection) (listing, error) {
	urn, _ := card.Attr("data-entity-urn")
	href, _ := card.Find("a.base-card__full-link").First().Attr("href")

	posted, ok := card.Find("time").First().Attr("datetime")
	if !ok {
		posted = firstText(card, "time")
	}

	return listing{
		job: model.Job{
			Title:    firstText(card, "h3.base-search-card__title"),
			Company:  firstText(card, "h4.base-search-card__subtitle"),
			Location: firstText(card, "span.job-search-card__location"),
			Salary:   firstText(card, "span.job-search-card__salary-info"),
			URL:      resolveURL(s.baseURL, strings.TrimSpace(href)),
		},
		id:     strings.TrimPrefix(strings.TrimSpace(urn), linkedinURNPrefix),
		posted: posted,
	}, nil
}
