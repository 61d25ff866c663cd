package adapter

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobscout/internal/model"
)

const seekBaseURL = "https://www.seek.com.au"

type seekSite struct {
	baseURL string
}

// NewSeekBoard returns a board for seek. An empty baseURL uses the public site.
func NewSeekBoard(baseURL string, client *http.Client, opts BoardOptions) *Board {
	if baseURL == "" {
		baseURL = seekBaseURL
	}
	return newBoard(&seekSite{baseURL: strings.TrimRight(baseURL, "/")}, client, opts)
}

func (s *seekSite) source() model.Source { return model.SourceSeek }

func (s *seekSite) searchURL(q model.Query) string {
	params := url.Values{}
	params.Set("keywords", q.Terms())
	if loc := strings.TrimSpace(q.Location); loc != "" {
		params.Set("where", loc)
	}
	return s.baseURL + "/jobs?" + params.Encode()
}

func (s *seekSite) cardSelector() string { return `article[data-card-type="JobCard"]` }

func (s *seekSite) detailSelector() string { return `[data-automation="jobAdDetails"]` }

func (s *seekSite) parseCard(card *goquery.Selection) (listing, error) {
	title := card.Find(`[data-automation="jobTitle"]`).First()
	href, _ := title.Attr("href")
	id, _ := card.Attr("data-job-id")

	return listing{
		job: model.Job{
			Title:    cleanText(title.Text()),
			Company:  firstText(card, `[data-automation="jobCompany"]`),
			Location: firstText(card, `[data-automation="jobLocation"]`),
			Salary:   firstText(card, `[data-automation="jobSalary"]`),
			URL:      resolveURL(s.baseURL, href),
		},
		id:     strings.TrimSpace(id),
		posted: firstText(card, `[data-automation="jobListingDate"]`),
	}, nil
}
