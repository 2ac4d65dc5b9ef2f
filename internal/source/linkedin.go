package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobworkflow/internal/httputil"
)

// userAgent mimics a desktop browser; the guest endpoints refuse obvious
// bot agents.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// searchPageSize is how many cards one guest search fragment carries.
const searchPageSize = 25

// LinkedIn fetches postings from the public guest endpoints: the HTML
// fragments the infinite-scroll search page loads, plus one posting
// fragment per job for its description. No authentication or cookies.
type LinkedIn struct {
	BaseURL string // override in tests
	Retry   httputil.RetryConfig
}

func NewLinkedIn() *LinkedIn {
	cfg := httputil.DefaultRetryConfig()
	cfg.Client = &http.Client{Timeout: 30 * time.Second}
	return &LinkedIn{
		BaseURL: "https://www.linkedin.com",
		Retry:   cfg,
	}
}

func (l *LinkedIn) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept-Language", "en-US,en;q=0.9")
	return h
}

// Fetch implements Source. The first search page must succeed; later
// pages and description fetches degrade soft, so a mid-run rate limit
// still yields partial results.
func (l *LinkedIn) Fetch(ctx context.Context, term, location string, sites []string, resultsWanted, hoursOld int) ([]RawRecord, error) {
	if !linkedinRequested(sites) {
		return nil, fmt.Errorf("unsupported sites %v: only linkedin is implemented", sites)
	}

	var records []RawRecord
	for start := 0; len(records) < resultsWanted; start += searchPageSize {
		page, err := l.searchPage(ctx, term, location, hoursOld, start)
		if err != nil {
			if start == 0 {
				return nil, err
			}
			slog.Warn("search page failed, keeping partial results",
				"term", term, "start", start, "err", err)
			break
		}
		if len(page) == 0 {
			break
		}
		records = append(records, page...)
	}
	if len(records) > resultsWanted {
		records = records[:resultsWanted]
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if records[i].ID == "" {
			continue
		}
		desc, err := l.fetchDescription(ctx, records[i].ID)
		if err != nil {
			slog.Debug("job description fetch failed", "job_id", records[i].ID, "err", err)
			continue
		}
		records[i].Description = desc
	}
	return records, nil
}

func linkedinRequested(sites []string) bool {
	for _, s := range sites {
		if strings.EqualFold(strings.TrimSpace(s), "linkedin") {
			return true
		}
	}
	return false
}

func (l *LinkedIn) searchPage(ctx context.Context, term, location string, hoursOld, start int) ([]RawRecord, error) {
	params := url.Values{}
	params.Set("keywords", term)
	params.Set("location", location)
	if hoursOld > 0 {
		params.Set("f_TPR", fmt.Sprintf("r%d", hoursOld*3600))
	}
	params.Set("start", strconv.Itoa(start))

	u := l.BaseURL + "/jobs-guest/jobs/api/seeMoreJobPostings/search?" + params.Encode()
	body, err := httputil.Get(ctx, u, l.header(), l.Retry)
	if err != nil {
		return nil, fmt.Errorf("search page start=%d: %w", start, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var out []RawRecord
	doc.Find("div.base-search-card").Each(func(_ int, card *goquery.Selection) {
		href := card.Find("a.base-card__full-link").AttrOr("href", "")
		rec := RawRecord{
			Site:       "linkedin",
			Title:      collapseSpace(card.Find("h3.base-search-card__title").Text()),
			Company:    collapseSpace(card.Find("h4.base-search-card__subtitle").Text()),
			Location:   collapseSpace(card.Find("span.job-search-card__location").Text()),
			DatePosted: card.Find("time").AttrOr("datetime", ""),
		}
		// The card href carries tracking params; the numeric id gives a
		// stable canonical URL.
		if m := linkedinJobViewRe.FindStringSubmatch(href); m != nil {
			rec.ID = m[1]
			rec.JobURL = "https://www.linkedin.com/jobs/view/" + m[1]
		} else {
			rec.JobURL = strings.TrimSpace(href)
		}
		if rec.JobURL == "" {
			return
		}
		out = append(out, rec)
	})
	return out, nil
}

func (l *LinkedIn) fetchDescription(ctx context.Context, id string) (string, error) {
	u := l.BaseURL + "/jobs-guest/jobs/api/jobPosting/" + id
	body, err := httputil.Get(ctx, u, l.header(), l.Retry)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse job posting: %w", err)
	}
	markup := doc.Find("div.show-more-less-html__markup").First()
	if markup.Length() == 0 {
		return "", nil
	}
	return blockText(markup.Text()), nil
}

// collapseSpace flattens the newline-indented text goquery extracts from
// card markup into a single line.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// blockText keeps a description's line structure but trims each line and
// collapses blank-line runs.
func blockText(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
