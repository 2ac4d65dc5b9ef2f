package source

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"jobworkflow/internal/db"
)

var linkedinJobViewRe = regexp.MustCompile(`linkedin\.com/jobs/view/(\d+)`)

// JobID extracts the numeric posting id from a LinkedIn-style URL. Other
// URLs fall back to whatever id the board reported.
func JobID(url, boardID string) string {
	if m := linkedinJobViewRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return boardID
}

// Normalize converts a raw record into a cleaned one. The URL prefers
// job_url over job_url_direct; captured_at falls back to now when the
// posting date is absent or unparseable; the whole raw record rides along
// as the payload.
func Normalize(raw RawRecord, siteOverride string, now time.Time) db.CleanedRecord {
	url := strings.TrimSpace(raw.JobURL)
	if url == "" {
		url = strings.TrimSpace(raw.JobURLDirect)
	}

	site := strings.TrimSpace(siteOverride)
	if site == "" {
		site = strings.TrimSpace(raw.Site)
	}
	if site == "" {
		site = "unknown"
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		payload = []byte("{}")
	}

	return db.CleanedRecord{
		JobID:       JobID(url, strings.TrimSpace(raw.ID)),
		Title:       strings.TrimSpace(raw.Title),
		Company:     strings.TrimSpace(raw.Company),
		Description: strings.TrimSpace(raw.Description),
		URL:         url,
		Location:    strings.TrimSpace(raw.Location),
		Source:      site,
		CapturedAt:  db.FormatTime(parseDatePosted(raw.DatePosted, now)),
		PayloadJSON: string(payload),
	}
}

// parseDatePosted accepts the date shapes boards actually emit: RFC 3339
// with or without fractional seconds, a bare datetime, or a bare date.
func parseDatePosted(raw string, now time.Time) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return now
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}
