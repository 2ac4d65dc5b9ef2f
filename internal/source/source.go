// Package source fetches raw postings from remote job boards and
// normalizes them into cleaned records ready for ingestion.
package source

import "context"

// RawRecord is one posting as the remote board reports it, before
// normalization. Field names match the capture JSON written to disk
// during scraping.
type RawRecord struct {
	ID           string `json:"id,omitempty"`
	Site         string `json:"site,omitempty"`
	Title        string `json:"title,omitempty"`
	Company      string `json:"company,omitempty"`
	Location     string `json:"location,omitempty"`
	JobURL       string `json:"job_url,omitempty"`
	JobURLDirect string `json:"job_url_direct,omitempty"`
	Description  string `json:"description,omitempty"`
	DatePosted   string `json:"date_posted,omitempty"`
}

// Source is a remote posting feed. Implementations may fail arbitrarily;
// ingestion isolates failures per search term.
type Source interface {
	Fetch(ctx context.Context, term, location string, sites []string, resultsWanted, hoursOld int) ([]RawRecord, error)
}
