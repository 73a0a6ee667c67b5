package domain

import "time"

// Story is a candidate item returned by a news source before admission.
type Story struct {
	SourceID    string
	ExternalID  string
	Title       string
	Content     string
	URL         string
	PublishedAt time.Time
	Score       int
}

// Niche groups the sources and upload settings of one content theme.
type Niche struct {
	Name       string
	Query      string
	Subreddits []string
	CategoryID string
}

// Slot is a named daily run bound to a niche.
type Slot struct {
	Name  string
	At    string // HH:MM, local time
	Niche string
}
