package domain

import "time"

// AdmissionRequest is everything needed to create a pending task.
type AdmissionRequest struct {
	Title     string
	Content   string
	Source    string
	SourceURL string
	Niche     string
	Slot      string
}

// DuplicateReason says which rule rejected a title.
type DuplicateReason string

const (
	ReasonExact DuplicateReason = "exact"
	ReasonFuzzy DuplicateReason = "fuzzy"
)

type DuplicateVerdict struct {
	Duplicate  bool
	Reason     DuplicateReason
	Match      string
	Similarity float64
}

// ScriptRequest is the input of the script writer.
type ScriptRequest struct {
	Title   string
	Content string
	Niche   string
}

// ScriptDraft is the raw, not yet validated writer output.
type ScriptDraft struct {
	Scenes   []Scene
	Metadata Metadata
}

// ImageQuery selects the Rank-th search result for Keyword.
type ImageQuery struct {
	Keyword string
	Rank    int
}

// CaptionWord is one transcribed word with its timing in seconds.
type CaptionWord struct {
	Text  string
	Start float64
	End   float64
}

// UploadRequest is the fully resolved upload input.
type UploadRequest struct {
	VideoPath   string
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// UploadResult is returned once the platform accepted the video.
type UploadResult struct {
	VideoID    string
	UploadedAt time.Time
}
