package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Task struct {
	ID             string     `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Content        string     `db:"content" json:"content"`
	Source         string     `db:"source" json:"source"`
	SourceURL      string     `db:"source_url" json:"source_url"`
	Niche          string     `db:"niche" json:"niche"`
	Slot           string     `db:"slot" json:"slot"`
	Status         Status     `db:"status" json:"status"`
	FolderPath     string     `db:"folder_path" json:"folder_path"`
	Script         Script     `db:"script_data" json:"script_data"`
	Metadata       Metadata   `db:"metadata" json:"metadata"`
	FinalVideoPath *string    `db:"final_video_path" json:"final_video_path,omitempty"`
	PackagePath    *string    `db:"package_path" json:"package_path,omitempty"`
	ArchiveURL     *string    `db:"archive_url" json:"archive_url,omitempty"`
	YouTubeID      *string    `db:"youtube_id" json:"youtube_id,omitempty"`
	UploadedAt     *time.Time `db:"uploaded_at" json:"uploaded_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Scene is one narrated segment of the video.
type Scene struct {
	Text       string   `json:"text"`
	Keywords   []string `json:"keywords"`
	ImageCount int      `json:"image_count"`

	// Filled by later stages.
	AudioPath    string   `json:"audio_path,omitempty"`
	AudioSeconds float64  `json:"audio_duration,omitempty"`
	ImagePaths   []string `json:"image_paths,omitempty"`
	ImageSeconds float64  `json:"image_seconds,omitempty"`
}

// Script is stored as a JSONB document in script_data.
type Script struct {
	Scenes []Scene `json:"scenes"`
}

func (s Script) Empty() bool {
	return len(s.Scenes) == 0
}

// TotalSeconds sums the measured narration length of every scene.
func (s Script) TotalSeconds() float64 {
	var total float64
	for _, sc := range s.Scenes {
		total += sc.AudioSeconds
	}
	return total
}

func (s Script) Value() (driver.Value, error) {
	if s.Empty() {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *Script) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Metadata is the generated upload copy.
type Metadata struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Hashtags    string   `json:"hashtags,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (m Metadata) Empty() bool {
	return m.Title == "" && m.Description == "" && m.Hashtags == "" && len(m.Tags) == 0
}

func (m Metadata) Value() (driver.Value, error) {
	if m.Empty() {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dest interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan json: unsupported type %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// UploadTitle prefers the generated title and falls back to the admitted one.
func (t *Task) UploadTitle() string {
	if t.Metadata.Title != "" {
		return t.Metadata.Title
	}
	return t.Title
}

// TaskUpdate carries the output fields of one transition. Nil fields are left untouched.
type TaskUpdate struct {
	Script         *Script
	Metadata       *Metadata
	FinalVideoPath *string
	PackagePath    *string
	ArchiveURL     *string
	YouTubeID      *string
	UploadedAt     *time.Time
}

// Validate checks that u carries everything a task needs to enter status to.
func (u TaskUpdate) Validate(to Status) error {
	switch to {
	case StatusScripted:
		if u.Script == nil {
			return fmt.Errorf("%w: %s requires script_data", ErrInvalidUpdate, to)
		}
		if err := ValidateScenes(u.Script.Scenes); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
		}
	case StatusVoiced:
		if err := requireScenes(u.Script, to, func(sc Scene) bool {
			return sc.AudioPath != "" && sc.AudioSeconds > 0
		}); err != nil {
			return err
		}
	case StatusVisualsReady:
		if err := requireScenes(u.Script, to, func(sc Scene) bool {
			return len(sc.ImagePaths) > 0
		}); err != nil {
			return err
		}
	case StatusReadyToAssemble:
		if err := requireScenes(u.Script, to, func(sc Scene) bool {
			return len(sc.ImagePaths) > 0 && sc.ImageSeconds > 0
		}); err != nil {
			return err
		}
	case StatusReadyToUpload:
		if u.FinalVideoPath == nil || *u.FinalVideoPath == "" {
			return fmt.Errorf("%w: %s requires final_video_path", ErrInvalidUpdate, to)
		}
	case StatusCompletedPackaged:
		if u.PackagePath == nil || *u.PackagePath == "" {
			return fmt.Errorf("%w: %s requires package_path", ErrInvalidUpdate, to)
		}
	case StatusUploaded:
		if u.YouTubeID == nil || *u.YouTubeID == "" || u.UploadedAt == nil {
			return fmt.Errorf("%w: %s requires youtube_id and uploaded_at", ErrInvalidUpdate, to)
		}
	case StatusPending:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	return nil
}

func requireScenes(s *Script, to Status, ok func(Scene) bool) error {
	if s == nil || s.Empty() {
		return fmt.Errorf("%w: %s requires script_data", ErrInvalidUpdate, to)
	}
	for i, sc := range s.Scenes {
		if !ok(sc) {
			return fmt.Errorf("%w: %s: scene %d is incomplete", ErrInvalidUpdate, to, i)
		}
	}
	return nil
}

// Apply copies the non-nil fields of u onto t.
func (t *Task) Apply(u TaskUpdate) {
	if u.Script != nil {
		t.Script = *u.Script
	}
	if u.Metadata != nil {
		t.Metadata = *u.Metadata
	}
	if u.FinalVideoPath != nil {
		t.FinalVideoPath = u.FinalVideoPath
	}
	if u.PackagePath != nil {
		t.PackagePath = u.PackagePath
	}
	if u.ArchiveURL != nil {
		t.ArchiveURL = u.ArchiveURL
	}
	if u.YouTubeID != nil {
		t.YouTubeID = u.YouTubeID
	}
	if u.UploadedAt != nil {
		t.UploadedAt = u.UploadedAt
	}
}

// snapshot describes the task's current fields as an update so the same
// per-status requirements can be checked after a repair.
func (t *Task) snapshot() TaskUpdate {
	u := TaskUpdate{
		FinalVideoPath: t.FinalVideoPath,
		PackagePath:    t.PackagePath,
		ArchiveURL:     t.ArchiveURL,
		YouTubeID:      t.YouTubeID,
		UploadedAt:     t.UploadedAt,
	}
	if !t.Script.Empty() {
		s := t.Script
		u.Script = &s
	}
	if !t.Metadata.Empty() {
		m := t.Metadata
		u.Metadata = &m
	}
	return u
}

// TaskFilter narrows operator listings.
type TaskFilter struct {
	Statuses []Status
	Slot     string
	Limit    int
}
