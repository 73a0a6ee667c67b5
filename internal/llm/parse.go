package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"shorts_factory/internal/domain"
)

type draftResponse struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Hashtags    stringList      `json:"hashtags"`
	Tags        stringList      `json:"tags"`
	Scenes      []sceneResponse `json:"scenes"`
}

type sceneResponse struct {
	Text       string     `json:"text"`
	Keywords   stringList `json:"keywords"`
	ImageCount int        `json:"image_count"`
}

// stringList accepts either a JSON array of strings or one comma separated
// string, since models produce both.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected string or list of strings: %s", string(data))
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

// ParseDraft decodes model output. Chatter or markdown fences around the
// JSON are cut off by keeping the outermost {...} span.
func ParseDraft(raw string) (*domain.ScriptDraft, error) {
	var resp draftResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		fixed := extractJSONObject(raw)
		if fixed == "" {
			return nil, fmt.Errorf("%w: no JSON object in model output", domain.ErrInvalidScript)
		}
		resp = draftResponse{}
		if err := json.Unmarshal([]byte(fixed), &resp); err != nil {
			return nil, fmt.Errorf("%w: decode model output: %v", domain.ErrInvalidScript, err)
		}
	}
	if len(resp.Scenes) == 0 {
		return nil, fmt.Errorf("%w: model returned no scenes", domain.ErrInvalidScript)
	}

	draft := &domain.ScriptDraft{
		Scenes: make([]domain.Scene, len(resp.Scenes)),
		Metadata: domain.Metadata{
			Title:       strings.TrimSpace(resp.Title),
			Description: strings.TrimSpace(resp.Description),
			Hashtags:    strings.Join(resp.Hashtags, " "),
			Tags:        resp.Tags,
		},
	}
	for i, sc := range resp.Scenes {
		draft.Scenes[i] = domain.Scene{
			Text:       sc.Text,
			Keywords:   sc.Keywords,
			ImageCount: sc.ImageCount,
		}
	}
	return draft, nil
}

func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
