package domain

import (
	"fmt"
	"strings"
)

// FallbackKeywords replace an empty keyword list so a scene can always be
// searched for visuals.
var FallbackKeywords = []string{"Abstract Tech Background", "News Studio"}

// DefaultMaxImagesPerScene bounds image_count when no limit is configured.
const DefaultMaxImagesPerScene = 3

// ValidateScenes is the strict check applied before script_data is persisted.
func ValidateScenes(scenes []Scene) error {
	if len(scenes) == 0 {
		return fmt.Errorf("%w: no scenes", ErrInvalidScript)
	}
	for i, sc := range scenes {
		if strings.TrimSpace(sc.Text) == "" {
			return fmt.Errorf("%w: scene %d has no narration", ErrInvalidScript, i)
		}
		if len(CleanKeywords(sc.Keywords)) == 0 {
			return fmt.Errorf("%w: scene %d has no visual keywords", ErrInvalidScript, i)
		}
		if sc.ImageCount < 1 {
			return fmt.Errorf("%w: scene %d has image_count %d", ErrInvalidScript, i, sc.ImageCount)
		}
	}
	return nil
}

// NormalizeScenes repairs what can be repaired in generated scenes: blank
// keywords are dropped, an empty keyword list gets FallbackKeywords and the
// image count is clamped to [1, maxImages]. Scenes without narration cannot
// be repaired and fail the whole script. It returns the number of scenes
// whose keywords were replaced.
func NormalizeScenes(scenes []Scene, maxImages int) ([]Scene, int, error) {
	if len(scenes) == 0 {
		return nil, 0, fmt.Errorf("%w: no scenes", ErrInvalidScript)
	}
	if maxImages < 1 {
		maxImages = DefaultMaxImagesPerScene
	}

	out := make([]Scene, len(scenes))
	repaired := 0
	for i, sc := range scenes {
		text := strings.TrimSpace(sc.Text)
		if text == "" {
			return nil, 0, fmt.Errorf("%w: scene %d has no narration", ErrInvalidScript, i)
		}

		keywords := CleanKeywords(sc.Keywords)
		if len(keywords) == 0 {
			keywords = append([]string(nil), FallbackKeywords...)
			repaired++
		}

		count := sc.ImageCount
		if count < 1 {
			count = 1
		}
		if count > maxImages {
			count = maxImages
		}

		out[i] = Scene{Text: text, Keywords: keywords, ImageCount: count}
	}
	return out, repaired, nil
}

// CleanKeywords trims keywords and drops blanks and case-insensitive repeats.
func CleanKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	var out []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// ImageDurations splits a scene's narration evenly across n images.
func ImageDurations(total float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	each := total / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = each
	}
	return out
}

// ImageQueries plans the searches for a scene: image i uses keyword
// i mod len(keywords) and takes the (i / len(keywords))-th result.
func ImageQueries(sc Scene) []ImageQuery {
	keywords := CleanKeywords(sc.Keywords)
	if len(keywords) == 0 || sc.ImageCount < 1 {
		return nil
	}
	out := make([]ImageQuery, sc.ImageCount)
	for i := range out {
		out[i] = ImageQuery{
			Keyword: keywords[i%len(keywords)],
			Rank:    i / len(keywords),
		}
	}
	return out
}
