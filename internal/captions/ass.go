package captions

import (
	"fmt"
	"io"
	"math"
	"strings"

	"shorts_factory/internal/config"
	"shorts_factory/internal/domain"
)

// Style controls how burned-in captions look. Colours are ASS &HAABBGGRR.
type Style struct {
	Width        int
	Height       int
	Font         string
	FontSize     int
	MarginBottom int
	Primary      string
	Outline      string
	OutlineWidth int
}

// DefaultStyle is one yellow upper-case word with a black stroke in the lower
// third of a 1080x1920 frame.
func DefaultStyle() Style {
	return Style{
		Width:        1080,
		Height:       1920,
		Font:         "Arial Black",
		FontSize:     96,
		MarginBottom: 480,
		Primary:      "&H0000FFFF",
		Outline:      "&H00000000",
		OutlineWidth: 6,
	}
}

// StyleFromConfig overlays configured values on DefaultStyle.
func StyleFromConfig(cfg config.CaptionsConfig, render config.RenderConfig) Style {
	s := DefaultStyle()
	if render.Width > 0 {
		s.Width = render.Width
	}
	if render.Height > 0 {
		s.Height = render.Height
	}
	if cfg.Font != "" {
		s.Font = cfg.Font
	}
	if cfg.FontSize > 0 {
		s.FontSize = cfg.FontSize
	}
	if cfg.MarginBottom > 0 {
		s.MarginBottom = cfg.MarginBottom
	}
	return s
}

// WriteASS renders one dialogue event per word.
func WriteASS(w io.Writer, words []domain.CaptionWord, style Style) error {
	var b strings.Builder

	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", style.Width)
	fmt.Fprintf(&b, "PlayResY: %d\n", style.Height)
	b.WriteString("WrapStyle: 2\n\n")

	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, " +
		"Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, " +
		"Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&b, "Style: Word,%s,%d,%s,%s,%s,&H00000000,-1,0,0,0,100,100,0,0,1,%d,0,2,40,40,%d,1\n\n",
		style.Font, style.FontSize, style.Primary, style.Primary, style.Outline, style.OutlineWidth, style.MarginBottom)

	b.WriteString("[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, wd := range words {
		text := captionText(wd.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Word,,0,0,0,,%s\n", assTime(wd.Start), assTime(wd.End), text)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func captionText(word string) string {
	r := strings.NewReplacer("{", "", "}", "", "\\", "", "\n", " ")
	return strings.ToUpper(strings.TrimSpace(r.Replace(word)))
}

// assTime formats seconds as H:MM:SS.CC.
func assTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	cs := int64(math.Round(seconds * 100))
	h := cs / 360000
	m := cs % 360000 / 6000
	s := cs % 6000 / 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs%100)
}
