package llm

import (
	"fmt"
	"strings"

	"shorts_factory/internal/domain"
)

const systemPrompt = "You direct short vertical news videos. You answer with a single JSON object and nothing else."

func userPrompt(req domain.ScriptRequest) string {
	niche := req.Niche
	if niche == "" {
		niche = "news"
	}
	fallback := strings.Join(domain.FallbackKeywords, `", "`)

	var b strings.Builder
	fmt.Fprintf(&b, "Turn this %s story into a narrated short video script.\n\n", niche)
	fmt.Fprintf(&b, "HEADLINE: %s\n", req.Title)
	fmt.Fprintf(&b, "SOURCE:\n%s\n\n", req.Content)
	b.WriteString("Rules:\n")
	b.WriteString("1. Split the story into 6 to 8 scenes.\n")
	b.WriteString("2. \"text\" is the narration of a scene, one or two sentences.\n")
	b.WriteString("3. \"image_count\" is 1 for a calm scene or 2 for a fast one.\n")
	b.WriteString("4. \"keywords\" holds exactly 2 concrete image search terms (names, places, objects). ")
	fmt.Fprintf(&b, "Never leave it empty; for generic scenes use [\"%s\"].\n", fallback)
	fmt.Fprintf(&b, "5. The last scene invites viewers to follow for more %s stories. "+
		"Do not mention a full video, a link or a bio.\n", niche)
	b.WriteString("6. Also write upload metadata: \"title\" under 70 characters, a plain text \"description\" " +
		"of three sentences, \"hashtags\" with 3 to 5 hashtags and \"tags\" with 5 to 10 search tags.\n\n")
	b.WriteString("Answer with JSON in exactly this shape:\n")
	b.WriteString(`{"title":"...","description":"...","hashtags":"#One #Two #Three","tags":["one","two"],` +
		`"scenes":[{"text":"...","keywords":["...","..."],"image_count":1}]}`)
	return b.String()
}
