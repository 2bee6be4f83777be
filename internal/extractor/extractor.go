// Package extractor turns free-form narration into a structured route
// record. Extraction never fails structurally: any generation or parse
// problem maps to the zero record, so write-back always has a well-formed
// value to lay out.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"route-insights-go/internal/logger"
	"route-insights-go/internal/types"
)

const promptTemplate = `You are a professional test driver with deep knowledge of car reviews and geography.
Analyze the transcript below and identify the concrete start point, waypoints, and end point of the drive taken for the review.
Put particular weight on extracting specific road names, IC/JCT names, and landmarks.

- 'start': where the drive begins (e.g. Tokyo Subaru Mitaka)
- 'end': where the drive finishes (e.g. Hangar Eight)
- 'waypoints': places and roads passed along the way, in the order they are mentioned, at most ten (e.g. driving on Route 4, passing Hadano-Nakai IC entrance, passing Toyota JCT)

Respond with JSON only, in the shape {"start": string, "end": string, "waypoints": [string]}.

--- TRANSCRIPT ---
%s
`

type Extractor struct {
	gen TextGenerator
	log *logrus.Entry
}

func New(gen TextGenerator) *Extractor {
	return &Extractor{
		gen: gen,
		log: logger.New().WithField("component", "extractor"),
	}
}

// BuildPrompt embeds the transcript in the fixed instruction template.
func BuildPrompt(transcript string) string {
	return fmt.Sprintf(promptTemplate, transcript)
}

// Extract runs one schema-constrained generation over the transcript. The
// result is not deterministic across calls; only its shape is guaranteed.
func (e *Extractor) Extract(ctx context.Context, transcript string) types.RouteRecord {
	raw, err := e.gen.GenerateText(ctx, BuildPrompt(transcript))
	if err != nil {
		e.log.WithError(err).Warn("generation failed, returning empty route")
		return emptyRoute()
	}
	rec, ok := decodeRoute(raw)
	if !ok {
		e.log.WithField("raw_len", len(raw)).Warn("generation returned invalid structure, returning empty route")
		return emptyRoute()
	}
	return rec
}

func emptyRoute() types.RouteRecord {
	return types.RouteRecord{Waypoints: []string{}}
}

// decodeRoute parses raw model output as the route schema. All three keys
// must be present in the object; markdown fences and surrounding prose are
// tolerated.
func decodeRoute(raw string) (types.RouteRecord, bool) {
	candidate := extractJSON(raw)
	if candidate == "" {
		return emptyRoute(), false
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &keys); err != nil {
		return emptyRoute(), false
	}
	for _, k := range []string{"start", "end", "waypoints"} {
		if _, ok := keys[k]; !ok {
			return emptyRoute(), false
		}
	}
	var rec types.RouteRecord
	if err := json.Unmarshal([]byte(candidate), &rec); err != nil {
		return emptyRoute(), false
	}
	if rec.Waypoints == nil {
		rec.Waypoints = []string{}
	}
	return rec, true
}

// extractJSON finds the first balanced JSON object in a string and returns it.
// It strips common markdown fences first.
func extractJSON(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")

	// Remove markdown fences (commonly output by LLMs)
	for _, fence := range []string{"```json", "```yaml", "```text", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, fence, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}

	// no balanced object found
	return ""
}
