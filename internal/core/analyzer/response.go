package analyzer

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/neilberkman/cpl/internal/core/llm"
	"github.com/neilberkman/cpl/internal/core/models"
)

// fencedBlock captures the body of the first ``` fence. An info string such
// as yaml or json is skipped only when it sits alone on the fence line.
var fencedBlock = regexp.MustCompile("(?s)```(?:[\\w+-]+[ \\t]*\\r?\\n)?\\s*(.*?)```")

// extractPayload returns the first fenced block's body, or the whole text
func extractPayload(response string) string {
	if m := fencedBlock.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(response)
}

// ParseExtractResponse decodes model output into pattern inputs. Output that
// cannot be decoded yields an empty result; individual malformed items are
// dropped. At most llm.MaxPatternsPerSession valid items are kept.
func ParseExtractResponse(response string) []models.PatternInput {
	return parseExtractResponse(response, llm.MaxPatternsPerSession)
}

func parseExtractResponse(response string, limit int) []models.PatternInput {
	payload := extractPayload(response)

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(payload), &doc); err != nil {
		log.Debug().Err(err).Msg("model response is not valid YAML")
		return []models.PatternInput{}
	}

	items, ok := doc["patterns"].([]any)
	if !ok {
		return []models.PatternInput{}
	}

	out := make([]models.PatternInput, 0, min(len(items), limit))
	for i, item := range items {
		if len(out) == limit {
			log.Debug().Int("returned", len(items)).Int("limit", limit).Msg("ignoring patterns over the limit")
			break
		}
		in, ok := decodeItem(item)
		if !ok {
			log.Debug().Int("index", i).Msg("discarding malformed pattern item")
			continue
		}
		out = append(out, in)
	}
	return out
}

func decodeItem(item any) (models.PatternInput, bool) {
	raw, ok := item.(map[string]any)
	if !ok {
		return models.PatternInput{}, false
	}

	name, ok1 := requiredString(raw, "name")
	ctxText, ok2 := requiredString(raw, "context")
	solution, ok3 := requiredString(raw, "solution")
	typ, ok4 := raw["type"].(string)
	if !ok1 || !ok2 || !ok3 || !ok4 || !models.PatternType(typ).Valid() {
		return models.PatternInput{}, false
	}

	in := models.PatternInput{
		Name:     name,
		Type:     models.PatternType(typ),
		Context:  ctxText,
		Solution: solution,
	}
	in.Problem, _ = raw["problem"].(string)
	in.Example, _ = raw["example"].(string)
	in.ExamplePrompt, _ = raw["example_prompt"].(string)
	in.Related = stringList(raw["related"])
	in.Tags = stringList(raw["tags"])
	return in, true
}

func requiredString(raw map[string]any, key string) (string, bool) {
	s, ok := raw[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// stringList keeps only the string elements of a YAML sequence
func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, el := range list {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
