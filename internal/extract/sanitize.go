package extract

import (
	"regexp"
	"strings"
)

// fencedJSONPattern matches a JSON object wrapped in a markdown code fence
// with an optional language tag. Examples: "```json\n{...}\n```", "```{...}```"
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(\\{.*\\})\\s*```")

// bareJSONPattern matches the outermost JSON object in free-form text.
var bareJSONPattern = regexp.MustCompile(`(?s)\{.*\}`)

// SanitizeAnswer extracts the JSON object embedded in a model answer.
// Language models wrap their output in markdown fences or surround it with
// prose; the fence and any text outside the object are stripped. When no
// object is found the trimmed input is returned unchanged so the JSON parser
// can report what it actually saw.
func SanitizeAnswer(answer string) string {
	if m := fencedJSONPattern.FindStringSubmatch(answer); len(m) > 1 {
		return m[1]
	}
	if m := bareJSONPattern.FindString(answer); m != "" {
		return m
	}
	return strings.TrimSpace(answer)
}
