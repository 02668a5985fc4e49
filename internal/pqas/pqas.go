// Package pqas implements the Prompt Quality Assessment Score: a
// deterministic, rule-based evaluation of prompt text across six axes
// plus a weighted composite. Evaluate is a pure function with no I/O,
// safe for unlimited concurrent use.
package pqas

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Content is the input to the scorer: either plain text, or a structured
// prompt with optional per-role fields (image prompts carry MainPrompt,
// video prompts StoryboardSteps). It unmarshals from a JSON string or a
// JSON object, so API payloads can send either shape.
type Content struct {
	Text string `json:"-"`

	System          string   `json:"system"`
	User            string   `json:"user"`
	Instructions    string   `json:"instructions"`
	MainPrompt      string   `json:"mainPrompt"`
	StoryboardSteps []string `json:"storyboardSteps"`
}

// FromText wraps a plain string as scorer input.
func FromText(s string) Content {
	return Content{Text: s}
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Content{Text: s}
		return nil
	}

	type alias Content
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		// Malformed content degrades to empty-string scoring rather than
		// failing the request.
		*c = Content{}
		return nil
	}
	*c = Content(obj)
	return nil
}

// extract flattens the content to the single text the axes analyze.
// Plain text is used as-is; structured fields are concatenated in fixed
// order, each present field followed by a newline.
func (c Content) extract() string {
	if c.Text != "" {
		return c.Text
	}

	var b strings.Builder
	for _, part := range []string{c.User, c.System, c.Instructions, c.MainPrompt} {
		if part != "" {
			b.WriteString(part)
			b.WriteString("\n")
		}
	}
	for _, step := range c.StoryboardSteps {
		if step != "" {
			b.WriteString(step)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// AxisScore is one axis result with its human-readable rationale. The
// rationale is display-only and never feeds back into computation.
type AxisScore struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

// Score is the full six-axis evaluation. Composite is always derived from
// the axes via the fixed weights; it is never stored independently.
type Score struct {
	Clarity       int `json:"clarity"`
	Specificity   int `json:"specificity"`
	Effectiveness int `json:"effectiveness"`
	Consistency   int `json:"consistency"`
	Safety        int `json:"safety"`
	Efficiency    int `json:"efficiency"`
	Composite     int `json:"composite"`

	Breakdown map[string]AxisScore `json:"breakdown"`
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	vagueWords    = []string{"stuff", "things", "something", "maybe"}
	unsafeWords   = []string{"kill", "murder", "hack", "steal"}
)

// consistencyScore is a placeholder for manual/human review; the automated
// scorer never varies this axis.
const consistencyScore = 100

// Evaluate scores the given content. Any input, including empty or
// malformed content, produces a valid Score; content-dependent axes fall
// to zero on empty text.
func Evaluate(content Content) Score {
	text := content.extract()
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))

	clarity, clarityWhy := scoreClarity(text, words)
	specificity, specificityWhy := scoreSpecificity(text, lower)
	effectiveness, effectivenessWhy := scoreEffectiveness(text, lower)
	safety, safetyWhy := scoreSafety(lower)
	efficiency, efficiencyWhy := scoreEfficiency(words)

	quality := float64(clarity+specificity+effectiveness) / 3.0
	composite := int(math.Round(quality*0.40 + consistencyScore*0.30 + float64(safety)*0.20 + float64(efficiency)*0.10))

	return Score{
		Clarity:       clarity,
		Specificity:   specificity,
		Effectiveness: effectiveness,
		Consistency:   consistencyScore,
		Safety:        safety,
		Efficiency:    efficiency,
		Composite:     clamp(composite),
		Breakdown: map[string]AxisScore{
			"clarity":       {Score: clarity, Rationale: clarityWhy},
			"specificity":   {Score: specificity, Rationale: specificityWhy},
			"effectiveness": {Score: effectiveness, Rationale: effectivenessWhy},
			"consistency":   {Score: consistencyScore, Rationale: "Reserved for human review"},
			"safety":        {Score: safety, Rationale: safetyWhy},
			"efficiency":    {Score: efficiency, Rationale: efficiencyWhy},
		},
	}
}

// EvaluateText scores a plain string.
func EvaluateText(s string) Score {
	return Evaluate(FromText(s))
}

func scoreClarity(text string, words int) (int, string) {
	if strings.TrimSpace(text) == "" {
		return 0, "No content to evaluate"
	}

	sentences := 0
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences < 1 {
		sentences = 1
	}
	avg := float64(words) / float64(sentences)

	score := 100
	why := "Sentences are a readable length"
	if avg > 30 {
		score -= 20
		why = "Average sentence length exceeds 30 words"
	}
	if avg > 40 {
		score -= 20
		why = "Average sentence length exceeds 40 words"
	}
	if !hasListStructure(text) {
		score -= 10
		why += "; no bulleted or numbered structure"
	}
	return clamp(score), why
}

// hasListStructure reports whether any line opens with a bullet marker or
// digit as its first non-whitespace character.
func hasListStructure(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch trimmed[0] {
		case '-', '*':
			return true
		}
		if strings.HasPrefix(trimmed, "•") {
			return true
		}
		if trimmed[0] >= '0' && trimmed[0] <= '9' {
			return true
		}
	}
	return false
}

func scoreSpecificity(text, lower string) (int, string) {
	if strings.TrimSpace(text) == "" {
		return 0, "No content to evaluate"
	}

	score := 80
	var hits []string
	for _, w := range vagueWords {
		if strings.Contains(lower, w) {
			score -= 5
			hits = append(hits, w)
		}
	}
	why := "No vague wording detected"
	if len(hits) > 0 {
		why = "Vague wording: " + strings.Join(hits, ", ")
	}
	if len(text) < 50 {
		score -= 30
		why += "; prompt is very short"
	}
	return clamp(score), why
}

func scoreEffectiveness(text, lower string) (int, string) {
	if strings.TrimSpace(text) == "" {
		return 0, "No content to evaluate"
	}

	markers := []struct {
		name  string
		terms []string
	}{
		{"role", []string{"act as", "you are"}},
		{"context", []string{"context"}},
		{"task", []string{"task", "goal"}},
		{"format", []string{"format", "output"}},
		{"example", []string{"example"}},
	}

	score := 0
	var found []string
	for _, m := range markers {
		for _, term := range m.terms {
			if strings.Contains(lower, term) {
				score += 20
				found = append(found, m.name)
				break
			}
		}
	}
	why := "No structural prompt markers found"
	if len(found) > 0 {
		why = "Structural markers: " + strings.Join(found, ", ")
	}
	return clamp(score), why
}

func scoreSafety(lower string) (int, string) {
	for _, w := range unsafeWords {
		if strings.Contains(lower, w) {
			return 0, fmt.Sprintf("Unsafe keyword detected: %s", w)
		}
	}
	return 100, "No unsafe keywords detected"
}

func scoreEfficiency(words int) (int, string) {
	switch {
	case words < 10:
		return 40, "Prompt is too short to carry enough signal"
	case words > 500:
		return 60, "Prompt is very long; consider trimming"
	default:
		return 90, "Prompt length is in the effective range"
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
