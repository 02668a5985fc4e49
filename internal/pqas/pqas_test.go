package pqas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

const structuredFixture = `You are a helpful AI assistant specialized in summarizing documents.

Task: Read the provided article and produce a concise summary for a busy reader.

Format your response as follows:
1. A one-line headline.
2. Three bullet points with the key facts.
3. A closing sentence with the main takeaway.`

func TestEvaluate_EmptyContent(t *testing.T) {
	score := EvaluateText("")

	assert.Equal(t, 0, score.Clarity)
	assert.Equal(t, 0, score.Specificity)
	assert.Equal(t, 0, score.Effectiveness)
	assert.Equal(t, 100, score.Consistency)
	assert.Equal(t, 100, score.Safety)
	// Consistency and safety still contribute weighted terms, so the
	// composite of an empty prompt is positive. Intentional behavior.
	assert.Greater(t, score.Composite, 0)
}

func TestEvaluate_AllAxesBounded(t *testing.T) {
	inputs := []string{
		"",
		"short",
		"Do something with this stuff",
		structuredFixture,
		"kill process and restart - step 1. step 2. step 3.",
		"maybe something things stuff maybe maybe",
	}

	for _, in := range inputs {
		score := EvaluateText(in)
		for axis, v := range map[string]int{
			"clarity":       score.Clarity,
			"specificity":   score.Specificity,
			"effectiveness": score.Effectiveness,
			"consistency":   score.Consistency,
			"safety":        score.Safety,
			"efficiency":    score.Efficiency,
			"composite":     score.Composite,
		} {
			assert.GreaterOrEqual(t, v, 0, "%s for %q", axis, in)
			assert.LessOrEqual(t, v, 100, "%s for %q", axis, in)
		}
	}
}

func TestEvaluate_EffectivenessFullMarks(t *testing.T) {
	score := EvaluateText("Act as a reviewer. Context: a Go repo. Task: review it. Format: markdown. Example: see below.")
	assert.Equal(t, 100, score.Effectiveness)
}

func TestEvaluate_SafetyBinary(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"Please KILL the background job", 0},
		{"How to hack around the limitation", 0},
		{"A murder mystery plot outline", 0},
		{"Never steal user data", 0},
		{"Summarize this article politely", 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EvaluateText(tc.text).Safety, "text: %q", tc.text)
	}
}

func TestEvaluate_EfficiencyBands(t *testing.T) {
	short := "one two three"
	assert.Equal(t, 40, EvaluateText(short).Efficiency)

	normal := structuredFixture
	assert.Equal(t, 90, EvaluateText(normal).Efficiency)

	long := ""
	for i := 0; i < 501; i++ {
		long += "word "
	}
	assert.Equal(t, 60, EvaluateText(long).Efficiency)
}

func TestEvaluate_ClarityPenalties(t *testing.T) {
	// One enormous run-on sentence, no list structure: -20 -20 -10.
	run := ""
	for i := 0; i < 45; i++ {
		run += "word "
	}
	run += "."
	assert.Equal(t, 50, EvaluateText(run).Clarity)

	// Short sentences without any list structure only lose the list penalty.
	assert.Equal(t, 90, EvaluateText("Summarize the text. Keep it short.").Clarity)

	// A numbered line restores full clarity.
	assert.Equal(t, 100, EvaluateText("Summarize the text.\n1. Keep it short.").Clarity)
}

func TestEvaluate_Deterministic(t *testing.T) {
	a := EvaluateText(structuredFixture)
	b := EvaluateText(structuredFixture)
	assert.Equal(t, a, b)
}

func TestEvaluate_StructuredFixture(t *testing.T) {
	score := EvaluateText(structuredFixture)

	assert.Greater(t, score.Clarity, 70)
	assert.Greater(t, score.Specificity, 70)
	assert.Greater(t, score.Effectiveness, 40)
	assert.Greater(t, score.Composite, 70)
}

func TestEvaluate_VaguePrompt(t *testing.T) {
	score := EvaluateText("Do something with this stuff")

	assert.Less(t, score.Specificity, 80)
	assert.Less(t, score.Composite, 90)
}

func TestEvaluate_StructuredContentConcatenation(t *testing.T) {
	content := Content{
		User:   "Summarize the article below.",
		System: "You are a concise assistant.",
	}
	score := Evaluate(content)

	// "You are" from the system field must be visible to effectiveness.
	assert.GreaterOrEqual(t, score.Effectiveness, 20)
}

func TestContent_UnmarshalJSON(t *testing.T) {
	var c Content
	assert.NoError(t, json.Unmarshal([]byte(`"plain text prompt"`), &c))
	assert.Equal(t, "plain text prompt", c.Text)

	var obj Content
	assert.NoError(t, json.Unmarshal([]byte(`{"system":"sys","user":"usr","storyboardSteps":["a","b"]}`), &obj))
	assert.Equal(t, "sys", obj.System)
	assert.Equal(t, "usr", obj.User)
	assert.Len(t, obj.StoryboardSteps, 2)

	// Malformed content degrades instead of failing.
	var bad Content
	assert.NoError(t, json.Unmarshal([]byte(`12345`), &bad))
	assert.Equal(t, 0, Evaluate(bad).Clarity)
}
