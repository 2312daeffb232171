package risk

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sutra/internal/task"
)

func actions(types ...string) []task.Action {
	out := make([]task.Action, 0, len(types))
	for _, typ := range types {
		out = append(out, task.Action{Type: typ})
	}
	return out
}

func TestEmptyTaskIsGreen(t *testing.T) {
	assessment := Assess(task.Task{})
	assert.Equal(t, task.RiskGreen, assessment.Tier)
	assert.Zero(t, assessment.Score)
	assert.Empty(t, assessment.Matched)
}

func TestSingleHighRiskActionIsRed(t *testing.T) {
	assert.Equal(t, task.RiskRed, Classify(task.Task{Actions: actions("delete")}))
}

func TestHighRiskKeywordsAnywhere(t *testing.T) {
	cases := map[string]task.Task{
		"name":        {Name: "Process PAYMENT batch"},
		"description": {Description: "will Refund the order"},
		"data":        {Actions: []task.Action{{Type: "noop", Data: task.StringData("charge card")}}},
		"metadata":    {Metadata: map[string]json.RawMessage{"intent": json.RawMessage(`"cancel_subscription"`)}},
		"field name":  {Metadata: map[string]json.RawMessage{"delete_after": json.RawMessage(`true`)}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, task.RiskRed, Classify(tc))
		})
	}
}

func TestKeywordCountsOncePerKeyword(t *testing.T) {
	assessment := Assess(task.Task{
		Name:    "update update update",
		Actions: actions("update", "update"),
	})
	assert.Equal(t, 3, assessment.Score)
	assert.Equal(t, []string{"update"}, assessment.Matched)
	assert.Equal(t, task.RiskGreen, assessment.Tier)
}

func TestMediumKeywordsAccumulate(t *testing.T) {
	assessment := Assess(task.Task{Actions: actions("update", "send_email")})
	assert.Equal(t, 6, assessment.Score)
	assert.Equal(t, task.RiskYellow, assessment.Tier)
}

func TestStandardSampleStaysGreenAtThreeActions(t *testing.T) {
	standard, ok := task.Sample("standard")
	require.True(t, ok)

	assessment := Assess(standard)
	assert.Equal(t, 3, assessment.Score)
	assert.Equal(t, task.RiskGreen, assessment.Tier)
}

func TestMediumKeywordWithFourActionsIsYellow(t *testing.T) {
	assessment := Assess(task.Task{Actions: actions("fetch_data", "update", "notify", "archive")})
	assert.Equal(t, 5, assessment.Score)
	assert.Equal(t, task.RiskYellow, assessment.Tier)
}

func TestActionVolumeBoundaries(t *testing.T) {
	neutral := func(n int) task.Task {
		types := make([]string, n)
		for i := range types {
			types[i] = fmt.Sprintf("step_%d", i)
		}
		return task.Task{Actions: actions(types...)}
	}

	cases := []struct {
		n     int
		score int
		tier  task.RiskTier
	}{
		{0, 0, task.RiskGreen},
		{3, 0, task.RiskGreen},
		{4, 2, task.RiskGreen},
		{5, 2, task.RiskGreen},
		{6, 5, task.RiskYellow},
		{12, 5, task.RiskYellow},
	}
	for _, tc := range cases {
		assessment := Assess(neutral(tc.n))
		assert.Equal(t, tc.score, assessment.Score, "n=%d", tc.n)
		assert.Equal(t, tc.tier, assessment.Tier, "n=%d", tc.n)
	}
}

func TestRedSampleScore(t *testing.T) {
	red, ok := task.Sample("red")
	require.True(t, ok)

	assessment := Assess(red)
	assert.Equal(t, task.RiskRed, assessment.Tier)
	assert.Equal(t, 52, assessment.Score)
	assert.ElementsMatch(t, []string{"delete", "payment", "charge", "refund", "cancel_subscription"}, assessment.Matched)
}

func TestGreenSamples(t *testing.T) {
	for _, kind := range []string{"green", "supervision", "standard"} {
		sample, ok := task.Sample(kind)
		require.True(t, ok)
		assert.Equal(t, task.RiskGreen, Classify(sample), kind)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	input := task.Task{Name: "modify profile", Actions: actions("post", "read", "write", "log", "sync")}
	first := Assess(input)
	second := Assess(input)
	assert.Equal(t, first, second)
	assert.Equal(t, task.RiskYellow, first.Tier)
}

func TestEscapedKeywordsAreDecodedBeforeScanning(t *testing.T) {
	cases := map[string]string{
		"action data":     `{"actions":[{"type":"noop","data":"\u0064elete_account"}]}`,
		"metadata value":  `{"note":"\u0044ELETE everything"}`,
		"nested metadata": `{"data":{"op":"\u0063harge"}}`,
		"action extra":    `{"actions":[{"type":"noop","target":"\u0072ef\u0075nd"}]}`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			decoded, err := task.Decode([]byte(input))
			require.NoError(t, err)

			assessment := Assess(decoded)
			assert.Equal(t, task.RiskRed, assessment.Tier)
			assert.Equal(t, highRiskWeight, assessment.Score)
		})
	}
}

func TestEscapedMediumKeywordInData(t *testing.T) {
	decoded, err := task.Decode([]byte(`{"actions":[{"type":"noop","data":{"verb":"\u0055PDATE"}}],"x":"p\u006fst"}`))
	require.NoError(t, err)

	assessment := Assess(decoded)
	assert.ElementsMatch(t, []string{"update", "post"}, assessment.Matched)
	assert.Equal(t, task.RiskYellow, assessment.Tier)
}
