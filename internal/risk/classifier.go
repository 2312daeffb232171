// Package risk scores tasks into green, yellow or red tiers.
//
// Scoring is a substring scan over the lowercased JSON form of the whole task,
// so field names and values count alike. Each keyword contributes at most once.
package risk

import (
	"bytes"
	"encoding/json"
	"strings"

	"sutra/internal/task"
)

const (
	highRiskWeight   = 10
	mediumRiskWeight = 3

	// volume bonuses for tasks with many actions
	manyActionsThreshold = 5
	manyActionsWeight    = 5
	someActionsThreshold = 3
	someActionsWeight    = 2

	redThreshold    = 10
	yellowThreshold = 5
)

var (
	highRiskKeywords   = []string{"delete", "payment", "charge", "refund", "cancel_subscription"}
	mediumRiskKeywords = []string{"update", "modify", "send_email", "post"}
)

// Assessment explains how a tier was reached.
type Assessment struct {
	Tier    task.RiskTier
	Score   int
	Matched []string
}

// Classify returns the risk tier for t.
func Classify(t task.Task) task.RiskTier {
	return Assess(t).Tier
}

// Assess scores t and records which keywords contributed.
func Assess(t task.Task) Assessment {
	blob := flatten(t)

	var assessment Assessment
	for _, keyword := range highRiskKeywords {
		if strings.Contains(blob, keyword) {
			assessment.Score += highRiskWeight
			assessment.Matched = append(assessment.Matched, keyword)
		}
	}
	for _, keyword := range mediumRiskKeywords {
		if strings.Contains(blob, keyword) {
			assessment.Score += mediumRiskWeight
			assessment.Matched = append(assessment.Matched, keyword)
		}
	}

	switch n := len(t.Actions); {
	case n > manyActionsThreshold:
		assessment.Score += manyActionsWeight
	case n > someActionsThreshold:
		assessment.Score += someActionsWeight
	}

	assessment.Tier = tierFor(assessment.Score)
	return assessment
}

func tierFor(score int) task.RiskTier {
	switch {
	case score >= redThreshold:
		return task.RiskRed
	case score >= yellowThreshold:
		return task.RiskYellow
	default:
		return task.RiskGreen
	}
}

// flatten serializes the task as received, with every string escape resolved
// so payloads cannot hide keywords behind \uXXXX sequences. A task that cannot
// be encoded scores on action volume alone.
func flatten(t task.Task) string {
	encoded, err := json.Marshal(t)
	if err != nil {
		return ""
	}

	// raw payloads and metadata are copied verbatim by Marshal; a decode and
	// re-encode round trip canonicalizes them
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return ""
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return ""
	}
	return strings.ToLower(buf.String())
}
