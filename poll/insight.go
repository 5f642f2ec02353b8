// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"strconv"
	"strings"

	"github.com/danielhkuo/class-pulse/models"
)

// Default thresholds for the built-in rules.
const (
	DefaultClarificationThreshold = 7.0
	DefaultMisconceptionThreshold = 30.0
)

// DefaultRules returns the built-in insight rules with the given thresholds.
func DefaultRules(clarification, misconception float64) []models.InsightRule {
	return []models.InsightRule{
		{
			Kind:             models.InsightNeedsClarification,
			ThresholdPercent: clarification,
			TargetRole:       models.RoleLowUnderstanding,
			Message:          "{percentage}% of students need clarification. Consider re-explaining the concept or providing additional examples.",
		},
		{
			Kind:             models.InsightCommonMisconception,
			ThresholdPercent: misconception,
			TargetRole:       models.RoleIncorrectFact,
			Message:          `{percentage}% of students chose "{option}". Address this misconception before moving on.`,
		},
	}
}

// Evaluator turns tallies into insights. It holds only configuration, so
// Evaluate has no side effects and may run on every tally update.
type Evaluator struct {
	rules []models.InsightRule
}

func NewEvaluator(rules []models.InsightRule) *Evaluator {
	copied := make([]models.InsightRule, len(rules))
	copy(copied, rules)
	return &Evaluator{rules: copied}
}

// Evaluate returns the insights triggered by the snapshot's tallies, in rule
// order and then option order.
func (e *Evaluator) Evaluate(snap models.PollSnapshot) []models.Insight {
	insights := []models.Insight{}
	if snap.TotalResponses == 0 {
		return insights
	}

	for _, rule := range e.rules {
		for _, t := range snap.Tallies {
			if t.Role == "" || t.Role != rule.TargetRole {
				continue
			}
			if float64(t.Percentage) < rule.ThresholdPercent {
				continue
			}
			insights = append(insights, models.Insight{
				Kind:             rule.Kind,
				Message:          renderMessage(rule.Message, t),
				TriggeringOption: t.Option,
				Percentage:       t.Percentage,
			})
		}
	}
	return insights
}

func renderMessage(tmpl string, t models.Tally) string {
	r := strings.NewReplacer(
		"{percentage}", strconv.Itoa(t.Percentage),
		"{option}", t.Option,
		"{count}", strconv.Itoa(t.Count),
	)
	return r.Replace(tmpl)
}

// assignRoles returns option index -> role for a validated definition.
// Explicit roles win; otherwise the kind decides.
func assignRoles(def models.PollDefinition) map[int]string {
	roles := make(map[int]string)
	if len(def.OptionRoles) > 0 {
		for i, opt := range def.Options {
			if role, ok := def.OptionRoles[opt]; ok && role != "" {
				roles[i] = role
			}
		}
		return roles
	}

	switch def.Kind {
	case models.KindUnderstandingCheck:
		// The third choice of an understanding check is the "need help" answer.
		if len(def.Options) >= 3 {
			roles[2] = models.RoleLowUnderstanding
		}
	case models.KindFactBased:
		for i, opt := range def.Options {
			if opt != def.CorrectOption {
				roles[i] = models.RoleIncorrectFact
			}
		}
	}
	return roles
}

// newInsights returns the insights in current that were not in previous.
func newInsights(previous, current []models.Insight) []models.Insight {
	seen := make(map[string]struct{}, len(previous))
	for _, in := range previous {
		seen[in.Kind+"\x00"+in.TriggeringOption] = struct{}{}
	}
	var fresh []models.Insight
	for _, in := range current {
		if _, ok := seen[in.Kind+"\x00"+in.TriggeringOption]; !ok {
			fresh = append(fresh, in)
		}
	}
	return fresh
}
