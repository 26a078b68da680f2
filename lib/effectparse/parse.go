// Package effectparse turns raw event-choice effect text into typed
// segments. Classification is heuristic, not a grammar: anything that
// fails to classify degrades to a plain text segment, never an error.
package effectparse

import (
	"regexp"
	"strconv"
	"strings"
)

type Kind string

const (
	KindStat          Kind = "stat"
	KindSkillGrant    Kind = "skill"
	KindStatusChange  Kind = "status"
	KindRandomDivider Kind = "random_divider"
	KindText          Kind = "text"
)

type Segment struct {
	Kind Kind `json:"kind"`

	Stat   string `json:"stat,omitempty"`
	Amount int    `json:"amount,omitempty"`

	Raw string `json:"raw,omitempty"`

	// set by the enrichment pass
	Resolved   string `json:"resolved,omitempty"`
	EffectText string `json:"effect_text,omitempty"`
	HintLevel  int    `json:"hint_level,omitempty"`
}

// structural markers the viewer flattens into their own lines
var (
	randomHeaderRegex = regexp.MustCompile(`(?i)^randomly( either)?:?$`)
	orDividerRegex    = regexp.MustCompile(`(?i)^-*\s*or\s*-*$`)
	orTokenRegex      = regexp.MustCompile(`(?i) or `)
)

var statRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z'.() ]*?)\s*([+-]?\d+)$`)

// Parse splits one effect cell into classified segments. Clauses arrive
// one per line; a "randomly either" header and bare "or" divider lines
// are structural, and the literal token " or " inside a clause also
// separates mutually exclusive outcomes.
func Parse(cellText string) []Segment {
	var out []Segment

	for _, line := range strings.Split(cellText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if randomHeaderRegex.MatchString(line) {
			continue
		}
		if orDividerRegex.MatchString(line) {
			out = append(out, Segment{Kind: KindRandomDivider})
			continue
		}

		alternatives := orTokenRegex.Split(line, -1)
		for i, clause := range alternatives {
			clause = strings.TrimSpace(clause)
			if clause == "" {
				continue
			}
			if i > 0 {
				out = append(out, Segment{Kind: KindRandomDivider})
			}
			out = append(out, classify(clause))
		}
	}

	return out
}

func classify(clause string) Segment {
	if groups := statRegex.FindStringSubmatch(clause); groups != nil {
		amount, err := strconv.Atoi(strings.TrimPrefix(groups[2], "+"))
		if err == nil {
			return Segment{
				Kind:   KindStat,
				Stat:   strings.TrimSpace(groups[1]),
				Amount: amount,
			}
		}
	}

	lower := strings.ToLower(clause)
	if strings.Contains(lower, "obtain") && strings.Contains(lower, "skill") {
		return Segment{Kind: KindSkillGrant, Raw: clause}
	}
	if strings.Contains(lower, "status") {
		return Segment{Kind: KindStatusChange, Raw: clause}
	}

	return Segment{Kind: KindText, Raw: clause}
}
