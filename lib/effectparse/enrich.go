package effectparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Reference is one entry of an externally supplied skill or status table.
type Reference struct {
	Name       string `json:"name"`
	EffectText string `json:"effect_text"`
}

var hintRegex = regexp.MustCompile(`(?i)hint\s*\+?(\d+)`)

// Enrich re-examines parsed segments against the skill and status
// reference tables. Text segments whose raw string contains a known
// skill or status name become skill grants or status changes; already
// classified skill/status segments get their resolved name and effect
// description attached. The input slice is not mutated.
func Enrich(segments []Segment, skills, statuses []Reference) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		out[i] = enrichSegment(seg, skills, statuses)
	}
	return out
}

func enrichSegment(seg Segment, skills, statuses []Reference) Segment {
	switch seg.Kind {
	case KindText:
		if ref, ok := lookup(seg.Raw, skills); ok {
			seg.Kind = KindSkillGrant
			seg.Resolved = ref.Name
			seg.EffectText = ref.EffectText
			seg.HintLevel = hintLevel(seg.Raw)
			return seg
		}
		if ref, ok := lookup(seg.Raw, statuses); ok {
			seg.Kind = KindStatusChange
			seg.Resolved = ref.Name
			seg.EffectText = ref.EffectText
			return seg
		}
	case KindSkillGrant:
		if seg.Resolved == "" {
			if ref, ok := lookup(seg.Raw, skills); ok {
				seg.Resolved = ref.Name
				seg.EffectText = ref.EffectText
			}
		}
		seg.HintLevel = hintLevel(seg.Raw)
	case KindStatusChange:
		if seg.Resolved == "" {
			if ref, ok := lookup(seg.Raw, statuses); ok {
				seg.Resolved = ref.Name
				seg.EffectText = ref.EffectText
			}
		}
	}
	return seg
}

// lookup finds the reference whose name appears in raw, preferring the
// longest name so "Corner Adept ○" beats "Corner".
func lookup(raw string, refs []Reference) (Reference, bool) {
	lower := strings.ToLower(raw)

	var best Reference
	found := false
	for _, ref := range refs {
		if ref.Name == "" {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(ref.Name)) {
			continue
		}
		if !found || len(ref.Name) > len(best.Name) {
			best = ref
			found = true
		}
	}
	return best, found
}

func hintLevel(raw string) int {
	groups := hintRegex.FindStringSubmatch(raw)
	if groups == nil {
		return 0
	}
	n, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0
	}
	return n
}
