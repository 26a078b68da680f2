package effectparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testSkills = []Reference{
	{Name: "Corner Adept ○", EffectText: "Slightly improves cornering."},
	{Name: "Groundwork", EffectText: "Improves start dash."},
}

var testStatuses = []Reference{
	{Name: "Practice Perfect ○", EffectText: "Less likely to fail training."},
	{Name: "Charming ○", EffectText: "Bond gain increased."},
}

func TestEnrichRewritesText(t *testing.T) {
	in := []Segment{
		{Kind: KindText, Raw: "Groundwork hint +2"},
		{Kind: KindText, Raw: "Get Charming ○"},
		{Kind: KindText, Raw: "nothing recognizable"},
	}
	out := Enrich(in, testSkills, testStatuses)

	require.Equal(t, KindSkillGrant, out[0].Kind)
	require.Equal(t, "Groundwork", out[0].Resolved)
	require.Equal(t, "Improves start dash.", out[0].EffectText)
	require.Equal(t, 2, out[0].HintLevel)

	require.Equal(t, KindStatusChange, out[1].Kind)
	require.Equal(t, "Charming ○", out[1].Resolved)

	require.Equal(t, KindText, out[2].Kind)

	// input is left alone
	require.Equal(t, KindText, in[0].Kind)
}

func TestEnrichResolvesClassifiedSegments(t *testing.T) {
	in := Parse("Obtain Corner Adept ○ skill hint +1")
	out := Enrich(in, testSkills, testStatuses)

	require.Len(t, out, 1)
	require.Equal(t, KindSkillGrant, out[0].Kind)
	require.Equal(t, "Corner Adept ○", out[0].Resolved)
	require.Equal(t, 1, out[0].HintLevel)
}

func TestEnrichPrefersLongestName(t *testing.T) {
	skills := []Reference{
		{Name: "Corner", EffectText: "short"},
		{Name: "Corner Adept ○", EffectText: "long"},
	}
	out := Enrich([]Segment{{Kind: KindText, Raw: "Obtain Corner Adept ○"}}, skills, nil)
	require.Equal(t, "Corner Adept ○", out[0].Resolved)
	require.Equal(t, "long", out[0].EffectText)
}

func TestEnrichLeavesStatsAndDividers(t *testing.T) {
	in := Parse("Speed +10 or Power +5")
	out := Enrich(in, testSkills, testStatuses)
	require.Equal(t, in, out)
}
