package effectparse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseStat(t *testing.T) {
	segments := Parse("Speed +10")
	require.Equal(t, []Segment{
		{Kind: KindStat, Stat: "Speed", Amount: 10},
	}, segments)

	segments = Parse("Energy -20")
	require.Equal(t, []Segment{
		{Kind: KindStat, Stat: "Energy", Amount: -20},
	}, segments)

	segments = Parse("Skill points +45")
	require.Equal(t, []Segment{
		{Kind: KindStat, Stat: "Skill points", Amount: 45},
	}, segments)
}

func TestParseMultipleLines(t *testing.T) {
	segments := Parse("Wisdom +5\nSkill points +20\nFine Motion bond +5")
	require.Equal(t, []Segment{
		{Kind: KindStat, Stat: "Wisdom", Amount: 5},
		{Kind: KindStat, Stat: "Skill points", Amount: 20},
		{Kind: KindStat, Stat: "Fine Motion bond", Amount: 5},
	}, segments)
}

func TestParseRandomToken(t *testing.T) {
	segments := Parse("Energy +10 or Power +5")
	require.Equal(t, []Segment{
		{Kind: KindStat, Stat: "Energy", Amount: 10},
		{Kind: KindRandomDivider},
		{Kind: KindStat, Stat: "Power", Amount: 5},
	}, segments)
}

func TestParseStructuralMarkers(t *testing.T) {
	segments := Parse("Randomly either\nGuts +10\n---or---\nStamina +10")
	require.Equal(t, []Segment{
		{Kind: KindStat, Stat: "Guts", Amount: 10},
		{Kind: KindRandomDivider},
		{Kind: KindStat, Stat: "Stamina", Amount: 10},
	}, segments)
}

func TestParseSkillAndStatus(t *testing.T) {
	segments := Parse("Obtain Corner Adept ○ skill hint +1")
	require.Len(t, segments, 1)
	require.Equal(t, KindSkillGrant, segments[0].Kind)
	require.Equal(t, "Obtain Corner Adept ○ skill hint +1", segments[0].Raw)

	segments = Parse("Get Practice Perfect ○ status")
	require.Len(t, segments, 1)
	require.Equal(t, KindStatusChange, segments[0].Kind)
}

func TestParseFallbackText(t *testing.T) {
	segments := Parse("Motivation increases")
	require.Equal(t, []Segment{
		{Kind: KindText, Raw: "Motivation increases"},
	}, segments)

	// malformed input degrades, never panics
	segments = Parse("+++")
	require.Equal(t, []Segment{
		{Kind: KindText, Raw: "+++"},
	}, segments)
}

func TestParseEmpty(t *testing.T) {
	require.Empty(t, Parse(""))
	require.Empty(t, Parse("  \n \n"))
}

func TestParseIdempotent(t *testing.T) {
	input := "Speed +10\nObtain Groundwork skill\nSomething odd or Energy -5"
	first := Parse(input)
	second := Parse(input)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("parse is not a pure function of its input:\n%s", diff)
	}
}
