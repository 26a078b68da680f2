package gametora

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const characterListHtml = `
<html><body>
<div class="list">
  <a href="/umamusume/characters/100701-special-week">
    <img src="/images/umamusume/characters/chara_stand_100701.png">
    <span>Special Week</span>
  </a>
  <a href="/umamusume/characters/100702-silence-suzuka">
    <img data-src="/images/umamusume/characters/chara_stand_100702.png">
    <span>Silence  Suzuka</span>
  </a>
  <a href="/umamusume/characters">All characters</a>
  <a href="/umamusume/supports/30021-kitasan-black">not this section</a>
</div>
</body></html>`

func TestParseEntityList(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(characterListHtml))
	require.NoError(t, err)

	entries := parseEntityList(doc, "/umamusume/characters/")
	require.Len(t, entries, 2)

	require.Equal(t, Entry{
		Id:          "100701",
		DisplayName: "Special Week",
		ImageRef:    "/images/umamusume/characters/chara_stand_100701.png",
		Href:        "/umamusume/characters/100701-special-week",
	}, entries[0])

	// lazy-loaded image and doubled whitespace
	require.Equal(t, "100702", entries[1].Id)
	require.Equal(t, "Silence Suzuka", entries[1].DisplayName)
	require.Equal(t, "/images/umamusume/characters/chara_stand_100702.png", entries[1].ImageRef)
}

func TestParseEntityListRarity(t *testing.T) {
	html := `
<a class="card sc_rarity_ssr" href="/umamusume/supports/30021-kitasan-black">
  <img src="/images/umamusume/supports/support_card_s_30021.png">Kitasan Black
</a>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	entries := parseEntityList(doc, "/umamusume/supports/")
	require.Len(t, entries, 1)
	require.Equal(t, "SSR", entries[0].Rarity)
	require.Equal(t, "30021", entries[0].Id)
}

func TestParseEntityListIdFallsBackToHref(t *testing.T) {
	html := `<a href="/umamusume/scenarios/ura-finals">URA Finals</a>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	entries := parseEntityList(doc, "/umamusume/scenarios/")
	require.Len(t, entries, 1)
	require.Equal(t, "ura-finals", entries[0].Id)
	require.Equal(t, "URA Finals", entries[0].DisplayName)
}

func TestParseReferenceTableRows(t *testing.T) {
	html := `
<table>
  <tr><th>Name</th><th>Effect</th></tr>
  <tr><td>Corner Adept ○</td><td>Slightly improves cornering.</td></tr>
  <tr><td>Groundwork</td><td>Improves start dash.</td></tr>
  <tr><td>Groundwork</td><td>duplicate row</td></tr>
</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	refs := parseReferenceTable(doc)
	require.Equal(t, []Reference{
		{Name: "Corner Adept ○", EffectText: "Slightly improves cornering."},
		{Name: "Groundwork", EffectText: "Improves start dash."},
	}, refs)
}

func TestParseReferenceTableDataAttributes(t *testing.T) {
	html := `
<div>
  <div data-name="Practice Perfect ○" data-effect="Less likely to fail training."></div>
  <div data-name="Charming ○">Bond gain increased.</div>
</div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	refs := parseReferenceTable(doc)
	require.Equal(t, []Reference{
		{Name: "Practice Perfect ○", EffectText: "Less likely to fail training."},
		{Name: "Charming ○", EffectText: "Bond gain increased."},
	}, refs)
}
