package harvester

import (
	"fmt"
	"log/slog"

	"github.com/mazen160/go-random"
)

const cardsPerCombination = 6

// FallbackScenario is configured whenever the catalog yields no
// scenarios at all; the viewer always needs one selected.
const FallbackScenario = "URA Finals"

// Plan lays out the combinations a run must visit so that every
// character, every support card and every scenario is configured at
// least once. The number of combinations is driven by whichever side
// of the catalog is larger: one per character, or enough six-card
// pages to fit all support cards.
func Plan(characters []CatalogEntity, scenarios []string, cards []CatalogEntity) []Combination {
	if len(scenarios) == 0 {
		scenarios = []string{FallbackScenario}
	}

	pages := (len(cards) + cardsPerCombination - 1) / cardsPerCombination
	total := len(characters)
	if pages > total {
		total = pages
	}
	if total == 0 {
		return nil
	}

	combinations := make([]Combination, 0, total)
	for i := 0; i < total; i++ {
		c := Combination{
			Index:     i,
			Character: pickCharacter(characters, i),
			Scenario:  scenarios[i%len(scenarios)],
		}

		start := i * cardsPerCombination
		if start < len(cards) {
			end := start + cardsPerCombination
			if end > len(cards) {
				end = len(cards)
			}
			c.Cards = cards[start:end]
		}

		// only the first pass over the scenario list is allowed to
		// contribute scenario events, so each scenario is captured
		// exactly once
		c.AllowScenarioEvent = i < len(scenarios)

		combinations = append(combinations, c)
	}

	slog.Debug("planned combinations",
		"total", len(combinations),
		"characters", len(characters),
		"cards", len(cards),
		"scenarios", len(scenarios))

	return combinations
}

// pickCharacter exhausts unused characters first, then recycles
// arbitrary ones for the remaining card pages. Nil when the catalog
// has no characters at all, the session skips that selection step.
func pickCharacter(characters []CatalogEntity, i int) *CatalogEntity {
	if len(characters) == 0 {
		return nil
	}
	if i < len(characters) {
		return &characters[i]
	}
	n, err := random.IntRange(0, len(characters))
	if err != nil || n < 0 || n >= len(characters) {
		n = i % len(characters)
	}
	return &characters[n]
}

// Describe renders a one-line summary for progress logs.
func (c Combination) Describe() string {
	character := "<none>"
	if c.Character != nil {
		character = c.Character.DisplayName
	}
	return fmt.Sprintf("combination %d: character=%q scenario=%q cards=%d",
		c.Index, character, c.Scenario, len(c.Cards))
}
