// Package harvester drives the event viewer of the reference site
// through every catalog entity, collecting training events and their
// choice effects into a resumable snapshot.
package harvester

import (
	"strings"
	"time"
	"umaharvest-backend/lib/effectparse"
)

type EntityKind string

const (
	KindCharacter   EntityKind = "character"
	KindSupportCard EntityKind = "support_card"
)

// CatalogEntity is one canonical character or support card, loaded once
// per run from an earlier catalog scrape. Immutable during a session.
type CatalogEntity struct {
	Id          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	ImageRef    string     `json:"image_ref"`
	Rarity      string     `json:"rarity"`
	Kind        EntityKind `json:"kind"`
}

// Combination is one viewer configuration: a character, a scenario and
// up to six support cards. Built by the planner, consumed once, never
// mutated.
type Combination struct {
	Index     int
	Character *CatalogEntity
	Scenario  string
	Cards     []CatalogEntity

	// the viewer only appends a scenario icon for the combinations
	// that are responsible for scenario coverage
	AllowScenarioEvent bool
}

type OwnerType string

const (
	OwnerCharacter OwnerType = "character"
	OwnerSupport   OwnerType = "support"
	OwnerScenario  OwnerType = "scenario"
)

// Owner identifies which configured entity an icon (and its events)
// belongs to.
type Owner struct {
	Type        OwnerType
	Id          string
	DisplayName string
}

type Choice struct {
	Label   string                `json:"label"`
	Effects []effectparse.Segment `json:"effects"`
}

// EventRecord is one captured event occurrence. Ids are assigned
// monotonically at capture time and every occurrence is kept, even
// when it is textually identical to an earlier one: downstream
// consumers rely on raw multiplicity.
type EventRecord struct {
	Id       int64    `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Choices  []Choice `json:"choices"`
}

// OwnerGroup accumulates the event ids observed for one owner across
// all combinations, keyed by category. Append only.
type OwnerGroup struct {
	OwnerId          string             `json:"owner_id"`
	DisplayName      string             `json:"display_name"`
	ImageRef         string             `json:"image_ref,omitempty"`
	Rarity           string             `json:"rarity,omitempty"`
	EventsByCategory map[string][]int64 `json:"events_by_category"`
}

type Progress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// RunSnapshot is the full persisted unit, rewritten wholesale after
// every combination and read by the downstream browsing application.
type RunSnapshot struct {
	Events       []EventRecord `json:"events"`
	Characters   []OwnerGroup  `json:"characters"`
	SupportCards []OwnerGroup  `json:"support_cards"`
	Scenarios    []OwnerGroup  `json:"scenarios"`
	Progress     Progress      `json:"progress"`
	Timestamp    time.Time     `json:"timestamp"`
}

// NextEventId returns the id the next captured event should receive.
func (s *RunSnapshot) NextEventId() int64 {
	var max int64
	for _, e := range s.Events {
		if e.Id > max {
			max = e.Id
		}
	}
	return max + 1
}

// CapturedEvent is a session observation before ids are assigned and
// owners are reconciled against the catalog.
type CapturedEvent struct {
	Owner    Owner
	Name     string
	Category string
	Choices  []Choice
}

// fixed vocabulary the session recognizes in viewer section headings
var categoryVocabulary = []string{
	"Trainee Events",
	"Support Events",
	"Scenario Events",
	"Chain Events",
	"Random Events",
	"Special Events",
	"Date Events",
}

const CategoryUnknown = "Unknown"

// CategoryFromHeading maps a viewer heading onto the fixed category
// vocabulary, falling back to Unknown.
func CategoryFromHeading(heading string) string {
	for _, c := range categoryVocabulary {
		if heading == c {
			return c
		}
	}
	for _, c := range categoryVocabulary {
		if containsFold(heading, c) {
			return c
		}
	}
	return CategoryUnknown
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
