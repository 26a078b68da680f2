package harvester

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"umaharvest-backend/lib/effectparse"
)

type fakeIcon struct {
	imageRef string
	tooltips []Tooltip
}

type fakeDriver struct {
	noClear     bool
	cleared     int
	reloads     int
	currentSlot Slot
	items       map[Slot][]SelectorItem
	clicked     []string
	closed      int

	icons       []fakeIcon
	failIcon    map[int]error
	failTooltip map[[2]int]error
}

func (d *fakeDriver) ClearConfiguration(ctx context.Context) error {
	if d.noClear {
		return ErrNoClearAffordance
	}
	d.cleared++
	return nil
}

func (d *fakeDriver) OpenSelector(ctx context.Context, slot Slot) error {
	if d.items[slot] == nil {
		return errors.New("selector missing")
	}
	d.currentSlot = slot
	return nil
}

func (d *fakeDriver) ClickMatchingItem(ctx context.Context, match func(SelectorItem) bool) (bool, error) {
	for _, item := range d.items[d.currentSlot] {
		if match(item) {
			d.clicked = append(d.clicked, item.Label)
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeDriver) CloseOverlay(ctx context.Context) error {
	d.closed++
	return nil
}

func (d *fakeDriver) AwaitViewer(ctx context.Context) (int, error) {
	return len(d.icons), nil
}

func (d *fakeDriver) OpenIcon(ctx context.Context, i int) (IconDetail, error) {
	if err := d.failIcon[i]; err != nil {
		return IconDetail{}, err
	}
	return IconDetail{ImageRef: d.icons[i].imageRef, Rows: len(d.icons[i].tooltips)}, nil
}

func (d *fakeDriver) OpenTooltip(ctx context.Context, icon, row int) (Tooltip, error) {
	if err := d.failTooltip[[2]int{icon, row}]; err != nil {
		return Tooltip{}, err
	}
	return d.icons[icon].tooltips[row], nil
}

func (d *fakeDriver) CloseTooltip(ctx context.Context) error { return nil }

func (d *fakeDriver) Reload(ctx context.Context) error {
	d.reloads++
	return nil
}

func testCombination() Combination {
	return Combination{
		Character: &CatalogEntity{
			Id: "char1", DisplayName: "Special Week",
			ImageRef: "/images/char1.png", Kind: KindCharacter,
		},
		Scenario: "URA Finals",
		Cards: []CatalogEntity{
			{Id: "card1", DisplayName: "Fine Motion", ImageRef: "/images/card1.png", Kind: KindSupportCard},
		},
		AllowScenarioEvent: true,
	}
}

func selectorItems() map[Slot][]SelectorItem {
	return map[Slot][]SelectorItem{
		SlotCharacter: {
			{Label: "Silence Suzuka", ImageRef: "/images/char2.png"},
			{Label: "Special Week", ImageRef: "/images/char1.png"},
		},
		SlotScenario: {
			{Label: "URA Finals"},
			{Label: "Aoharu Cup"},
		},
		SlotCard1: {
			{Label: "Fine Motion", ImageRef: "/images/card1.png"},
		},
	}
}

func TestSessionConfigure(t *testing.T) {
	driver := &fakeDriver{items: selectorItems()}
	session := NewSession(driver, nil)

	require.NoError(t, session.Configure(context.Background(), testCombination()))
	require.Equal(t, 1, driver.cleared)
	require.Equal(t, []string{"Fine Motion", "URA Finals", "Special Week"}, driver.clicked)
	require.Equal(t, 3, driver.closed)
}

func TestSessionConfigureSkipsUnchangedScenario(t *testing.T) {
	driver := &fakeDriver{items: selectorItems()}
	session := NewSession(driver, nil)
	combination := testCombination()

	require.NoError(t, session.Configure(context.Background(), combination))
	require.NoError(t, session.Configure(context.Background(), combination))

	// the scenario was only clicked once, everything else twice
	scenarioClicks := 0
	for _, label := range driver.clicked {
		if label == "URA Finals" {
			scenarioClicks++
		}
	}
	require.Equal(t, 1, scenarioClicks)
	require.Equal(t, 2, driver.cleared)

	// a reload invalidates the cache
	require.NoError(t, session.Reload(context.Background()))
	require.NoError(t, session.Configure(context.Background(), combination))
	scenarioClicks = 0
	for _, label := range driver.clicked {
		if label == "URA Finals" {
			scenarioClicks++
		}
	}
	require.Equal(t, 2, scenarioClicks)
}

func TestSessionConfigureReloadsWithoutClearControl(t *testing.T) {
	driver := &fakeDriver{noClear: true, items: selectorItems()}
	session := NewSession(driver, nil)

	require.NoError(t, session.Configure(context.Background(), testCombination()))
	require.Equal(t, 1, driver.reloads)
	require.Equal(t, 0, driver.cleared)
}

func TestSessionConfigureSkipsBrokenSelector(t *testing.T) {
	items := selectorItems()
	delete(items, SlotCard1)
	driver := &fakeDriver{items: items}
	session := NewSession(driver, nil)

	// a missing card selector is logged and skipped, not fatal
	require.NoError(t, session.Configure(context.Background(), testCombination()))
	require.Equal(t, []string{"URA Finals", "Special Week"}, driver.clicked)
}

func TestSessionConfigureWithoutCharacter(t *testing.T) {
	driver := &fakeDriver{items: selectorItems()}
	session := NewSession(driver, nil)

	combination := testCombination()
	combination.Character = nil
	require.NoError(t, session.Configure(context.Background(), combination))
	require.Equal(t, []string{"Fine Motion", "URA Finals"}, driver.clicked)
}

func TestSessionCapture(t *testing.T) {
	driver := &fakeDriver{
		icons: []fakeIcon{
			{imageRef: "/images/char1.png", tooltips: []Tooltip{{
				Title:   "Exam Time",
				Heading: "Trainee Events",
				Choices: []TooltipChoice{
					{Label: "Study hard", EffectText: "Wisdom +10"},
					{Label: "Slack off", EffectText: "Energy +10"},
				},
			}}},
			{imageRef: "/images/card1.png", tooltips: []Tooltip{{
				Title:   "A Helping Hand",
				Heading: "Support Events",
				Choices: []TooltipChoice{{Label: "Accept", EffectText: "Fine Motion bond +5"}},
			}}},
			{imageRef: "", tooltips: []Tooltip{{
				Title:   "Opening Ceremony",
				Heading: "Scenario Events",
			}}},
		},
	}
	session := NewSession(driver, nil)

	events, err := session.Capture(context.Background(), testCombination())
	require.NoError(t, err)
	require.Len(t, events, 3)

	require.Equal(t, Owner{Type: OwnerCharacter, Id: "char1", DisplayName: "Special Week"}, events[0].Owner)
	require.Equal(t, "Exam Time", events[0].Name)
	require.Equal(t, "Trainee Events", events[0].Category)
	require.Len(t, events[0].Choices, 2)
	require.Equal(t, []effectparse.Segment{
		{Kind: effectparse.KindStat, Stat: "Wisdom", Amount: 10},
	}, events[0].Choices[0].Effects)

	require.Equal(t, OwnerSupport, events[1].Owner.Type)
	require.Equal(t, "card1", events[1].Owner.Id)

	require.Equal(t, Owner{Type: OwnerScenario, Id: "URA Finals", DisplayName: "URA Finals"}, events[2].Owner)
}

func TestSessionCaptureSkipsScenarioWhenNotAllowed(t *testing.T) {
	driver := &fakeDriver{
		icons: []fakeIcon{
			{imageRef: "/images/char1.png", tooltips: []Tooltip{{Title: "Exam Time", Heading: "Trainee Events"}}},
			{imageRef: "/images/card1.png", tooltips: []Tooltip{{Title: "A Helping Hand", Heading: "Support Events"}}},
			{imageRef: "", tooltips: []Tooltip{{Title: "Opening Ceremony", Heading: "Scenario Events"}}},
		},
	}
	combination := testCombination()
	combination.AllowScenarioEvent = false
	session := NewSession(driver, nil)

	events, err := session.Capture(context.Background(), combination)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		require.NotEqual(t, OwnerScenario, e.Owner.Type)
	}
}

func TestSessionCaptureSkipsBrokenRows(t *testing.T) {
	driver := &fakeDriver{
		icons: []fakeIcon{
			{imageRef: "/images/char1.png", tooltips: []Tooltip{
				{Title: "First", Heading: "Trainee Events"},
				{Title: "Second", Heading: "Trainee Events"},
			}},
		},
		failTooltip: map[[2]int]error{{0, 0}: errors.New("tooltip never appeared")},
	}
	combination := testCombination()
	combination.Cards = nil
	session := NewSession(driver, nil)

	events, err := session.Capture(context.Background(), combination)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Second", events[0].Name)
}

func TestSessionCaptureFatalAborts(t *testing.T) {
	driver := &fakeDriver{
		icons: []fakeIcon{
			{imageRef: "/images/char1.png", tooltips: []Tooltip{{Title: "First", Heading: "Trainee Events"}}},
			{imageRef: "/images/card1.png", tooltips: []Tooltip{{Title: "Never reached", Heading: "Support Events"}}},
		},
		failIcon: map[int]error{1: Fatal(errors.New("page crashed"))},
	}
	session := NewSession(driver, nil)

	events, err := session.Capture(context.Background(), testCombination())
	require.Error(t, err)
	require.True(t, IsFatal(err))
	// what was captured before the crash is still returned
	require.Len(t, events, 1)
}

func TestSessionCaptureResolverOverridesPosition(t *testing.T) {
	driver := &fakeDriver{
		icons: []fakeIcon{
			{imageRef: "/images/char9.png", tooltips: []Tooltip{{Title: "Surprise", Heading: "Trainee Events"}}},
		},
	}
	resolver := resolverFunc(func(imageRef, hint string) (*CatalogEntity, bool) {
		return &CatalogEntity{Id: "char9", DisplayName: "Gold Ship", Kind: KindCharacter}, true
	})
	combination := testCombination()
	combination.Cards = nil
	session := NewSession(driver, resolver)

	events, err := session.Capture(context.Background(), combination)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "char9", events[0].Owner.Id)
	require.Equal(t, "Gold Ship", events[0].Owner.DisplayName)
}

type resolverFunc func(imageRef, hint string) (*CatalogEntity, bool)

func (f resolverFunc) Resolve(imageRef, hint string) (*CatalogEntity, bool) {
	return f(imageRef, hint)
}
