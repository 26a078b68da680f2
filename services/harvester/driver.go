package harvester

import (
	"context"
	"errors"
	"fmt"
)

// Slot names one of the viewer's selector panels.
type Slot string

const (
	SlotCharacter Slot = "character"
	SlotScenario  Slot = "scenario"
	SlotCard1     Slot = "card1"
	SlotCard2     Slot = "card2"
	SlotCard3     Slot = "card3"
	SlotCard4     Slot = "card4"
	SlotCard5     Slot = "card5"
	SlotCard6     Slot = "card6"
)

// CardSlots lists the six card selector slots in viewer order.
var CardSlots = []Slot{SlotCard1, SlotCard2, SlotCard3, SlotCard4, SlotCard5, SlotCard6}

// SelectorItem is one entry of an open selector overlay.
type SelectorItem struct {
	Label    string
	ImageRef string
}

// TooltipChoice is one choice row of an open event tooltip, with the
// effect cell still in raw text form.
type TooltipChoice struct {
	Label      string
	EffectText string
}

// Tooltip is the content of an open event tooltip.
type Tooltip struct {
	Title   string
	Heading string
	Choices []TooltipChoice
}

// ErrNoClearAffordance reports that the viewer exposes no way to reset
// the current configuration; callers fall back to a page reload.
var ErrNoClearAffordance = errors.New("viewer has no clear-all control")

// Driver abstracts the browser automation the session runs against.
// Implementations are expected to wrap unrecoverable page failures with
// Fatal so the coordinator knows to reload rather than skip.
type Driver interface {
	// ClearConfiguration resets every selector. Returns
	// ErrNoClearAffordance when the page version has no such control.
	ClearConfiguration(ctx context.Context) error

	// OpenSelector opens the overlay for one slot.
	OpenSelector(ctx context.Context, slot Slot) error

	// ClickMatchingItem scans the open overlay and clicks the first
	// item the predicate accepts. Reports whether anything matched.
	ClickMatchingItem(ctx context.Context, match func(SelectorItem) bool) (bool, error)

	// CloseOverlay dismisses the open selector overlay.
	CloseOverlay(ctx context.Context) error

	// AwaitViewer waits for the event viewer to settle and returns the
	// number of entity icons it shows.
	AwaitViewer(ctx context.Context) (int, error)

	// OpenIcon focuses the i-th icon and returns its event row count.
	OpenIcon(ctx context.Context, i int) (IconDetail, error)

	// OpenTooltip hovers the given event row under the focused icon.
	OpenTooltip(ctx context.Context, icon, row int) (Tooltip, error)

	// CloseTooltip dismisses the open tooltip.
	CloseTooltip(ctx context.Context) error

	// Reload reloads the page, discarding all viewer state.
	Reload(ctx context.Context) error
}

// IconDetail describes one focused viewer icon.
type IconDetail struct {
	ImageRef string
	Rows     int
}

type fatalError struct {
	err error
}

func (e fatalError) Error() string {
	return fmt.Sprintf("fatal driver failure: %v", e.err)
}

func (e fatalError) Unwrap() error { return e.err }

// Fatal marks an error as unrecoverable for the current page. The
// coordinator responds by reloading and moving on to the next
// combination instead of skipping a single step.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return fatalError{err: err}
}

func IsFatal(err error) bool {
	var f fatalError
	return errors.As(err, &f)
}
