// Package viewer drives the reference site's training event helper
// page through a headless browser, implementing the harvester's
// driver contract.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"umaharvest-backend/services/harvester"
)

const DefaultPageUrl = "https://gametora.com/umamusume/training-event-helper"

// page structure the driver depends on
const (
	clearButtonSelector = `[class*="filters_button_clear"]`
	overlaySelector     = `[class*="sel_list"]`
	overlayItemSelector = `[class*="sel_list"] img`
	viewerSelector      = `[class*="eventhelper_viewer"]`
	iconSelector        = `[class*="eventhelper_viewer"] img[class*="eventhelper_icon"]`
	rowSelector         = `[class*="compatibility_viewer_item"]`
	tooltipSelector     = `[role="tooltip"]`
	tooltipTitle        = `[class*="tooltips_ttable_heading"]`
	tooltipChoiceRow    = `table tr`
)

var slotSelectors = map[harvester.Slot]string{
	harvester.SlotCharacter: "#boxChar",
	harvester.SlotScenario:  "#boxScenario",
	harvester.SlotCard1:     "#boxSupport1",
	harvester.SlotCard2:     "#boxSupport2",
	harvester.SlotCard3:     "#boxSupport3",
	harvester.SlotCard4:     "#boxSupport4",
	harvester.SlotCard5:     "#boxSupport5",
	harvester.SlotCard6:     "#boxSupport6",
}

type Options struct {
	// PageUrl overrides the event helper page, for mirrors and fixtures.
	PageUrl string
	// RemoteUrl is the websocket url of an external browser. Empty
	// launches a local one.
	RemoteUrl string
	Headless  bool
	// Timeout bounds every individual page interaction.
	Timeout time.Duration
}

func (o *Options) defaults() {
	if o.PageUrl == "" {
		o.PageUrl = DefaultPageUrl
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
}

// Viewer is a browser-backed harvester driver. Not safe for concurrent
// use, the page carries selection state.
type Viewer struct {
	opts    Options
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
}

var _ harvester.Driver = (*Viewer)(nil)

func New(ctx context.Context, opts Options) (*Viewer, error) {
	opts.defaults()
	v := &Viewer{opts: opts}

	wsUrl := opts.RemoteUrl
	if wsUrl == "" {
		l := launcher.New().
			Headless(opts.Headless).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launching browser: %w", err)
		}
		wsUrl = u
		v.lnch = l
	}

	v.browser = rod.New().ControlURL(wsUrl)
	if err := v.browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	page, err := stealth.Page(v.browser)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("creating page: %w", err)
	}
	v.page = page

	if err := v.navigate(ctx); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func (v *Viewer) navigate(ctx context.Context) error {
	page := v.page.Context(ctx)
	if err := page.Navigate(v.opts.PageUrl); err != nil {
		return fmt.Errorf("navigating to %s: %w", v.opts.PageUrl, err)
	}
	if err := page.WaitLoad(); err != nil {
		slog.WarnContext(ctx, "page load wait timed out, continuing", "err", err)
	}
	return nil
}

func (v *Viewer) Close() {
	if v.browser != nil {
		if err := v.browser.Close(); err != nil {
			slog.Warn("failed to close browser", "err", err)
		}
	}
	if v.lnch != nil {
		v.lnch.Cleanup()
	}
}

func (v *Viewer) bounded(ctx context.Context) *rod.Page {
	return v.page.Context(ctx).Timeout(v.opts.Timeout)
}

func (v *Viewer) ClearConfiguration(ctx context.Context) error {
	page := v.page.Context(ctx).Timeout(3 * time.Second)
	has, el, err := page.Has(clearButtonSelector)
	if err != nil {
		return harvester.Fatal(err)
	}
	if !has {
		return harvester.ErrNoClearAffordance
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("clicking clear control: %w", err)
	}
	return nil
}

func (v *Viewer) OpenSelector(ctx context.Context, slot harvester.Slot) error {
	selector, ok := slotSelectors[slot]
	if !ok {
		return fmt.Errorf("unknown slot %q", slot)
	}
	el, err := v.bounded(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("finding slot %q: %w", slot, err)
	}
	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scrolling slot %q into view: %w", slot, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("opening slot %q: %w", slot, err)
	}
	if _, err := v.bounded(ctx).Element(overlaySelector); err != nil {
		return fmt.Errorf("selector overlay for %q never appeared: %w", slot, err)
	}
	return nil
}

func (v *Viewer) ClickMatchingItem(ctx context.Context, match func(harvester.SelectorItem) bool) (bool, error) {
	els, err := v.bounded(ctx).Elements(overlayItemSelector)
	if err != nil {
		return false, harvester.Fatal(err)
	}
	for _, el := range els {
		item := harvester.SelectorItem{}
		if alt, err := el.Attribute("alt"); err == nil && alt != nil {
			item.Label = *alt
		}
		if src, err := el.Attribute("src"); err == nil && src != nil {
			item.ImageRef = *src
		}
		if !match(item) {
			continue
		}
		if err := el.ScrollIntoView(); err != nil {
			return false, fmt.Errorf("scrolling item into view: %w", err)
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return false, fmt.Errorf("clicking item %q: %w", item.Label, err)
		}
		return true, nil
	}
	return false, nil
}

func (v *Viewer) CloseOverlay(ctx context.Context) error {
	if err := v.page.Context(ctx).Keyboard.Press(input.Escape); err != nil {
		return fmt.Errorf("dismissing overlay: %w", err)
	}
	return nil
}

func (v *Viewer) AwaitViewer(ctx context.Context) (int, error) {
	page := v.bounded(ctx)
	el, err := page.Element(viewerSelector)
	if err != nil {
		return 0, harvester.Fatal(fmt.Errorf("event viewer never appeared: %w", err))
	}
	if err := el.WaitStable(time.Second); err != nil {
		slog.WarnContext(ctx, "viewer did not stabilize, reading anyway", "err", err)
	}
	icons, err := page.Elements(iconSelector)
	if err != nil {
		return 0, harvester.Fatal(err)
	}
	return len(icons), nil
}

func (v *Viewer) OpenIcon(ctx context.Context, i int) (harvester.IconDetail, error) {
	icons, err := v.bounded(ctx).Elements(iconSelector)
	if err != nil {
		return harvester.IconDetail{}, harvester.Fatal(err)
	}
	if i >= len(icons) {
		return harvester.IconDetail{}, fmt.Errorf("icon %d out of range, viewer shows %d", i, len(icons))
	}
	icon := icons[i]

	detail := harvester.IconDetail{}
	if src, err := icon.Attribute("src"); err == nil && src != nil {
		detail.ImageRef = *src
	}

	if err := icon.ScrollIntoView(); err != nil {
		return detail, fmt.Errorf("scrolling icon %d into view: %w", i, err)
	}
	if err := icon.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return detail, fmt.Errorf("focusing icon %d: %w", i, err)
	}

	rows, err := v.bounded(ctx).Elements(rowSelector)
	if err != nil {
		return detail, harvester.Fatal(err)
	}
	detail.Rows = len(rows)
	return detail, nil
}

func (v *Viewer) OpenTooltip(ctx context.Context, icon, row int) (harvester.Tooltip, error) {
	rows, err := v.bounded(ctx).Elements(rowSelector)
	if err != nil {
		return harvester.Tooltip{}, harvester.Fatal(err)
	}
	if row >= len(rows) {
		return harvester.Tooltip{}, fmt.Errorf("row %d out of range, icon shows %d", row, len(rows))
	}

	el := rows[row]
	if err := el.ScrollIntoView(); err != nil {
		return harvester.Tooltip{}, fmt.Errorf("scrolling row %d into view: %w", row, err)
	}
	if err := el.Hover(); err != nil {
		return harvester.Tooltip{}, fmt.Errorf("hovering row %d: %w", row, err)
	}

	tip, err := v.bounded(ctx).Element(tooltipSelector)
	if err != nil {
		return harvester.Tooltip{}, fmt.Errorf("tooltip for row %d never appeared: %w", row, err)
	}
	return readTooltip(el, tip)
}

func readTooltip(row, tip *rod.Element) (harvester.Tooltip, error) {
	out := harvester.Tooltip{}

	if title, err := row.Text(); err == nil {
		out.Title = title
	}
	if heading, err := tip.Element(tooltipTitle); err == nil {
		if text, err := heading.Text(); err == nil {
			out.Heading = text
		}
	}

	choiceRows, err := tip.Elements(tooltipChoiceRow)
	if err != nil {
		return out, fmt.Errorf("reading tooltip choices: %w", err)
	}
	for _, choiceRow := range choiceRows {
		cells, err := choiceRow.Elements("td")
		if err != nil || len(cells) < 2 {
			continue
		}
		label, err := cells[0].Text()
		if err != nil {
			continue
		}
		effects, err := cells[1].Text()
		if err != nil {
			continue
		}
		out.Choices = append(out.Choices, harvester.TooltipChoice{
			Label:      label,
			EffectText: effects,
		})
	}
	return out, nil
}

func (v *Viewer) CloseTooltip(ctx context.Context) error {
	return v.page.Context(ctx).Mouse.MoveTo(proto.Point{X: 0, Y: 0})
}

func (v *Viewer) Reload(ctx context.Context) error {
	page := v.page.Context(ctx)
	if err := page.Reload(); err != nil {
		// a dead page cannot be reloaded in place, navigate fresh
		slog.WarnContext(ctx, "reload failed, navigating fresh", "err", err)
		return v.navigate(ctx)
	}
	if err := page.WaitLoad(); err != nil {
		slog.WarnContext(ctx, "page load wait timed out after reload", "err", err)
	}
	return nil
}
