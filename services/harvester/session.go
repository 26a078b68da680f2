package harvester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"umaharvest-backend/lib/effectparse"
	"umaharvest-backend/lib/textutil"
)

var tracer = otel.Tracer("services/harvester")

// IconResolver reconciles a viewer icon against the catalog. The hint
// is the display name the session expects at that icon's position.
type IconResolver interface {
	Resolve(imageRef, hint string) (*CatalogEntity, bool)
}

// Session operates the viewer for one combination at a time. It is not
// safe for concurrent use; the coordinator runs combinations
// sequentially on purpose, the reference site throttles aggressively.
type Session struct {
	driver   Driver
	resolver IconResolver

	// the scenario selector keeps its value across clears, so an
	// unchanged scenario is not re-selected. Reset on reload.
	currentScenario string
}

func NewSession(driver Driver, resolver IconResolver) *Session {
	return &Session{driver: driver, resolver: resolver}
}

// Reload discards all page state. Used by the coordinator to recover
// from fatal driver failures between combinations.
func (s *Session) Reload(ctx context.Context) error {
	s.currentScenario = ""
	return s.driver.Reload(ctx)
}

// Configure resets the viewer and selects the combination's character,
// scenario and support cards. Individual selection failures are logged
// and skipped so one broken selector cannot starve the rest of the
// combination; only fatal driver errors propagate.
func (s *Session) Configure(ctx context.Context, c Combination) error {
	ctx, span := tracer.Start(ctx, "session.Configure")
	defer span.End()

	if err := s.driver.ClearConfiguration(ctx); err != nil {
		if IsFatal(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to clear configuration")
			return err
		}
		if errors.Is(err, ErrNoClearAffordance) {
			s.currentScenario = ""
			if err := s.driver.Reload(ctx); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to reload in place of clearing")
				return Fatal(err)
			}
		} else {
			slog.WarnContext(ctx, "clearing configuration failed, continuing", "err", err)
		}
	}

	// cards first, then scenario, then character, matching the order
	// the page applies selections without reshuffling its own state
	for i, card := range c.Cards {
		if err := s.selectEntity(ctx, CardSlots[i], card); err != nil {
			return err
		}
	}
	if err := s.selectScenario(ctx, c.Scenario); err != nil {
		return err
	}
	if c.Character != nil {
		if err := s.selectEntity(ctx, SlotCharacter, *c.Character); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) selectEntity(ctx context.Context, slot Slot, entity CatalogEntity) error {
	wantRef := textutil.ImageRefId(entity.ImageRef)
	return s.selectIn(ctx, slot, entity.DisplayName, func(item SelectorItem) bool {
		if wantRef != "" && textutil.ImageRefId(item.ImageRef) == wantRef {
			return true
		}
		return nameMatches(item.Label, entity.DisplayName)
	})
}

func (s *Session) selectScenario(ctx context.Context, name string) error {
	if name == s.currentScenario {
		return nil
	}
	err := s.selectIn(ctx, SlotScenario, name, func(item SelectorItem) bool {
		return nameMatches(item.Label, name)
	})
	if err == nil {
		s.currentScenario = name
	}
	return err
}

func nameMatches(label, want string) bool {
	return textutil.MatchName(label, []string{textutil.NormalizeName(want)})
}

func (s *Session) selectIn(ctx context.Context, slot Slot, want string, match func(SelectorItem) bool) error {
	if err := s.driver.OpenSelector(ctx, slot); err != nil {
		if IsFatal(err) {
			return err
		}
		slog.WarnContext(ctx, "failed to open selector, skipping slot",
			"slot", slot, "want", want, "err", err)
		return nil
	}

	matched, err := s.driver.ClickMatchingItem(ctx, match)
	if err != nil && IsFatal(err) {
		return err
	}
	if err != nil {
		slog.WarnContext(ctx, "selector scan failed, skipping slot",
			"slot", slot, "want", want, "err", err)
	} else if !matched {
		slog.WarnContext(ctx, "no selector item matched, skipping slot",
			"slot", slot, "want", want)
	}

	if err := s.driver.CloseOverlay(ctx); err != nil {
		if IsFatal(err) {
			return err
		}
		slog.WarnContext(ctx, "failed to close selector overlay", "slot", slot, "err", err)
	}
	return nil
}

// Capture walks every icon the viewer shows for the current
// configuration and reads every event tooltip underneath it. Broken
// icons and rows are logged and skipped; a fatal driver error aborts
// the whole combination.
func (s *Session) Capture(ctx context.Context, c Combination) ([]CapturedEvent, error) {
	ctx, span := tracer.Start(ctx, "session.Capture")
	defer span.End()

	iconCount, err := s.driver.AwaitViewer(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "viewer did not settle")
		return nil, err
	}

	owners := s.expectedOwners(ctx, c, iconCount)

	var out []CapturedEvent
	for i := 0; i < iconCount; i++ {
		detail, err := s.driver.OpenIcon(ctx, i)
		if err != nil {
			if IsFatal(err) {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to open icon")
				return out, err
			}
			slog.WarnContext(ctx, "failed to open icon, skipping", "icon", i, "err", err)
			continue
		}

		owner := s.resolveOwner(detail.ImageRef, owners[i])
		if owner.Type == OwnerScenario && !c.AllowScenarioEvent {
			continue
		}

		events, err := s.captureIcon(ctx, i, detail.Rows, owner)
		out = append(out, events...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed mid icon")
			return out, err
		}
	}
	return out, nil
}

func (s *Session) captureIcon(ctx context.Context, icon, rows int, owner Owner) ([]CapturedEvent, error) {
	var out []CapturedEvent
	for row := 0; row < rows; row++ {
		tooltip, err := s.driver.OpenTooltip(ctx, icon, row)
		if err != nil {
			if IsFatal(err) {
				return out, err
			}
			slog.WarnContext(ctx, "failed to open tooltip, skipping row",
				"icon", icon, "row", row, "owner", owner.DisplayName, "err", err)
			continue
		}

		event := CapturedEvent{
			Owner:    owner,
			Name:     tooltip.Title,
			Category: CategoryFromHeading(tooltip.Heading),
		}
		for _, choice := range tooltip.Choices {
			event.Choices = append(event.Choices, Choice{
				Label:   choice.Label,
				Effects: effectparse.Parse(choice.EffectText),
			})
		}
		out = append(out, event)

		if err := s.driver.CloseTooltip(ctx); err != nil {
			if IsFatal(err) {
				return out, err
			}
			slog.WarnContext(ctx, "failed to close tooltip", "icon", icon, "row", row, "err", err)
		}
	}
	return out, nil
}

// expectedOwners maps icon positions onto configured entities. The
// viewer appends icons in configuration order: the character first,
// then each selected card, then the scenario.
func (s *Session) expectedOwners(ctx context.Context, c Combination, iconCount int) []Owner {
	var ordered []Owner
	if c.Character != nil {
		ordered = append(ordered, Owner{
			Type:        OwnerCharacter,
			Id:          c.Character.Id,
			DisplayName: c.Character.DisplayName,
		})
	}
	for _, card := range c.Cards {
		ordered = append(ordered, Owner{
			Type:        OwnerSupport,
			Id:          card.Id,
			DisplayName: card.DisplayName,
		})
	}
	ordered = append(ordered, Owner{
		Type:        OwnerScenario,
		Id:          c.Scenario,
		DisplayName: c.Scenario,
	})

	owners := make([]Owner, iconCount)
	for i := range owners {
		if i < len(ordered) {
			owners[i] = ordered[i]
			continue
		}
		slog.WarnContext(ctx, "viewer shows more icons than configured entities",
			"icon", i, "configured", len(ordered))
		owners[i] = Owner{
			Type:        OwnerSupport,
			Id:          fmt.Sprintf("unknown-icon-%d", i),
			DisplayName: "Unknown",
		}
	}
	return owners
}

// resolveOwner lets the catalog override the positional guess when the
// icon's image pins it to a different entity.
func (s *Session) resolveOwner(imageRef string, expected Owner) Owner {
	if s.resolver == nil || imageRef == "" || expected.Type == OwnerScenario {
		return expected
	}
	entity, ok := s.resolver.Resolve(imageRef, expected.DisplayName)
	if !ok {
		return expected
	}
	owner := Owner{Id: entity.Id, DisplayName: entity.DisplayName}
	switch entity.Kind {
	case KindCharacter:
		owner.Type = OwnerCharacter
	default:
		owner.Type = OwnerSupport
	}
	return owner
}
