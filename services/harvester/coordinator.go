package harvester

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"

	"umaharvest-backend/lib/effectparse"
	"umaharvest-backend/services/harvester/db"
)

// SnapshotStore persists the run snapshot between combinations.
type SnapshotStore interface {
	Load() (*RunSnapshot, error)
	Save(*RunSnapshot) error
}

// CoordinatorParams wires a Coordinator. Queries, Skills, Statuses and
// Entities are optional; without them the run still completes, just
// without the scrape index and effect enrichment.
type CoordinatorParams struct {
	Session *Session
	Store   SnapshotStore
	Queries *db.Queries

	Skills   []effectparse.Reference
	Statuses []effectparse.Reference

	// catalog entities by id, for owner group image and rarity fields
	Entities map[string]CatalogEntity
}

// Coordinator runs a plan to completion: configure, capture, enrich,
// checkpoint, one combination after another. Combinations run strictly
// sequentially, the reference site tolerates exactly one browser.
type Coordinator struct {
	params CoordinatorParams
}

func NewCoordinator(params CoordinatorParams) *Coordinator {
	return &Coordinator{params: params}
}

// Run executes every combination in the plan, always from the start.
// An existing checkpoint only contributes its accumulated events and
// the id watermark; resumability at entity granularity lives in the
// scrape index, not in skipping combinations. A fatal driver error
// costs at most the current combination: the page is reloaded and the
// run continues with the next one. Only context cancellation and an
// unreadable checkpoint abort the run.
func (c *Coordinator) Run(ctx context.Context, plan []Combination) (*RunSnapshot, error) {
	ctx, span := tracer.Start(ctx, "coordinator.Run")
	defer span.End()

	snapshot, err := c.params.Store.Load()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load checkpoint")
		return nil, err
	}

	if len(snapshot.Events) > 0 {
		slog.InfoContext(ctx, "continuing over existing checkpoint",
			"existing_events", len(snapshot.Events))
	}

	nextId := snapshot.NextEventId()

	for i, combination := range plan {
		if err := ctx.Err(); err != nil {
			return snapshot, err
		}
		slog.InfoContext(ctx, "starting combination", "summary", combination.Describe())

		events, err := c.harvestOne(ctx, combination)
		if err != nil {
			slog.ErrorContext(ctx, "combination failed, reloading and moving on",
				"combination", combination.Index, "err", err)
			span.RecordError(err)
			if err := c.params.Session.Reload(ctx); err != nil {
				slog.ErrorContext(ctx, "reload after failure also failed", "err", err)
			}
		}

		for _, event := range events {
			c.ingest(snapshot, event, nextId)
			nextId++
		}

		snapshot.Progress = Progress{
			Completed:  i + 1,
			Total:      len(plan),
			Percentage: float64(i+1) / float64(len(plan)) * 100,
		}
		snapshot.Timestamp = time.Now().UTC()

		// a failed write is not run-fatal: the accumulated results stay
		// in memory and the next successful checkpoint carries them
		if err := c.params.Store.Save(snapshot); err != nil {
			slog.ErrorContext(ctx, "failed to write checkpoint, retaining results in memory",
				"combination", combination.Index, "err", err)
			span.RecordError(err)
		}
		c.markScraped(ctx, combination)

		slog.InfoContext(ctx, "combination complete",
			"combination", combination.Index,
			"events", len(events),
			"total_events", len(snapshot.Events),
			"percentage", snapshot.Progress.Percentage)
	}

	return snapshot, nil
}

// harvestOne configures the viewer and captures everything it shows.
// Whatever was captured before an error is still returned and kept.
func (c *Coordinator) harvestOne(ctx context.Context, combination Combination) ([]CapturedEvent, error) {
	if err := c.params.Session.Configure(ctx, combination); err != nil {
		return nil, err
	}
	return c.params.Session.Capture(ctx, combination)
}

func (c *Coordinator) ingest(snapshot *RunSnapshot, event CapturedEvent, id int64) {
	record := EventRecord{
		Id:       id,
		Name:     event.Name,
		Category: event.Category,
	}
	for _, choice := range event.Choices {
		record.Choices = append(record.Choices, Choice{
			Label:   choice.Label,
			Effects: effectparse.Enrich(choice.Effects, c.params.Skills, c.params.Statuses),
		})
	}
	snapshot.Events = append(snapshot.Events, record)

	var groups *[]OwnerGroup
	switch event.Owner.Type {
	case OwnerCharacter:
		groups = &snapshot.Characters
	case OwnerScenario:
		groups = &snapshot.Scenarios
	default:
		groups = &snapshot.SupportCards
	}
	group := findOrCreateGroup(groups, event.Owner, c.params.Entities)
	group.EventsByCategory[event.Category] = append(group.EventsByCategory[event.Category], id)
}

func findOrCreateGroup(groups *[]OwnerGroup, owner Owner, entities map[string]CatalogEntity) *OwnerGroup {
	for i := range *groups {
		if (*groups)[i].OwnerId == owner.Id {
			return &(*groups)[i]
		}
	}
	group := OwnerGroup{
		OwnerId:          owner.Id,
		DisplayName:      owner.DisplayName,
		EventsByCategory: map[string][]int64{},
	}
	if entity, ok := entities[owner.Id]; ok {
		group.ImageRef = entity.ImageRef
		group.Rarity = entity.Rarity
	}
	*groups = append(*groups, group)
	return &(*groups)[len(*groups)-1]
}

// markScraped records the combination's entities in the scrape index.
// Failures are logged, the index is advisory.
func (c *Coordinator) markScraped(ctx context.Context, combination Combination) {
	if c.params.Queries == nil {
		return
	}
	now := time.Now().Unix()
	mark := func(entity CatalogEntity) {
		err := c.params.Queries.MarkEntityScraped(ctx, db.MarkEntityScrapedParams{
			EntityID:    entity.Id,
			Kind:        string(entity.Kind),
			DisplayName: entity.DisplayName,
			ScrapedAt:   now,
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to mark entity scraped",
				"entity", entity.Id, "err", err)
		}
	}
	if combination.Character != nil {
		mark(*combination.Character)
	}
	for _, card := range combination.Cards {
		mark(card)
	}
}
