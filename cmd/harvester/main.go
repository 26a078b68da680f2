package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"umaharvest-backend/lib/configutil"
	"umaharvest-backend/lib/effectparse"
	"umaharvest-backend/lib/scrapers/gametora"
	"umaharvest-backend/lib/serviceutil"
	"umaharvest-backend/lib/telemetry"
	"umaharvest-backend/services/catalog"
	"umaharvest-backend/services/harvester"
	"umaharvest-backend/services/harvester/db"
	"umaharvest-backend/services/harvester/viewer"

	"github.com/lmittmann/tint"
)

type Config struct {
	BaseUrl          string `json:"base_url"`
	PageUrl          string `json:"page_url"`
	RemoteBrowserUrl string `json:"remote_browser_url"`
	Headless         bool   `json:"headless"`
	CheckpointDir    string `json:"checkpoint_dir"`
	DatabasePath     string `json:"database_path"`
}

type loadedCatalog struct {
	characters []harvester.CatalogEntity
	cards      []harvester.CatalogEntity
	scenarios  []string
	skills     []gametora.Reference
	statuses   []gametora.Reference
}

func loadCatalog(ctx context.Context, cfg Config) loadedCatalog {
	client, err := gametora.NewClient(ctx, gametora.ClientOptions{
		BaseUrl: cfg.BaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize catalog client", err)
	}

	characters, err := client.Characters(ctx)
	if err != nil {
		serviceutil.Fatal("failed to fetch character catalog", err)
	}
	cards, err := client.SupportCards(ctx)
	if err != nil {
		serviceutil.Fatal("failed to fetch support card catalog", err)
	}
	scenarios, err := client.Scenarios(ctx)
	if err != nil {
		serviceutil.Fatal("failed to fetch scenario catalog", err)
	}

	skills, err := client.Skills(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch skill reference table, effects will stay raw", "err", err)
	}
	statuses, err := client.Statuses(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch status reference table, effects will stay raw", "err", err)
	}

	return loadedCatalog{
		characters: toEntities(characters, harvester.KindCharacter),
		cards:      toEntities(cards, harvester.KindSupportCard),
		scenarios:  scenarios,
		skills:     skills,
		statuses:   statuses,
	}
}

func toEntities(entries []gametora.Entry, kind harvester.EntityKind) []harvester.CatalogEntity {
	out := make([]harvester.CatalogEntity, len(entries))
	for i, e := range entries {
		out[i] = harvester.CatalogEntity{
			Id:          e.Id,
			DisplayName: e.DisplayName,
			ImageRef:    e.ImageRef,
			Rarity:      e.Rarity,
			Kind:        kind,
		}
	}
	return out
}

func toReferences(refs []gametora.Reference) []effectparse.Reference {
	out := make([]effectparse.Reference, len(refs))
	for i, r := range refs {
		out[i] = effectparse.Reference{Name: r.Name, EffectText: r.EffectText}
	}
	return out
}

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	ctx := serviceutil.SignalContext()

	otel, err := telemetry.SetupFromEnv(ctx, "harvester")
	if err != nil {
		slog.Warn("telemetry disabled", "err", err)
	}
	defer otel.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.CheckpointDir == "" {
		cfg.CheckpointDir = "harvest"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "harvester.db"
	}

	loaded := loadCatalog(ctx, cfg)
	slog.Info("catalog loaded",
		"characters", len(loaded.characters),
		"cards", len(loaded.cards),
		"scenarios", len(loaded.scenarios),
		"skills", len(loaded.skills),
		"statuses", len(loaded.statuses))

	sqlite, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	if _, err := sqlite.Exec(db.Schema); err != nil {
		serviceutil.Fatal("failed to apply db schema", err)
	}

	driver, err := viewer.New(ctx, viewer.Options{
		PageUrl:   cfg.PageUrl,
		RemoteUrl: cfg.RemoteBrowserUrl,
		Headless:  cfg.Headless,
	})
	if err != nil {
		serviceutil.Fatal("failed to start browser", err)
	}
	defer driver.Close()

	index := catalog.NewIndex(append(
		append([]harvester.CatalogEntity{}, loaded.characters...),
		loaded.cards...))

	entities := map[string]harvester.CatalogEntity{}
	for _, e := range loaded.characters {
		entities[e.Id] = e
	}
	for _, e := range loaded.cards {
		entities[e.Id] = e
	}

	coordinator := harvester.NewCoordinator(harvester.CoordinatorParams{
		Session:  harvester.NewSession(driver, catalog.IconResolver{Index: index}),
		Store:    harvester.NewCheckpointStore(cfg.CheckpointDir),
		Queries:  db.New(sqlite),
		Skills:   toReferences(loaded.skills),
		Statuses: toReferences(loaded.statuses),
		Entities: entities,
	})

	plan := harvester.Plan(loaded.characters, loaded.scenarios, loaded.cards)

	t1 := time.Now()
	snapshot, err := coordinator.Run(ctx, plan)
	t2 := time.Now()
	if err != nil {
		serviceutil.Fatal("harvest run failed", err)
	}

	slog.Info("harvest complete",
		"events", len(snapshot.Events),
		"combinations", snapshot.Progress.Completed,
		"seconds", t2.Sub(t1).Seconds())
}
