package harvester

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSnapshot() *RunSnapshot {
	return &RunSnapshot{
		Events: []EventRecord{
			{Id: 1, Name: "Exam Time", Category: "Trainee Events"},
			{Id: 2, Name: "A Helping Hand", Category: "Support Events"},
		},
		Characters: []OwnerGroup{{
			OwnerId:     "char1",
			DisplayName: "Special Week",
			EventsByCategory: map[string][]int64{
				"Trainee Events": {1},
			},
		}},
		SupportCards: []OwnerGroup{{
			OwnerId:     "card1",
			DisplayName: "Fine Motion",
			EventsByCategory: map[string][]int64{
				"Support Events": {2},
			},
		}},
		Progress:  Progress{Completed: 1, Total: 4, Percentage: 25},
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	store := NewCheckpointStore(t.TempDir())

	require.NoError(t, store.Save(testSnapshot()))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, testSnapshot(), loaded)
}

func TestCheckpointLoadFresh(t *testing.T) {
	store := NewCheckpointStore(t.TempDir())

	snapshot, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, snapshot.Events)
	require.Equal(t, int64(1), snapshot.NextEventId())
}

func TestCheckpointOverwritesPrevious(t *testing.T) {
	store := NewCheckpointStore(t.TempDir())

	first := testSnapshot()
	require.NoError(t, store.Save(first))

	second := testSnapshot()
	second.Events = append(second.Events, EventRecord{Id: 3, Name: "Opening Ceremony", Category: "Scenario Events"})
	second.Progress = Progress{Completed: 2, Total: 4, Percentage: 50}
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Events, 3)
	require.Equal(t, 2, loaded.Progress.Completed)

	// no stray temp files left behind
	entries, err := os.ReadDir(filepath.Dir(store.SnapshotPath()))
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), ".tmp")
	}
}

func TestCheckpointListing(t *testing.T) {
	dir := t.TempDir()
	store := NewCheckpointStore(dir)

	snapshot := testSnapshot()
	snapshot.Events = append(snapshot.Events,
		EventRecord{Id: 3, Name: "Opening Ceremony", Category: "Scenario Events"})
	snapshot.Scenarios = []OwnerGroup{{
		OwnerId:     "URA Finals",
		DisplayName: "URA Finals",
		EventsByCategory: map[string][]int64{
			"Scenario Events": {3},
		},
	}}
	require.NoError(t, store.Save(snapshot))

	listing, err := os.ReadFile(filepath.Join(dir, "events.txt"))
	require.NoError(t, err)

	// support card sections are headed "Support", not "Support Card"
	require.Equal(t,
		"Character: Special Week\n    - Exam Time\n"+
			"Support: Fine Motion\n    - A Helping Hand\n"+
			"Scenario: URA Finals\n    - Opening Ceremony\n",
		string(listing))
}

func TestCheckpointCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	store := NewCheckpointStore(dir)
	require.NoError(t, os.WriteFile(store.SnapshotPath(), []byte("{not json"), 0o644))

	_, err := store.Load()
	require.Error(t, err)
}
