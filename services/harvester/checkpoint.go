package harvester

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	snapshotFile = "snapshot.json"
	listingFile  = "events.txt"
)

// CheckpointStore persists the run snapshot between combinations so an
// interrupted run resumes where it stopped. Writes go through a temp
// file and a rename, a crash mid write never corrupts the previous
// checkpoint.
type CheckpointStore struct {
	dir string
}

func NewCheckpointStore(dir string) *CheckpointStore {
	return &CheckpointStore{dir: dir}
}

func (s *CheckpointStore) SnapshotPath() string {
	return filepath.Join(s.dir, snapshotFile)
}

// Save writes the snapshot and regenerates the human readable event
// listing next to it.
func (s *CheckpointStore) Save(snapshot *RunSnapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := writeAtomic(s.SnapshotPath(), data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	listing := renderListing(snapshot)
	if err := writeAtomic(filepath.Join(s.dir, listingFile), []byte(listing)); err != nil {
		return fmt.Errorf("writing event listing: %w", err)
	}
	return nil
}

// Load reads the previous checkpoint. A missing file is not an error:
// a fresh run starts from an empty snapshot.
func (s *CheckpointStore) Load() (*RunSnapshot, error) {
	data, err := os.ReadFile(s.SnapshotPath())
	if os.IsNotExist(err) {
		return &RunSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot RunSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snapshot, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// renderListing produces the debug listing of every owner and its
// events, grouped the way the snapshot groups them.
func renderListing(snapshot *RunSnapshot) string {
	byId := make(map[int64]EventRecord, len(snapshot.Events))
	for _, e := range snapshot.Events {
		byId[e.Id] = e
	}

	var b strings.Builder
	writeGroups := func(label string, groups []OwnerGroup) {
		for _, g := range groups {
			fmt.Fprintf(&b, "%s: %s\n", label, g.DisplayName)

			categories := make([]string, 0, len(g.EventsByCategory))
			for c := range g.EventsByCategory {
				categories = append(categories, c)
			}
			sort.Strings(categories)

			for _, c := range categories {
				for _, id := range g.EventsByCategory[c] {
					if e, ok := byId[id]; ok {
						fmt.Fprintf(&b, "    - %s\n", e.Name)
					}
				}
			}
		}
	}
	// owner headers are the bare Character/Support/Scenario tokens the
	// listing tooling matches on
	writeGroups("Character", snapshot.Characters)
	writeGroups("Support", snapshot.SupportCards)
	writeGroups("Scenario", snapshot.Scenarios)
	return b.String()
}
