// Package catalog reconciles scraped entity stubs against the
// canonical entity catalog loaded at the start of a run.
package catalog

import (
	"strings"

	"github.com/antzucaro/matchr"

	"umaharvest-backend/lib/textutil"
	"umaharvest-backend/services/harvester"
)

// looser substring matching below this name length produces spurious
// hits on short strings
const looseMatchMinLength = 4

// Stub is what the viewer exposes about an entity: an identifier
// derived from its icon image and whatever label sat next to it.
type Stub struct {
	Id          string
	DisplayName string
}

// Index is a lookup over the canonical catalog, keyed both by the
// identifier extracted from each entry's image reference and by exact
// display name. Built once per run, read only afterwards.
type Index struct {
	byKey map[string]*harvester.CatalogEntity
	keys  []string
}

func NewIndex(entities []harvester.CatalogEntity) *Index {
	idx := &Index{byKey: map[string]*harvester.CatalogEntity{}}
	for i := range entities {
		entity := &entities[i]
		idx.add(textutil.ImageRefId(entity.ImageRef), entity)
		idx.add(entity.DisplayName, entity)
	}
	return idx
}

func (idx *Index) add(key string, entity *harvester.CatalogEntity) {
	if key == "" {
		return
	}
	if _, exists := idx.byKey[key]; exists {
		return
	}
	idx.byKey[key] = entity
	idx.keys = append(idx.keys, key)
}

// Resolve maps a stub onto its canonical entity, trying progressively
// looser strategies and stopping at the first hit. A miss is not an
// error, callers degrade to the stub's own fields.
func (idx *Index) Resolve(stub Stub) (*harvester.CatalogEntity, bool) {
	// exact identifier
	if entity, ok := idx.byKey[stub.Id]; ok {
		return entity, true
	}

	// exact display name, when it adds information over the id
	if stub.DisplayName != "" && stub.DisplayName != stub.Id {
		if entity, ok := idx.byKey[stub.DisplayName]; ok {
			return entity, true
		}
	}

	// identifier re-derived from the display name, for labels that are
	// really filenames
	if derived := textutil.ImageRefId(stub.DisplayName); derived != "" && derived != stub.Id {
		if entity, ok := idx.byKey[derived]; ok {
			return entity, true
		}
	}

	// bare numeric identifier
	if textutil.IsNumeric(stub.Id) {
		for _, key := range idx.keys {
			if strings.Contains(key, stub.Id) {
				return idx.byKey[key], true
			}
		}
	}

	// substring containment, either direction
	if stub.DisplayName != "" {
		if entity, ok := idx.matchSubstring(stub.DisplayName, false); ok {
			return entity, true
		}
	}

	// case-insensitive containment, only for names long enough to
	// avoid collisions
	if len(stub.DisplayName) > looseMatchMinLength {
		if entity, ok := idx.matchSubstring(stub.DisplayName, true); ok {
			return entity, true
		}
	}

	return nil, false
}

// matchSubstring returns the containment candidate most similar to the
// name, so "Kitasan Black" does not land on "Kitasan Black (Wedding)"
// when the plain entry exists too.
func (idx *Index) matchSubstring(name string, foldCase bool) (*harvester.CatalogEntity, bool) {
	lookFor := name
	if foldCase {
		lookFor = strings.ToLower(name)
	}

	var mostSimilarity float64
	var mostSimilarKey string

	for _, key := range idx.keys {
		candidate := key
		if foldCase {
			candidate = strings.ToLower(key)
		}
		if !strings.Contains(candidate, lookFor) && !strings.Contains(lookFor, candidate) {
			continue
		}

		similarity := matchr.JaroWinkler(lookFor, candidate, false)
		if similarity > mostSimilarity {
			mostSimilarity = similarity
			mostSimilarKey = key
		}
	}

	if mostSimilarity == 0 {
		return nil, false
	}
	return idx.byKey[mostSimilarKey], true
}
