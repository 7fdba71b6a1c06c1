// Package store holds the in-memory snapshot of the sculpture dataset and
// exposes the lookup operations used for enrichment and the catalogue API.
//
// The snapshot is loaded atomically from a single JSON document: a load
// either fully succeeds and replaces the snapshot, or the previous state is
// kept. All lookups treat a never-loaded store as empty rather than as an
// error, so callers can run before (or without) data being available.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sculpture-guide/backend/internal/model"
)

// Store is the read-only entity catalogue. The zero snapshot (before the
// first successful Load) yields empty results from every lookup.
type Store struct {
	path string

	mu   sync.RWMutex
	snap *snapshot

	loadMu sync.Mutex
}

// snapshot is one immutable load of the dataset.
type snapshot struct {
	ds   model.Dataset
	byID map[model.Kind]map[string]model.Entity
}

// New creates a Store reading from the given dataset path. No data is loaded
// until Load or EnsureLoaded is called.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads and parses the dataset, atomically replacing the snapshot on
// success. On I/O or parse failure the previous snapshot (possibly none) is
// kept and the error is returned.
func (s *Store) Load() error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	var ds model.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}

	snap := buildSnapshot(ds)

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	return nil
}

// EnsureLoaded loads the dataset if no snapshot exists yet. A failed load
// leaves the store empty; it may be retried later.
func (s *Store) EnsureLoaded() error {
	if s.Loaded() {
		return nil
	}
	return s.Load()
}

// Loaded reports whether a snapshot is available.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func buildSnapshot(ds model.Dataset) *snapshot {
	snap := &snapshot{
		ds:   ds,
		byID: make(map[model.Kind]map[string]model.Entity),
	}
	for _, kind := range []model.Kind{
		model.KindSculpture, model.KindArtist, model.KindMaterial,
		model.KindPeriod, model.KindLocation,
	} {
		index := make(map[string]model.Entity)
		for _, e := range entitiesOf(ds, kind) {
			if _, dup := index[e.EntityID()]; !dup {
				index[e.EntityID()] = e
			}
		}
		snap.byID[kind] = index
	}
	return snap
}

// entitiesOf returns one kind's collection in load order.
func entitiesOf(ds model.Dataset, kind model.Kind) []model.Entity {
	switch kind {
	case model.KindSculpture:
		out := make([]model.Entity, len(ds.Sculptures))
		for i, e := range ds.Sculptures {
			out[i] = e
		}
		return out
	case model.KindArtist:
		out := make([]model.Entity, len(ds.Artists))
		for i, e := range ds.Artists {
			out[i] = e
		}
		return out
	case model.KindMaterial:
		out := make([]model.Entity, len(ds.Materials))
		for i, e := range ds.Materials {
			out[i] = e
		}
		return out
	case model.KindPeriod:
		out := make([]model.Entity, len(ds.Periods))
		for i, e := range ds.Periods {
			out[i] = e
		}
		return out
	case model.KindLocation:
		out := make([]model.Entity, len(ds.Locations))
		for i, e := range ds.Locations {
			out[i] = e
		}
		return out
	}
	return nil
}

// FindByName returns all entities of the given kind whose name contains the
// query (case-insensitive), in load order.
func (s *Store) FindByName(kind model.Kind, query string) []model.Entity {
	snap := s.snapshot()
	if snap == nil {
		return nil
	}

	q := strings.ToLower(query)
	var out []model.Entity
	for _, e := range entitiesOf(snap.ds, kind) {
		if strings.Contains(strings.ToLower(e.EntityName()), q) {
			out = append(out, e)
		}
	}
	return out
}

// GetByID returns the entity of the given kind with the exact id.
func (s *Store) GetByID(kind model.Kind, id string) (model.Entity, bool) {
	snap := s.snapshot()
	if snap == nil {
		return nil, false
	}
	e, ok := snap.byID[kind][id]
	return e, ok
}

// ResolveRef resolves a sculpture reference field to its entity: first by
// exact id, then by exact (case-sensitive) name. Never fuzzy.
func (s *Store) ResolveRef(kind model.Kind, ref string) (model.Entity, bool) {
	snap := s.snapshot()
	if snap == nil || ref == "" {
		return nil, false
	}
	if e, ok := snap.byID[kind][ref]; ok {
		return e, true
	}
	for _, e := range entitiesOf(snap.ds, kind) {
		if e.EntityName() == ref {
			return e, true
		}
	}
	return nil, false
}

// RelatedMatch pairs a sculpture with the related entity that matched a
// SculpturesByRelated query.
type RelatedMatch struct {
	Sculpture model.Sculpture
	Related   model.Entity
}

// SculpturesByRelated finds entities of the given kind whose name contains
// the query (case-insensitive), then collects every sculpture whose
// reference field equals that entity's id or name (exact, case-sensitive).
// Entities are processed in store order and all matches are collected.
func (s *Store) SculpturesByRelated(kind model.Kind, query string) []RelatedMatch {
	snap := s.snapshot()
	if snap == nil {
		return nil
	}

	var out []RelatedMatch
	for _, related := range s.FindByName(kind, query) {
		for _, sc := range snap.ds.Sculptures {
			ref := refField(sc, kind)
			if ref != "" && (ref == related.EntityID() || ref == related.EntityName()) {
				out = append(out, RelatedMatch{Sculpture: sc, Related: related})
			}
		}
	}
	return out
}

// SearchCriteria is a conjunctive sculpture filter; empty fields are ignored.
type SearchCriteria struct {
	Name     string
	Artist   string
	Material string
	Period   string
	Location string
}

// Search returns sculptures passing every supplied criterion. Name is a
// case-insensitive substring match on the sculpture's own name; the other
// criteria resolve the sculpture's reference field and require the related
// entity's name to contain the value (case-insensitive). A sculpture whose
// reference cannot be resolved fails that criterion.
func (s *Store) Search(c SearchCriteria) []model.Sculpture {
	snap := s.snapshot()
	if snap == nil {
		return nil
	}

	var out []model.Sculpture
	for _, sc := range snap.ds.Sculptures {
		if c.Name != "" && !containsFold(sc.Name, c.Name) {
			continue
		}
		if !s.matchRelated(sc, model.KindArtist, c.Artist) ||
			!s.matchRelated(sc, model.KindMaterial, c.Material) ||
			!s.matchRelated(sc, model.KindPeriod, c.Period) ||
			!s.matchRelated(sc, model.KindLocation, c.Location) {
			continue
		}
		out = append(out, sc)
	}
	return out
}

func (s *Store) matchRelated(sc model.Sculpture, kind model.Kind, query string) bool {
	if query == "" {
		return true
	}
	related, ok := s.ResolveRef(kind, refField(sc, kind))
	if !ok {
		return false
	}
	return containsFold(related.EntityName(), query)
}

// Names returns the display names of one kind's collection in load order,
// used as the extraction vocabulary.
func (s *Store) Names(kind model.Kind) []string {
	snap := s.snapshot()
	if snap == nil {
		return nil
	}
	entities := entitiesOf(snap.ds, kind)
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.EntityName()
	}
	return names
}

// refField returns the sculpture's reference field for the given kind.
func refField(sc model.Sculpture, kind model.Kind) string {
	switch kind {
	case model.KindArtist:
		return sc.Artist
	case model.KindMaterial:
		return sc.Material
	case model.KindPeriod:
		return sc.Period
	case model.KindLocation:
		return sc.Location
	}
	return ""
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
