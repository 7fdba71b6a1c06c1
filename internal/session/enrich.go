package session

import (
	"strings"

	"github.com/sculpture-guide/backend/internal/format"
	"github.com/sculpture-guide/backend/internal/model"
	"github.com/sculpture-guide/backend/internal/vocab"
)

// enrichOrder is the category priority for enrichment. The order is a
// relevance heuristic, not a correctness requirement: the first category
// with any result wins and later ones are not consulted.
var enrichOrder = []model.Kind{
	model.KindSculpture,
	model.KindArtist,
	model.KindMaterial,
	model.KindPeriod,
}

// enrich matches user text against the catalogue and renders a context
// block. Returns "" when the store is absent or nothing matches; it never
// fails the user's turn.
func (c *Coordinator) enrich(text string) string {
	if c.store == nil || !c.store.Loaded() {
		return ""
	}

	for _, kind := range enrichOrder {
		terms := vocab.Match(text, c.store.Names(kind))
		for _, term := range terms {
			if block := c.lookupTerm(kind, term); block != "" {
				return block
			}
		}
	}
	return ""
}

// lookupTerm renders one category lookup for one extracted term, or ""
// when the term yields no results.
func (c *Coordinator) lookupTerm(kind model.Kind, term string) string {
	resolve := format.RefResolver(c.store.ResolveRef)

	if kind == model.KindSculpture {
		// Sculpture titles match exactly (case-insensitive), not by
		// substring: the vocabulary term is already a full title.
		var hits []model.Sculpture
		for _, e := range c.store.FindByName(model.KindSculpture, term) {
			sc, ok := e.(model.Sculpture)
			if ok && strings.EqualFold(sc.Name, term) {
				hits = append(hits, sc)
			}
		}
		return format.Sculptures(hits, resolve)
	}

	return format.Related(c.store.SculpturesByRelated(kind, term), resolve)
}
