package format

import (
	"strings"
	"testing"

	"github.com/sculpture-guide/backend/internal/model"
	"github.com/sculpture-guide/backend/internal/store"
)

func intp(v int) *int { return &v }

// testResolver resolves the handful of references the fixtures use.
func testResolver(kind model.Kind, ref string) (model.Entity, bool) {
	switch {
	case kind == model.KindArtist && ref == "a1":
		return model.Artist{ID: "a1", Name: "Michelangelo"}, true
	case kind == model.KindMaterial && ref == "m1":
		return model.Material{ID: "m1", Name: "Marble"}, true
	case kind == model.KindLocation && ref == "l1":
		return model.Location{ID: "l1", Name: "Galleria dell'Accademia"}, true
	}
	return nil, false
}

func TestSculpturesRendersPresentFieldsInOrder(t *testing.T) {
	scs := []model.Sculpture{{
		ID:          "s1",
		Name:        "David",
		Artist:      "a1",
		Year:        intp(1504),
		Material:    "m1",
		Location:    "l1",
		Description: "Colossal marble nude.",
	}}

	got := Sculptures(scs, testResolver)

	if !strings.HasPrefix(got, Header+"\n") {
		t.Fatalf("block does not start with header:\n%s", got)
	}

	wantLines := []string{
		"Sculpture: David",
		"Artist: Michelangelo",
		"Year: 1504",
		"Material: Marble",
		"Location: Galleria dell'Accademia",
		"Description: Colossal marble nude.",
	}
	assertLineOrder(t, got, wantLines)

	// Absent optionals are omitted entirely, never rendered empty.
	for _, label := range []string{"Period:", "Image:", "Appearance:"} {
		if strings.Contains(got, label) {
			t.Errorf("block contains %q for an absent field:\n%s", label, got)
		}
	}
}

func TestSculpturesFallsBackToRawReference(t *testing.T) {
	scs := []model.Sculpture{{
		ID:       "s4",
		Name:     "Unattributed Torso",
		Artist:   "a1",
		Material: "granite",
	}}

	got := Sculptures(scs, testResolver)
	if !strings.Contains(got, "Material: granite") {
		t.Errorf("unresolved reference should render raw text:\n%s", got)
	}
}

func TestSculpturesEmpty(t *testing.T) {
	if got := Sculptures(nil, testResolver); got != "" {
		t.Errorf("empty result set should render nothing, got %q", got)
	}
}

func TestRelatedArtistPair(t *testing.T) {
	matches := []store.RelatedMatch{{
		Sculpture: model.Sculpture{
			ID:       "s1",
			Name:     "David",
			Artist:   "a1",
			Year:     intp(1504),
			Material: "m1",
			Location: "l1",
		},
		Related: model.Artist{
			ID:          "a1",
			Name:        "Michelangelo",
			BirthYear:   intp(1475),
			DeathYear:   intp(1564),
			Nationality: "Italian",
			Bio:         "Florentine master.",
		},
	}}

	got := Related(matches, testResolver)

	assertLineOrder(t, got, []string{
		"Artist: Michelangelo",
		"Born: 1475",
		"Died: 1564",
		"Nationality: Italian",
		"Biography: Florentine master.",
		"Sculpture: David",
		"Year: 1504",
		"Material: Marble",
		"Location: Galleria dell'Accademia",
	})

	// The artist paragraph already names the artist; the sculpture
	// paragraph must not repeat it.
	if strings.Count(got, "Artist: Michelangelo") != 1 {
		t.Errorf("artist line repeated:\n%s", got)
	}

	// The two paragraphs are separated by a blank line.
	if !strings.Contains(got, "Biography: Florentine master.\n\nSculpture: David") {
		t.Errorf("missing blank line between related entity and sculpture:\n%s", got)
	}
}

func TestRelatedMaterialAndPeriodPairs(t *testing.T) {
	material := store.RelatedMatch{
		Sculpture: model.Sculpture{ID: "s3", Name: "The Thinker", Material: "m2"},
		Related: model.Material{
			ID:         "m2",
			Name:       "Bronze",
			Properties: "Copper-tin alloy.",
		},
	}
	got := Related([]store.RelatedMatch{material}, testResolver)
	assertLineOrder(t, got, []string{
		"Material: Bronze",
		"Properties: Copper-tin alloy.",
		"Sculpture: The Thinker",
	})
	if strings.Contains(got, "Common uses:") {
		t.Errorf("absent common uses rendered:\n%s", got)
	}

	period := store.RelatedMatch{
		Sculpture: model.Sculpture{ID: "s1", Name: "David"},
		Related: model.Period{
			ID:        "p1",
			Name:      "Renaissance",
			StartYear: intp(1400),
			EndYear:   intp(1600),
		},
	}
	got = Related([]store.RelatedMatch{period}, testResolver)
	assertLineOrder(t, got, []string{
		"Period: Renaissance",
		"From: 1400",
		"To: 1600",
		"Sculpture: David",
	})
}

func TestRelatedMultipleMatches(t *testing.T) {
	matches := []store.RelatedMatch{
		{
			Sculpture: model.Sculpture{ID: "s1", Name: "David"},
			Related:   model.Artist{ID: "a1", Name: "Michelangelo"},
		},
		{
			Sculpture: model.Sculpture{ID: "s4", Name: "Unattributed Torso"},
			Related:   model.Artist{ID: "a1", Name: "Michelangelo"},
		},
	}

	got := Related(matches, testResolver)
	if strings.Count(got, Header) != 1 {
		t.Errorf("header should appear exactly once:\n%s", got)
	}
	assertLineOrder(t, got, []string{
		"Sculpture: David",
		"Sculpture: Unattributed Torso",
	})
}

// assertLineOrder checks that the given lines appear in got in order.
func assertLineOrder(t *testing.T, got string, lines []string) {
	t.Helper()

	pos := 0
	for _, line := range lines {
		idx := strings.Index(got[pos:], line)
		if idx < 0 {
			t.Fatalf("line %q missing or out of order in:\n%s", line, got)
		}
		pos += idx + len(line)
	}
}
