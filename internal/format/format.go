// Package format renders entity lookup results into the plain-text context
// block injected into the conversation before generation.
//
// Output is pure text: a fixed section header, then one paragraph per result.
// Absent optional fields are omitted entirely, never rendered empty.
package format

import (
	"fmt"
	"strings"

	"github.com/sculpture-guide/backend/internal/model"
	"github.com/sculpture-guide/backend/internal/store"
)

// Header is the fixed section header for every context block.
const Header = "Relevant gallery information:"

// RefResolver resolves a sculpture reference field to its entity, so
// reference ids can be rendered as display names.
type RefResolver func(kind model.Kind, ref string) (model.Entity, bool)

// Sculptures renders a block of full sculpture paragraphs.
func Sculptures(scs []model.Sculpture, resolve RefResolver) string {
	if len(scs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	for _, sc := range scs {
		b.WriteString("\n")
		writeSculpture(&b, sc, resolve, true)
	}
	return b.String()
}

// Related renders a block of related-entity paragraphs, each followed by the
// matched sculpture. The related entity's fields come first, then a blank
// line, then the sculpture.
func Related(matches []store.RelatedMatch, resolve RefResolver) string {
	if len(matches) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	for _, m := range matches {
		b.WriteString("\n")
		switch related := m.Related.(type) {
		case model.Artist:
			writeArtist(&b, related)
		case model.Material:
			writeMaterial(&b, related)
		case model.Period:
			writePeriod(&b, related)
		case model.Location:
			writeLocation(&b, related)
		}
		b.WriteString("\n")
		writeSculpture(&b, m.Sculpture, resolve, false)
	}
	return b.String()
}

// writeSculpture writes one sculpture paragraph. When full is false the
// artist and period lines are omitted (the related entity carries them).
func writeSculpture(b *strings.Builder, sc model.Sculpture, resolve RefResolver, full bool) {
	line(b, "Sculpture", sc.Name)
	if full {
		line(b, "Artist", refName(resolve, model.KindArtist, sc.Artist))
	}
	if sc.Year != nil {
		line(b, "Year", fmt.Sprintf("%d", *sc.Year))
	}
	line(b, "Material", refName(resolve, model.KindMaterial, sc.Material))
	if full {
		line(b, "Period", refName(resolve, model.KindPeriod, sc.Period))
	}
	line(b, "Location", refName(resolve, model.KindLocation, sc.Location))
	line(b, "Description", sc.Description)
	line(b, "Image", sc.ImageURL)
	line(b, "Appearance", sc.VisualDescription)
}

func writeArtist(b *strings.Builder, a model.Artist) {
	line(b, "Artist", a.Name)
	if a.BirthYear != nil {
		line(b, "Born", fmt.Sprintf("%d", *a.BirthYear))
	}
	if a.DeathYear != nil {
		line(b, "Died", fmt.Sprintf("%d", *a.DeathYear))
	}
	line(b, "Nationality", a.Nationality)
	line(b, "Biography", a.Bio)
}

func writeMaterial(b *strings.Builder, m model.Material) {
	line(b, "Material", m.Name)
	line(b, "Properties", m.Properties)
	line(b, "Common uses", m.CommonUses)
}

func writePeriod(b *strings.Builder, p model.Period) {
	line(b, "Period", p.Name)
	if p.StartYear != nil {
		line(b, "From", fmt.Sprintf("%d", *p.StartYear))
	}
	if p.EndYear != nil {
		line(b, "To", fmt.Sprintf("%d", *p.EndYear))
	}
	line(b, "Characteristics", p.Characteristics)
}

func writeLocation(b *strings.Builder, l model.Location) {
	line(b, "Location", l.Name)
	line(b, "City", l.City)
	line(b, "Country", l.Country)
}

// refName renders a reference field as its resolved display name, falling
// back to the raw reference text when it does not resolve.
func refName(resolve RefResolver, kind model.Kind, ref string) string {
	if ref == "" {
		return ""
	}
	if resolve != nil {
		if e, ok := resolve(kind, ref); ok {
			return e.EntityName()
		}
	}
	return ref
}

func line(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
