// Package model defines the core data types shared across the backend.
package model

// Kind identifies one of the dataset's entity collections.
type Kind string

const (
	KindSculpture Kind = "sculpture"
	KindArtist    Kind = "artist"
	KindMaterial  Kind = "material"
	KindPeriod    Kind = "period"
	KindLocation  Kind = "location"
)

// Sculpture is one catalogued work. Reference fields (Artist, Material,
// Period, Location) hold either the id or the display name of the related
// entity; resolution tries id first, then name, both as exact matches.
type Sculpture struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Artist            string `json:"artist"`
	Year              *int   `json:"year,omitempty"`
	Material          string `json:"material,omitempty"`
	Period            string `json:"period,omitempty"`
	Location          string `json:"location,omitempty"`
	Description       string `json:"description,omitempty"`
	ImageURL          string `json:"image_url,omitempty"`
	VisualDescription string `json:"visual_description,omitempty"`
}

// Artist is a sculptor in the catalogue.
type Artist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	BirthYear   *int   `json:"birth_year,omitempty"`
	DeathYear   *int   `json:"death_year,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// Material describes a sculpting material.
type Material struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Properties string `json:"properties,omitempty"`
	CommonUses string `json:"common_uses,omitempty"`
}

// Period is an art-historical period.
type Period struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	StartYear       *int   `json:"start_year,omitempty"`
	EndYear         *int   `json:"end_year,omitempty"`
	Characteristics string `json:"characteristics,omitempty"`
}

// Location is a place where a sculpture is displayed.
type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// Entity is implemented by every catalogued entity type.
type Entity interface {
	EntityID() string
	EntityName() string
}

func (s Sculpture) EntityID() string   { return s.ID }
func (s Sculpture) EntityName() string { return s.Name }
func (a Artist) EntityID() string      { return a.ID }
func (a Artist) EntityName() string    { return a.Name }
func (m Material) EntityID() string    { return m.ID }
func (m Material) EntityName() string  { return m.Name }
func (p Period) EntityID() string      { return p.ID }
func (p Period) EntityName() string    { return p.Name }
func (l Location) EntityID() string    { return l.ID }
func (l Location) EntityName() string  { return l.Name }

// Dataset is the on-disk document holding all five collections.
type Dataset struct {
	Sculptures []Sculpture `json:"sculptures"`
	Artists    []Artist    `json:"artists"`
	Materials  []Material  `json:"materials"`
	Periods    []Period    `json:"periods"`
	Locations  []Location  `json:"locations"`
}
