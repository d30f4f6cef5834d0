// Package catalog generates the synthetic dispensary directory and answers
// lookups against it. Generation is pure: the same states and name pool
// always yield the same entries and ids.
package catalog

import (
	"fmt"
	"strings"

	"github.com/atinyakov/GreenCart/internal/models"
)

// PerState is the number of dispensaries generated for every state.
const PerState = 25

const (
	placeholderHours = "9:00 AM - 9:00 PM"
	firstStreetNo    = 100
)

var placeholderCoordinates = models.Coordinates{Lat: 39.7392, Lng: -104.9903}

// Generate derives PerState dispensaries for each state, keyed by state name.
func Generate(states []models.State, names []string) map[string][]models.Dispensary {
	out := make(map[string][]models.Dispensary, len(states))
	if len(names) == 0 {
		return out
	}
	for _, st := range states {
		entries := make([]models.Dispensary, 0, PerState)
		for i := 0; i < PerState; i++ {
			name := names[i%len(names)]
			entries = append(entries, models.Dispensary{
				ID:           fmt.Sprintf("%s-%s-%d", hyphenate(name), hyphenate(st.Name), i),
				Name:         name,
				State:        st.Name,
				Logo:         "/logos/" + strings.ToLower(hyphenate(name)) + ".png",
				Rating:       rating(i),
				DeliveryTime: 20 + (i*3)%30,
				Address:      fmt.Sprintf("%d Main Street, %s, %s", firstStreetNo+i, st.Name, st.Abbreviation),
				Coordinates:  placeholderCoordinates,
				Hours:        placeholderHours,
				Reviews:      []models.Review{},
			})
		}
		out[st.Name] = entries
	}
	return out
}

// rating renders 4.5 + (i mod 5) * 0.1 with one decimal, in tenths to stay exact.
func rating(i int) string {
	tenths := 45 + i%5
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}

func hyphenate(s string) string {
	return strings.Join(strings.Fields(s), "-")
}

// Directory is an immutable, indexed view over a generated catalog.
type Directory struct {
	states []models.State
	byName map[string][]models.Dispensary
	byID   map[string]models.Dispensary
}

// NewDirectory generates the catalog for states and names and indexes it.
func NewDirectory(states []models.State, names []string) *Directory {
	d := &Directory{
		states: append([]models.State(nil), states...),
		byName: Generate(states, names),
		byID:   make(map[string]models.Dispensary),
	}
	for _, entries := range d.byName {
		for _, e := range entries {
			d.byID[e.ID] = e
		}
	}
	return d
}

// Default is the directory built from States and NamePool.
var Default = NewDirectory(States, NamePool)

// States returns the ordered list of covered states.
func (d *Directory) States() []models.State {
	return append([]models.State(nil), d.states...)
}

// ByState returns the dispensaries of the named state in generation order.
func (d *Directory) ByState(name string) ([]models.Dispensary, bool) {
	entries, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return append([]models.Dispensary(nil), entries...), true
}

// Dispensary looks up a single entry by id.
func (d *Directory) Dispensary(id string) (models.Dispensary, bool) {
	e, ok := d.byID[id]
	return e, ok
}

// IDs returns every dispensary id in state order, then index order.
func (d *Directory) IDs() []string {
	ids := make([]string, 0, len(d.byID))
	for _, st := range d.states {
		for _, e := range d.byName[st.Name] {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// FindState resolves a free-text query against state names and abbreviations.
// Matching is case-insensitive and ignores surrounding whitespace.
func (d *Directory) FindState(query string) (models.State, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return models.State{}, false
	}
	for _, st := range d.states {
		if strings.EqualFold(st.Name, q) || strings.EqualFold(st.Abbreviation, q) {
			return st, true
		}
	}
	return models.State{}, false
}

// StateSlug is the URL segment for a state, e.g. "new-york".
func StateSlug(st models.State) string {
	return strings.ToLower(hyphenate(st.Name))
}

// StateBySlug resolves a URL segment produced by StateSlug.
func (d *Directory) StateBySlug(slug string) (models.State, bool) {
	for _, st := range d.states {
		if StateSlug(st) == slug {
			return st, true
		}
	}
	return models.State{}, false
}

// StateRoute is the page path listing a state's dispensaries.
func StateRoute(st models.State) string {
	return "/state/" + StateSlug(st)
}

// MenuRoute is the page path of a dispensary menu.
func MenuRoute(id string) string {
	return "/menu/" + id
}
