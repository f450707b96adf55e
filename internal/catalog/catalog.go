package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/roach88/waypoint/internal/model"
)

// maxSuggestions caps NotFoundError.Suggestions.
const maxSuggestions = 3

// Catalog is an immutable index over tracks, modules and badges.
// Safe for concurrent use. Callers must not mutate returned slices.
type Catalog struct {
	tracks         []model.Track
	trackBySlug    map[string]int
	trackByID      map[string]int
	modules        map[string]model.Module
	modulesByTrack map[string][]model.Module // track slug -> modules ordered by sequence
	badges         []model.Badge
	badgeByID      map[string]int
	badgeBySlug    map[string]int
}

// NotFoundError is returned when a lookup key does not exist.
type NotFoundError struct {
	Kind string // "track", "module" or "badge"
	Key  string

	// Suggestions holds the closest existing keys of the same kind, best
	// match first. Empty when nothing resembles Key.
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// notFound builds a NotFoundError, fuzzy-matching key against candidates.
func notFound(kind, key string, candidates []string) *NotFoundError {
	err := &NotFoundError{Kind: kind, Key: key}
	if key == "" {
		return err
	}
	for _, m := range fuzzy.Find(key, candidates) {
		err.Suggestions = append(err.Suggestions, m.Str)
		if len(err.Suggestions) == maxSuggestions {
			break
		}
	}
	return err
}

// sortedKeys returns a map's keys in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// New builds a catalog from compiled definitions.
//
// Modules are attached to tracks by TrackSlug; each Track's ModuleIDs and
// each Module's TrackID are derived here. The result is validated and all
// problems are returned together as ValidationErrors.
func New(tracks []model.Track, modules []model.Module, badges []model.Badge) (*Catalog, error) {
	c := &Catalog{
		trackBySlug:    make(map[string]int, len(tracks)),
		trackByID:      make(map[string]int, len(tracks)),
		modules:        make(map[string]model.Module, len(modules)),
		modulesByTrack: make(map[string][]model.Module, len(tracks)),
		badgeByID:      make(map[string]int, len(badges)),
		badgeBySlug:    make(map[string]int, len(badges)),
	}

	c.tracks = slices.Clone(tracks)
	slices.SortFunc(c.tracks, func(a, b model.Track) int { return strings.Compare(a.Slug, b.Slug) })

	slugToID := make(map[string]string, len(tracks))
	for _, t := range c.tracks {
		slugToID[t.Slug] = t.ID
	}

	for _, m := range modules {
		if id, ok := slugToID[m.TrackSlug]; ok {
			m.TrackID = id
		}
		if _, dup := c.modules[m.ID]; !dup {
			c.modules[m.ID] = m
		}
		c.modulesByTrack[m.TrackSlug] = append(c.modulesByTrack[m.TrackSlug], m)
	}
	for slug, mods := range c.modulesByTrack {
		slices.SortStableFunc(mods, func(a, b model.Module) int { return a.Sequence - b.Sequence })
		c.modulesByTrack[slug] = mods
	}

	for i := range c.tracks {
		t := &c.tracks[i]
		t.ModuleIDs = nil
		for _, m := range c.modulesByTrack[t.Slug] {
			t.ModuleIDs = append(t.ModuleIDs, m.ID)
		}
		c.trackBySlug[t.Slug] = i
		c.trackByID[t.ID] = i
	}

	c.badges = slices.Clone(badges)
	slices.SortFunc(c.badges, compareBadges)
	for i, b := range c.badges {
		c.badgeByID[b.ID] = i
		c.badgeBySlug[b.Slug] = i
	}

	if errs := validate(c, modules); len(errs) > 0 {
		return nil, errs
	}
	return c, nil
}

// compareBadges orders badges by tier, then ID.
func compareBadges(a, b model.Badge) int {
	if a.Tier != b.Tier {
		return int(a.Tier) - int(b.Tier)
	}
	return strings.Compare(a.ID, b.ID)
}

// Tracks returns all tracks ordered by slug.
func (c *Catalog) Tracks() []model.Track {
	return c.tracks
}

// TrackBySlug returns the track with the given slug.
func (c *Catalog) TrackBySlug(slug string) (model.Track, error) {
	i, ok := c.trackBySlug[slug]
	if !ok {
		return model.Track{}, notFound("track", slug, sortedKeys(c.trackBySlug))
	}
	return c.tracks[i], nil
}

// TrackByID returns the track with the given ID.
func (c *Catalog) TrackByID(id string) (model.Track, error) {
	i, ok := c.trackByID[id]
	if !ok {
		return model.Track{}, notFound("track", id, sortedKeys(c.trackByID))
	}
	return c.tracks[i], nil
}

// ModulesByTrack returns a track's modules ordered by sequence.
func (c *Catalog) ModulesByTrack(slug string) ([]model.Module, error) {
	if _, ok := c.trackBySlug[slug]; !ok {
		return nil, notFound("track", slug, sortedKeys(c.trackBySlug))
	}
	return c.modulesByTrack[slug], nil
}

// ModuleByID returns the module with the given ID.
func (c *Catalog) ModuleByID(id string) (model.Module, error) {
	m, ok := c.modules[id]
	if !ok {
		return model.Module{}, notFound("module", id, sortedKeys(c.modules))
	}
	return m, nil
}

// NextModule returns the module after id in its track, or nil when id is
// the last module.
func (c *Catalog) NextModule(id string) (*model.Module, error) {
	return c.neighbour(id, 1)
}

// PreviousModule returns the module before id in its track, or nil when id
// is the first module.
func (c *Catalog) PreviousModule(id string) (*model.Module, error) {
	return c.neighbour(id, -1)
}

func (c *Catalog) neighbour(id string, step int) (*model.Module, error) {
	m, err := c.ModuleByID(id)
	if err != nil {
		return nil, err
	}
	mods := c.modulesByTrack[m.TrackSlug]
	i := slices.IndexFunc(mods, func(x model.Module) bool { return x.ID == id })
	j := i + step
	if i < 0 || j < 0 || j >= len(mods) {
		return nil, nil
	}
	next := mods[j]
	return &next, nil
}

// Badges returns all badge definitions ordered by tier, then ID.
func (c *Catalog) Badges() []model.Badge {
	return c.badges
}

// BadgeByID returns the badge with the given ID.
func (c *Catalog) BadgeByID(id string) (model.Badge, error) {
	i, ok := c.badgeByID[id]
	if !ok {
		return model.Badge{}, notFound("badge", id, sortedKeys(c.badgeByID))
	}
	return c.badges[i], nil
}

// BadgeBySlug returns the badge with the given slug.
func (c *Catalog) BadgeBySlug(slug string) (model.Badge, error) {
	i, ok := c.badgeBySlug[slug]
	if !ok {
		return model.Badge{}, notFound("badge", slug, sortedKeys(c.badgeBySlug))
	}
	return c.badges[i], nil
}

// Stats summarises catalog size.
type Stats struct {
	Tracks  int `json:"tracks"`
	Modules int `json:"modules"`
	Badges  int `json:"badges"`
}

// Stats returns the number of tracks, modules and badges.
func (c *Catalog) Stats() Stats {
	return Stats{Tracks: len(c.tracks), Modules: len(c.modules), Badges: len(c.badges)}
}
