package kb

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/signalsfoundry/groundwave/model"
)

var (
	// ErrNotFound is returned when a ground type or station is unknown.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when adding a duplicate name or ID.
	ErrAlreadyExists = errors.New("already exists")
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventGroundTypeAdded EventType = iota
	EventStationAdded
	EventStationUpdated
	EventStationRemoved
)

// Event is emitted to subscribers after the KB changed. Counts are the
// totals after the change.
type Event struct {
	Type        EventType
	GroundType  model.GroundType
	Station     model.Station
	GroundTypes int
	Stations    int
}

// KnowledgeBase is an in-memory, thread-safe catalogue of ground types and
// stations. Ground type names are case-insensitive.
type KnowledgeBase struct {
	mu sync.RWMutex

	grounds       map[string]model.GroundType
	stations      map[string]model.Station
	defaultGround string

	subs map[int]func(Event)
	next int
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		grounds:  make(map[string]model.GroundType),
		stations: make(map[string]model.Station),
		subs:     make(map[int]func(Event)),
	}
}

// NewWithDefaults returns a KB seeded with DefaultGroundTypes and
// DefaultGroundName as the default ground.
func NewWithDefaults() *KnowledgeBase {
	kb := NewKnowledgeBase()
	for _, g := range DefaultGroundTypes() {
		// Names are distinct, so this cannot fail.
		_ = kb.AddGroundType(g)
	}
	_ = kb.SetDefaultGround(DefaultGroundName)
	return kb
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// AddGroundType adds g. The name must be non-empty and unused, epsilon at
// least 1 and sigma non-negative.
func (kb *KnowledgeBase) AddGroundType(g model.GroundType) error {
	if key(g.Name) == "" {
		return errors.New("ground type name is required")
	}
	if g.Epsilon < 1 || g.SigmaSPerM < 0 {
		return fmt.Errorf("ground type %q: epsilon %g, sigma %g out of range", g.Name, g.Epsilon, g.SigmaSPerM)
	}

	kb.mu.Lock()
	if _, exists := kb.grounds[key(g.Name)]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("ground type %q: %w", g.Name, ErrAlreadyExists)
	}
	kb.grounds[key(g.Name)] = g
	ev := kb.eventLocked(EventGroundTypeAdded)
	ev.GroundType = g
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	notify(subs, ev)
	return nil
}

// GroundType returns the named ground type.
func (kb *KnowledgeBase) GroundType(name string) (model.GroundType, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.groundLocked(name)
}

func (kb *KnowledgeBase) groundLocked(name string) (model.GroundType, error) {
	g, ok := kb.grounds[key(name)]
	if !ok {
		return model.GroundType{}, fmt.Errorf("ground type %q: %w", name, ErrNotFound)
	}
	return g, nil
}

// ListGroundTypes returns all ground types sorted by name.
func (kb *KnowledgeBase) ListGroundTypes() []model.GroundType {
	kb.mu.RLock()
	res := make([]model.GroundType, 0, len(kb.grounds))
	for _, g := range kb.grounds {
		res = append(res, g)
	}
	kb.mu.RUnlock()

	slices.SortFunc(res, func(a, b model.GroundType) int { return strings.Compare(key(a.Name), key(b.Name)) })
	return res
}

// SetDefaultGround selects the ground type used for stations that do not
// name one.
func (kb *KnowledgeBase) SetDefaultGround(name string) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if _, err := kb.groundLocked(name); err != nil {
		return err
	}
	kb.defaultGround = key(name)
	return nil
}

// GroundFor resolves the ground type of a path starting at s.
func (kb *KnowledgeBase) GroundFor(s model.Station) (model.GroundType, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	name := s.GroundType
	if name == "" {
		if kb.defaultGround == "" {
			return model.GroundType{}, fmt.Errorf("station %q names no ground type and no default is set: %w", s.ID, ErrNotFound)
		}
		name = kb.defaultGround
	}
	return kb.groundLocked(name)
}

// AddStation adds s. It returns an error if the ID already exists or if the
// referenced ground type does not exist.
func (kb *KnowledgeBase) AddStation(s model.Station) error {
	if err := validateStation(s); err != nil {
		return err
	}

	kb.mu.Lock()
	if _, exists := kb.stations[s.ID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("station %q: %w", s.ID, ErrAlreadyExists)
	}
	if s.GroundType != "" {
		if _, err := kb.groundLocked(s.GroundType); err != nil {
			kb.mu.Unlock()
			return fmt.Errorf("station %q: %w", s.ID, err)
		}
	}
	kb.stations[s.ID] = s
	ev := kb.eventLocked(EventStationAdded)
	ev.Station = s
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	notify(subs, ev)
	return nil
}

// UpdateStation replaces an existing station and notifies subscribers.
func (kb *KnowledgeBase) UpdateStation(s model.Station) error {
	if err := validateStation(s); err != nil {
		return err
	}

	kb.mu.Lock()
	if _, ok := kb.stations[s.ID]; !ok {
		kb.mu.Unlock()
		return fmt.Errorf("station %q: %w", s.ID, ErrNotFound)
	}
	if s.GroundType != "" {
		if _, err := kb.groundLocked(s.GroundType); err != nil {
			kb.mu.Unlock()
			return fmt.Errorf("station %q: %w", s.ID, err)
		}
	}
	kb.stations[s.ID] = s
	ev := kb.eventLocked(EventStationUpdated)
	ev.Station = s
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	notify(subs, ev)
	return nil
}

// RemoveStation deletes the station with the given ID.
func (kb *KnowledgeBase) RemoveStation(id string) error {
	kb.mu.Lock()
	s, ok := kb.stations[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("station %q: %w", id, ErrNotFound)
	}
	delete(kb.stations, id)
	ev := kb.eventLocked(EventStationRemoved)
	ev.Station = s
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	notify(subs, ev)
	return nil
}

// Station returns the station with the given ID.
func (kb *KnowledgeBase) Station(id string) (model.Station, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	s, ok := kb.stations[id]
	if !ok {
		return model.Station{}, fmt.Errorf("station %q: %w", id, ErrNotFound)
	}
	return s, nil
}

// ListStations returns a snapshot of all stations sorted by ID.
func (kb *KnowledgeBase) ListStations() []model.Station {
	kb.mu.RLock()
	res := make([]model.Station, 0, len(kb.stations))
	for _, s := range kb.stations {
		res = append(res, s)
	}
	kb.mu.RUnlock()

	slices.SortFunc(res, func(a, b model.Station) int { return strings.Compare(a.ID, b.ID) })
	return res
}

// Subscribe registers a callback for KB events. It returns an unsubscribe
// function; calling it more than once is harmless.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.next
	kb.next++
	kb.subs[id] = fn

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		delete(kb.subs, id)
	}
}

func (kb *KnowledgeBase) eventLocked(t EventType) Event {
	return Event{Type: t, GroundTypes: len(kb.grounds), Stations: len(kb.stations)}
}

func (kb *KnowledgeBase) subscribersLocked() []func(Event) {
	ids := make([]int, 0, len(kb.subs))
	for id := range kb.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, kb.subs[id])
	}
	return subs
}

// notify runs outside the lock so subscribers may call back into the KB.
func notify(subs []func(Event), ev Event) {
	for _, sub := range subs {
		sub(ev)
	}
}

func validateStation(s model.Station) error {
	switch {
	case s.ID == "":
		return errors.New("station id is required")
	case s.LatDeg < -90 || s.LatDeg > 90:
		return fmt.Errorf("station %q: latitude %g out of range", s.ID, s.LatDeg)
	case s.LonDeg < -180 || s.LonDeg > 180:
		return fmt.Errorf("station %q: longitude %g out of range", s.ID, s.LonDeg)
	case s.AntennaHeightM < 0:
		return fmt.Errorf("station %q: negative antenna height", s.ID)
	case !s.Polarization.Valid():
		return fmt.Errorf("station %q: invalid polarization %v", s.ID, s.Polarization)
	}
	return nil
}
