package domain

import (
	"fmt"
	"strings"
)

type Tab string

const (
	TabTours      Tab = "tours"
	TabHomestay   Tab = "homestay"
	TabActivities Tab = "activities"
	TabEvents     Tab = "events"
)

// Tabs in display order; the first one is active when a session starts.
var Tabs = []Tab{TabTours, TabHomestay, TabActivities, TabEvents}

func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
	}
	return t, nil
}

func (t Tab) Valid() bool {
	switch t {
	case TabTours, TabHomestay, TabActivities, TabEvents:
		return true
	}
	return false
}

// Kind is the item kind a tab lists. Events are bookable activities with a date.
func (t Tab) Kind() ItemKind {
	switch t {
	case TabTours:
		return KindTour
	case TabHomestay:
		return KindHotel
	default:
		return KindActivity
	}
}

// ShowsDifficulty reports whether the difficulty control is rendered for the tab.
func (t Tab) ShowsDifficulty() bool { return t == TabTours || t == TabActivities }

var tabCategories = map[Tab][]string{
	TabTours: {
		"trekking", "wildlife-safari", "bird-watching", "cultural",
		"adventure", "photography", "pilgrimage", "mountaineering",
	},
	TabHomestay: {
		"luxury", "eco-lodge", "traditional", "budget", "farmstay", "jungle-resort",
	},
	TabActivities: {
		"adventure", "water-sports", "wildlife", "cultural", "wellness", "aerial", "photography",
	},
	TabEvents: {
		"festival", "workshop", "photo-walk", "exhibition", "conservation", "cultural",
	},
}

// Categories returns a copy of the tab's fixed category options.
func (t Tab) Categories() []string {
	src := tabCategories[t]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func (t Tab) HasCategory(c string) bool {
	for _, x := range tabCategories[t] {
		if strings.EqualFold(x, c) {
			return true
		}
	}
	return false
}

// DestinationAll is the "all destinations" sentinel; it is stored as "".
const DestinationAll = "all"

var Destinations = []string{
	"Kathmandu Valley", "Pokhara", "Chitwan", "Bardia", "Everest Region",
	"Annapurna Region", "Langtang", "Mustang", "Lumbini", "Ilam",
}

func IsDestination(s string) bool {
	for _, d := range Destinations {
		if strings.EqualFold(d, s) {
			return true
		}
	}
	return false
}

// price slider and rating controls
const (
	PriceFloor   = 0
	PriceCeiling = 5000
	PriceStep    = 50
)

var RatingOptions = []int{1, 2, 3, 4}

var tabNouns = map[Tab][2]string{
	TabTours:      {"tour", "tours"},
	TabHomestay:   {"homestay", "homestays"},
	TabActivities: {"activity", "activities"},
	TabEvents:     {"event", "events"},
}

// CountMessage renders e.g. "3 tours found".
func CountMessage(t Tab, n int) string {
	nouns, ok := tabNouns[t]
	if !ok {
		nouns = [2]string{"item", "items"}
	}
	noun := nouns[1]
	if n == 1 {
		noun = nouns[0]
	}
	return fmt.Sprintf("%d %s found", n, noun)
}

// TabOptions is what the filter sidebar renders for a tab.
type TabOptions struct {
	Tab          Tab          `json:"tab"`
	Categories   []string     `json:"categories"`
	Difficulties []Difficulty `json:"difficulties,omitempty"`
	Destinations []string     `json:"destinations"`
	PriceMin     int          `json:"priceMin"`
	PriceMax     int          `json:"priceMax"`
	PriceStep    int          `json:"priceStep"`
	Ratings      []int        `json:"ratings"`
}

func OptionsFor(t Tab) TabOptions {
	o := TabOptions{
		Tab:          t,
		Categories:   t.Categories(),
		Destinations: append([]string(nil), Destinations...),
		PriceMin:     PriceFloor,
		PriceMax:     PriceCeiling,
		PriceStep:    PriceStep,
		Ratings:      append([]int(nil), RatingOptions...),
	}
	if t.ShowsDifficulty() {
		o.Difficulties = append([]Difficulty(nil), Difficulties...)
	}
	return o
}
