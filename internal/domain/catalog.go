package domain

import (
	"fmt"
	"math"
)

type ItemKind string

const (
	KindTour     ItemKind = "tour"
	KindHotel    ItemKind = "hotel"
	KindActivity ItemKind = "activity"
)

func (k ItemKind) Valid() bool {
	switch k {
	case KindTour, KindHotel, KindActivity:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy        Difficulty = "easy"
	DifficultyModerate    Difficulty = "moderate"
	DifficultyChallenging Difficulty = "challenging"
	DifficultyExtreme     Difficulty = "extreme"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyModerate, DifficultyChallenging, DifficultyExtreme}

func (d Difficulty) Valid() bool {
	for _, x := range Difficulties {
		if d == x {
			return true
		}
	}
	return false
}

// PlaceholderImage stands in for items without any image.
var PlaceholderImage = Image{URL: "/static/img/placeholder-wildlife.jpg", Alt: "Image coming soon"}

type Image struct {
	URL string `json:"url" yaml:"url"`
	Alt string `json:"alt" yaml:"alt"`
}

type Money struct {
	Amount   float64 `json:"amount" yaml:"amount"`
	Currency string  `json:"currency" yaml:"currency"`
}

type TourPrice struct {
	Adult    float64 `json:"adult" yaml:"adult"`
	Child    float64 `json:"child" yaml:"child"`
	Currency string  `json:"currency" yaml:"currency"`
}

type Room struct {
	Name     string  `json:"name" yaml:"name"`
	PerNight float64 `json:"perNight" yaml:"perNight"`
}

type TourDetails struct {
	Price        TourPrice  `json:"price" yaml:"price"`
	Difficulty   Difficulty `json:"difficulty" yaml:"difficulty"`
	DurationDays int        `json:"durationDays" yaml:"durationDays"`
}

type HotelDetails struct {
	Rooms     []Room   `json:"rooms" yaml:"rooms"`
	Currency  string   `json:"currency" yaml:"currency"`
	Amenities []string `json:"amenities,omitempty" yaml:"amenities"`
}

type ActivityDetails struct {
	Price         Money      `json:"price" yaml:"price"`
	Difficulty    Difficulty `json:"difficulty,omitempty" yaml:"difficulty"`
	DurationHours float64    `json:"durationHours,omitempty" yaml:"durationHours"`
	EventDate     string     `json:"eventDate,omitempty" yaml:"eventDate"` // events tab only
}

// CatalogItem is a tagged variant over tours, hotels and activities.
// Exactly one of Tour, Hotel, Activity is set, matching Kind.
type CatalogItem struct {
	ID          string   `json:"id" yaml:"id"`
	Kind        ItemKind `json:"kind" yaml:"kind"`
	Tab         Tab      `json:"tab" yaml:"tab"`
	Title       string   `json:"title" yaml:"title"`
	Location    string   `json:"location" yaml:"location"`
	Region      string   `json:"region,omitempty" yaml:"region"`
	Images      []Image  `json:"images" yaml:"images"`
	Rating      float64  `json:"rating" yaml:"rating"`
	ReviewCount int      `json:"reviewCount" yaml:"reviewCount"`
	Category    string   `json:"category" yaml:"category"`

	Tour     *TourDetails     `json:"tour,omitempty" yaml:"tour"`
	Hotel    *HotelDetails    `json:"hotel,omitempty" yaml:"hotel"`
	Activity *ActivityDetails `json:"activity,omitempty" yaml:"activity"`
}

// PriceQuote is the amount the price filter compares against:
// adult price for tours, first room's nightly rate for hotels, flat amount for activities.
func (it CatalogItem) PriceQuote() Money {
	switch it.Kind {
	case KindTour:
		if it.Tour != nil {
			return Money{Amount: it.Tour.Price.Adult, Currency: it.Tour.Price.Currency}
		}
	case KindHotel:
		if it.Hotel != nil && len(it.Hotel.Rooms) > 0 {
			return Money{Amount: it.Hotel.Rooms[0].PerNight, Currency: it.Hotel.Currency}
		}
		if it.Hotel != nil {
			return Money{Currency: it.Hotel.Currency}
		}
	case KindActivity:
		if it.Activity != nil {
			return it.Activity.Price
		}
	}
	return Money{}
}

func (it CatalogItem) Difficulty() Difficulty {
	switch {
	case it.Kind == KindTour && it.Tour != nil:
		return it.Tour.Difficulty
	case it.Kind == KindActivity && it.Activity != nil:
		return it.Activity.Difficulty
	}
	return ""
}

func (it CatalogItem) HasDifficulty() bool { return it.Kind == KindTour || it.Kind == KindActivity }

func (it CatalogItem) Thumbnail() Image {
	if len(it.Images) == 0 {
		return PlaceholderImage
	}
	return it.Images[0]
}

// Normalize fixes up representation-only details: non-nil images, one-decimal rating.
func (it *CatalogItem) Normalize() {
	if it.Images == nil {
		it.Images = []Image{}
	}
	it.Rating = math.Round(it.Rating*10) / 10
}

func (it CatalogItem) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("catalog item: empty id")
	}
	if !it.Kind.Valid() {
		return fmt.Errorf("catalog item %s: unknown kind %q", it.ID, it.Kind)
	}
	if !it.Tab.Valid() {
		return fmt.Errorf("catalog item %s: unknown tab %q", it.ID, it.Tab)
	}
	if math.IsNaN(it.Rating) || it.Rating < 0 || it.Rating > 5 {
		return fmt.Errorf("catalog item %s: rating %.1f out of [0,5]", it.ID, it.Rating)
	}
	if it.ReviewCount < 0 {
		return fmt.Errorf("catalog item %s: negative review count", it.ID)
	}
	var set int
	for _, ok := range []bool{it.Tour != nil, it.Hotel != nil, it.Activity != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("catalog item %s: expected exactly one kind payload, got %d", it.ID, set)
	}
	switch {
	case it.Kind == KindTour && it.Tour == nil,
		it.Kind == KindHotel && it.Hotel == nil,
		it.Kind == KindActivity && it.Activity == nil:
		return fmt.Errorf("catalog item %s: payload does not match kind %s", it.ID, it.Kind)
	}
	if d := it.Difficulty(); d != "" && !d.Valid() {
		return fmt.Errorf("catalog item %s: unknown difficulty %q", it.ID, d)
	}
	return nil
}
