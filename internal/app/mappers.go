package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"wildtrail/internal/domain"
)

/********** alias registries (single source of truth) **********/

var itemAliases = map[string][]string{
	"id":           {"id", "item_id", "itemId", "slug", "uuid"},
	"title":        {"title", "name", "display_title", "displayTitle"},
	"location":     {"location", "locationLabel", "destination", "place", "address.city"},
	"region":       {"region", "destination_region", "area", "location.region"},
	"category":     {"category", "type", "tag", "categories.0"},
	"rating":       {"rating", "rating.value", "score", "average_rating"},
	"review_count": {"reviewCount", "review_count", "reviews_count", "rating.count"},
	"difficulty":   {"difficulty", "level", "grade"},
	"currency":     {"price.currency", "currency", "priceQuote.currency"},
	"adult":        {"price.adult", "adult_price", "priceQuote.adult", "price"},
	"child":        {"price.child", "child_price", "priceQuote.child"},
	"amount":       {"price.amount", "priceQuote.amount", "amount", "price"},
	"days":         {"durationDays", "duration_days", "duration"},
	"hours":        {"durationHours", "duration_hours", "duration"},
	"event_date":   {"eventDate", "event_date", "date", "starts_on"},
	"images":       {"images", "photos", "gallery"},
	"amenities":    {"amenities", "facilities"},
	"rooms":        {"rooms", "room_types", "roomTypes"},
}

var roomAliases = map[string][]string{
	"name":  {"name", "type", "title"},
	"price": {"perNight", "per_night", "price_per_night", "price.amount", "price", "rate"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps; numeric parts index slices.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		switch obj := cur.(type) {
		case map[string]any:
			v, ok := obj[part]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(obj) {
				return nil
			}
			cur = obj[i]
		default:
			return nil
		}
	}
	return cur
}

// lookupStr returns string at path or "" (numbers are formatted).
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0" or "1,500").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(v)
			if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") && len(s)-strings.Index(s, ",") != 4 {
				s = strings.ReplaceAll(s, ",", ".") // decimal comma
			} else {
				s = strings.ReplaceAll(s, ",", "") // thousands separator
			}
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// firstImages: accept []any with either strings or {url|src, alt|caption|title}.
func firstImages(m map[string]any, paths ...string) []domain.Image {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]domain.Image, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, domain.Image{URL: t})
				}
			case map[string]any:
				u := lookupStr(t, "url")
				if u == "" {
					u = lookupStr(t, "src")
				}
				if u == "" {
					continue
				}
				alt := firstNonEmptyAlias(t, map[string][]string{"alt": {"alt", "altText", "caption", "title"}}, "alt")
				out = append(out, domain.Image{URL: u, Alt: alt})
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []domain.Image{}
}

func firstStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

/********** catalog item mapper **********/

// mapCatalogItem turns one remote catalog payload into a validated item.
// The kind comes from the tab it was fetched for.
func mapCatalogItem(tab domain.Tab, p map[string]any) (domain.CatalogItem, []byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("context", "mapCatalogItem").Msg("failed to marshal item to JSON")
	}

	it := domain.CatalogItem{
		ID:       firstNonEmptyAlias(p, itemAliases, "id"),
		Kind:     tab.Kind(),
		Tab:      tab,
		Title:    firstNonEmptyAlias(p, itemAliases, "title"),
		Location: firstNonEmptyAlias(p, itemAliases, "location"),
		Region:   firstNonEmptyAlias(p, itemAliases, "region"),
		Category: strings.ToLower(firstNonEmptyAlias(p, itemAliases, "category")),
		Images:   firstImages(p, itemAliases["images"]...),
		Rating:   floatOr(getFloatFlexible(p, itemAliases["rating"]...), 0),
	}
	// some sources rate out of ten
	if it.Rating > 5 && it.Rating <= 10 {
		it.Rating /= 2
	}
	if n := getFloatFlexible(p, itemAliases["review_count"]...); n != nil {
		it.ReviewCount = int(*n)
	}
	currency := strings.ToUpper(firstNonEmptyAlias(p, itemAliases, "currency"))
	if currency == "" {
		currency = "USD"
	}
	difficulty := domain.Difficulty(strings.ToLower(firstNonEmptyAlias(p, itemAliases, "difficulty")))

	switch it.Kind {
	case domain.KindTour:
		it.Tour = &domain.TourDetails{
			Price: domain.TourPrice{
				Adult:    floatOr(getFloatFlexible(p, itemAliases["adult"]...), 0),
				Child:    floatOr(getFloatFlexible(p, itemAliases["child"]...), 0),
				Currency: currency,
			},
			Difficulty:   difficulty,
			DurationDays: int(floatOr(getFloatFlexible(p, itemAliases["days"]...), 0)),
		}
	case domain.KindHotel:
		it.Hotel = &domain.HotelDetails{
			Rooms:     mapRooms(p),
			Currency:  currency,
			Amenities: firstStrings(p, itemAliases["amenities"]...),
		}
	case domain.KindActivity:
		it.Activity = &domain.ActivityDetails{
			Price: domain.Money{
				Amount:   floatOr(getFloatFlexible(p, itemAliases["amount"]...), 0),
				Currency: currency,
			},
			Difficulty:    difficulty,
			DurationHours: floatOr(getFloatFlexible(p, itemAliases["hours"]...), 0),
		}
		if tab == domain.TabEvents {
			it.Activity.EventDate = firstNonEmptyAlias(p, itemAliases, "event_date")
		}
	}

	it.Normalize()
	if err := it.Validate(); err != nil {
		return domain.CatalogItem{}, nil, fmt.Errorf("map %s item: %w", tab, err)
	}
	return it, raw, nil
}

func mapRooms(p map[string]any) []domain.Room {
	for _, k := range itemAliases["rooms"] {
		list, ok := lookupAny(p, k).([]any)
		if !ok {
			continue
		}
		out := make([]domain.Room, 0, len(list))
		for _, r := range list {
			obj, ok := r.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, domain.Room{
				Name:     firstNonEmptyAlias(obj, roomAliases, "name"),
				PerNight: floatOr(getFloatFlexible(obj, roomAliases["price"]...), 0),
			})
		}
		return out
	}
	// flat per-night price on the property itself
	if f := getFloatFlexible(p, "perNight", "per_night", "price_per_night", "price"); f != nil {
		return []domain.Room{{Name: "Standard", PerNight: *f}}
	}
	return []domain.Room{}
}
