package entity

import "strings"

// Item is a classified listing. OwnerID references the creating user and
// is set once from the authenticated identity, never from request input.
type Item struct {
	ID           int64    `json:"id"`
	OwnerID      int64    `json:"ownerId"`
	Title        string   `json:"title"`
	Desc         string   `json:"desc"`
	Category     string   `json:"category"`
	Location     string   `json:"location"`
	Images       []string `json:"images"`
	Price        float64  `json:"price"`
	Date         string   `json:"date"`
	DeliveryType string   `json:"deliveryType"`
	Name         string   `json:"name"`
	Tel          string   `json:"tel"`
}

// SearchFields are the item fields the search endpoint may filter on.
var SearchFields = map[string]bool{
	"category": true,
	"location": true,
	"date":     true,
}

// SearchValue returns the value of a searchable field, or false for any
// other field name.
func (it *Item) SearchValue(field string) (string, bool) {
	switch field {
	case "category":
		return it.Category, true
	case "location":
		return it.Location, true
	case "date":
		return it.Date, true
	}
	return "", false
}

// Matches reports whether keyword is a case-insensitive substring of the
// given searchable field.
func (it *Item) Matches(field, keyword string) bool {
	v, ok := it.SearchValue(field)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(v), strings.ToLower(keyword))
}

// ApplyPartial merges the provided fields into the item and reports how
// many keys were applied. Only known mutable keys participate; id and
// ownerId are immutable and silently skipped, as are values of the wrong
// type for their field.
func (it *Item) ApplyPartial(fields map[string]any) int {
	applied := 0
	for key, raw := range fields {
		switch key {
		case "title":
			applied += setString(&it.Title, raw)
		case "desc":
			applied += setString(&it.Desc, raw)
		case "category":
			applied += setString(&it.Category, raw)
		case "location":
			applied += setString(&it.Location, raw)
		case "date":
			applied += setString(&it.Date, raw)
		case "deliveryType":
			applied += setString(&it.DeliveryType, raw)
		case "name":
			applied += setString(&it.Name, raw)
		case "tel":
			applied += setString(&it.Tel, raw)
		case "price":
			if v, ok := raw.(float64); ok {
				it.Price = v
				applied++
			}
		case "images":
			if v, ok := toStrings(raw); ok {
				it.Images = v
				applied++
			}
		}
	}
	return applied
}

func setString(dst *string, raw any) int {
	v, ok := raw.(string)
	if !ok {
		return 0
	}
	*dst = v
	return 1
}

func toStrings(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
