package models

import "encoding/json"

// History event categories. Every event carries a type; unclassified
// descriptions fall back to EventTypeOther.
const (
	EventTypeSale    = "sale"
	EventTypeRental  = "rental"
	EventTypeListing = "listing"
	EventTypeDA      = "da"
	EventTypeOther   = "other"
)

// HistoryCategories lists every known category in canonical order; the
// reconciler guarantees each appears in EventsByType even when empty.
var HistoryCategories = []string{
	EventTypeSale,
	EventTypeRental,
	EventTypeListing,
	EventTypeDA,
	EventTypeOther,
}

// HistoryEvent is one timeline entry for a property.
type HistoryEvent struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Details     []string `json:"details"`
	Type        string   `json:"type"`
}

// HistoryBundle is the canonical merged history shape. TotalEvents always
// equals the sum of list lengths in EventsByType.
type HistoryBundle struct {
	TotalEvents  int                       `json:"total_events"`
	EventsByType map[string][]HistoryEvent `json:"events_by_type"`
}

// EmptyHistoryBundle returns a bundle with every known category present and
// empty.
func EmptyHistoryBundle() HistoryBundle {
	byType := make(map[string][]HistoryEvent, len(HistoryCategories))
	for _, c := range HistoryCategories {
		byType[c] = []HistoryEvent{}
	}
	return HistoryBundle{TotalEvents: 0, EventsByType: byType}
}

// Recount recomputes TotalEvents from the per-category lists.
func (b *HistoryBundle) Recount() {
	total := 0
	for _, events := range b.EventsByType {
		total += len(events)
	}
	b.TotalEvents = total
}

// Events flattens the bundle in canonical category order.
func (b HistoryBundle) Events() []HistoryEvent {
	var out []HistoryEvent
	for _, c := range HistoryCategories {
		out = append(out, b.EventsByType[c]...)
	}
	return out
}

// MarshalJSON fills in missing categories so consumers never branch on
// absence.
func (b HistoryBundle) MarshalJSON() ([]byte, error) {
	byType := make(map[string][]HistoryEvent, len(HistoryCategories))
	for _, c := range HistoryCategories {
		events := b.EventsByType[c]
		if events == nil {
			events = []HistoryEvent{}
		}
		byType[c] = events
	}
	type alias struct {
		TotalEvents  int                       `json:"total_events"`
		EventsByType map[string][]HistoryEvent `json:"events_by_type"`
	}
	return json.Marshal(alias{TotalEvents: b.TotalEvents, EventsByType: byType})
}
