package services

import (
	"encoding/json"
	"log"
	"strings"

	"rpp_scraper/models"
)

// historyPayload is the wire shape a single history tab serializes to.
type historyPayload struct {
	Events       []models.HistoryEvent            `json:"events"`
	EventsByType map[string][]models.HistoryEvent `json:"events_by_type"`
	TotalEvents  *int                             `json:"total_events"`
}

// historyCategoryFields maps per-tab raw fields to their event category.
var historyCategoryFields = []struct {
	key      string
	category string
}{
	{models.RawHistorySale, models.EventTypeSale},
	{models.RawHistoryRental, models.EventTypeRental},
	{models.RawHistoryListing, models.EventTypeListing},
	{models.RawHistoryDA, models.EventTypeDA},
}

// Reconcile merges the per-tab history fields into one canonical bundle.
// A field that already carries events_by_type and total_events is taken as
// pre-reconciled; any redundant flat events list it carries is dropped and
// the total recomputed. Otherwise per-category fields contribute their
// events lists, with the catch-all field classified per event as a
// fallback. Unparseable fields are logged and contribute nothing.
func Reconcile(raw models.RawRecord) models.HistoryBundle {
	allRaw := raw.Get(models.RawHistoryAll)

	if payload, ok := parseHistory(models.RawHistoryAll, allRaw); ok && payload.EventsByType != nil && payload.TotalEvents != nil {
		bundle := models.EmptyHistoryBundle()
		for category, events := range payload.EventsByType {
			category = normalizeCategory(category)
			for _, event := range events {
				event.Type = category
				bundle.EventsByType[category] = append(bundle.EventsByType[category], event)
			}
		}
		bundle.Recount()
		return bundle
	}

	bundle := models.EmptyHistoryBundle()
	sawCategoryEvents := false

	for _, field := range historyCategoryFields {
		value := raw.Get(field.key)
		payload, ok := parseHistory(field.key, value)
		if !ok {
			continue
		}
		for _, event := range payload.Events {
			event.Type = field.category
			bundle.EventsByType[field.category] = append(bundle.EventsByType[field.category], event)
			sawCategoryEvents = true
		}
	}

	// The combined tab only fills in when no per-category tab produced
	// anything, so events are never double counted.
	if !sawCategoryEvents {
		if payload, ok := parseHistory(models.RawHistoryAll, allRaw); ok {
			for _, event := range payload.Events {
				category := classifyEvent(event.Description)
				event.Type = category
				bundle.EventsByType[category] = append(bundle.EventsByType[category], event)
			}
		}
	}

	bundle.Recount()
	return bundle
}

// parseHistory parses one history field. ok is false for empty fields and,
// with a log line, for malformed JSON.
func parseHistory(key, value string) (historyPayload, bool) {
	var payload historyPayload
	if strings.TrimSpace(value) == "" {
		return payload, false
	}
	if err := json.Unmarshal([]byte(value), &payload); err != nil {
		log.Printf("Warning: skipping unparseable history field %s: %v", key, err)
		return payload, false
	}
	return payload, true
}

// normalizeCategory maps unknown category keys onto the known set.
func normalizeCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case models.EventTypeSale:
		return models.EventTypeSale
	case models.EventTypeRental:
		return models.EventTypeRental
	case models.EventTypeListing:
		return models.EventTypeListing
	case models.EventTypeDA:
		return models.EventTypeDA
	default:
		return models.EventTypeOther
	}
}

// classifyEvent buckets a combined-tab event by its description text.
func classifyEvent(description string) string {
	desc := strings.ToLower(strings.TrimSpace(description))
	switch {
	case strings.Contains(desc, "sold") || strings.Contains(desc, "sale"):
		return models.EventTypeSale
	case strings.Contains(desc, "rented") || strings.Contains(desc, "rental") || strings.Contains(desc, "lease"):
		return models.EventTypeRental
	case strings.Contains(desc, "listed") || strings.Contains(desc, "listing"):
		return models.EventTypeListing
	case strings.Contains(desc, "development application") || desc == "da":
		return models.EventTypeDA
	default:
		return models.EventTypeOther
	}
}
