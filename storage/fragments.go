package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"rpp_scraper/models"
)

// historyFieldTypes maps raw history fields to the history_type column
// values used by property_history rows.
var historyFieldTypes = []struct {
	key         string
	historyType string
}{
	{models.RawHistoryAll, "All"},
	{models.RawHistorySale, "Sale"},
	{models.RawHistoryListing, "Listing"},
	{models.RawHistoryRental, "Rental"},
	{models.RawHistoryDA, "DA"},
}

// schoolRow mirrors the JSON shape the extractor emits for one school.
type schoolRow struct {
	Name       string           `json:"name"`
	Address    string           `json:"address"`
	Distance   string           `json:"distance"`
	Attributes schoolAttributes `json:"attributes"`
}

type schoolAttributes struct {
	Type        string `json:"type"`
	Sector      string `json:"sector"`
	Gender      string `json:"gender"`
	YearLevels  string `json:"year_levels"`
	Enrollments string `json:"enrollments"`
}

// storedSchool is one nearby_schools row.
type storedSchool struct {
	Name            string
	Address         string
	Distance        string
	Type            string
	Sector          string
	Gender          string
	YearLevels      string
	Enrollments     string
	CatchmentStatus string
}

// storedHistoryEvent is one property_history row.
type storedHistoryEvent struct {
	HistoryType string
	Date        string
	Description string
	Details     string
}

// storedValuation is one valuation_estimates row.
type storedValuation struct {
	EstimateType  string
	Confidence    string
	LowValue      string
	EstimateValue string
	HighValue     string
	RentalYield   string
}

// assembleSchools regroups school rows by catchment status into the same
// JSON arrays the extractor produces, so cached and fresh data transform
// identically.
func assembleSchools(rows []storedSchool) (inCatchment, allNearby string, err error) {
	groups := map[string][]schoolRow{
		"In Catchment": {},
		"All Nearby":   {},
	}
	for _, row := range rows {
		entry := schoolRow{
			Name:     row.Name,
			Address:  row.Address,
			Distance: row.Distance,
			Attributes: schoolAttributes{
				Type:        row.Type,
				Sector:      row.Sector,
				Gender:      row.Gender,
				YearLevels:  row.YearLevels,
				Enrollments: row.Enrollments,
			},
		}
		groups[row.CatchmentStatus] = append(groups[row.CatchmentStatus], entry)
	}

	encode := func(schools []schoolRow) (string, error) {
		encoded, err := json.Marshal(schools)
		if err != nil {
			return "", fmt.Errorf("encode schools: %w", err)
		}
		return string(encoded), nil
	}

	if inCatchment, err = encode(groups["In Catchment"]); err != nil {
		return "", "", err
	}
	if allNearby, err = encode(groups["All Nearby"]); err != nil {
		return "", "", err
	}
	return inCatchment, allNearby, nil
}

// assembleHistory regroups history rows by type into per-tab raw fields,
// each holding an {"events": [...]} document.
func assembleHistory(rows []storedHistoryEvent) (map[string]string, error) {
	grouped := map[string][]models.HistoryEvent{}
	for _, row := range rows {
		event := models.HistoryEvent{
			Date:        row.Date,
			Description: row.Description,
			Details:     []string{},
		}
		if row.Details != "" {
			var details []string
			if err := json.Unmarshal([]byte(row.Details), &details); err == nil {
				event.Details = details
			} else {
				event.Details = []string{row.Details}
			}
		}
		grouped[row.HistoryType] = append(grouped[row.HistoryType], event)
	}

	fields := make(map[string]string, len(grouped))
	for _, ft := range historyFieldTypes {
		events, ok := grouped[ft.historyType]
		if !ok {
			continue
		}
		payload := struct {
			Events []models.HistoryEvent `json:"events"`
		}{Events: events}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode history %s: %w", ft.historyType, err)
		}
		fields[ft.key] = string(encoded)
	}
	return fields, nil
}

// assembleValuations rebuilds the valuation JSON fields plus their
// one-line summaries from valuation_estimates rows.
func assembleValuations(rows []storedValuation) (map[string]string, error) {
	fields := map[string]string{}

	for _, row := range rows {
		switch row.EstimateType {
		case "Property Valuation":
			data := map[string]string{
				"confidence":     row.Confidence,
				"low_value":      row.LowValue,
				"estimate_value": row.EstimateValue,
				"high_value":     row.HighValue,
			}
			encoded, err := json.Marshal(data)
			if err != nil {
				return nil, fmt.Errorf("encode valuation: %w", err)
			}
			fields[models.RawValuationEstimateJSON] = string(encoded)
			fields[models.RawValuationEstimate] = valuationSummary(row, false)
		case "Rental Estimate":
			data := map[string]string{
				"confidence":     row.Confidence,
				"low_value":      row.LowValue,
				"estimate_value": row.EstimateValue,
				"high_value":     row.HighValue,
				"rental_yield":   row.RentalYield,
			}
			encoded, err := json.Marshal(data)
			if err != nil {
				return nil, fmt.Errorf("encode rental estimate: %w", err)
			}
			fields[models.RawValuationRentalJSON] = string(encoded)
			fields[models.RawValuationRental] = valuationSummary(row, true)
		}
	}
	return fields, nil
}

// valuationSummary rebuilds the one-line summary in the same order the
// extractor emits it.
func valuationSummary(row storedValuation, includeYield bool) string {
	var parts []string
	if row.LowValue != "" {
		parts = append(parts, "Low: "+row.LowValue)
	}
	if row.EstimateValue != "" {
		parts = append(parts, "Estimate: "+row.EstimateValue)
	}
	if row.HighValue != "" {
		parts = append(parts, "High: "+row.HighValue)
	}
	if includeYield && row.RentalYield != "" {
		parts = append(parts, "Yield: "+row.RentalYield)
	}
	if row.Confidence != "" {
		parts = append(parts, "Confidence: "+row.Confidence)
	}
	return strings.Join(parts, " | ")
}
