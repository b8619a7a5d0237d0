package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// PropertyRecord is the canonical output shape. Both the cache-hit path and
// the fresh-scrape path converge to it through the same transform; every
// nested field defaults to an empty string, map or list, never null.
type PropertyRecord struct {
	ID          int64          `json:"id"`
	PropertyURL string         `json:"propertyUrl"`
	Address     string         `json:"address"`
	Type        string         `json:"type"`
	Bedrooms    string         `json:"bedrooms"`
	Bathrooms   string         `json:"bathrooms"`
	CarSpaces   string         `json:"carSpaces"`
	LandSize    string         `json:"landSize"`
	FloorArea   string         `json:"floorArea"`
	LastSold    LastSoldInfo   `json:"lastSold"`
	Sale        SaleInfo       `json:"sale"`
	Agent       AgentInfo      `json:"agent"`
	Additional  AdditionalInfo `json:"additional"`
	Household   HouseholdInfo  `json:"household"`
	Valuation   ValuationInfo  `json:"valuation"`
	Schools     SchoolGroups   `json:"schools"`
	History     HistoryBundle  `json:"history"`
	ScrapedAt   string         `json:"scrapedAt"`
}

type LastSoldInfo struct {
	Price  string `json:"price"`
	Date   string `json:"date"`
	SoldBy string `json:"soldBy"`
}

type SaleInfo struct {
	LandUse            string `json:"landUse"`
	IssueDate          string `json:"issueDate"`
	AdvertisementDate  string `json:"advertisementDate"`
	ListingDescription string `json:"listingDescription"`
}

type AgentInfo struct {
	Agency string `json:"agency"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
}

type AdditionalInfo struct {
	LegalDescription TextOrMap `json:"legalDescription"`
	Features         TextOrMap `json:"features"`
	LandValues       TextOrMap `json:"landValues"`
}

type HouseholdInfo struct {
	Name              string `json:"name"`
	OwnerType         string `json:"ownerType"`
	CurrentTenure     string `json:"currentTenure"`
	MarketingContacts string `json:"marketingContacts"`
}

type ValuationInfo struct {
	Estimate     string    `json:"estimate"`
	EstimateJSON TextOrMap `json:"estimateJson"`
	Rental       string    `json:"rental"`
	RentalJSON   TextOrMap `json:"rentalJson"`
}

type SchoolGroups struct {
	InCatchment SchoolList `json:"inCatchment"`
	AllNearby   SchoolList `json:"allNearby"`
}

type School struct {
	Name       string           `json:"name"`
	Address    string           `json:"address"`
	Distance   string           `json:"distance"`
	Attributes SchoolAttributes `json:"attributes"`
}

type SchoolAttributes struct {
	Type        string `json:"type"`
	Sector      string `json:"sector"`
	Gender      string `json:"gender"`
	YearLevels  string `json:"year_levels"`
	Enrollments string `json:"enrollments"`
}

// TextOrMap is a field that arrives either as a JSON object or as opaque
// text. Exactly one representation is active; a parsed map wins over text.
type TextOrMap struct {
	Fields map[string]string
	Text   string
}

// TextValue wraps plain text.
func TextValue(s string) TextOrMap { return TextOrMap{Text: s} }

// MapValue wraps a parsed key/value mapping.
func MapValue(m map[string]string) TextOrMap { return TextOrMap{Fields: m} }

func (v TextOrMap) IsMap() bool { return v.Fields != nil }

func (v TextOrMap) MarshalJSON() ([]byte, error) {
	if v.Fields != nil {
		// Deterministic key order so round-trips are stable.
		keys := make([]string, 0, len(v.Fields))
		for k := range v.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			vb, err := json.Marshal(v.Fields[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			buf = append(buf, vb...)
		}
		return append(buf, '}'), nil
	}
	return json.Marshal(v.Text)
}

func (v *TextOrMap) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil {
		v.Fields = m
		v.Text = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("neither object nor string: %w", err)
	}
	v.Text = s
	v.Fields = nil
	return nil
}

// SchoolList is either a parsed list of schools or opaque text, mirroring
// TextOrMap for the schools fields.
type SchoolList struct {
	Schools []School
	Text    string
}

func (l SchoolList) IsList() bool { return l.Schools != nil }

func (l SchoolList) MarshalJSON() ([]byte, error) {
	if l.Schools != nil {
		return json.Marshal(l.Schools)
	}
	return json.Marshal(l.Text)
}

func (l *SchoolList) UnmarshalJSON(data []byte) error {
	var schools []School
	if err := json.Unmarshal(data, &schools); err == nil {
		l.Schools = schools
		if l.Schools == nil {
			l.Schools = []School{}
		}
		l.Text = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("neither list nor string: %w", err)
	}
	l.Text = s
	l.Schools = nil
	return nil
}

// SearchResult is the envelope every search returns; failures are encoded
// here rather than raised past the API boundary.
type SearchResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *PropertyRecord `json:"data"`
}

// MatchCandidate is a transient lookup result, never persisted.
type MatchCandidate struct {
	ID         int64
	URL        string
	Address    string
	Similarity float64
}
