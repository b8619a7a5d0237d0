package services

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"rpp_scraper/models"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	multiSlashRe = regexp.MustCompile(`/{2,}`)
	distanceRe   = regexp.MustCompile(`(?i)(\d)\s*(km|m)\b`)
)

// CleanText sanitizes a scalar field: drops non-printable runes, collapses
// whitespace, trims, strips stray slashes at the ends and collapses
// duplicate slashes inside.
func CleanText(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	value = whitespaceRe.ReplaceAllString(b.String(), " ")
	value = strings.TrimSpace(value)
	value = strings.Trim(value, "/\\")
	value = multiSlashRe.ReplaceAllString(value, "/")
	// Slash trimming can expose fresh edge whitespace
	return strings.TrimSpace(value)
}

// CleanDistance is CleanText plus a space between a digit and a following
// km or m unit when missing, e.g. 0.82km becomes 0.82 km.
func CleanDistance(value string) string {
	value = CleanText(value)
	if value == "" {
		return value
	}
	return distanceRe.ReplaceAllString(value, "$1 $2")
}

// tryParseMap parses a JSON object into a cleaned string map. Returns
// false for empty input, parse failures or non-object JSON; callers fall
// back to treating the raw string as opaque text.
func tryParseMap(raw string) (map[string]string, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	var direct map[string]string
	if err := json.Unmarshal([]byte(raw), &direct); err == nil {
		cleaned := make(map[string]string, len(direct))
		for k, v := range direct {
			cleaned[CleanText(k)] = CleanText(v)
		}
		return cleaned, true
	}

	// Tolerate numeric and boolean values in stored JSON
	var loose map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return nil, false
	}
	cleaned := make(map[string]string, len(loose))
	for k, v := range loose {
		cleaned[CleanText(k)] = CleanText(stringifyScalar(v))
	}
	return cleaned, true
}

func stringifyScalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// textOrMap prefers the parsed-object representation and degrades to
// cleaned opaque text.
func textOrMap(raw string) models.TextOrMap {
	if m, ok := tryParseMap(raw); ok {
		return models.MapValue(m)
	}
	return models.TextValue(CleanText(raw))
}

// Transform builds the canonical PropertyRecord from a raw field mapping.
// Every output field is populated; a field whose source is missing or
// malformed degrades to an empty or text value instead of failing.
func Transform(id int64, raw models.RawRecord) *models.PropertyRecord {
	record := &models.PropertyRecord{
		ID:          id,
		PropertyURL: CleanText(raw.Get(models.RawPropertyURL)),
		Address:     CleanText(raw.Get(models.RawAddress)),
		Type:        CleanText(raw.Get(models.RawPropertyType)),
		Bedrooms:    CleanText(raw.Get(models.RawBedrooms)),
		Bathrooms:   CleanText(raw.Get(models.RawBathrooms)),
		CarSpaces:   CleanText(raw.Get(models.RawCarSpaces)),
		LandSize:    CleanText(raw.Get(models.RawLandSize)),
		FloorArea:   CleanText(raw.Get(models.RawFloorArea)),
		LastSold: models.LastSoldInfo{
			Price:  CleanText(raw.Get(models.RawLastSoldPrice)),
			Date:   CleanText(raw.Get(models.RawLastSoldDate)),
			SoldBy: CleanText(raw.Get(models.RawSoldBy)),
		},
		Sale: models.SaleInfo{
			LandUse:            CleanText(raw.Get(models.RawLandUse)),
			IssueDate:          CleanText(raw.Get(models.RawIssueDate)),
			AdvertisementDate:  CleanText(raw.Get(models.RawAdvertisementDate)),
			ListingDescription: CleanText(raw.Get(models.RawListingDescription)),
		},
		Agent: extractAgent(raw),
		Additional: models.AdditionalInfo{
			LegalDescription: textOrMap(raw.Get(models.RawLegalDescription)),
			Features:         textOrMap(raw.Get(models.RawPropertyFeatures)),
			LandValues:       textOrMap(raw.Get(models.RawLandValues)),
		},
		Household: extractHousehold(raw),
		Valuation: models.ValuationInfo{
			Estimate:     CleanText(raw.Get(models.RawValuationEstimate)),
			EstimateJSON: textOrMap(raw.Get(models.RawValuationEstimateJSON)),
			Rental:       CleanText(raw.Get(models.RawValuationRental)),
			RentalJSON:   textOrMap(raw.Get(models.RawValuationRentalJSON)),
		},
		Schools: models.SchoolGroups{
			InCatchment: parseSchools(raw.Get(models.RawSchoolsInCatchment)),
			AllNearby:   parseSchools(raw.Get(models.RawSchoolsAllNearby)),
		},
		History:   Reconcile(raw),
		ScrapedAt: CleanText(raw.Get(models.RawScrapingDate)),
	}
	return record
}

// extractAgent accepts a JSON list of agents (first wins), a JSON object,
// or discrete scalar fields, in that order of precedence.
func extractAgent(raw models.RawRecord) models.AgentInfo {
	agentJSON := raw.Get(models.RawAgentInfoJSON)

	var agent map[string]string
	if strings.TrimSpace(agentJSON) != "" {
		var list []map[string]string
		if err := json.Unmarshal([]byte(agentJSON), &list); err == nil && len(list) > 0 {
			agent = list[0]
		} else {
			var single map[string]string
			if err := json.Unmarshal([]byte(agentJSON), &single); err == nil {
				agent = single
			}
		}
	}

	if agent != nil {
		return models.AgentInfo{
			Agency: CleanText(agent["advertising_agency"]),
			Name:   CleanText(agent["advertising_agent"]),
			Phone:  CleanText(agent["agent_phone"]),
		}
	}

	return models.AgentInfo{
		Agency: CleanText(raw.Get(models.RawAdvertisingAgency)),
		Name:   CleanText(raw.Get(models.RawAdvertisingAgent)),
		Phone:  CleanText(raw.Get(models.RawAgentPhone)),
	}
}

// extractHousehold merges the owner-information JSON tab with the discrete
// scalar columns. JSON values win only when present and non-empty.
func extractHousehold(raw models.RawRecord) models.HouseholdInfo {
	info := models.HouseholdInfo{
		Name:          CleanText(raw.Get(models.RawOwnerName)),
		OwnerType:     CleanText(raw.Get(models.RawOwnerType)),
		CurrentTenure: CleanText(raw.Get(models.RawCurrentTenure)),
	}

	if owner, ok := tryParseMap(raw.Get(models.RawOwnerInfo)); ok {
		if v := owner["Name"]; v != "" {
			info.Name = v
		}
		if v := owner["Owner Type"]; v != "" {
			info.OwnerType = v
		}
		if v := owner["Current Tenure"]; v != "" {
			info.CurrentTenure = v
		}
	}

	contactsRaw := raw.Get(models.RawMarketingContacts)
	if strings.TrimSpace(contactsRaw) != "" {
		var parsed struct {
			Contacts []string `json:"Contacts"`
		}
		if err := json.Unmarshal([]byte(contactsRaw), &parsed); err == nil && len(parsed.Contacts) > 0 {
			cleaned := make([]string, 0, len(parsed.Contacts))
			for _, c := range parsed.Contacts {
				if c = CleanText(c); c != "" {
					cleaned = append(cleaned, c)
				}
			}
			info.MarketingContacts = strings.Join(cleaned, " • ")
		} else if !looksLikeJSON(contactsRaw) {
			info.MarketingContacts = CleanText(contactsRaw)
		}
	}

	return info
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// parseSchools parses a JSON array of school objects, skipping entries
// that are not objects. Anything else degrades to cleaned opaque text.
func parseSchools(raw string) models.SchoolList {
	if strings.TrimSpace(raw) == "" {
		return models.SchoolList{Text: ""}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return models.SchoolList{Text: CleanText(raw)}
	}

	schools := make([]models.School, 0, len(entries))
	for _, entry := range entries {
		var s struct {
			Name       string            `json:"name"`
			Address    string            `json:"address"`
			Distance   string            `json:"distance"`
			Attributes map[string]string `json:"attributes"`
		}
		if err := json.Unmarshal(entry, &s); err != nil {
			continue
		}
		schools = append(schools, models.School{
			Name:     CleanText(s.Name),
			Address:  CleanText(s.Address),
			Distance: CleanDistance(s.Distance),
			Attributes: models.SchoolAttributes{
				Type:        CleanText(s.Attributes["type"]),
				Sector:      CleanText(s.Attributes["sector"]),
				Gender:      CleanText(s.Attributes["gender"]),
				YearLevels:  CleanText(s.Attributes["year_levels"]),
				Enrollments: CleanText(s.Attributes["enrollments"]),
			},
		})
	}
	return models.SchoolList{Schools: schools}
}
