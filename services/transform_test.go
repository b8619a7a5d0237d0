package services

import (
	"encoding/json"
	"testing"

	"rpp_scraper/models"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  200  George   Street ", "200 George Street"},
		{"value\x00with\acontrols", "valuewithcontrols"},
		{"/leading/and/trailing/", "leading/and/trailing"},
		{"a//b///c", "a/b/c"},
		{"\\backslashed\\", "backslashed"},
		{"/ a /", "a"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Fatalf("CleanText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{"  200  George   Street ", "a//b", "0.82km", "/ a /", "/ wrapped value /", "already clean"}
	for _, in := range inputs {
		once := CleanText(in)
		if twice := CleanText(once); twice != once {
			t.Fatalf("CleanText not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCleanDistance(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0.82km", "0.82 km"},
		{"1.5 M", "1.5 M"},
		{"2KM", "2 KM"},
		{"450m", "450 m"},
		{"  3.1  km ", "3.1 km"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanDistance(c.in); got != c.want {
			t.Fatalf("CleanDistance(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTransformScalars(t *testing.T) {
	raw := models.RawRecord{
		models.RawPropertyURL:  "https://rpp.corelogic.com.au/property/123  ",
		models.RawAddress:      "200  George Street Sydney  NSW 2000",
		models.RawPropertyType: "House",
		models.RawBedrooms:     "3",
		models.RawBathrooms:    "2",
		models.RawCarSpaces:    "1",
		models.RawLandSize:     "450 m2",
		models.RawScrapingDate: "2025-05-01 10:00:00",
	}

	record := Transform(42, raw)

	if record.ID != 42 {
		t.Fatalf("expected id 42, got %d", record.ID)
	}
	if record.Address != "200 George Street Sydney NSW 2000" {
		t.Fatalf("unexpected address: %q", record.Address)
	}
	if record.PropertyURL != "https://rpp.corelogic.com.au/property/123" {
		t.Fatalf("unexpected url: %q", record.PropertyURL)
	}
	if record.Bedrooms != "3" || record.Bathrooms != "2" || record.CarSpaces != "1" {
		t.Fatalf("unexpected counts: %s/%s/%s", record.Bedrooms, record.Bathrooms, record.CarSpaces)
	}
	if record.FloorArea != "" {
		t.Fatalf("missing field should be empty string, got %q", record.FloorArea)
	}
	if record.ScrapedAt != "2025-05-01 10:00:00" {
		t.Fatalf("unexpected scrapedAt: %q", record.ScrapedAt)
	}
}

func TestTransformAgentFromJSONList(t *testing.T) {
	raw := models.RawRecord{
		models.RawAgentInfoJSON: `[{"advertising_agency":"Ray White","advertising_agent":"Jane Smith","agent_phone":"0400 000 000"}]`,
	}

	record := Transform(0, raw)

	if record.Agent.Agency != "Ray White" || record.Agent.Name != "Jane Smith" || record.Agent.Phone != "0400 000 000" {
		t.Fatalf("unexpected agent: %+v", record.Agent)
	}
}

func TestTransformAgentFromJSONObject(t *testing.T) {
	raw := models.RawRecord{
		models.RawAgentInfoJSON: `{"advertising_agency":"LJ Hooker","advertising_agent":"Bob Jones","agent_phone":""}`,
	}

	record := Transform(0, raw)

	if record.Agent.Agency != "LJ Hooker" || record.Agent.Name != "Bob Jones" {
		t.Fatalf("unexpected agent: %+v", record.Agent)
	}
}

func TestTransformAgentDiscreteFallback(t *testing.T) {
	raw := models.RawRecord{
		models.RawAdvertisingAgency: "McGrath",
		models.RawAdvertisingAgent:  "Sam Lee",
		models.RawAgentPhone:        "0411 222 333",
	}

	record := Transform(0, raw)

	if record.Agent.Agency != "McGrath" || record.Agent.Name != "Sam Lee" || record.Agent.Phone != "0411 222 333" {
		t.Fatalf("unexpected agent: %+v", record.Agent)
	}
}

func TestTransformAdditionalInfoParsesObjects(t *testing.T) {
	raw := models.RawRecord{
		models.RawLegalDescription: `{"Lot":"12","Plan":"DP12345"}`,
		models.RawPropertyFeatures: "Pool, Garage",
	}

	record := Transform(0, raw)

	if !record.Additional.LegalDescription.IsMap() {
		t.Fatalf("expected parsed legal description map")
	}
	if record.Additional.LegalDescription.Fields["Lot"] != "12" {
		t.Fatalf("unexpected legal description: %+v", record.Additional.LegalDescription.Fields)
	}
	if record.Additional.Features.IsMap() {
		t.Fatalf("plain text features should stay text")
	}
	if record.Additional.Features.Text != "Pool, Garage" {
		t.Fatalf("unexpected features text: %q", record.Additional.Features.Text)
	}
}

func TestTransformHouseholdJSONPrecedence(t *testing.T) {
	raw := models.RawRecord{
		models.RawOwnerName:     "Fallback Name",
		models.RawOwnerType:     "Fallback Type",
		models.RawCurrentTenure: "Fallback Tenure",
		models.RawOwnerInfo:     `{"Name":"Withheld","Owner Type":"Owner Occupied","Current Tenure":"15 years"}`,
	}

	record := Transform(0, raw)

	if record.Household.Name != "Withheld" {
		t.Fatalf("JSON name should win, got %q", record.Household.Name)
	}
	if record.Household.OwnerType != "Owner Occupied" || record.Household.CurrentTenure != "15 years" {
		t.Fatalf("unexpected household: %+v", record.Household)
	}
}

func TestTransformHouseholdDiscreteFallback(t *testing.T) {
	raw := models.RawRecord{
		models.RawOwnerType: "Investor",
		models.RawOwnerInfo: `{"Name":""}`,
	}

	record := Transform(0, raw)

	if record.Household.OwnerType != "Investor" {
		t.Fatalf("empty JSON value should not override discrete field, got %q", record.Household.OwnerType)
	}
}

func TestTransformMarketingContactsJoined(t *testing.T) {
	raw := models.RawRecord{
		models.RawMarketingContacts: `{"Contacts":["Agent A 0400 111 222","Agent B 0400 333 444"]}`,
	}

	record := Transform(0, raw)

	want := "Agent A 0400 111 222 • Agent B 0400 333 444"
	if record.Household.MarketingContacts != want {
		t.Fatalf("unexpected contacts: %q", record.Household.MarketingContacts)
	}
}

func TestTransformSchoolsParsed(t *testing.T) {
	raw := models.RawRecord{
		models.RawSchoolsInCatchment: `[
			{"name":"Sydney Grammar","address":"College St","distance":"0.82km","attributes":{"type":"Combined","sector":"Non-government","gender":"Boys","year_levels":"K-12","enrollments":"1100"}},
			"not a school object"
		]`,
		models.RawSchoolsAllNearby: "No data available",
	}

	record := Transform(0, raw)

	in := record.Schools.InCatchment
	if !in.IsList() {
		t.Fatalf("expected parsed school list")
	}
	if len(in.Schools) != 1 {
		t.Fatalf("non-object entries should be skipped, got %d schools", len(in.Schools))
	}
	school := in.Schools[0]
	if school.Name != "Sydney Grammar" {
		t.Fatalf("unexpected school name: %q", school.Name)
	}
	if school.Distance != "0.82 km" {
		t.Fatalf("distance should be unit-spaced, got %q", school.Distance)
	}
	if school.Attributes.Sector != "Non-government" {
		t.Fatalf("unexpected attributes: %+v", school.Attributes)
	}

	if record.Schools.AllNearby.IsList() {
		t.Fatalf("non-JSON schools field should degrade to text")
	}
	if record.Schools.AllNearby.Text != "No data available" {
		t.Fatalf("unexpected fallback text: %q", record.Schools.AllNearby.Text)
	}
}

func TestTransformValuation(t *testing.T) {
	raw := models.RawRecord{
		models.RawValuationEstimate:     "$1.2M - $1.4M",
		models.RawValuationEstimateJSON: `{"confidence":"HIGH","low_value":"1200000","estimate_value":"1300000","high_value":"1400000"}`,
		models.RawValuationRentalJSON:   "not json at all",
	}

	record := Transform(0, raw)

	if record.Valuation.Estimate != "$1.2M - $1.4M" {
		t.Fatalf("unexpected estimate: %q", record.Valuation.Estimate)
	}
	if !record.Valuation.EstimateJSON.IsMap() {
		t.Fatalf("expected parsed estimate JSON")
	}
	if record.Valuation.EstimateJSON.Fields["confidence"] != "HIGH" {
		t.Fatalf("unexpected estimate JSON: %+v", record.Valuation.EstimateJSON.Fields)
	}
	if record.Valuation.RentalJSON.IsMap() {
		t.Fatalf("malformed JSON should degrade to text")
	}
	if record.Valuation.RentalJSON.Text != "not json at all" {
		t.Fatalf("unexpected rental fallback: %q", record.Valuation.RentalJSON.Text)
	}
}

// A record serialized and re-normalized through the same field names must
// be a fixed point of the transform.
func TestTransformRoundTripFixedPoint(t *testing.T) {
	raw := models.RawRecord{
		models.RawAddress:          "  200  George Street Sydney NSW 2000 ",
		models.RawPropertyType:     "House",
		models.RawLegalDescription: `{"Lot":"12"}`,
		models.RawHistorySale:      `{"events":[{"date":"01 May 2025","description":"Sold"}]}`,
	}

	first := Transform(0, raw)

	legal, err := json.Marshal(first.Additional.LegalDescription)
	if err != nil {
		t.Fatalf("marshal legal description: %v", err)
	}
	history, err := json.Marshal(first.History)
	if err != nil {
		t.Fatalf("marshal history: %v", err)
	}
	roundTrip := models.RawRecord{
		models.RawAddress:          first.Address,
		models.RawPropertyType:     first.Type,
		models.RawLegalDescription: string(legal),
		models.RawHistoryAll:       string(history),
	}

	second := Transform(0, roundTrip)

	if second.Address != first.Address || second.Type != first.Type {
		t.Fatalf("scalar fields drifted: %q vs %q", second.Address, first.Address)
	}
	if second.Additional.LegalDescription.Fields["Lot"] != "12" {
		t.Fatalf("legal description drifted: %+v", second.Additional.LegalDescription)
	}
	if second.History.TotalEvents != first.History.TotalEvents {
		t.Fatalf("history drifted: %d vs %d", second.History.TotalEvents, first.History.TotalEvents)
	}
	if len(second.History.EventsByType[models.EventTypeSale]) != 1 {
		t.Fatalf("sale events drifted: %+v", second.History.EventsByType)
	}
}
