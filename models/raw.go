package models

// RawRecord is the loosely-typed field set produced by extraction and by the
// storage read-back path. Values are plain text or JSON-encoded sub-documents;
// the transform service is the only consumer that interprets them.
type RawRecord map[string]string

// Raw field keys shared between the portal driver, the store and the
// transform service.
const (
	RawPropertyURL  = "Property_URL"
	RawAddress      = "Address"
	RawPropertyType = "Property_Type"
	RawBedrooms     = "Bedrooms"
	RawBathrooms    = "Bathrooms"
	RawCarSpaces    = "Car_Spaces"
	RawLandSize     = "Land_Size"
	RawFloorArea    = "Floor_Area"

	RawLastSoldPrice      = "Last_Sold_Price"
	RawLastSoldDate       = "Last_Sold_Date"
	RawSoldBy             = "Sold_By"
	RawLandUse            = "Land_Use"
	RawIssueDate          = "Issue_Date"
	RawAdvertisementDate  = "Advertisement_Date"
	RawListingDescription = "Listing_Description"

	RawAgentInfoJSON     = "Advertising_Agent_Info_JSON"
	RawAdvertisingAgency = "Advertising_Agency"
	RawAdvertisingAgent  = "Advertising_Agent"
	RawAgentPhone        = "Agent_Phone"

	RawOwnerName         = "Owner_Name"
	RawOwnerType         = "Owner_Type"
	RawCurrentTenure     = "Current_Tenure"
	RawOwnerInfo         = "Household_Information_Owner_Information"
	RawMarketingContacts = "Household_Information_Marketing_Contacts"

	RawLegalDescription = "Additional_Information_Legal_Description"
	RawPropertyFeatures = "Additional_Information_Property_Features"
	RawLandValues       = "Additional_Information_Land_Values"

	RawValuationEstimate     = "Valuation_Estimate_Estimate"
	RawValuationEstimateJSON = "Valuation_Estimate_Estimate_JSON"
	RawValuationRental       = "Valuation_Estimate_Rental"
	RawValuationRentalJSON   = "Valuation_Estimate_Rental_JSON"

	RawSchoolsInCatchment = "Nearby_Schools_In_Catchment"
	RawSchoolsAllNearby   = "Nearby_Schools_All_Nearby"

	RawAttributesJSON = "Property_Attributes_JSON"
	RawSaleInfoJSON   = "Sale_Information_JSON"

	RawHistoryAll     = "Property_History_All"
	RawHistorySale    = "Property_History_Sale"
	RawHistoryListing = "Property_History_Listing"
	RawHistoryRental  = "Property_History_Rental"
	RawHistoryDA      = "Property_History_DA"

	RawScrapingDate = "Scraping_Date"
)

// Get returns the value for key, or "" when absent.
func (r RawRecord) Get(key string) string {
	if r == nil {
		return ""
	}
	return r[key]
}
