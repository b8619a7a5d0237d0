package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"rpp_scraper/config"
	"rpp_scraper/models"
)

var (
	salePriceRe   = regexp.MustCompile(`\$([0-9,]+)`)
	saleDateRe    = regexp.MustCompile(`(\d{1,2} \w+ \d{4})`)
	rentalYieldRe = regexp.MustCompile(`(\d+\.?\d*%)`)
)

// RPPDriver drives the RP Data property portal through a real browser.
// One driver instance is one browser session; the controller creates a
// fresh one per attempt.
type RPPDriver struct {
	cfg     config.PortalConfig
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
}

// NewRPPDriver launches a fresh headless browser session.
func NewRPPDriver(cfg config.PortalConfig) (*RPPDriver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--window-size=1920,1080",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &RPPDriver{cfg: cfg, pw: pw, browser: browser, bctx: bctx, page: page}, nil
}

// NewDriverFactory returns a factory producing one fresh portal session
// per call.
func NewDriverFactory(cfg config.PortalConfig) DriverFactory {
	return func() (Driver, error) {
		return NewRPPDriver(cfg)
	}
}

func (d *RPPDriver) Close() error {
	if d.page != nil {
		d.page.Close()
		d.page = nil
	}
	if d.bctx != nil {
		d.bctx.Close()
		d.bctx = nil
	}
	if d.browser != nil {
		d.browser.Close()
		d.browser = nil
	}
	if d.pw != nil {
		d.pw.Stop()
		d.pw = nil
	}
	return nil
}

func (d *RPPDriver) CurrentURL() string {
	return d.page.URL()
}

// NavigateTo opens the portal and logs in when the sign-on form appears.
func (d *RPPDriver) NavigateTo(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(d.cfg.NavTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("portal navigation failed: %w", err)
	}
	d.stepDelay()

	username := d.page.Locator("#username")
	visible, _ := username.IsVisible()
	if !visible {
		// Already past the sign-on form
		return nil
	}

	if err := username.Fill(d.cfg.Username); err != nil {
		return fmt.Errorf("failed to enter username: %w", err)
	}
	if err := d.page.Locator("#password").Fill(d.cfg.Password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}
	if err := d.page.Locator("#signOnButton").Click(); err != nil {
		return fmt.Errorf("failed to click sign on: %w", err)
	}

	// The portal redirects to the dashboard after login
	d.page.WaitForTimeout(6000)
	log.Printf("Logged in, now at %s", d.page.URL())
	return nil
}

// SubmitAddress opens the locality search and types the address, returning
// the autocomplete suggestions in display order.
func (d *RPPDriver) SubmitAddress(ctx context.Context, address string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The search box hides behind the burger menu on the dashboard
	burger := d.page.Locator("button.rpd-burger-menu")
	if visible, _ := burger.IsVisible(); visible {
		if err := burger.Click(); err != nil {
			return nil, fmt.Errorf("failed to open burger menu: %w", err)
		}
		d.stepDelay()
	}

	search := d.page.Locator("#crux-multi-locality-search")
	if err := search.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(15000),
	}); err != nil {
		return nil, fmt.Errorf("locality search box never appeared: %w", err)
	}

	if err := search.Fill(address); err != nil {
		return nil, fmt.Errorf("failed to type address: %w", err)
	}
	d.stepDelay()

	options := d.page.Locator(".MuiAutocomplete-option, [role='option']")
	count, _ := options.Count()
	if count == 0 {
		// Click the box to force the dropdown open
		search.Click()
		d.stepDelay()
		count, _ = options.Count()
	}

	suggestions := make([]string, 0, count)
	for i := 0; i < count; i++ {
		text, err := options.Nth(i).InnerText()
		if err != nil {
			continue
		}
		suggestions = append(suggestions, strings.TrimSpace(text))
	}
	return suggestions, nil
}

func (d *RPPDriver) SelectSuggestion(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	option := d.page.Locator(".MuiAutocomplete-option, [role='option']").Nth(index)
	if err := option.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(10000)}); err != nil {
		return fmt.Errorf("failed to click suggestion %d: %w", index, err)
	}
	d.stepDelay()
	return nil
}

// WaitForResultsReady waits for the property view to render. The search
// runs automatically after a suggestion is selected.
func (d *RPPDriver) WaitForResultsReady(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	deadline := time.Now().Add(d.cfg.NavTimeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if visible, _ := d.page.Locator("#attr-single-line-address").IsVisible(); visible {
			return true, nil
		}
		// A "Results for" heading also counts as loaded; ambiguity is
		// the controller's call
		if visible, _ := d.resultsForHeading().IsVisible(); visible {
			return true, nil
		}
		d.page.WaitForTimeout(500)
	}
	return false, nil
}

func (d *RPPDriver) resultsForHeading() playwright.Locator {
	return d.page.Locator("xpath=//*[contains(text(), 'Results for')]").First()
}

// DetectAmbiguousResult reports whether the portal landed on a search
// listing instead of a resolved property.
func (d *RPPDriver) DetectAmbiguousResult(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	visible, err := d.resultsForHeading().IsVisible()
	if err != nil {
		return false, err
	}
	return visible, nil
}

// ExtractRawFields walks every data panel on the property page. A panel
// that fails to extract leaves its fields at their defaults; only the
// final mapping is returned.
func (d *RPPDriver) ExtractRawFields(ctx context.Context) (models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := models.RawRecord{
		models.RawPropertyURL:  d.page.URL(),
		models.RawScrapingDate: time.Now().Format("2006-01-02 15:04:05"),
	}

	d.extractBasics(raw)
	d.extractSaleDetails(raw)
	d.extractListingDescription(raw)
	d.extractAdditionalInfo(ctx, raw)
	d.extractHousehold(ctx, raw)
	d.extractValuations(ctx, raw)
	d.extractSchools(ctx, raw)
	d.extractHistory(ctx, raw)

	return raw, nil
}

// safeText returns the trimmed text of the first match, or "" when the
// element is missing.
func (d *RPPDriver) safeText(selector string) string {
	loc := d.page.Locator(selector).First()
	if visible, _ := loc.IsVisible(); !visible {
		return ""
	}
	text, err := loc.InnerText()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// attrValue reads the second span inside a property-attribute block, the
// portal's label/value layout. Missing attributes read as "-".
func (d *RPPDriver) attrValue(selector string) string {
	spans := d.page.Locator(selector + " span")
	count, _ := spans.Count()
	if count < 2 {
		return "-"
	}
	text, err := spans.Nth(1).InnerText()
	if err != nil {
		return "-"
	}
	if text = strings.TrimSpace(text); text == "" {
		return "-"
	}
	return text
}

func (d *RPPDriver) extractBasics(raw models.RawRecord) {
	address := d.safeText("#attr-single-line-address")
	if address == "" {
		for _, sel := range []string{"h1", ".property-address", "[data-testid='property-address']", ".address"} {
			if address = d.safeText(sel); address != "" {
				break
			}
		}
	}
	// The heading carries a trailing clipboard hint
	address = strings.TrimSpace(strings.TrimSuffix(address, "Copy"))
	raw[models.RawAddress] = address

	raw[models.RawBedrooms] = d.attrValue(`[data-testid="property-attr-bed"] .property-attribute-val`)
	raw[models.RawBathrooms] = d.attrValue(`[data-testid="property-attr-bath"] .property-attribute-val`)
	raw[models.RawCarSpaces] = d.attrValue(`[data-testid="property-attr-car"] .property-attribute-val`)
	raw[models.RawLandSize] = d.attrValue(`[data-testid="val-land-area"]`)
	raw[models.RawFloorArea] = d.attrValue(`[data-testid="val-floor-area"]`)
	raw[models.RawPropertyType] = d.safeText("#attr-property-type")

	attributes := map[string]string{
		"bedrooms":   raw[models.RawBedrooms],
		"bathrooms":  raw[models.RawBathrooms],
		"car_spaces": raw[models.RawCarSpaces],
		"land_size":  raw[models.RawLandSize],
		"floor_area": raw[models.RawFloorArea],
	}
	if encoded, err := json.Marshal(attributes); err == nil {
		raw[models.RawAttributesJSON] = string(encoded)
	}
}

func (d *RPPDriver) extractSaleDetails(raw models.RawRecord) {
	saleText := d.safeText(".sale-price")
	if saleText != "" {
		saleData := map[string]string{}
		if m := salePriceRe.FindStringSubmatch(saleText); m != nil {
			price := strings.ReplaceAll(m[1], ",", "")
			saleData["price"] = price
			raw[models.RawLastSoldPrice] = price
		}
		if m := saleDateRe.FindStringSubmatch(saleText); m != nil {
			saleData["date"] = m[1]
			raw[models.RawLastSoldDate] = m[1]
		}
		if len(saleData) > 0 {
			if encoded, err := json.Marshal(saleData); err == nil {
				raw[models.RawSaleInfoJSON] = string(encoded)
			}
		}
	}

	raw[models.RawSoldBy] = d.safeText(`[data-testid="sale-detail-sold-by"] .property-attribute-val`)
	raw[models.RawLandUse] = d.safeText(`[data-testid="sale-detail-land-use"] .property-attribute-val`)
	raw[models.RawIssueDate] = d.safeText(`[data-testid="sale-detail-issue-date"] .property-attribute-val`)
	raw[models.RawAdvertisementDate] = d.safeText(`[data-testid="sale-detail-advertisement-date"] .property-attribute-val`)
}

func (d *RPPDriver) extractListingDescription(raw models.RawRecord) {
	if adDate := d.safeText(`[data-testid="advertisement-date"] .attr-value`); adDate != "" {
		raw[models.RawAdvertisementDate] = adDate
	}
	raw[models.RawListingDescription] = d.safeText(`[data-testid="listing-desc"]`)

	// Agent details hide behind a Show More toggle
	showMore := d.page.Locator(`[data-testid="listing-description-panel"] a[href="#"]`).First()
	if visible, _ := showMore.IsVisible(); visible {
		if text, err := showMore.InnerText(); err == nil && strings.Contains(text, "Show More") {
			showMore.Click()
			d.stepDelay()
		}
	}

	html, err := d.page.Locator(`[data-testid="listing-description-panel"]`).First().InnerHTML()
	if err != nil {
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	labelKeys := map[string]string{
		"Advertising Agency": "advertising_agency",
		"Advertising Agent":  "advertising_agent",
		"Agent Phone Number": "agent_phone",
	}

	var agents []map[string]string
	doc.Find(".advertiser-list").Each(func(i int, list *goquery.Selection) {
		agent := map[string]string{}
		list.Find(".attr-label").Each(func(j int, label *goquery.Selection) {
			labelText := strings.TrimSpace(label.Text())
			for prefix, key := range labelKeys {
				if strings.Contains(labelText, prefix) {
					value := strings.TrimSpace(label.Parent().Find(".attr-value").First().Text())
					if value != "" {
						agent[key] = value
					}
				}
			}
		})
		if len(agent) > 0 {
			agents = append(agents, agent)
		}
	})

	if len(agents) > 0 {
		if encoded, err := json.Marshal(agents); err == nil {
			raw[models.RawAgentInfoJSON] = string(encoded)
		}
	}
}

// clickTab activates a crux tab menu entry by its display name.
func (d *RPPDriver) clickTab(name string) bool {
	tab := d.page.Locator(fmt.Sprintf(`[data-testid="crux-tab-menu-%s"]`, name))
	if visible, _ := tab.IsVisible(); !visible {
		return false
	}
	if err := tab.Click(); err != nil {
		return false
	}
	d.stepDelay()
	return true
}

// panelPairs parses a tab panel's label/value rows into a map.
func (d *RPPDriver) panelPairs(panelSelectors ...string) map[string]string {
	pairs := map[string]string{}
	for _, selector := range panelSelectors {
		loc := d.page.Locator(selector).First()
		if visible, _ := loc.IsVisible(); !visible {
			continue
		}
		html, err := loc.InnerHTML()
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}
		doc.Find(".flex-container, .legal-desc-row").Each(func(i int, row *goquery.Selection) {
			label := strings.TrimSpace(row.Find(".flex-label").First().Text())
			content := strings.TrimSpace(row.Find(".flex-content").First().Text())
			if label != "" && content != "" {
				pairs[label] = content
			}
		})
		if len(pairs) > 0 {
			break
		}
	}
	return pairs
}

func (d *RPPDriver) extractAdditionalInfo(ctx context.Context, raw models.RawRecord) {
	tabs := []struct {
		name  string
		key   string
		panel []string
	}{
		{"Legal Description", models.RawLegalDescription, []string{"#legal-description", ".tab-content"}},
		{"Property Features", models.RawPropertyFeatures, []string{"#property-features", ".tab-content"}},
		{"Land Values", models.RawLandValues, []string{"#land-values", ".tab-content"}},
	}

	for _, tab := range tabs {
		if ctx.Err() != nil {
			return
		}
		if !d.clickTab(tab.name) {
			raw[tab.key] = "Tab not available"
			continue
		}
		pairs := d.panelPairs(tab.panel...)
		if len(pairs) == 0 {
			raw[tab.key] = "Not available"
			continue
		}
		if encoded, err := json.Marshal(pairs); err == nil {
			raw[tab.key] = string(encoded)
		}
	}
}

func (d *RPPDriver) extractHousehold(ctx context.Context, raw models.RawRecord) {
	if ctx.Err() != nil {
		return
	}

	if d.clickTab("Owner Information") {
		owner := map[string]string{}
		if name := d.safeText(".owner-name-label + span span"); name != "" {
			owner["Name"] = name
			raw[models.RawOwnerName] = name
		}
		if tenure := d.safeText(".tenure"); tenure != "" {
			owner["Current Tenure"] = tenure
			raw[models.RawCurrentTenure] = tenure
		}
		if ownerType := d.safeText(".owner-type"); ownerType != "" {
			owner["Owner Type"] = ownerType
			raw[models.RawOwnerType] = ownerType
		}
		if len(owner) > 0 {
			if encoded, err := json.Marshal(owner); err == nil {
				raw[models.RawOwnerInfo] = string(encoded)
			}
		} else {
			raw[models.RawOwnerInfo] = "No data available"
		}
	} else {
		raw[models.RawOwnerInfo] = "Tab not available"
	}

	if d.clickTab("Marketing Contacts") {
		var contacts []string
		items := d.page.Locator(".tab-content p, .tab-content div")
		count, _ := items.Count()
		for i := 0; i < count; i++ {
			text, err := items.Nth(i).InnerText()
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if text != "" && text != "Marketing Contacts" {
				contacts = append(contacts, text)
			}
		}
		if len(contacts) > 0 {
			if encoded, err := json.Marshal(map[string][]string{"Contacts": contacts}); err == nil {
				raw[models.RawMarketingContacts] = string(encoded)
			}
		} else {
			raw[models.RawMarketingContacts] = "No data available"
		}
	} else {
		raw[models.RawMarketingContacts] = "Tab not available"
	}
}

func (d *RPPDriver) extractValuations(ctx context.Context, raw models.RawRecord) {
	tabs := []struct {
		name    string
		key     string
		jsonKey string
		rental  bool
	}{
		{"Valuation Estimate", models.RawValuationEstimate, models.RawValuationEstimateJSON, false},
		{"Rental Estimate", models.RawValuationRental, models.RawValuationRentalJSON, true},
	}

	for _, tab := range tabs {
		if ctx.Err() != nil {
			return
		}
		if !d.clickTab(tab.name) {
			raw[tab.key] = "Tab not available"
			continue
		}

		if errText := d.safeText(`[data-testid="avm-detail"] .error-fetching span`); errText != "" {
			raw[tab.key] = errText
			continue
		}

		data := map[string]string{}
		if confidence := d.safeText(`[data-testid="avm-detail"] .confidence`); confidence != "" {
			data["confidence"] = confidence
		}
		if tab.rental {
			if yieldText := d.safeText("#rental-avm-details"); yieldText != "" {
				if m := rentalYieldRe.FindStringSubmatch(yieldText); m != nil {
					data["rental_yield"] = m[1]
				}
			}
		}

		low := d.safeText(`[data-testid="avm-range"] .valuation-range-footer .flex-grow:first-child .author`)
		estimate := d.safeText(`[data-testid="avm-range"] .valuation-range-footer .flex-grow:nth-child(2) .legend .author`)
		high := d.safeText(`[data-testid="avm-range"] .valuation-range-footer .flex-grow:last-child .author`)

		if low == "" && estimate == "" && high == "" {
			if content := d.safeText(`[data-testid="avm-detail"]`); content != "" {
				raw[tab.key] = content
			} else {
				raw[tab.key] = "Not available"
			}
			continue
		}

		data["low_value"] = low
		data["estimate_value"] = estimate
		data["high_value"] = high

		var summary []string
		if low != "" {
			summary = append(summary, "Low: "+low)
		}
		if estimate != "" {
			summary = append(summary, "Estimate: "+estimate)
		}
		if high != "" {
			summary = append(summary, "High: "+high)
		}
		if y := data["rental_yield"]; y != "" {
			summary = append(summary, "Yield: "+y)
		}
		if c := data["confidence"]; c != "" {
			summary = append(summary, "Confidence: "+c)
		}
		raw[tab.key] = strings.Join(summary, " | ")

		if encoded, err := json.Marshal(data); err == nil {
			raw[tab.jsonKey] = string(encoded)
		}
	}
}

func (d *RPPDriver) extractSchools(ctx context.Context, raw models.RawRecord) {
	tabs := []struct {
		name string
		key  string
	}{
		{"In Catchment", models.RawSchoolsInCatchment},
		{"All Nearby", models.RawSchoolsAllNearby},
	}

	for _, tab := range tabs {
		if ctx.Err() != nil {
			return
		}
		if !d.clickTab(tab.name) {
			raw[tab.key] = "Tab not available"
			continue
		}

		if errText := d.safeText(`[data-testid="nearby-school-panel"] .error-fetching span`); errText != "" {
			raw[tab.key] = errText
			continue
		}

		// Scroll the list so lazily rendered rows materialize
		d.page.Evaluate(`() => {
			const el = document.querySelector('[data-testid="nearby-school-panel"] .simplebar-content');
			if (el) el.scrollTop = el.scrollHeight;
		}`)
		d.page.WaitForTimeout(1000)

		html, err := d.page.Locator(`[data-testid="nearby-school-panel"]`).First().InnerHTML()
		if err != nil {
			raw[tab.key] = "Not available"
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			raw[tab.key] = "Not available"
			continue
		}

		var schools []map[string]interface{}
		doc.Find(`ul.nearby-school-list-container li[data-testid="list-template"]`).Each(func(i int, item *goquery.Selection) {
			chip := func(testid string) string {
				return strings.TrimSpace(item.Find(fmt.Sprintf(`[data-testid="%s"] .MuiChip-label`, testid)).First().Text())
			}
			schools = append(schools, map[string]interface{}{
				"name":     strings.TrimSpace(item.Find(".school-name").First().Text()),
				"address":  strings.TrimSpace(item.Find(".place-address").First().Text()),
				"distance": strings.TrimSpace(item.Find(".school-distance").First().Text()),
				"attributes": map[string]string{
					"type":        chip("schoolType"),
					"sector":      chip("schoolSector"),
					"gender":      chip("schoolGender"),
					"year_levels": chip("schoolYearLevels"),
					"enrollments": chip("schoolEnrollments"),
				},
			})
		})

		if len(schools) == 0 {
			raw[tab.key] = "[]"
			continue
		}
		if encoded, err := json.Marshal(schools); err == nil {
			raw[tab.key] = string(encoded)
		}
	}
}

func (d *RPPDriver) extractHistory(ctx context.Context, raw models.RawRecord) {
	tabs := []struct {
		name string
		key  string
	}{
		{"All", models.RawHistoryAll},
		{"Sale", models.RawHistorySale},
		{"Rental", models.RawHistoryRental},
		{"Listing", models.RawHistoryListing},
		{"DA", models.RawHistoryDA},
	}

	for _, tab := range tabs {
		if ctx.Err() != nil {
			return
		}
		if !d.clickTimelineTab(tab.name) {
			continue
		}

		html, err := d.page.Locator(".property-timeline__timeline--tab-content, .timeline--tab-content").First().InnerHTML()
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}

		var events []models.HistoryEvent
		doc.Find("ul li").Each(func(i int, item *goquery.Selection) {
			event := models.HistoryEvent{
				Date:        strings.TrimSpace(item.Find(".date-circle .circle").First().Text()),
				Description: strings.TrimSpace(item.Find(".prop-info .heading").First().Text()),
			}
			item.Find(".prop-info .details").Each(func(j int, detail *goquery.Selection) {
				if text := strings.TrimSpace(detail.Text()); text != "" {
					event.Details = append(event.Details, text)
				}
			})
			if event.Date != "" || event.Description != "" {
				events = append(events, event)
			}
		})

		if len(events) == 0 {
			continue
		}
		payload := map[string]interface{}{"events": events}
		if encoded, err := json.Marshal(payload); err == nil {
			raw[tab.key] = string(encoded)
		}
	}
}

// clickTimelineTab activates a history timeline tab by its visible label.
func (d *RPPDriver) clickTimelineTab(name string) bool {
	selectors := []string{
		fmt.Sprintf(`xpath=//button[contains(text(), '%s')]`, name),
		fmt.Sprintf(`xpath=//div[@role='tab' and contains(text(), '%s')]`, name),
		fmt.Sprintf(`xpath=//div[contains(@class, 'timeline--tab') and contains(text(), '%s')]`, name),
	}
	for _, selector := range selectors {
		tab := d.page.Locator(selector).First()
		if visible, _ := tab.IsVisible(); !visible {
			continue
		}
		if err := tab.Click(); err != nil {
			continue
		}
		d.stepDelay()
		return true
	}
	return false
}

func (d *RPPDriver) stepDelay() {
	d.page.WaitForTimeout(float64(d.cfg.StepDelayMS))
}
