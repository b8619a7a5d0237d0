package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rpp_scraper/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			id BIGSERIAL PRIMARY KEY,
			property_url TEXT UNIQUE NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			property_type TEXT NOT NULL DEFAULT '',
			land_size TEXT NOT NULL DEFAULT '',
			floor_area TEXT NOT NULL DEFAULT '',
			bedrooms TEXT NOT NULL DEFAULT '',
			bathrooms TEXT NOT NULL DEFAULT '',
			car_spaces TEXT NOT NULL DEFAULT '',
			scraping_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS sale_rental_info (
			id BIGSERIAL PRIMARY KEY,
			property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			last_sold_price TEXT NOT NULL DEFAULT '',
			last_sold_date TEXT NOT NULL DEFAULT '',
			sold_by TEXT NOT NULL DEFAULT '',
			land_use TEXT NOT NULL DEFAULT '',
			issue_date TEXT NOT NULL DEFAULT '',
			advertisement_date TEXT NOT NULL DEFAULT '',
			listing_description TEXT NOT NULL DEFAULT '',
			advertising_agency TEXT NOT NULL DEFAULT '',
			advertising_agent TEXT NOT NULL DEFAULT '',
			agent_phone TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS additional_info (
			id BIGSERIAL PRIMARY KEY,
			property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			legal_description TEXT NOT NULL DEFAULT '',
			property_features TEXT NOT NULL DEFAULT '',
			land_values TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS household_info (
			id BIGSERIAL PRIMARY KEY,
			property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			owner_information TEXT NOT NULL DEFAULT '',
			marketing_contacts TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS nearby_schools (
			id BIGSERIAL PRIMARY KEY,
			property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			school_name TEXT NOT NULL DEFAULT '',
			school_address TEXT NOT NULL DEFAULT '',
			distance TEXT NOT NULL DEFAULT '',
			school_type TEXT NOT NULL DEFAULT '',
			school_sector TEXT NOT NULL DEFAULT '',
			school_gender TEXT NOT NULL DEFAULT '',
			year_levels TEXT NOT NULL DEFAULT '',
			enrollments TEXT NOT NULL DEFAULT '',
			catchment_status TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS property_history (
			id BIGSERIAL PRIMARY KEY,
			property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			history_type TEXT NOT NULL DEFAULT '',
			event_date TEXT NOT NULL DEFAULT '',
			event_description TEXT NOT NULL DEFAULT '',
			event_details TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS valuation_estimates (
			id BIGSERIAL PRIMARY KEY,
			property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			estimate_type TEXT NOT NULL DEFAULT '',
			confidence_level TEXT NOT NULL DEFAULT '',
			low_value TEXT NOT NULL DEFAULT '',
			estimate_value TEXT NOT NULL DEFAULT '',
			high_value TEXT NOT NULL DEFAULT '',
			rental_yield TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS property_attributes (
			id BIGSERIAL PRIMARY KEY,
			property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			attributes_json TEXT NOT NULL DEFAULT '{}'
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	// Optional trigram support; similarity queries fall back in process
	// when the extension is unavailable.
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pg_trgm`); err != nil {
		log.Printf("Warning: pg_trgm extension unavailable, similarity search will run in process: %v", err)
		return nil
	}
	if _, err := s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_properties_address_trgm ON properties USING gin (LOWER(address) gin_trgm_ops)`); err != nil {
		log.Printf("Warning: failed to create trigram index: %v", err)
	}
	return nil
}

// QueryMostSimilar asks Postgres for the stored address closest to the
// query using pg_trgm. Callers re-score the returned candidate; an error
// here means the capability is unavailable and the in-process fallback
// should run instead.
func (s *PostgresStore) QueryMostSimilar(ctx context.Context, address string) (*models.MatchCandidate, error) {
	query := `
		SELECT id, property_url, address, similarity(LOWER(address), LOWER($1)) AS score
		FROM properties
		ORDER BY score DESC
		LIMIT 1`

	var c models.MatchCandidate
	err := s.pool.QueryRow(ctx, query, address).Scan(&c.ID, &c.URL, &c.Address, &c.Similarity)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	return &c, nil
}

// ListAddresses returns every stored property address for in-process
// similarity scoring.
func (s *PostgresStore) ListAddresses(ctx context.Context) ([]models.MatchCandidate, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, property_url, address FROM properties`)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var candidates []models.MatchCandidate
	for rows.Next() {
		var c models.MatchCandidate
		if err := rows.Scan(&c.ID, &c.URL, &c.Address); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// ListStaleAddresses returns addresses whose data is older than the given
// age, oldest first.
func (s *PostgresStore) ListStaleAddresses(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	query := `
		SELECT address FROM properties
		WHERE scraping_date < NOW() - $1::interval AND address != ''
		ORDER BY scraping_date ASC
		LIMIT $2`

	interval := fmt.Sprintf("%d seconds", int64(olderThan.Seconds()))
	rows, err := s.pool.Query(ctx, query, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale addresses: %w", err)
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, err
		}
		addresses = append(addresses, address)
	}
	return addresses, rows.Err()
}

// WriteRecord upserts the main property row by URL and replaces every
// child fragment wholesale in one transaction.
func (s *PostgresStore) WriteRecord(ctx context.Context, raw models.RawRecord) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var propertyID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO properties (property_url, address, property_type, land_size, floor_area,
			bedrooms, bathrooms, car_spaces, scraping_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (property_url) DO UPDATE SET
			address = EXCLUDED.address,
			property_type = EXCLUDED.property_type,
			land_size = EXCLUDED.land_size,
			floor_area = EXCLUDED.floor_area,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			car_spaces = EXCLUDED.car_spaces,
			scraping_date = NOW(),
			updated_at = NOW()
		RETURNING id`,
		raw.Get(models.RawPropertyURL),
		raw.Get(models.RawAddress),
		raw.Get(models.RawPropertyType),
		raw.Get(models.RawLandSize),
		raw.Get(models.RawFloorArea),
		raw.Get(models.RawBedrooms),
		raw.Get(models.RawBathrooms),
		raw.Get(models.RawCarSpaces),
	).Scan(&propertyID)
	if err != nil {
		return 0, fmt.Errorf("upsert property: %w", err)
	}

	if err := s.writeSaleRental(ctx, tx, propertyID, raw); err != nil {
		return 0, err
	}
	if err := s.writeSchools(ctx, tx, propertyID, raw); err != nil {
		return 0, err
	}
	if err := s.writeHousehold(ctx, tx, propertyID, raw); err != nil {
		return 0, err
	}
	if err := s.writeAdditional(ctx, tx, propertyID, raw); err != nil {
		return 0, err
	}
	if err := s.writeAttributes(ctx, tx, propertyID, raw); err != nil {
		return 0, err
	}
	if err := s.writeHistory(ctx, tx, propertyID, raw); err != nil {
		return 0, err
	}
	if err := s.writeValuations(ctx, tx, propertyID, raw); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return propertyID, nil
}

func (s *PostgresStore) writeSaleRental(ctx context.Context, tx pgx.Tx, propertyID int64, raw models.RawRecord) error {
	fields := []string{
		models.RawLastSoldPrice, models.RawLastSoldDate, models.RawSoldBy,
		models.RawLandUse, models.RawIssueDate, models.RawAdvertisementDate,
		models.RawListingDescription,
	}
	hasData := false
	for _, f := range fields {
		if raw.Get(f) != "" {
			hasData = true
			break
		}
	}
	if !hasData {
		return nil
	}

	agency, agent, phone := agentColumns(raw.Get(models.RawAgentInfoJSON))

	if _, err := tx.Exec(ctx, `DELETE FROM sale_rental_info WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("clear sale_rental_info: %w", err)
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO sale_rental_info (property_id, last_sold_price, last_sold_date, sold_by, land_use,
			issue_date, advertisement_date, listing_description, advertising_agency,
			advertising_agent, agent_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		propertyID,
		raw.Get(models.RawLastSoldPrice),
		raw.Get(models.RawLastSoldDate),
		raw.Get(models.RawSoldBy),
		raw.Get(models.RawLandUse),
		raw.Get(models.RawIssueDate),
		raw.Get(models.RawAdvertisementDate),
		raw.Get(models.RawListingDescription),
		agency, agent, phone,
	)
	if err != nil {
		return fmt.Errorf("insert sale_rental_info: %w", err)
	}
	return nil
}

// agentColumns flattens the first agent out of the agent JSON for the
// sale_rental_info columns. Read-back reconstitutes the agent from these
// discrete columns.
func agentColumns(agentJSON string) (agency, agent, phone string) {
	if agentJSON == "" {
		return "", "", ""
	}

	pick := func(m map[string]string) {
		agency = m["advertising_agency"]
		agent = m["advertising_agent"]
		phone = m["agent_phone"]
	}

	var list []map[string]string
	if err := json.Unmarshal([]byte(agentJSON), &list); err == nil && len(list) > 0 {
		pick(list[0])
		return
	}
	var single map[string]string
	if err := json.Unmarshal([]byte(agentJSON), &single); err == nil {
		pick(single)
	}
	return
}

func (s *PostgresStore) writeSchools(ctx context.Context, tx pgx.Tx, propertyID int64, raw models.RawRecord) error {
	groups := []struct {
		key    string
		status string
	}{
		{models.RawSchoolsInCatchment, "In Catchment"},
		{models.RawSchoolsAllNearby, "All Nearby"},
	}

	for _, group := range groups {
		value := raw.Get(group.key)
		if value == "" {
			continue
		}

		var schools []schoolRow
		if err := json.Unmarshal([]byte(value), &schools); err != nil {
			// Plain-text placeholders are not persisted as school rows
			continue
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM nearby_schools WHERE property_id = $1 AND catchment_status = $2`,
			propertyID, group.status); err != nil {
			return fmt.Errorf("clear nearby_schools: %w", err)
		}

		for _, school := range schools {
			_, err := tx.Exec(ctx, `
				INSERT INTO nearby_schools (property_id, school_name, school_address, distance,
					school_type, school_sector, school_gender, year_levels, enrollments, catchment_status)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				propertyID, school.Name, school.Address, school.Distance,
				school.Attributes.Type, school.Attributes.Sector, school.Attributes.Gender,
				school.Attributes.YearLevels, school.Attributes.Enrollments, group.status,
			)
			if err != nil {
				return fmt.Errorf("insert nearby_schools: %w", err)
			}
		}
	}
	return nil
}

func (s *PostgresStore) writeHousehold(ctx context.Context, tx pgx.Tx, propertyID int64, raw models.RawRecord) error {
	owner := raw.Get(models.RawOwnerInfo)
	contacts := raw.Get(models.RawMarketingContacts)
	if owner == "" && contacts == "" {
		return nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM household_info WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("clear household_info: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO household_info (property_id, owner_information, marketing_contacts)
		VALUES ($1, $2, $3)`,
		propertyID, owner, contacts); err != nil {
		return fmt.Errorf("insert household_info: %w", err)
	}
	return nil
}

func (s *PostgresStore) writeAdditional(ctx context.Context, tx pgx.Tx, propertyID int64, raw models.RawRecord) error {
	legal := raw.Get(models.RawLegalDescription)
	features := raw.Get(models.RawPropertyFeatures)
	values := raw.Get(models.RawLandValues)
	if legal == "" && features == "" && values == "" {
		return nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM additional_info WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("clear additional_info: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO additional_info (property_id, legal_description, property_features, land_values)
		VALUES ($1, $2, $3, $4)`,
		propertyID, legal, features, values); err != nil {
		return fmt.Errorf("insert additional_info: %w", err)
	}
	return nil
}

func (s *PostgresStore) writeAttributes(ctx context.Context, tx pgx.Tx, propertyID int64, raw models.RawRecord) error {
	attrs := raw.Get(models.RawAttributesJSON)
	if attrs == "" {
		return nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM property_attributes WHERE property_id = $1`, propertyID); err != nil {
		return fmt.Errorf("clear property_attributes: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO property_attributes (property_id, attributes_json) VALUES ($1, $2)`,
		propertyID, attrs); err != nil {
		return fmt.Errorf("insert property_attributes: %w", err)
	}
	return nil
}

func (s *PostgresStore) writeHistory(ctx context.Context, tx pgx.Tx, propertyID int64, raw models.RawRecord) error {
	for _, group := range historyFieldTypes {
		value := raw.Get(group.key)
		if value == "" {
			continue
		}

		var payload struct {
			Events []models.HistoryEvent `json:"events"`
		}
		if err := json.Unmarshal([]byte(value), &payload); err != nil {
			log.Printf("Warning: skipping unparseable history field %s on write: %v", group.key, err)
			continue
		}
		if len(payload.Events) == 0 {
			continue
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM property_history WHERE property_id = $1 AND history_type = $2`,
			propertyID, group.historyType); err != nil {
			return fmt.Errorf("clear property_history: %w", err)
		}

		for _, event := range payload.Events {
			// Details round-trip as JSON text so read-back rebuilds the
			// identical list.
			details := ""
			if len(event.Details) > 0 {
				if encoded, err := json.Marshal(event.Details); err == nil {
					details = string(encoded)
				}
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO property_history (property_id, history_type, event_date, event_description, event_details)
				VALUES ($1, $2, $3, $4, $5)`,
				propertyID, group.historyType, event.Date, event.Description, details,
			); err != nil {
				return fmt.Errorf("insert property_history: %w", err)
			}
		}
	}
	return nil
}

func (s *PostgresStore) writeValuations(ctx context.Context, tx pgx.Tx, propertyID int64, raw models.RawRecord) error {
	groups := []struct {
		key          string
		estimateType string
	}{
		{models.RawValuationEstimateJSON, "Property Valuation"},
		{models.RawValuationRentalJSON, "Rental Estimate"},
	}

	for _, group := range groups {
		value := raw.Get(group.key)
		if value == "" {
			continue
		}

		var data map[string]string
		if err := json.Unmarshal([]byte(value), &data); err != nil || len(data) == 0 {
			continue
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM valuation_estimates WHERE property_id = $1 AND estimate_type = $2`,
			propertyID, group.estimateType); err != nil {
			return fmt.Errorf("clear valuation_estimates: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO valuation_estimates (property_id, estimate_type, confidence_level, low_value,
				estimate_value, high_value, rental_yield)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			propertyID, group.estimateType,
			data["confidence"], data["low_value"], data["estimate_value"],
			data["high_value"], data["rental_yield"],
		); err != nil {
			return fmt.Errorf("insert valuation_estimates: %w", err)
		}
	}
	return nil
}

// ReadFragments assembles the raw field mapping for a stored property so
// cache hits flow through the same transform as scraped data.
func (s *PostgresStore) ReadFragments(ctx context.Context, propertyID int64) (models.RawRecord, error) {
	return s.readRaw(ctx, propertyID)
}

// ReadBack re-reads a just-written property. Shares the assembly path with
// ReadFragments so both produce identical mappings.
func (s *PostgresStore) ReadBack(ctx context.Context, propertyID int64) (models.RawRecord, error) {
	return s.readRaw(ctx, propertyID)
}

func (s *PostgresStore) readRaw(ctx context.Context, propertyID int64) (models.RawRecord, error) {
	raw := models.RawRecord{}

	var scrapingDate time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT property_url, address, property_type, land_size, floor_area,
			bedrooms, bathrooms, car_spaces, scraping_date
		FROM properties WHERE id = $1`, propertyID,
	).Scan(
		&rawField{raw, models.RawPropertyURL}, &rawField{raw, models.RawAddress},
		&rawField{raw, models.RawPropertyType}, &rawField{raw, models.RawLandSize},
		&rawField{raw, models.RawFloorArea}, &rawField{raw, models.RawBedrooms},
		&rawField{raw, models.RawBathrooms}, &rawField{raw, models.RawCarSpaces},
		&scrapingDate,
	)
	if err != nil {
		return nil, fmt.Errorf("read property %d: %w", propertyID, err)
	}
	raw[models.RawScrapingDate] = scrapingDate.Format("2006-01-02 15:04:05")

	if err := s.readSaleRental(ctx, propertyID, raw); err != nil {
		return nil, err
	}
	if err := s.readAdditional(ctx, propertyID, raw); err != nil {
		return nil, err
	}
	if err := s.readHousehold(ctx, propertyID, raw); err != nil {
		return nil, err
	}
	if err := s.readAttributes(ctx, propertyID, raw); err != nil {
		return nil, err
	}
	if err := s.readSchools(ctx, propertyID, raw); err != nil {
		return nil, err
	}
	if err := s.readHistory(ctx, propertyID, raw); err != nil {
		return nil, err
	}
	if err := s.readValuations(ctx, propertyID, raw); err != nil {
		return nil, err
	}

	return raw, nil
}

// rawField scans a text column straight into a RawRecord key.
type rawField struct {
	raw models.RawRecord
	key string
}

func (f *rawField) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		f.raw[f.key] = v
	case []byte:
		f.raw[f.key] = string(v)
	case nil:
		f.raw[f.key] = ""
	default:
		return fmt.Errorf("unexpected type %T for %s", src, f.key)
	}
	return nil
}

func (s *PostgresStore) readSaleRental(ctx context.Context, propertyID int64, raw models.RawRecord) error {
	err := s.pool.QueryRow(ctx, `
		SELECT last_sold_price, last_sold_date, sold_by, land_use, issue_date,
			advertisement_date, listing_description, advertising_agency,
			advertising_agent, agent_phone
		FROM sale_rental_info WHERE property_id = $1 LIMIT 1`, propertyID,
	).Scan(
		&rawField{raw, models.RawLastSoldPrice}, &rawField{raw, models.RawLastSoldDate},
		&rawField{raw, models.RawSoldBy}, &rawField{raw, models.RawLandUse},
		&rawField{raw, models.RawIssueDate}, &rawField{raw, models.RawAdvertisementDate},
		&rawField{raw, models.RawListingDescription}, &rawField{raw, models.RawAdvertisingAgency},
		&rawField{raw, models.RawAdvertisingAgent}, &rawField{raw, models.RawAgentPhone},
	)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sale_rental_info: %w", err)
	}
	return nil
}

func (s *PostgresStore) readAdditional(ctx context.Context, propertyID int64, raw models.RawRecord) error {
	err := s.pool.QueryRow(ctx, `
		SELECT legal_description, property_features, land_values
		FROM additional_info WHERE property_id = $1 LIMIT 1`, propertyID,
	).Scan(
		&rawField{raw, models.RawLegalDescription},
		&rawField{raw, models.RawPropertyFeatures},
		&rawField{raw, models.RawLandValues},
	)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read additional_info: %w", err)
	}
	return nil
}

func (s *PostgresStore) readHousehold(ctx context.Context, propertyID int64, raw models.RawRecord) error {
	err := s.pool.QueryRow(ctx, `
		SELECT owner_information, marketing_contacts
		FROM household_info WHERE property_id = $1 LIMIT 1`, propertyID,
	).Scan(
		&rawField{raw, models.RawOwnerInfo},
		&rawField{raw, models.RawMarketingContacts},
	)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read household_info: %w", err)
	}
	return nil
}

func (s *PostgresStore) readAttributes(ctx context.Context, propertyID int64, raw models.RawRecord) error {
	err := s.pool.QueryRow(ctx, `
		SELECT attributes_json FROM property_attributes WHERE property_id = $1 LIMIT 1`, propertyID,
	).Scan(&rawField{raw, models.RawAttributesJSON})
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read property_attributes: %w", err)
	}
	return nil
}

func (s *PostgresStore) readSchools(ctx context.Context, propertyID int64, raw models.RawRecord) error {
	rows, err := s.pool.Query(ctx, `
		SELECT school_name, school_address, distance, school_type, school_sector,
			school_gender, year_levels, enrollments, catchment_status
		FROM nearby_schools WHERE property_id = $1 ORDER BY id`, propertyID)
	if err != nil {
		return fmt.Errorf("read nearby_schools: %w", err)
	}
	defer rows.Close()

	var schools []storedSchool
	for rows.Next() {
		var row storedSchool
		if err := rows.Scan(
			&row.Name, &row.Address, &row.Distance, &row.Type, &row.Sector,
			&row.Gender, &row.YearLevels, &row.Enrollments, &row.CatchmentStatus,
		); err != nil {
			return err
		}
		schools = append(schools, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	inCatchment, allNearby, err := assembleSchools(schools)
	if err != nil {
		return err
	}
	raw[models.RawSchoolsInCatchment] = inCatchment
	raw[models.RawSchoolsAllNearby] = allNearby
	return nil
}

func (s *PostgresStore) readHistory(ctx context.Context, propertyID int64, raw models.RawRecord) error {
	rows, err := s.pool.Query(ctx, `
		SELECT history_type, event_date, event_description, event_details
		FROM property_history WHERE property_id = $1 ORDER BY id`, propertyID)
	if err != nil {
		return fmt.Errorf("read property_history: %w", err)
	}
	defer rows.Close()

	var events []storedHistoryEvent
	for rows.Next() {
		var e storedHistoryEvent
		if err := rows.Scan(&e.HistoryType, &e.Date, &e.Description, &e.Details); err != nil {
			return err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	fields, err := assembleHistory(events)
	if err != nil {
		return err
	}
	for key, value := range fields {
		raw[key] = value
	}
	return nil
}

func (s *PostgresStore) readValuations(ctx context.Context, propertyID int64, raw models.RawRecord) error {
	rows, err := s.pool.Query(ctx, `
		SELECT estimate_type, confidence_level, low_value, estimate_value, high_value, rental_yield
		FROM valuation_estimates WHERE property_id = $1 ORDER BY id`, propertyID)
	if err != nil {
		return fmt.Errorf("read valuation_estimates: %w", err)
	}
	defer rows.Close()

	var estimates []storedValuation
	for rows.Next() {
		var v storedValuation
		if err := rows.Scan(&v.EstimateType, &v.Confidence, &v.LowValue, &v.EstimateValue, &v.HighValue, &v.RentalYield); err != nil {
			return err
		}
		estimates = append(estimates, v)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	fields, err := assembleValuations(estimates)
	if err != nil {
		return err
	}
	for key, value := range fields {
		raw[key] = value
	}
	return nil
}
