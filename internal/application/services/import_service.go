package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
	"github.com/healthatlas/facility-registry/internal/importer"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

// ImportService runs the bulk facility import: parse the file, reconcile the
// lookup hierarchy against storage in dependency order, then insert or update
// facilities record by record with per-record skip reporting.
type ImportService struct {
	states        repositories.StateRepository
	regions       repositories.RegionRepository
	districts     repositories.DistrictRepository
	facilityTypes repositories.NamedLookupRepository
	ownerships    repositories.NamedLookupRepository
	statuses      repositories.NamedLookupRepository
	facilities    repositories.FacilityRepository
	batchSize     int
}

// NewImportService creates a new import service
func NewImportService(
	states repositories.StateRepository,
	regions repositories.RegionRepository,
	districts repositories.DistrictRepository,
	facilityTypes repositories.NamedLookupRepository,
	ownerships repositories.NamedLookupRepository,
	statuses repositories.NamedLookupRepository,
	facilities repositories.FacilityRepository,
	batchSize int,
) *ImportService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ImportService{
		states:        states,
		regions:       regions,
		districts:     districts,
		facilityTypes: facilityTypes,
		ownerships:    ownerships,
		statuses:      statuses,
		facilities:    facilities,
		batchSize:     batchSize,
	}
}

// ImportFile imports a file from a server-side path.
func (s *ImportService) ImportFile(ctx context.Context, path string, updateExisting bool) (*entities.ImportReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot open import file: %v", err))
	}
	defer file.Close()
	return s.ImportFromReader(ctx, file, updateExisting)
}

// ImportFromReader runs one synchronous import over the given file content.
// Row-level problems are recorded as skip reasons and never abort the run;
// storage-level failures abort it with a classified error.
func (s *ImportService) ImportFromReader(ctx context.Context, r io.Reader, updateExisting bool) (*entities.ImportReport, error) {
	runID := uuid.New().String()
	started := time.Now()

	records, err := importer.ParseRecords(r)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("failed to parse import file: %v", err))
	}

	log.Info().Str("import_run", runID).Int("records", len(records)).
		Bool("update_existing", updateExisting).Msg("starting facility import")

	staged := stageLookups(records)
	caches, err := s.reconcileLookups(ctx, runID, staged)
	if err != nil {
		return nil, err
	}

	report := &entities.ImportReport{
		States:              len(staged.states),
		Regions:             len(staged.regions),
		Districts:           len(staged.districts),
		FacilityTypes:       len(staged.facilityTypes),
		Ownerships:          len(staged.ownerships),
		OperationalStatuses: len(staged.statuses),
	}

	if err := s.reconcileFacilities(ctx, records, caches, updateExisting, report); err != nil {
		return nil, err
	}

	log.Info().Str("import_run", runID).
		Int("inserted", report.Inserted).Int("updated", report.Updated).
		Int("skipped", report.Skipped).Dur("elapsed", time.Since(started)).
		Msg("facility import finished")

	return report, nil
}

// lookupKey builds the composite cache key: trimmed parts joined with "|".
// Matching is exact and case-sensitive; the raw spreadsheet text is the
// identity of a lookup value.
func lookupKey(parts ...string) string {
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimSpace(p)
	}
	return strings.Join(trimmed, "|")
}

type stagedRegion struct {
	stateCode string
	name      string
}

type stagedDistrict struct {
	stateCode  string
	regionName string
	name       string
}

type stagedLookups struct {
	states        map[string]string         // code -> code
	regions       map[string]stagedRegion   // state|region
	districts     map[string]stagedDistrict // state|region|district
	facilityTypes map[string]string         // name -> name
	ownerships    map[string]string
	statuses      map[string]string
}

// stageLookups extracts the distinct lookup values from the parsed records in
// a single pass. A region is staged only when both its own value and its
// state are present; a district additionally needs its region.
func stageLookups(records []importer.FacilityRecord) *stagedLookups {
	staged := &stagedLookups{
		states:        map[string]string{},
		regions:       map[string]stagedRegion{},
		districts:     map[string]stagedDistrict{},
		facilityTypes: map[string]string{},
		ownerships:    map[string]string{},
		statuses:      map[string]string{},
	}

	for _, record := range records {
		state := strings.TrimSpace(record.State)
		region := strings.TrimSpace(record.Region)
		district := strings.TrimSpace(record.District)

		if state != "" {
			staged.states[state] = state
		}
		if state != "" && region != "" {
			staged.regions[lookupKey(state, region)] = stagedRegion{stateCode: state, name: region}
		}
		if state != "" && region != "" && district != "" {
			staged.districts[lookupKey(state, region, district)] = stagedDistrict{
				stateCode: state, regionName: region, name: district,
			}
		}

		for _, pair := range []struct {
			value string
			dest  map[string]string
		}{
			{record.FacilityType, staged.facilityTypes},
			{record.Ownership, staged.ownerships},
			{record.OperationalStatus, staged.statuses},
		} {
			if trimmed := strings.TrimSpace(pair.value); trimmed != "" {
				pair.dest[trimmed] = trimmed
			}
		}
	}

	return staged
}

// resolvedLookups maps composite keys to persisted rows with real IDs.
type resolvedLookups struct {
	states        map[string]*entities.State
	regions       map[string]*entities.Region
	districts     map[string]*entities.District
	facilityTypes map[string]*entities.LookupValue
	ownerships    map[string]*entities.LookupValue
	statuses      map[string]*entities.LookupValue
}

// reconcileLookups persists the staged lookups level by level, strictly
// parents before children, so every map value carries a committed identity
// before any facility references it.
func (s *ImportService) reconcileLookups(ctx context.Context, runID string, staged *stagedLookups) (*resolvedLookups, error) {
	resolved := &resolvedLookups{
		states:        map[string]*entities.State{},
		regions:       map[string]*entities.Region{},
		districts:     map[string]*entities.District{},
		facilityTypes: map[string]*entities.LookupValue{},
		ownerships:    map[string]*entities.LookupValue{},
		statuses:      map[string]*entities.LookupValue{},
	}

	for _, code := range sortedKeys(staged.states) {
		state, err := s.states.GetByCode(ctx, code)
		if apperrors.IsNotFound(err) {
			state = &entities.State{Code: code, Name: code, CreatedAt: time.Now().UTC()}
			if createErr := s.states.Create(ctx, state); createErr != nil {
				return nil, classifyLookupError("state", code, createErr)
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to look up state %q: %w", code, err)
		}
		resolved.states[code] = state
	}

	for _, key := range sortedKeys(staged.regions) {
		item := staged.regions[key]
		parent, ok := resolved.states[item.stateCode]
		if !ok {
			log.Warn().Str("import_run", runID).Str("region", item.name).
				Str("state", item.stateCode).Msg("skipping region with unresolved state")
			continue
		}
		region, err := s.regions.GetByStateAndName(ctx, parent.ID, item.name)
		if apperrors.IsNotFound(err) {
			region = &entities.Region{StateID: parent.ID, Name: item.name, CreatedAt: time.Now().UTC()}
			if createErr := s.regions.Create(ctx, region); createErr != nil {
				return nil, classifyLookupError("region", item.name, createErr)
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to look up region %q: %w", item.name, err)
		}
		resolved.regions[key] = region
	}

	for _, key := range sortedKeys(staged.districts) {
		item := staged.districts[key]
		parent, ok := resolved.regions[lookupKey(item.stateCode, item.regionName)]
		if !ok {
			log.Warn().Str("import_run", runID).Str("district", item.name).
				Str("region", item.regionName).Msg("skipping district with unresolved region")
			continue
		}
		district, err := s.districts.GetByRegionAndName(ctx, parent.ID, item.name)
		if apperrors.IsNotFound(err) {
			district = &entities.District{RegionID: parent.ID, Name: item.name, CreatedAt: time.Now().UTC()}
			if createErr := s.districts.Create(ctx, district); createErr != nil {
				return nil, classifyLookupError("district", item.name, createErr)
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to look up district %q: %w", item.name, err)
		}
		resolved.districts[key] = district
	}

	flat := []struct {
		label  string
		repo   repositories.NamedLookupRepository
		staged map[string]string
		dest   map[string]*entities.LookupValue
	}{
		{"facility type", s.facilityTypes, staged.facilityTypes, resolved.facilityTypes},
		{"ownership", s.ownerships, staged.ownerships, resolved.ownerships},
		{"operational status", s.statuses, staged.statuses, resolved.statuses},
	}
	for _, lookup := range flat {
		for _, name := range sortedKeys(lookup.staged) {
			value, err := lookup.repo.GetByName(ctx, name)
			if apperrors.IsNotFound(err) {
				value = &entities.LookupValue{Name: name, CreatedAt: time.Now().UTC()}
				if createErr := lookup.repo.Create(ctx, value); createErr != nil {
					return nil, classifyLookupError(lookup.label, name, createErr)
				}
			} else if err != nil {
				return nil, fmt.Errorf("failed to look up %s %q: %w", lookup.label, name, err)
			}
			lookup.dest[name] = value
		}
	}

	return resolved, nil
}

// reconcileFacilities walks the records in file order. Each record either
// joins the insert batch, updates an existing row (update mode), or is
// skipped with a reason; one bad record never aborts the run.
func (s *ImportService) reconcileFacilities(
	ctx context.Context,
	records []importer.FacilityRecord,
	caches *resolvedLookups,
	updateExisting bool,
	report *entities.ImportReport,
) error {
	processed := map[string]bool{}
	batch := make([]*entities.HealthFacility, 0, s.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.facilities.CreateBatch(ctx, batch); err != nil {
			return classifyFacilityError(err)
		}
		batch = batch[:0]
		return nil
	}

	for i := range records {
		record := &records[i]

		if record.ExternalID == "" {
			report.AddSkip(record.Identifier(), "external facility id is blank")
			continue
		}
		if processed[record.ExternalID] {
			report.AddSkip(record.Identifier(), "duplicate within file")
			continue
		}

		existing, err := s.facilities.GetByExternalID(ctx, record.ExternalID)
		switch {
		case err == nil && !updateExisting:
			report.AddSkip(record.Identifier(), "already exists")
			processed[record.ExternalID] = true
			continue
		case err != nil && !apperrors.IsNotFound(err):
			return classifyFacilityError(err)
		}

		district, skipReason := resolveDistrict(record, caches)
		if skipReason != "" {
			report.AddSkip(record.Identifier(), skipReason)
			continue
		}

		facilityType, skipReason := resolveFlat(record.FacilityType, "facility type", caches.facilityTypes)
		if skipReason != "" {
			report.AddSkip(record.Identifier(), skipReason)
			continue
		}
		ownership, skipReason := resolveFlat(record.Ownership, "ownership", caches.ownerships)
		if skipReason != "" {
			report.AddSkip(record.Identifier(), skipReason)
			continue
		}
		status, skipReason := resolveFlat(record.OperationalStatus, "operational status", caches.statuses)
		if skipReason != "" {
			report.AddSkip(record.Identifier(), skipReason)
			continue
		}

		now := time.Now().UTC()
		if existing != nil && updateExisting {
			applyRecord(existing, record, district.ID, facilityType.ID, ownership.ID, status.ID)
			existing.UpdatedAt = now
			if err := s.facilities.Update(ctx, existing); err != nil {
				return classifyFacilityError(err)
			}
			processed[record.ExternalID] = true
			report.Updated++
			continue
		}

		facility := &entities.HealthFacility{
			ExternalFacilityID: record.ExternalID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		applyRecord(facility, record, district.ID, facilityType.ID, ownership.ID, status.ID)

		batch = append(batch, facility)
		processed[record.ExternalID] = true
		report.Inserted++

		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// resolveDistrict resolves the record's geography chain against the
// reconciled maps, reporting which level failed.
func resolveDistrict(record *importer.FacilityRecord, caches *resolvedLookups) (*entities.District, string) {
	state := strings.TrimSpace(record.State)
	region := strings.TrimSpace(record.Region)
	district := strings.TrimSpace(record.District)

	if state == "" {
		return nil, "state is blank"
	}
	if _, ok := caches.states[state]; !ok {
		return nil, fmt.Sprintf("state %q not recognized", state)
	}
	if region == "" {
		return nil, "region is blank"
	}
	if _, ok := caches.regions[lookupKey(state, region)]; !ok {
		return nil, fmt.Sprintf("region %q not found in state %q", region, state)
	}
	if district == "" {
		return nil, "district is blank"
	}
	resolved, ok := caches.districts[lookupKey(state, region, district)]
	if !ok {
		return nil, fmt.Sprintf("district %q not found in region %q", district, region)
	}
	return resolved, ""
}

func resolveFlat(raw, label string, cache map[string]*entities.LookupValue) (*entities.LookupValue, string) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return nil, label + " is blank"
	}
	value, ok := cache[name]
	if !ok {
		return nil, fmt.Sprintf("%s %q not resolved", label, name)
	}
	return value, ""
}

// applyRecord overwrites every mutable field from the record's transformed
// values; shared by the insert and update paths.
func applyRecord(f *entities.HealthFacility, record *importer.FacilityRecord, districtID, typeID, ownershipID, statusID int64) {
	f.Name = record.FacilityName
	f.Latitude = importer.ParseLatitude(record.Latitude)
	f.Longitude = importer.ParseLongitude(record.Longitude)
	f.DistrictID = districtID
	f.FacilityTypeID = typeID
	f.OwnershipID = ownershipID
	f.OperationalStatusID = statusID
	f.InChargeName = importer.NormalizeFreeText(record.InChargeName)
	f.InChargeNumber = importer.NormalizePhone(record.InChargeNumber)
	for i := 0; i < entities.PartnerSlots; i++ {
		f.Partners[i] = entities.PartnerSupport{
			Name:    importer.NormalizeFreeText(record.Partners[i].Name),
			EndDate: importer.ParseDate(record.Partners[i].EndDate),
		}
	}
}

var varcharLimitPattern = regexp.MustCompile(`character varying\((\d+)\)`)

// classifyLookupError turns a storage failure while persisting a lookup
// value into a descriptive abort error naming the offending value.
func classifyLookupError(label, value string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "string_data_right_truncation" {
		msg := fmt.Sprintf("%s value %q exceeds the column length limit", label, value)
		if m := varcharLimitPattern.FindStringSubmatch(pqErr.Message); m != nil {
			msg = fmt.Sprintf("%s value %q exceeds the column length limit of %s characters", label, value, m[1])
		}
		return apperrors.NewValidationError(msg)
	}
	return apperrors.NewInternalError(fmt.Sprintf("failed to persist %s %q", label, value), err)
}

// classifyFacilityError maps a storage failure during the facility loop or a
// batch flush onto the error taxonomy: length overflow names the column
// limit, numeric overflow points at the coordinates, any other constraint
// violation is wrapped with the driver text.
func classifyFacilityError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "string_data_right_truncation":
			msg := "a facility field exceeds the column length limit"
			if m := varcharLimitPattern.FindStringSubmatch(pqErr.Message); m != nil {
				msg = fmt.Sprintf("a facility field exceeds the column length limit of %s characters", m[1])
			}
			return apperrors.NewValidationError(msg)
		case "numeric_value_out_of_range":
			return apperrors.NewValidationError("a numeric facility value is out of range, likely latitude or longitude precision")
		}
		if pqErr.Code.Class() == "23" {
			return apperrors.NewConflictError(fmt.Sprintf("facility batch violates a storage constraint: %s", pqErr.Message))
		}
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type != apperrors.ErrorTypeInternal {
		return err
	}
	return apperrors.NewInternalError("facility import failed", err)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
