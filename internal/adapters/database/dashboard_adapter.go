package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/healthatlas/facility-registry/internal/domain/repositories"
	"github.com/healthatlas/facility-registry/internal/infrastructure/clients/postgres"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

// DashboardAdapter implements the DashboardRepository interface
type DashboardAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDashboardAdapter creates a new dashboard adapter
func NewDashboardAdapter(client *postgres.Client) repositories.DashboardRepository {
	return &DashboardAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Summary runs the registry-wide aggregation queries.
func (a *DashboardAdapter) Summary(ctx context.Context) (*repositories.DashboardSummary, error) {
	summary := &repositories.DashboardSummary{}

	totals := []struct {
		table string
		dest  *int
	}{
		{"health_facilities", &summary.TotalFacilities},
		{"states", &summary.TotalStates},
		{"regions", &summary.TotalRegions},
		{"districts", &summary.TotalDistricts},
	}
	for _, t := range totals {
		if err := a.countTable(ctx, t.table, t.dest); err != nil {
			return nil, err
		}
	}

	missingQuery, missingArgs, err := a.db.Select(goqu.COUNT("*")).
		From("health_facilities").
		Where(goqu.Or(
			goqu.I("latitude").IsNull(),
			goqu.I("longitude").IsNull(),
		)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build missing-coordinates query", err)
	}
	if err := a.client.DB().QueryRowContext(ctx, missingQuery, missingArgs...).Scan(&summary.MissingCoordinates); err != nil {
		return nil, apperrors.NewInternalError("failed to count facilities missing coordinates", err)
	}

	if summary.ByFacilityType, err = a.groupByLookup(ctx, "facility_types", "facility_type_id"); err != nil {
		return nil, err
	}
	if summary.ByOwnership, err = a.groupByLookup(ctx, "ownerships", "ownership_id"); err != nil {
		return nil, err
	}
	if summary.ByOperationalStatus, err = a.groupByLookup(ctx, "operational_statuses", "operational_status_id"); err != nil {
		return nil, err
	}
	if summary.ByState, err = a.groupByState(ctx); err != nil {
		return nil, err
	}

	return summary, nil
}

func (a *DashboardAdapter) countTable(ctx context.Context, table string, dest *int) error {
	query, args, err := a.db.Select(goqu.COUNT("*")).From(table).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build count query", err)
	}
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(dest); err != nil {
		return apperrors.NewInternalError("failed to count "+table, err)
	}
	return nil
}

// groupByLookup counts facilities grouped by one of the flat lookups.
func (a *DashboardAdapter) groupByLookup(ctx context.Context, lookupTable, fkColumn string) ([]repositories.NameCount, error) {
	query, args, err := a.db.Select(
		goqu.I("l.name"),
		goqu.COUNT(goqu.I("f.id")).As("count"),
	).
		From(goqu.T(lookupTable).As("l")).
		LeftJoin(
			goqu.T("health_facilities").As("f"),
			goqu.On(goqu.I("f."+fkColumn).Eq(goqu.I("l.id"))),
		).
		GroupBy(goqu.I("l.name")).
		Order(goqu.I("count").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build group-by query", err)
	}
	return a.queryNameCounts(ctx, query, args)
}

// groupByState walks the facility -> district -> region -> state chain.
func (a *DashboardAdapter) groupByState(ctx context.Context) ([]repositories.NameCount, error) {
	query, args, err := a.db.Select(
		goqu.I("s.name"),
		goqu.COUNT(goqu.I("f.id")).As("count"),
	).
		From(goqu.T("states").As("s")).
		LeftJoin(goqu.T("regions").As("r"), goqu.On(goqu.I("r.state_id").Eq(goqu.I("s.id")))).
		LeftJoin(goqu.T("districts").As("d"), goqu.On(goqu.I("d.region_id").Eq(goqu.I("r.id")))).
		LeftJoin(goqu.T("health_facilities").As("f"), goqu.On(goqu.I("f.district_id").Eq(goqu.I("d.id")))).
		GroupBy(goqu.I("s.name")).
		Order(goqu.I("count").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build state group-by query", err)
	}
	return a.queryNameCounts(ctx, query, args)
}

func (a *DashboardAdapter) queryNameCounts(ctx context.Context, query string, args []any) ([]repositories.NameCount, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to run aggregation query", err)
	}
	defer rows.Close()

	counts := []repositories.NameCount{}
	for rows.Next() {
		var nc repositories.NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan aggregation row", err)
		}
		counts = append(counts, nc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating aggregation rows", err)
	}
	return counts, nil
}
