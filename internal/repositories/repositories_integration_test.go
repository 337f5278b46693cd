//go:build integration

package repositories

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to TEST_DB_URL with a throwaway schema holding the
// migrated tables.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DB_URL")
	if dbURL == "" {
		t.Skip("TEST_DB_URL not set")
	}
	ctx := context.Background()

	schema := "it_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	admin, err := pgxpool.Connect(ctx, dbURL)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(dbURL)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	require.NoError(t, err)

	ddl, err := os.ReadFile("../../migrations/0001_tenancy_lifecycle.up.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(ddl))
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})
	return pool
}

type seeded struct {
	landlord uuid.UUID
	property *models.Property
	unit     *models.Unit
	tenant   *models.Tenant
	lease    *models.Lease
}

func seed(t *testing.T, db DB) seeded {
	t.Helper()
	ctx := context.Background()
	landlord := uuid.New()

	prop := &models.Property{ID: uuid.New(), ManagerID: &landlord, PropertyName: "Maple Court", Address: "1 Main St"}
	require.NoError(t, NewPropertyRepository(db).Create(ctx, prop))

	unit := &models.Unit{ID: uuid.New(), PropertyID: prop.ID, UnitNumber: "2B"}
	require.NoError(t, NewUnitRepository(db).Create(ctx, unit))

	tenant := &models.Tenant{ID: uuid.New(), FirstName: "Sam", LastName: "Rivera", Email: "sam@example.com"}
	require.NoError(t, NewTenantRepository(db).Create(ctx, tenant))

	lease := &models.Lease{
		ID:              uuid.New(),
		TenantID:        tenant.ID,
		UnitID:          unit.ID,
		StartDate:       time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		RentAmountCents: 150000,
		Status:          models.LeaseStatusActive,
	}
	require.NoError(t, NewLeaseRepository(db).Create(ctx, lease))

	return seeded{landlord: landlord, property: prop, unit: unit, tenant: tenant, lease: lease}
}

func TestLeaseRepository_OneActiveLeasePerUnit(t *testing.T) {
	pool := newTestPool(t)
	s := seed(t, pool)
	ctx := context.Background()
	repo := NewLeaseRepository(pool)

	active, err := repo.GetActiveByUnitID(ctx, s.unit.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, s.lease.ID, active.ID)

	second := &models.Lease{
		ID: uuid.New(), TenantID: s.tenant.ID, UnitID: s.unit.ID,
		StartDate: time.Now().UTC(), RentAmountCents: 1, Status: models.LeaseStatusActive,
	}
	assert.Error(t, repo.Create(ctx, second), "partial unique index must reject a second ACTIVE lease")

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLeaseRepository_UpdateIfVersionRejectsStaleVersion(t *testing.T) {
	pool := newTestPool(t)
	s := seed(t, pool)
	ctx := context.Background()
	repo := NewLeaseRepository(pool)

	require.NoError(t, repo.UpdateWithRetry(ctx, s.lease.ID, func(l *models.Lease) error {
		l.Status = models.LeaseStatusTerminated
		l.TerminationReason = utils.Ptr("Lease term ended")
		l.TerminatedAt = utils.Ptr(time.Now().UTC())
		return nil
	}))

	got, err := repo.GetByID(ctx, s.lease.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusTerminated, got.Status)
	assert.Equal(t, int64(2), got.RowVersion)

	tag, err := repo.UpdateIfVersion(ctx, got, 1)
	require.NoError(t, err)
	assert.Zero(t, tag.RowsAffected())
}

func TestDepositDispositionRepository_RoundTripsDeductions(t *testing.T) {
	pool := newTestPool(t)
	s := seed(t, pool)
	ctx := context.Background()
	repo := NewDepositDispositionRepository(pool)

	d := &models.DepositDisposition{
		ID:                   uuid.New(),
		LeaseID:              s.lease.ID,
		TenantID:             s.tenant.ID,
		LandlordID:           s.landlord,
		OriginalAmountCents:  150000,
		TotalDeductionsCents: 35000,
		RefundAmountCents:    115000,
		RefundMethod:         models.RefundMethodCheck,
		RefundStatus:         models.RefundStatusPending,
	}
	for i, amt := range []int64{25000, 10000} {
		item := models.DepositDeductionItem{
			ID:            uuid.New(),
			DispositionID: d.ID,
			Category:      models.DeductionCategoryDamages,
			AmountCents:   amt,
			Description:   fmt.Sprintf("item %d", i),
		}
		if i == 0 {
			item.EvidenceURLs = []string{"https://res.cloudinary.com/demo/image/upload/wall.jpg"}
		}
		d.Deductions = append(d.Deductions, item)
	}
	require.NoError(t, repo.CreateWithDeductions(ctx, d))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(115000), got.RefundAmountCents)
	require.Len(t, got.Deductions, 2)

	var withEvidence int
	for _, it := range got.Deductions {
		assert.NotNil(t, it.EvidenceURLs)
		withEvidence += len(it.EvidenceURLs)
	}
	assert.Equal(t, 1, withEvidence)

	list, err := repo.ListByLeaseID(ctx, s.lease.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Deductions, 2)
}

func TestDepositDispositionRepository_FailedItemRollsBackDisposition(t *testing.T) {
	pool := newTestPool(t)
	s := seed(t, pool)
	ctx := context.Background()
	repo := NewDepositDispositionRepository(pool)

	d := &models.DepositDisposition{
		ID:                  uuid.New(),
		LeaseID:             s.lease.ID,
		TenantID:            s.tenant.ID,
		LandlordID:          s.landlord,
		OriginalAmountCents: 1000,
		RefundAmountCents:   1000,
		RefundMethod:        models.RefundMethodCash,
		RefundStatus:        models.RefundStatusPending,
		Deductions: []models.DepositDeductionItem{
			// amount_cents > 0 is enforced by the table.
			{ID: uuid.New(), Category: models.DeductionCategoryOther, AmountCents: 0, Description: "bad"},
		},
	}
	require.Error(t, repo.CreateWithDeductions(ctx, d))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEvictionNoticeRepository_ListOverdue(t *testing.T) {
	pool := newTestPool(t)
	s := seed(t, pool)
	ctx := context.Background()
	repo := NewEvictionNoticeRepository(pool)

	mk := func(serve time.Time, status models.EvictionStatus) *models.EvictionNotice {
		deadline, err := models.CalculateDeadlineDate(serve, models.NoticeType3Day)
		require.NoError(t, err)
		n := &models.EvictionNotice{
			ID: uuid.New(), LeaseID: s.lease.ID, NoticeType: models.NoticeType3Day,
			Status: status, ServeDate: serve, DeadlineDate: deadline, Reason: "Unpaid rent",
		}
		require.NoError(t, repo.Create(ctx, n))
		return n
	}
	overdue := mk(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), models.EvictionStatusServed)
	mk(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), models.EvictionStatusCured)
	mk(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), models.EvictionStatusServed)

	got, err := repo.ListOverdue(ctx, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, overdue.ID, got[0].ID)

	all, err := repo.ListByLeaseID(ctx, s.lease.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTenantHistoryRepository_CreateAndList(t *testing.T) {
	pool := newTestPool(t)
	s := seed(t, pool)
	ctx := context.Background()
	repo := NewTenantHistoryRepository(pool)

	require.NoError(t, repo.Create(ctx, &models.TenantHistory{
		ID:            uuid.New(),
		TenantID:      s.tenant.ID,
		LeaseID:       s.lease.ID,
		UnitID:        s.unit.ID,
		LandlordID:    &s.landlord,
		DepartureType: models.DepartureTypeLeaseEnd,
		MoveInDate:    s.lease.StartDate,
		MoveOutDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Outcome:       "SUCCESS",
	}))

	list, err := repo.ListByTenantID(ctx, s.tenant.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "SUCCESS", list[0].Outcome)
}
