package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/integrations"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
)

// store is an in-memory stand-in for every repository the services use.
type store struct {
	mu           sync.Mutex
	leases       map[uuid.UUID]models.Lease
	units        map[uuid.UUID]models.Unit
	props        map[uuid.UUID]models.Property
	tenants      map[uuid.UUID]models.Tenant
	notices      map[uuid.UUID]models.EvictionNotice
	departures   []models.TenantDeparture
	dispositions map[uuid.UUID]models.DepositDisposition
	checklists   map[uuid.UUID]models.UnitTurnoverChecklist
	history      []models.TenantHistory

	failDispositionCreate error
	failDepartureCreate   error
	failHistoryCreate     error
	seq                   int
}

func newStore() *store {
	return &store{
		leases:       map[uuid.UUID]models.Lease{},
		units:        map[uuid.UUID]models.Unit{},
		props:        map[uuid.UUID]models.Property{},
		tenants:      map[uuid.UUID]models.Tenant{},
		notices:      map[uuid.UUID]models.EvictionNotice{},
		dispositions: map[uuid.UUID]models.DepositDisposition{},
		checklists:   map[uuid.UUID]models.UnitTurnoverChecklist{},
	}
}

// tick hands out strictly increasing timestamps so "newest first" is stable.
func (s *store) tick() time.Time {
	s.seq++
	return time.Date(2024, 1, 1, 0, 0, s.seq, 0, time.UTC)
}

var tagOne = pgconn.CommandTag("UPDATE 1")

type fixture struct {
	store    *store
	landlord uuid.UUID
	tenant   models.Tenant
	unit     models.Unit
	lease    models.Lease
}

func newFixture() *fixture {
	st := newStore()
	landlord := uuid.New()
	prop := models.Property{ID: uuid.New(), ManagerID: &landlord, PropertyName: "Maple Court"}
	unit := models.Unit{ID: uuid.New(), PropertyID: prop.ID, UnitNumber: "2B"}
	unit.SetRowVersion(1)
	phone := "+15555550100"
	tenant := models.Tenant{ID: uuid.New(), FirstName: "Sam", LastName: "Rivera", Email: "sam@example.com", PhoneNumber: &phone}
	lease := models.Lease{
		ID:              uuid.New(),
		TenantID:        tenant.ID,
		UnitID:          unit.ID,
		StartDate:       time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		RentAmountCents: 150000,
		Status:          models.LeaseStatusActive,
	}
	lease.SetRowVersion(1)

	st.props[prop.ID] = prop
	st.units[unit.ID] = unit
	st.tenants[tenant.ID] = tenant
	st.leases[lease.ID] = lease
	return &fixture{store: st, landlord: landlord, tenant: tenant, unit: unit, lease: lease}
}

/* ---------- leases ---------- */

type fakeLeaseRepo struct{ s *store }

var _ repositories.LeaseRepository = fakeLeaseRepo{}

func (r fakeLeaseRepo) Create(_ context.Context, l *models.Lease) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.leases[l.ID] = *l
	return nil
}

func (r fakeLeaseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leases[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r fakeLeaseRepo) GetActiveByUnitID(_ context.Context, unitID uuid.UUID) (*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.leases {
		if l.UnitID == unitID && l.Status == models.LeaseStatusActive {
			return &l, nil
		}
	}
	return nil, nil
}

func (r fakeLeaseRepo) ListByUnitID(_ context.Context, unitID uuid.UUID) ([]*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.s.leases {
		if l.UnitID == unitID {
			l := l
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r fakeLeaseRepo) UpdateIfVersion(_ context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.leases[l.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	next := *l
	next.RowVersion = expected + 1
	r.s.leases[l.ID] = next
	return tagOne, nil
}

func (r fakeLeaseRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error {
	return repositories.WithRetry(ctx, 3, "fake", id, r.GetByID, r.UpdateIfVersion, mutate)
}

/* ---------- units / properties / tenants ---------- */

type fakeUnitRepo struct{ s *store }

func (r fakeUnitRepo) Create(_ context.Context, u *models.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.units[u.ID] = *u
	return nil
}

func (r fakeUnitRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.units[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r fakeUnitRepo) ListByPropertyID(_ context.Context, propID uuid.UUID) ([]*models.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Unit
	for _, u := range r.s.units {
		if u.PropertyID == propID {
			u := u
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r fakeUnitRepo) UpdateIfVersion(_ context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.units[u.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	next := *u
	next.RowVersion = expected + 1
	r.s.units[u.ID] = next
	return tagOne, nil
}

func (r fakeUnitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return repositories.WithRetry(ctx, 3, "fake", id, r.GetByID, r.UpdateIfVersion, mutate)
}

type fakePropertyRepo struct{ s *store }

func (r fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.props[p.ID] = *p
	return nil
}

func (r fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.props[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type fakeTenantRepo struct{ s *store }

func (r fakeTenantRepo) Create(_ context.Context, t *models.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tenants[t.ID] = *t
	return nil
}

func (r fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

/* ---------- eviction notices ---------- */

type fakeNoticeRepo struct{ s *store }

func (r fakeNoticeRepo) Create(_ context.Context, n *models.EvictionNotice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *n
	cp.RowVersion = 1
	r.s.notices[n.ID] = cp
	return nil
}

func (r fakeNoticeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.EvictionNotice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notices[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r fakeNoticeRepo) ListByLeaseID(_ context.Context, leaseID uuid.UUID) ([]*models.EvictionNotice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.EvictionNotice
	for _, n := range r.s.notices {
		if n.LeaseID == leaseID {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServeDate.After(out[j].ServeDate) })
	return out, nil
}

func (r fakeNoticeRepo) ListOverdue(_ context.Context, asOf time.Time) ([]*models.EvictionNotice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.EvictionNotice
	for _, n := range r.s.notices {
		open := n.Status == models.EvictionStatusServed || n.Status == models.EvictionStatusCurePeriod
		if open && n.DeadlineDate.Before(asOf) {
			n := n
			out = append(out, &n)
		}
	}
	return out, nil
}

func (r fakeNoticeRepo) UpdateIfVersion(_ context.Context, n *models.EvictionNotice, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.notices[n.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	next := *n
	next.RowVersion = expected + 1
	r.s.notices[n.ID] = next
	return tagOne, nil
}

func (r fakeNoticeRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.EvictionNotice) error) error {
	return repositories.WithRetry(ctx, 3, "fake", id, r.GetByID, r.UpdateIfVersion, mutate)
}

/* ---------- departures ---------- */

type fakeDepartureRepo struct{ s *store }

func (r fakeDepartureRepo) Create(_ context.Context, d *models.TenantDeparture) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failDepartureCreate != nil {
		return r.s.failDepartureCreate
	}
	r.s.departures = append(r.s.departures, *d)
	return nil
}

func (r fakeDepartureRepo) ListByLeaseID(_ context.Context, leaseID uuid.UUID) ([]*models.TenantDeparture, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.TenantDeparture
	for _, d := range r.s.departures {
		if d.LeaseID == leaseID {
			d := d
			out = append(out, &d)
		}
	}
	return out, nil
}

/* ---------- dispositions ---------- */

type fakeDispositionRepo struct{ s *store }

func (r fakeDispositionRepo) CreateWithDeductions(_ context.Context, d *models.DepositDisposition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failDispositionCreate != nil {
		return r.s.failDispositionCreate
	}
	cp := *d
	cp.Deductions = append([]models.DepositDeductionItem(nil), d.Deductions...)
	cp.RowVersion = 1
	cp.CreatedAt = r.s.tick()
	r.s.dispositions[d.ID] = cp
	return nil
}

func (r fakeDispositionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.DepositDisposition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.dispositions[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r fakeDispositionRepo) ListByLeaseID(_ context.Context, leaseID uuid.UUID) ([]*models.DepositDisposition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.DepositDisposition
	for _, d := range r.s.dispositions {
		if d.LeaseID == leaseID {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeDispositionRepo) UpdateIfVersion(_ context.Context, d *models.DepositDisposition, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.dispositions[d.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	next := *d
	next.RowVersion = expected + 1
	r.s.dispositions[d.ID] = next
	return tagOne, nil
}

func (r fakeDispositionRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.DepositDisposition) error) error {
	return repositories.WithRetry(ctx, 3, "fake", id, r.GetByID, r.UpdateIfVersion, mutate)
}

/* ---------- checklists / history ---------- */

type fakeChecklistRepo struct{ s *store }

func (r fakeChecklistRepo) Create(_ context.Context, c *models.UnitTurnoverChecklist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	cp.RowVersion = 1
	cp.CreatedAt = r.s.tick()
	r.s.checklists[c.ID] = cp
	return nil
}

func (r fakeChecklistRepo) GetByID(_ context.Context, id uuid.UUID) (*models.UnitTurnoverChecklist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.checklists[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r fakeChecklistRepo) latest(match func(models.UnitTurnoverChecklist) bool) *models.UnitTurnoverChecklist {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *models.UnitTurnoverChecklist
	for _, c := range r.s.checklists {
		if match(c) && (best == nil || c.CreatedAt.After(best.CreatedAt)) {
			c := c
			best = &c
		}
	}
	return best
}

func (r fakeChecklistRepo) GetByLeaseID(_ context.Context, leaseID uuid.UUID) (*models.UnitTurnoverChecklist, error) {
	return r.latest(func(c models.UnitTurnoverChecklist) bool { return c.LeaseID == leaseID }), nil
}

func (r fakeChecklistRepo) GetLatestByUnitID(_ context.Context, unitID uuid.UUID) (*models.UnitTurnoverChecklist, error) {
	return r.latest(func(c models.UnitTurnoverChecklist) bool { return c.UnitID == unitID }), nil
}

func (r fakeChecklistRepo) UpdateIfVersion(_ context.Context, c *models.UnitTurnoverChecklist, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.checklists[c.ID]
	if !ok || cur.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	next := *c
	next.RowVersion = expected + 1
	r.s.checklists[c.ID] = next
	return tagOne, nil
}

func (r fakeChecklistRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.UnitTurnoverChecklist) error) error {
	return repositories.WithRetry(ctx, 3, "fake", id, r.GetByID, r.UpdateIfVersion, mutate)
}

type fakeHistoryRepo struct{ s *store }

func (r fakeHistoryRepo) Create(_ context.Context, h *models.TenantHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failHistoryCreate != nil {
		return r.s.failHistoryCreate
	}
	r.s.history = append(r.s.history, *h)
	return nil
}

func (r fakeHistoryRepo) ListByTenantID(_ context.Context, tenantID uuid.UUID) ([]*models.TenantHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.TenantHistory
	for _, h := range r.s.history {
		if h.TenantID == tenantID {
			h := h
			out = append(out, &h)
		}
	}
	return out, nil
}

/* ---------- collaborators ---------- */

type fakeStorage struct {
	err       error
	lastKind  string
	lastName  string
	callCount int
}

func (f *fakeStorage) Upload(_ context.Context, _ []byte, fileName, kind string) (*integrations.StoredObject, error) {
	f.callCount++
	f.lastKind = kind
	f.lastName = fileName
	if f.err != nil {
		return nil, f.err
	}
	return &integrations.StoredObject{URL: "https://cdn.example.com/" + fileName, PublicID: "deposit-evidence/" + fileName}, nil
}

type fakeTransferer struct {
	mu     sync.Mutex
	err    error
	calls  []string
	amount int64
}

func (f *fakeTransferer) Transfer(_ context.Context, amount int64, dest, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dest+"|"+key)
	f.amount = amount
	if f.err != nil {
		return "", f.err
	}
	return "tr_123", nil
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []integrations.EmailMessage
}

func (f *fakeEmail) SendEmail(_ context.Context, m integrations.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeEmail) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSMS) SendSMS(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to+": "+body)
	return nil
}

func (f *fakeSMS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakePublisher) Publish(_ context.Context, _, routingKey string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, routingKey)
	return nil
}

func (f *fakePublisher) Close() {}

func (f *fakePublisher) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.keys {
		if k == key {
			return true
		}
	}
	return false
}

var errBoom = errors.New("boom")

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	*fixture
	storage *fakeStorage
	pay     *fakeTransferer
	email   *fakeEmail
	sms     *fakeSMS
	pub     *fakePublisher

	deposits    *DepositService
	evictions   *EvictionService
	departures  *DepartureService
	leases      *LeaseService
	turnover    *TurnoverService
	offboarding *OffboardingService
	access      *AccessService
}

func newHarness() *harness {
	f := newFixture()
	st := f.store
	leaseRepo := fakeLeaseRepo{st}
	unitRepo := fakeUnitRepo{st}
	propRepo := fakePropertyRepo{st}
	tenantRepo := fakeTenantRepo{st}
	noticeRepo := fakeNoticeRepo{st}
	dispRepo := fakeDispositionRepo{st}
	checkRepo := fakeChecklistRepo{st}

	h := &harness{
		fixture: f,
		storage: &fakeStorage{},
		pay:     &fakeTransferer{},
		email:   &fakeEmail{},
		sms:     &fakeSMS{},
		pub:     &fakePublisher{},
	}
	clock := func() time.Time { return fixedNow }

	h.deposits = NewDepositService(dispRepo, leaseRepo, unitRepo, propRepo, tenantRepo, h.storage, h.pay, h.email, h.pub)
	h.deposits.now = clock
	h.evictions = NewEvictionService(noticeRepo, leaseRepo, tenantRepo, h.sms, h.pub)
	h.evictions.now = clock
	h.departures = NewDepartureService(fakeDepartureRepo{st}, leaseRepo, noticeRepo)
	h.departures.now = clock
	h.leases = NewLeaseService(leaseRepo, unitRepo)
	h.leases.now = clock
	h.turnover = NewTurnoverService(checkRepo, unitRepo, nil)
	h.turnover.now = clock
	h.offboarding = NewOffboardingService(h.leases, h.departures, h.deposits, h.turnover,
		fakeHistoryRepo{st}, leaseRepo, unitRepo, propRepo, h.pub)
	h.offboarding.now = clock
	h.access = NewAccessService(leaseRepo, unitRepo, propRepo, noticeRepo, dispRepo, checkRepo)
	return h
}
