package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/repository"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/metrics"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func daysFromNow(days int) time.Time {
	return testNow.Add(time.Duration(days) * 24 * time.Hour)
}

// fakePassRepo is an in-memory PassRepository keeping insertion order
type fakePassRepo struct {
	mu            sync.Mutex
	passes        []*entity.PassRecord
	nextID        int
	queries       int
	deletes       int
	findErr       error
	createErr     error
	updateErr     error
	deleteErr     error
	failDeleteAt  int // 1-based delete call that fails with deleteErr; 0 fails every call
	transactional bool
	findByIDErr   error
	afterUpdate   func(p *entity.PassRecord) // runs on the stored document after each update
}

func newFakePassRepo(passes ...*entity.PassRecord) *fakePassRepo {
	r := &fakePassRepo{}
	for _, p := range passes {
		r.add(p)
	}
	return r
}

func (r *fakePassRepo) add(p *entity.PassRecord) {
	r.nextID++
	cp := *p
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("pass-%d", r.nextID)
	}
	r.passes = append(r.passes, &cp)
}

func (r *fakePassRepo) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.passes))
	for _, p := range r.passes {
		ids = append(ids, p.ID)
	}
	return ids
}

func (r *fakePassRepo) get(id string) *entity.PassRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.passes {
		if p.ID == id {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (r *fakePassRepo) FindByField(ctx context.Context, field, value string) ([]*entity.PassRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queries++
	if r.findErr != nil {
		return nil, r.findErr
	}

	var out []*entity.PassRecord
	for _, p := range r.passes {
		var v string
		switch field {
		case repository.FieldEmail:
			v = p.Email
		case repository.FieldPhone:
			v = p.Phone
		}
		if v == value {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePassRepo) FindByID(ctx context.Context, id string) (*entity.PassRecord, error) {
	if r.findByIDErr != nil {
		return nil, r.findByIDErr
	}
	if p := r.get(id); p != nil {
		return p, nil
	}
	return nil, repository.ErrPassNotFound
}

func (r *fakePassRepo) Create(ctx context.Context, pass *entity.PassRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return "", r.createErr
	}
	r.nextID++
	if pass.ID == "" {
		pass.ID = fmt.Sprintf("pass-%d", r.nextID)
	}
	cp := *pass
	r.passes = append(r.passes, &cp)
	return pass.ID, nil
}

func (r *fakePassRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	for _, p := range r.passes {
		if p.ID != id {
			continue
		}
		for k, v := range fields {
			switch k {
			case "usedTurfBookings":
				p.UsedTurfBookings = v.(int)
			case "usedDiningVouchers":
				p.UsedDiningVouchers = v.(int)
			case "status":
				p.Status = v.(entity.PassStatus)
			default:
				return fmt.Errorf("fake repo cannot update %q", k)
			}
		}
		if r.afterUpdate != nil {
			r.afterUpdate(p)
		}
		return nil
	}
	return repository.ErrPassNotFound
}

func (r *fakePassRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deletes++
	if r.deleteErr != nil && (r.failDeleteAt == 0 || r.failDeleteAt == r.deletes) {
		return r.deleteErr
	}
	for i, p := range r.passes {
		if p.ID == id {
			r.passes = append(r.passes[:i], r.passes[i+1:]...)
			return nil
		}
	}
	return repository.ErrPassNotFound
}

func (r *fakePassRepo) FindActiveExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.PassRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*entity.PassRecord
	for _, p := range r.passes {
		if p.Status == entity.PassStatusActive && !p.ExpiryDate.Before(from) && !p.ExpiryDate.After(to) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePassRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.transactional {
		return fn(ctx)
	}

	r.mu.Lock()
	snapshot := make([]*entity.PassRecord, len(r.passes))
	copy(snapshot, r.passes)
	r.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.mu.Lock()
		r.passes = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *fakePassRepo) Transactional() bool {
	return r.transactional
}

// fakeEventRepo collects ledger entries
type fakeEventRepo struct {
	mu     sync.Mutex
	events []*entity.PassEvent
	err    error
}

func (r *fakeEventRepo) Record(ctx context.Context, event *entity.PassEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = testNow
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) ListByPass(ctx context.Context, passID string) ([]*entity.PassEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.PassEvent
	for _, e := range r.events {
		if e.PassID == passID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) types() []entity.PassEventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.PassEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

// fakeNotifier records reminders and can fail
type fakeNotifier struct {
	channel entity.NotificationChannel
	sent    []*entity.PassReminder
	err     error
}

func (n *fakeNotifier) Channel() entity.NotificationChannel { return n.channel }

func (n *fakeNotifier) CanNotify(reminder *entity.PassReminder) bool {
	if n.channel == entity.ChannelEmail {
		return reminder.Email != ""
	}
	return reminder.Phone != ""
}

func (n *fakeNotifier) Send(ctx context.Context, reminder *entity.PassReminder) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, reminder)
	return nil
}

var errStoreDown = errors.New("store unavailable")

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics("test", prometheus.NewRegistry())
}

func newTestService(repo *fakePassRepo) (*PassService, *fakeEventRepo) {
	events := &fakeEventRepo{}
	svc := NewPassService(repo, events, newTestMetrics(), logger.NewNopLogger())
	svc.SetClock(func() time.Time { return testNow })
	return svc, events
}

func activePass(email, phone string, purchasedDaysAgo, expiresInDays int) *entity.PassRecord {
	return &entity.PassRecord{
		Email:               email,
		Phone:               phone,
		UserID:              "user-1",
		Name:                "Asha",
		PurchaseDate:        daysFromNow(-purchasedDaysAgo),
		ExpiryDate:          daysFromNow(expiresInDays),
		FreeTurfBookings:    2,
		TotalDiningVouchers: 2,
		DiscountPercentage:  15,
		Status:              entity.PassStatusActive,
	}
}

func expiredPass(email, phone string, purchasedDaysAgo int) *entity.PassRecord {
	p := activePass(email, phone, purchasedDaysAgo, 0)
	p.ExpiryDate = daysFromNow(-purchasedDaysAgo + 90)
	if !p.ExpiryDate.Before(testNow) {
		p.ExpiryDate = testNow.Add(-time.Hour)
	}
	return p
}
