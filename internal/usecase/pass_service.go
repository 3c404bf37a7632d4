package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/repository"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/metrics"
)

var (
	ErrNoIdentity       = errors.New("email or phone is required")
	ErrNoActivePass     = errors.New("no active pass")
	ErrBenefitExhausted = errors.New("pass benefit exhausted")
	ErrDuplicatePass    = errors.New("an active pass already exists")
)

// DuplicateDateLayout formats the expiry date in duplicate messages
const DuplicateDateLayout = "02 Jan 2006"

// PassLookup is the outcome of resolving a pass: either a found pass or not found.
// The zero value is not found.
type PassLookup struct {
	pass *entity.PassRecord
}

// NotFound is the empty lookup result
var NotFound = PassLookup{}

// Found wraps a resolved pass
func Found(pass *entity.PassRecord) PassLookup {
	return PassLookup{pass: pass}
}

// Found reports whether a pass was resolved
func (l PassLookup) Found() bool {
	return l.pass != nil
}

// Pass returns a copy of the resolved pass
func (l PassLookup) Pass() (entity.PassRecord, bool) {
	if l.pass == nil {
		return entity.PassRecord{}, false
	}
	return *l.pass, true
}

// Active reports whether a pass was resolved and its computed status is active
func (l PassLookup) Active() bool {
	return l.pass != nil && l.pass.Status == entity.PassStatusActive
}

// MarshalJSON renders the pass, or null when not found
func (l PassLookup) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.pass)
}

// PassService resolves, reconciles, renews and consumes Ticpin passes
type PassService struct {
	passRepo  repository.PassRepository
	eventRepo repository.PassEventRepository
	metrics   *metrics.Metrics
	logger    logger.Logger
	now       func() time.Time
}

// NewPassService creates a pass service
func NewPassService(
	passRepo repository.PassRepository,
	eventRepo repository.PassEventRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *PassService {
	return &PassService{
		passRepo:  passRepo,
		eventRepo: eventRepo,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the time source
func (s *PassService) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the service's current time
func (s *PassService) Now() time.Time {
	return s.now()
}

// GetUserPass resolves the current pass of an identity. The first active candidate wins,
// email matches being scanned before phone matches. Without an active candidate the most
// recently purchased one is returned. Store failures yield NotFound with the error.
func (s *PassService) GetUserPass(ctx context.Context, email, phone string) (PassLookup, error) {
	defer s.observe("get_user_pass", time.Now())

	email, phone = normalizeIdentity(email, phone)
	if email == "" && phone == "" {
		s.metrics.PassLookups.WithLabelValues("not_found").Inc()
		return NotFound, nil
	}

	pass, err := s.resolve(ctx, email, phone)
	if err != nil {
		s.fail("get_user_pass", err, "email", email, "phone", phone)
		s.metrics.PassLookups.WithLabelValues("error").Inc()
		return NotFound, fmt.Errorf("failed to look up pass: %w", err)
	}

	if pass == nil {
		s.metrics.PassLookups.WithLabelValues("not_found").Inc()
		return NotFound, nil
	}

	s.metrics.PassLookups.WithLabelValues(string(pass.Status)).Inc()
	return Found(pass), nil
}

// CheckDuplicatePass reports whether the identity already holds an active pass.
// Expired and cancelled passes do not count.
func (s *PassService) CheckDuplicatePass(ctx context.Context, email, phone string) (entity.DuplicateCheck, error) {
	defer s.observe("check_duplicate_pass", time.Now())

	email, phone = normalizeIdentity(email, phone)
	candidates, err := s.candidates(ctx, email, phone)
	if err != nil {
		s.fail("check_duplicate_pass", err, "email", email, "phone", phone)
		return entity.DuplicateCheck{}, fmt.Errorf("failed to check duplicate pass: %w", err)
	}

	return duplicateIn(candidates, s.now()), nil
}

// CleanupDuplicatePasses deletes superseded pass documents of an identity and returns how many
// were deleted. Surplus active passes are removed keeping the first. When several inactive passes
// exist they are all removed if an active one survives, otherwise only the most recent is kept.
// On error the count of deletions already applied is returned alongside it.
func (s *PassService) CleanupDuplicatePasses(ctx context.Context, email, phone string) (int, error) {
	defer s.observe("cleanup_duplicate_passes", time.Now())

	email, phone = normalizeIdentity(email, phone)
	var deleted []*entity.PassRecord

	err := s.passRepo.WithTransaction(ctx, func(ctx context.Context) error {
		deleted = deleted[:0]

		candidates, err := s.candidates(ctx, email, phone)
		if err != nil {
			return err
		}

		for _, pass := range supersededPasses(dedupeByID(candidates), s.now()) {
			if err := s.passRepo.Delete(ctx, pass.ID); err != nil {
				if errors.Is(err, repository.ErrPassNotFound) {
					s.logger.Debug("Duplicate pass already gone", "passId", pass.ID)
					continue
				}
				return fmt.Errorf("failed to delete pass %s: %w", pass.ID, err)
			}
			deleted = append(deleted, pass)
		}
		return nil
	})

	if err != nil && s.passRepo.Transactional() {
		deleted = nil
	}

	for _, pass := range deleted {
		s.record(ctx, pass, entity.PassEventDuplicateDeleted, fmt.Sprintf("status=%s expiryDate=%s", pass.Status, pass.ExpiryDate.Format(time.RFC3339)))
	}
	s.metrics.DuplicatesDeleted.Add(float64(len(deleted)))

	if err != nil {
		s.fail("cleanup_duplicate_passes", err, "email", email, "phone", phone, "deleted", len(deleted))
		return len(deleted), fmt.Errorf("failed to clean up duplicate passes: %w", err)
	}

	if len(deleted) > 0 {
		s.logger.Info("Duplicate passes cleaned up", "email", email, "phone", phone, "deleted", len(deleted))
	}

	return len(deleted), nil
}

// RenewPass issues a fresh pass to an identity that already holds one, in any status.
// The previous document is left in place. Returns NotFound when there is nothing to renew.
func (s *PassService) RenewPass(ctx context.Context, email, userID string) (PassLookup, error) {
	defer s.observe("renew_pass", time.Now())

	email, _ = normalizeIdentity(email, "")
	userID = strings.TrimSpace(userID)
	if email == "" {
		return NotFound, nil
	}

	var renewed, previous *entity.PassRecord
	err := s.passRepo.WithTransaction(ctx, func(ctx context.Context) error {
		renewed, previous = nil, nil

		existing, err := s.resolve(ctx, email, "")
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}

		owner := userID
		if owner == "" {
			owner = existing.UserID
		}

		pass := newPass(entity.PurchaseRequest{
			Email:  email,
			Phone:  existing.Phone,
			UserID: owner,
			Name:   existing.Name,
		}, s.now())
		pass.RenewalCount = existing.RenewalCount + 1

		if _, err := s.passRepo.Create(ctx, pass); err != nil {
			return err
		}

		renewed, previous = pass, existing
		return nil
	})

	if err != nil {
		s.fail("renew_pass", err, "email", email, "userId", userID)
		return NotFound, fmt.Errorf("failed to renew pass: %w", err)
	}

	if renewed == nil {
		s.logger.Info("No pass to renew", "email", email)
		return NotFound, nil
	}

	s.metrics.PassesRenewed.Inc()
	s.record(ctx, renewed, entity.PassEventRenewed, fmt.Sprintf("previous=%s renewalCount=%d", previous.ID, renewed.RenewalCount))
	s.logger.Info("Pass renewed", "passId", renewed.ID, "previousPassId", previous.ID, "renewalCount", renewed.RenewalCount)

	return Found(renewed), nil
}

// PurchasePass issues a new pass unless the identity already holds an active one
func (s *PassService) PurchasePass(ctx context.Context, req entity.PurchaseRequest) (PassLookup, error) {
	defer s.observe("purchase_pass", time.Now())

	req.Email, req.Phone = normalizeIdentity(req.Email, req.Phone)
	if req.Email == "" && req.Phone == "" {
		return NotFound, ErrNoIdentity
	}

	var created *entity.PassRecord
	var duplicate entity.DuplicateCheck
	err := s.passRepo.WithTransaction(ctx, func(ctx context.Context) error {
		created = nil

		candidates, err := s.candidates(ctx, req.Email, req.Phone)
		if err != nil {
			return err
		}

		duplicate = duplicateIn(candidates, s.now())
		if duplicate.HasDuplicate {
			return nil
		}

		pass := newPass(req, s.now())
		if _, err := s.passRepo.Create(ctx, pass); err != nil {
			return err
		}
		created = pass
		return nil
	})

	if err != nil {
		s.fail("purchase_pass", err, "email", req.Email, "phone", req.Phone)
		return NotFound, fmt.Errorf("failed to purchase pass: %w", err)
	}

	if duplicate.HasDuplicate {
		return NotFound, fmt.Errorf("%w: %s", ErrDuplicatePass, duplicate.Message)
	}

	s.metrics.PassesPurchased.Inc()
	s.record(ctx, created, entity.PassEventPurchased, "")
	s.logger.Info("Pass purchased", "passId", created.ID, "email", req.Email, "phone", req.Phone)

	return Found(created), nil
}

// UseTurfBooking consumes one free turf booking of the active pass and returns how many remain
func (s *PassService) UseTurfBooking(ctx context.Context, email, phone string) (int, error) {
	return s.useBenefit(ctx, email, phone, benefitTurf)
}

// UseDiningVoucher consumes one dining voucher of the active pass and returns how many remain
func (s *PassService) UseDiningVoucher(ctx context.Context, email, phone string) (int, error) {
	return s.useBenefit(ctx, email, phone, benefitDining)
}

type benefitKind struct {
	name      string
	field     string
	event     entity.PassEventType
	remaining func(*entity.PassRecord) int
	used      func(*entity.PassRecord) int
}

var (
	benefitTurf = benefitKind{
		name:      "turf",
		field:     "usedTurfBookings",
		event:     entity.PassEventTurfUsed,
		remaining: (*entity.PassRecord).RemainingTurfBookings,
		used:      func(p *entity.PassRecord) int { return p.UsedTurfBookings },
	}
	benefitDining = benefitKind{
		name:      "dining",
		field:     "usedDiningVouchers",
		event:     entity.PassEventDiningUsed,
		remaining: (*entity.PassRecord).RemainingDiningVouchers,
		used:      func(p *entity.PassRecord) int { return p.UsedDiningVouchers },
	}
)

func (s *PassService) useBenefit(ctx context.Context, email, phone string, kind benefitKind) (int, error) {
	op := "use_" + kind.name
	defer s.observe(op, time.Now())

	lookup, err := s.GetUserPass(ctx, email, phone)
	if err != nil {
		return 0, err
	}
	if !lookup.Active() {
		return 0, ErrNoActivePass
	}

	pass := lookup.pass
	left := kind.remaining(pass)
	if left == 0 {
		return 0, ErrBenefitExhausted
	}

	if err := s.passRepo.Update(ctx, pass.ID, map[string]interface{}{kind.field: kind.used(pass) + 1}); err != nil {
		s.fail(op, err, "passId", pass.ID)
		return left, fmt.Errorf("failed to record %s usage: %w", kind.name, err)
	}

	left--
	if stored, err := s.passRepo.FindByID(ctx, pass.ID); err != nil {
		s.logger.Warn("Failed to re-read pass after usage", "passId", pass.ID, "error", err)
	} else {
		left = kind.remaining(stored)
	}

	s.metrics.BenefitsUsed.WithLabelValues(kind.name).Inc()
	s.record(ctx, pass, kind.event, fmt.Sprintf("remaining=%d", left))

	return left, nil
}

// GetRemainingFreeTurfBookings returns the unused free turf bookings of the active pass, 0 without one
func (s *PassService) GetRemainingFreeTurfBookings(ctx context.Context, email, phone string) (int, error) {
	lookup, err := s.GetUserPass(ctx, email, phone)
	if !lookup.Active() {
		return 0, err
	}
	return lookup.pass.RemainingTurfBookings(), err
}

// GetUserDiscount returns the discount percentage of the active pass, 0 without one
func (s *PassService) GetUserDiscount(ctx context.Context, email string) (int, error) {
	lookup, err := s.GetUserPass(ctx, email, "")
	if !lookup.Active() {
		return 0, err
	}
	return lookup.pass.DiscountPercentage, err
}

// HasActivePass reports whether the identity currently holds an active pass
func (s *PassService) HasActivePass(ctx context.Context, email string) (bool, error) {
	lookup, err := s.GetUserPass(ctx, email, "")
	return lookup.Active(), err
}

// ApplyPassDiscount prices a booking with the discount of the active pass
func (s *PassService) ApplyPassDiscount(ctx context.Context, email string, price float64) (float64, error) {
	discount, err := s.GetUserDiscount(ctx, email)
	if discount == 0 {
		return price, err
	}
	return CalculateDiscountedPrice(price, discount), err
}

// ApplyPassBenefit prices item with the active pass of email
func (s *PassService) ApplyPassBenefit(ctx context.Context, email string, item entity.BenefitItem) (entity.BenefitResult, error) {
	lookup, err := s.GetUserPass(ctx, email, "")
	return benefitFor(lookup.pass, item, s.now()), err
}

// GetPassSummary returns what checkout screens show for the identity's current pass
func (s *PassService) GetPassSummary(ctx context.Context, email, phone string) (entity.PassSummary, error) {
	lookup, err := s.GetUserPass(ctx, email, phone)
	return summaryFor(lookup.pass, s.now()), err
}

// candidates concatenates email matches and phone matches; a document may appear twice
func (s *PassService) candidates(ctx context.Context, email, phone string) ([]*entity.PassRecord, error) {
	return findCandidates(ctx, s.passRepo, email, phone)
}

func findCandidates(ctx context.Context, repo repository.PassRepository, email, phone string) ([]*entity.PassRecord, error) {
	var all []*entity.PassRecord

	if email != "" {
		byEmail, err := repo.FindByField(ctx, repository.FieldEmail, email)
		if err != nil {
			return nil, err
		}
		all = append(all, byEmail...)
	}

	if phone != "" {
		byPhone, err := repo.FindByField(ctx, repository.FieldPhone, phone)
		if err != nil {
			return nil, err
		}
		all = append(all, byPhone...)
	}

	return all, nil
}

// resolve applies lookup precedence over the identity's candidates; nil when there are none
func (s *PassService) resolve(ctx context.Context, email, phone string) (*entity.PassRecord, error) {
	candidates, err := s.candidates(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	return currentPass(candidates, s.now()), nil
}

func currentPass(candidates []*entity.PassRecord, now time.Time) *entity.PassRecord {
	var latest *entity.PassRecord
	for _, pass := range candidates {
		if pass.IsActiveAt(now) {
			return pass.WithStatusAt(now)
		}
		if latest == nil || pass.PurchaseDate.After(latest.PurchaseDate) {
			latest = pass
		}
	}

	if latest == nil {
		return nil
	}
	return latest.WithStatusAt(now)
}

func duplicateIn(candidates []*entity.PassRecord, now time.Time) entity.DuplicateCheck {
	for _, pass := range candidates {
		if pass.IsActiveAt(now) {
			return entity.DuplicateCheck{
				HasDuplicate:   true,
				ExistingPassID: pass.ID,
				Message: fmt.Sprintf("An active Ticpin Pass already exists until %s",
					pass.ExpiryDate.Format(DuplicateDateLayout)),
			}
		}
	}
	return entity.DuplicateCheck{HasDuplicate: false}
}

func dedupeByID(candidates []*entity.PassRecord) []*entity.PassRecord {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]*entity.PassRecord, 0, len(candidates))
	for _, pass := range candidates {
		if _, ok := seen[pass.ID]; ok {
			continue
		}
		seen[pass.ID] = struct{}{}
		unique = append(unique, pass)
	}
	return unique
}

// supersededPasses picks what cleanup deletes from an identity's unique passes
func supersededPasses(unique []*entity.PassRecord, now time.Time) []*entity.PassRecord {
	if len(unique) <= 1 {
		return nil
	}

	var active, inactive []*entity.PassRecord
	for _, pass := range unique {
		withStatus := pass.WithStatusAt(now)
		if withStatus.Status == entity.PassStatusActive {
			active = append(active, withStatus)
		} else {
			inactive = append(inactive, withStatus)
		}
	}

	var doomed []*entity.PassRecord
	if len(active) > 1 {
		doomed = append(doomed, active[1:]...)
	}

	if len(inactive) > 1 {
		if len(active) > 0 {
			doomed = append(doomed, inactive...)
		} else {
			sort.SliceStable(inactive, func(i, j int) bool {
				return inactive[i].PurchaseDate.After(inactive[j].PurchaseDate)
			})
			doomed = append(doomed, inactive[1:]...)
		}
	}

	return doomed
}

func newPass(req entity.PurchaseRequest, now time.Time) *entity.PassRecord {
	return &entity.PassRecord{
		Email:               req.Email,
		Phone:               req.Phone,
		UserID:              req.UserID,
		Name:                strings.TrimSpace(req.Name),
		PurchaseDate:        now,
		ExpiryDate:          now.Add(entity.PassValidity),
		FreeTurfBookings:    entity.PassFreeTurfBookings,
		UsedTurfBookings:    0,
		TotalDiningVouchers: entity.PassDiningVouchers,
		UsedDiningVouchers:  0,
		DiscountPercentage:  entity.PassDiscountPercentage,
		Status:              entity.PassStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func normalizeIdentity(email, phone string) (string, string) {
	return strings.TrimSpace(email), strings.TrimSpace(phone)
}

// record writes a ledger entry; ledger failures never fail the pass operation
func (s *PassService) record(ctx context.Context, pass *entity.PassRecord, eventType entity.PassEventType, detail string) {
	event := &entity.PassEvent{
		PassID:    pass.ID,
		EventType: eventType,
		Email:     pass.Email,
		Phone:     pass.Phone,
		Detail:    detail,
	}
	if err := s.eventRepo.Record(ctx, event); err != nil {
		s.logger.Warn("Failed to record pass event", "passId", pass.ID, "event", eventType, "error", err)
		s.metrics.ErrorsCount.WithLabelValues("record_event").Inc()
	}
}

func (s *PassService) observe(operation string, start time.Time) {
	s.metrics.OperationTime.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (s *PassService) fail(operation string, err error, keysAndValues ...interface{}) {
	s.metrics.ErrorsCount.WithLabelValues(operation).Inc()
	s.logger.Error("Pass operation failed", append([]interface{}{"operation", operation, "error", err}, keysAndValues...)...)
}
