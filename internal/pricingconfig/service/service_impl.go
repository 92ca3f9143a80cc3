package service

import (
	"context"
	"strings"

	"github.com/aulapay/aulapay/internal/clock"
	obsmetrics "github.com/aulapay/aulapay/internal/observability/metrics"
	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    pricingconfigdomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    pricingconfigdomain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) pricingconfigdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("pricingconfig.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context) (*pricingconfigdomain.PricingConfig, error) {
	cfg, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, pricingconfigdomain.ErrNotFound
	}
	return cfg, nil
}

func (s *Service) Update(ctx context.Context, req pricingconfigdomain.UpdateRequest) (*pricingconfigdomain.UpdateResponse, error) {
	adminID := strings.TrimSpace(req.AdminID)
	if adminID == "" {
		return nil, pricingconfigdomain.ErrAdminRequired
	}

	cfg, err := s.repo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, pricingconfigdomain.ErrNotFound
	}

	diff := newFieldDiff()
	if err := diff.apply(cfg, req.Changes); err != nil {
		return nil, err
	}
	if len(diff.changes) == 0 {
		return nil, pricingconfigdomain.ErrNothingToUpdate
	}

	now := s.clock.Now()
	cfg.UpdatedAt = now

	change := &pricingconfigdomain.ConfigChange{
		ID:        s.genID.Generate(),
		ConfigID:  cfg.ID,
		AdminID:   adminID,
		Reason:    trimReason(req.Reason),
		Before:    diff.before,
		After:     diff.after,
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Save(ctx, tx, cfg); err != nil {
			return err
		}
		return s.repo.AppendChange(ctx, tx, change)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordConfigUpdate(ctx, int64(len(diff.changes)))
	s.log.Info("pricing configuration updated",
		zap.String("admin_id", adminID),
		zap.Int("fields", len(diff.changes)),
	)

	return &pricingconfigdomain.UpdateResponse{
		Config:  *cfg,
		Changes: diff.changes,
	}, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]pricingconfigdomain.ConfigChange, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.ListChanges(ctx, s.db, limit)
}

type fieldDiff struct {
	changes []pricingconfigdomain.FieldChange
	before  datatypes.JSONMap
	after   datatypes.JSONMap
}

func newFieldDiff() *fieldDiff {
	return &fieldDiff{
		before: datatypes.JSONMap{},
		after:  datatypes.JSONMap{},
	}
}

func (d *fieldDiff) record(field string, oldValue, newValue any) {
	d.changes = append(d.changes, pricingconfigdomain.FieldChange{Field: field, Old: oldValue, New: newValue})
	d.before[field] = oldValue
	d.after[field] = newValue
}

func (d *fieldDiff) apply(cfg *pricingconfigdomain.PricingConfig, u pricingconfigdomain.FieldUpdates) error {
	if err := d.amount("club_price", &cfg.ClubPrice, u.ClubPrice); err != nil {
		return err
	}
	if err := d.amount("specialized_course_price", &cfg.SpecializedCoursePrice, u.SpecializedCoursePrice); err != nil {
		return err
	}
	if err := d.amount("multiple_activities_price", &cfg.MultipleActivitiesPrice, u.MultipleActivitiesPrice); err != nil {
		return err
	}
	if err := d.amount("siblings_basic_price", &cfg.SiblingsBasicPrice, u.SiblingsBasicPrice); err != nil {
		return err
	}
	if err := d.amount("siblings_multiple_price", &cfg.SiblingsMultiplePrice, u.SiblingsMultiplePrice); err != nil {
		return err
	}

	if u.CertificationDiscountPercent != nil {
		pct := *u.CertificationDiscountPercent
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return pricingconfigdomain.ErrInvalidPercent
		}
		if !cfg.CertificationDiscountPercent.Equal(pct) {
			d.record("certification_discount_percent", cfg.CertificationDiscountPercent.String(), pct.String())
			cfg.CertificationDiscountPercent = pct
		}
	}
	if u.CertificationDiscountActive != nil && *u.CertificationDiscountActive != cfg.CertificationDiscountActive {
		d.record("certification_discount_active", cfg.CertificationDiscountActive, *u.CertificationDiscountActive)
		cfg.CertificationDiscountActive = *u.CertificationDiscountActive
	}

	if u.PaymentDueDay != nil {
		day := *u.PaymentDueDay
		if day < 1 || day > 31 {
			return pricingconfigdomain.ErrInvalidDueDay
		}
		if day != cfg.PaymentDueDay {
			d.record("payment_due_day", cfg.PaymentDueDay, day)
			cfg.PaymentDueDay = day
		}
	}
	if u.ReminderLeadDays != nil {
		days := *u.ReminderLeadDays
		if days < 0 || days > 30 {
			return pricingconfigdomain.ErrInvalidReminderDays
		}
		if days != cfg.ReminderLeadDays {
			d.record("reminder_lead_days", cfg.ReminderLeadDays, days)
			cfg.ReminderLeadDays = days
		}
	}
	if u.NotificationsEnabled != nil && *u.NotificationsEnabled != cfg.NotificationsEnabled {
		d.record("notifications_enabled", cfg.NotificationsEnabled, *u.NotificationsEnabled)
		cfg.NotificationsEnabled = *u.NotificationsEnabled
	}

	return nil
}

func (d *fieldDiff) amount(field string, current *decimal.Decimal, update *decimal.Decimal) error {
	if update == nil {
		return nil
	}
	if update.IsNegative() {
		return pricingconfigdomain.ErrInvalidAmount
	}
	if current.Equal(*update) {
		return nil
	}
	d.record(field, current.String(), update.String())
	*current = *update
	return nil
}

func trimReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
