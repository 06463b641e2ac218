package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-portal-api/internal/academic"
	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
)

type configurationRepository interface {
	ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error)
	Get(ctx context.Context, key string) (*models.Configuration, error)
	UpsertMany(ctx context.Context, cfgs []models.Configuration) error
}

type configurationAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

var calendarConfigKeys = []string{
	models.ConfigKeyFirstSemStart,
	models.ConfigKeySecondSemStart,
	models.ConfigKeySFCTotalFee,
	models.ConfigKeyNonSFCTotalFee,
}

// ConfigurationService owns the admin-configured calendar anchors and fee
// policy. Reads serve a cached snapshot that is invalidated on every admin
// write, never on a timer, so a configuration change is visible immediately.
type ConfigurationService struct {
	repo      configurationRepository
	audit     configurationAuditLogger
	validator *validator.Validate
	logger    *zap.Logger

	mu       sync.RWMutex
	snapshot *configSnapshot
}

type configSnapshot struct {
	calendar academic.CalendarConfig
	fees     academic.FeePolicy
}

// NewConfigurationService constructs a ConfigurationService.
func NewConfigurationService(repo configurationRepository, audit configurationAuditLogger, validate *validator.Validate, logger *zap.Logger) *ConfigurationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigurationService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Calendar returns the effective semester anchors, falling back to the
// defaults for anything unset or malformed.
func (s *ConfigurationService) Calendar(ctx context.Context) (academic.CalendarConfig, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return academic.CalendarConfig{}, err
	}
	return snap.calendar, nil
}

// FeePolicy returns the effective fee totals.
func (s *ConfigurationService) FeePolicy(ctx context.Context) (academic.FeePolicy, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return academic.FeePolicy{}, err
	}
	return snap.fees, nil
}

// Effective bundles calendar anchors and fee policy for the admin view.
func (s *ConfigurationService) Effective(ctx context.Context) (*dto.CalendarConfigResponse, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CalendarConfigResponse{Calendar: snap.calendar, FeePolicy: snap.fees}, nil
}

// UpdateCalendar applies a partial update to the anchors and fee totals.
func (s *ConfigurationService) UpdateCalendar(ctx context.Context, req dto.UpdateCalendarConfigRequest, actor *models.JWTClaims) (*dto.CalendarConfigResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar config payload")
	}

	var updates []models.Configuration
	if req.FirstSemStart != nil {
		updates = append(updates, anchorEntry(models.ConfigKeyFirstSemStart, *req.FirstSemStart, actor))
	}
	if req.SecondSemStart != nil {
		updates = append(updates, anchorEntry(models.ConfigKeySecondSemStart, *req.SecondSemStart, actor))
	}
	if req.SFCTotalFee != nil {
		updates = append(updates, feeEntry(models.ConfigKeySFCTotalFee, *req.SFCTotalFee, actor))
	}
	if req.NonSFCTotalFee != nil {
		updates = append(updates, feeEntry(models.ConfigKeyNonSFCTotalFee, *req.NonSFCTotalFee, actor))
	}
	if len(updates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no configuration fields supplied")
	}

	if err := s.repo.UpsertMany(ctx, updates); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store configuration")
	}

	s.invalidate()

	if actor != nil && s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:    &actor.UserID,
			Action:    models.AuditActionConfigurationEdit,
			Resource:  "configuration",
			NewValues: []byte(fmt.Sprintf(`{"keys":%d}`, len(updates))),
		}); err != nil {
			s.logger.Warn("failed to record configuration audit log", zap.Error(err))
		}
	}

	return s.Effective(ctx)
}

// Get retrieves a single configuration entry by key.
func (s *ConfigurationService) Get(ctx context.Context, key string) (*dto.ConfigurationItem, error) {
	cfg, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "configuration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get configuration")
	}
	item := &dto.ConfigurationItem{Key: cfg.Key, Value: cfg.Value, Type: string(cfg.Type)}
	if cfg.Description != nil {
		item.Description = *cfg.Description
	}
	return item, nil
}

func (s *ConfigurationService) load(ctx context.Context) (*configSnapshot, error) {
	s.mu.RLock()
	if s.snapshot != nil {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	rows, err := s.repo.ListByKeys(ctx, calendarConfigKeys)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load configuration")
	}

	byKey := make(map[string]string, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row.Value
	}

	snap := &configSnapshot{
		calendar: academic.DefaultCalendarConfig(),
		fees:     academic.DefaultFeePolicy(),
	}
	if anchor, ok := parseAnchor(byKey[models.ConfigKeyFirstSemStart]); ok {
		snap.calendar.FirstSemStart = anchor
	}
	if anchor, ok := parseAnchor(byKey[models.ConfigKeySecondSemStart]); ok {
		snap.calendar.SecondSemStart = anchor
	}
	if total, ok := parseFee(byKey[models.ConfigKeySFCTotalFee]); ok {
		snap.fees.SFCTotal = total
	}
	if total, ok := parseFee(byKey[models.ConfigKeyNonSFCTotalFee]); ok {
		snap.fees.NonSFCTotal = total
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return snap, nil
}

func (s *ConfigurationService) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

func anchorEntry(key string, anchor dto.AnchorPayload, actor *models.JWTClaims) models.Configuration {
	cfg := models.Configuration{
		Key:   key,
		Value: fmt.Sprintf("%d-%d", anchor.Month, anchor.Day),
		Type:  models.ConfigurationTypeString,
	}
	if actor != nil {
		cfg.UpdatedBy = &actor.UserID
	}
	return cfg
}

func feeEntry(key string, total int64, actor *models.JWTClaims) models.Configuration {
	cfg := models.Configuration{
		Key:   key,
		Value: strconv.FormatInt(total, 10),
		Type:  models.ConfigurationTypeInteger,
	}
	if actor != nil {
		cfg.UpdatedBy = &actor.UserID
	}
	return cfg
}

// parseAnchor decodes the stored "month-day" form. Malformed values fall
// back to defaults rather than erroring a read path.
func parseAnchor(value string) (academic.SemesterAnchor, bool) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return academic.SemesterAnchor{}, false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return academic.SemesterAnchor{}, false
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return academic.SemesterAnchor{}, false
	}
	return academic.SemesterAnchor{Month: month, Day: day}, true
}

func parseFee(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	total, err := strconv.ParseInt(value, 10, 64)
	if err != nil || total <= 0 {
		return 0, false
	}
	return total, true
}
