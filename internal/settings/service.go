package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aushadhi-pos/aushadhi-pos/internal/pricing"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

const cacheKeyPrefix = "settings:"

// Service reads and writes account settings with a Redis read-through cache.
// Updates invalidate the cached entry so checkout always prices against the
// latest saved configuration.
type Service struct {
	repo     Repository
	redis    *redis.Client
	logger   *slog.Logger
	validate *validator.Validate
	cacheTTL time.Duration
}

// NewService constructs a settings service.
func NewService(repo Repository, rdb *redis.Client, logger *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		redis:    rdb,
		logger:   logger,
		validate: validator.New(),
		cacheTTL: cacheTTL,
	}
}

// UpdateSettingsRequest carries validated settings input.
type UpdateSettingsRequest struct {
	Currency       string  `json:"currency" validate:"required,max=10"`
	TaxEnabled     bool    `json:"gst_enabled"`
	TaxMode        string  `json:"gst_type" validate:"required,oneof=inclusive exclusive"`
	DefaultTaxRate float64 `json:"default_gst_rate" validate:"gte=0,lte=100"`
	ReminderNote   string  `json:"whatsapp_custom_note" validate:"max=1000"`
}

// UpdateProfileRequest carries validated store profile input.
type UpdateProfileRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=500"`
	Phone   string `json:"phone" validate:"max=20"`
	GSTIN   string `json:"gstin" validate:"max=15"`
}

// SaveResult reports a write plus any schema-degradation warning.
type SaveResult struct {
	Degraded bool   `json:"degraded"`
	Warning  string `json:"warning,omitempty"`
}

// Get returns the account settings, from cache when present.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*Settings, error) {
	key := cacheKeyPrefix + accountID.String()
	if raw, err := s.redis.Get(ctx, key).Bytes(); err == nil {
		var cached Settings
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	loaded, err := s.repo.GetSettings(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if raw, err := json.Marshal(loaded); err == nil {
		if err := s.redis.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("settings cache write failed", slog.Any("error", err))
		}
	}
	return loaded, nil
}

// Update validates, persists, and invalidates the cache.
func (s *Service) Update(ctx context.Context, accountID uuid.UUID, req UpdateSettingsRequest) (*SaveResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	degraded, err := s.repo.UpsertSettings(ctx, Settings{
		AccountID:      accountID,
		Currency:       req.Currency,
		TaxEnabled:     req.TaxEnabled,
		TaxMode:        pricing.TaxMode(req.TaxMode),
		DefaultTaxRate: req.DefaultTaxRate,
		ReminderNote:   req.ReminderNote,
	})
	if err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	if err := s.redis.Del(ctx, cacheKeyPrefix+accountID.String()).Err(); err != nil {
		s.logger.Warn("settings cache invalidation failed", slog.Any("error", err))
	}

	result := &SaveResult{Degraded: degraded}
	if degraded {
		result.Warning = "settings saved without GST type and reminder note; the database schema needs an update"
	}
	return result, nil
}

// GetProfile returns the store profile printed on bills.
func (s *Service) GetProfile(ctx context.Context, accountID uuid.UUID) (*StoreProfile, error) {
	return s.repo.GetProfile(ctx, accountID)
}

// UpdateProfile validates and persists the store profile.
func (s *Service) UpdateProfile(ctx context.Context, accountID uuid.UUID, req UpdateProfileRequest) (*SaveResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	degraded, err := s.repo.UpdateProfile(ctx, StoreProfile{
		AccountID: accountID,
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		GSTIN:     req.GSTIN,
	})
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	result := &SaveResult{Degraded: degraded}
	if degraded {
		result.Warning = "store name saved; address, phone and GSTIN could not be saved until the database is updated"
	}
	return result, nil
}
