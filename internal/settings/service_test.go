package settings

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
	"github.com/aushadhi-pos/aushadhi-pos/internal/pricing"
)

type memorySettings struct {
	settings map[uuid.UUID]Settings
	profiles map[uuid.UUID]StoreProfile
	degraded bool
	reads    int
}

func newMemorySettings() *memorySettings {
	return &memorySettings{
		settings: make(map[uuid.UUID]Settings),
		profiles: make(map[uuid.UUID]StoreProfile),
	}
}

func (m *memorySettings) GetSettings(_ context.Context, accountID uuid.UUID) (*Settings, error) {
	m.reads++
	s, ok := m.settings[accountID]
	if !ok {
		def := Defaults(accountID)
		return &def, nil
	}
	return &s, nil
}

func (m *memorySettings) UpsertSettings(_ context.Context, s Settings) (bool, error) {
	if m.degraded {
		s.TaxMode = ""
		s.ReminderNote = ""
	}
	s.UpdatedAt = time.Now()
	m.settings[s.AccountID] = s
	return m.degraded, nil
}

func (m *memorySettings) GetProfile(_ context.Context, accountID uuid.UUID) (*StoreProfile, error) {
	p, ok := m.profiles[accountID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &p, nil
}

func (m *memorySettings) UpdateProfile(_ context.Context, p StoreProfile) (bool, error) {
	m.profiles[p.AccountID] = p
	return m.degraded, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(repo, rdb, slog.Default(), 5*time.Minute)
}

func TestGetReturnsDefaultsWithoutRow(t *testing.T) {
	svc := newTestService(t, newMemorySettings())

	s, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, s.TaxEnabled)
	assert.Equal(t, pricing.TaxInclusive, s.TaxMode)
	assert.Equal(t, "₹", s.Currency)
}

func TestGetUsesCacheUntilUpdate(t *testing.T) {
	repo := newMemorySettings()
	svc := newTestService(t, repo)
	accountID := uuid.New()

	_, err := svc.Get(context.Background(), accountID)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.reads)

	_, err = svc.Update(context.Background(), accountID, UpdateSettingsRequest{
		Currency:       "₹",
		TaxEnabled:     false,
		TaxMode:        "exclusive",
		DefaultTaxRate: 18,
	})
	require.NoError(t, err)

	s, err := svc.Get(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads)
	assert.False(t, s.TaxEnabled)
	assert.Equal(t, pricing.TaxExclusive, s.TaxMode)
	assert.InDelta(t, 18, s.DefaultTaxRate, 0.0001)
}

func TestUpdateValidates(t *testing.T) {
	svc := newTestService(t, newMemorySettings())

	_, err := svc.Update(context.Background(), uuid.New(), UpdateSettingsRequest{
		Currency:       "₹",
		TaxMode:        "both",
		DefaultTaxRate: 12,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Update(context.Background(), uuid.New(), UpdateSettingsRequest{
		Currency:       "₹",
		TaxMode:        "inclusive",
		DefaultTaxRate: 130,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateReportsDegradedSchema(t *testing.T) {
	repo := newMemorySettings()
	repo.degraded = true
	svc := newTestService(t, repo)

	result, err := svc.Update(context.Background(), uuid.New(), UpdateSettingsRequest{
		Currency:       "₹",
		TaxMode:        "inclusive",
		DefaultTaxRate: 12,
		ReminderNote:   "time for your refill",
	})
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.NotEmpty(t, result.Warning)
}

func TestUpdateProfile(t *testing.T) {
	repo := newMemorySettings()
	svc := newTestService(t, repo)
	accountID := uuid.New()

	_, err := svc.UpdateProfile(context.Background(), accountID, UpdateProfileRequest{
		Name:    "Sri Balaji Medicals",
		Address: "12 MG Road, Bengaluru",
		Phone:   "+91 98450 00000",
		GSTIN:   "29ABCDE1234F1Z5",
	})
	require.NoError(t, err)

	profile, err := svc.GetProfile(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, "Sri Balaji Medicals", profile.Name)
	assert.Equal(t, "29ABCDE1234F1Z5", profile.GSTIN)

	_, err = svc.UpdateProfile(context.Background(), accountID, UpdateProfileRequest{})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
