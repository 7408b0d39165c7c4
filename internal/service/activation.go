package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/oggyb/smshub/internal/cache"
	"github.com/oggyb/smshub/internal/domain/activation"
	"github.com/oggyb/smshub/internal/smshub"
)

// Provider is the subset of the SMSHub client the service depends on.
type Provider interface {
	GetNumbersStatus(ctx context.Context, country, operator string) (json.RawMessage, error)
	GetBalance(ctx context.Context) (decimal.Decimal, error)
	GetNumber(ctx context.Context, country, operator, service string) (*smshub.Number, error)
	SetStatus(ctx context.Context, id string, status smshub.StatusRequest) (bool, error)
	CheckStatus(ctx context.Context, id string) (smshub.StatusReport, error)
	GetPrices(ctx context.Context, service, country string) (smshub.PriceTable, error)
}

var _ Provider = (*smshub.Client)(nil)

type ActivationService interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	NumbersStatus(ctx context.Context, country, operator string) (json.RawMessage, error)
	Prices(ctx context.Context, service, country string) (smshub.PriceTable, error)

	Order(ctx context.Context, country, operator, service string) (*activation.Activation, error)
	Get(ctx context.Context, id uuid.UUID) (*activation.Activation, error)
	List(ctx context.Context, page, limit int) ([]*activation.Activation, int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, req smshub.StatusRequest) (*activation.Activation, error)
	Refresh(ctx context.Context, id uuid.UUID) (*activation.Activation, error)

	ProcessBatch(ctx context.Context) error
}

// compensateTimeout bounds the cancel sent for a reservation that could not
// be saved.
const compensateTimeout = 5 * time.Second

// Settings carries the polling and caching knobs, injected from config at
// startup so this package does not read the environment.
type Settings struct {
	BatchSize            int
	MaxWorkers           int
	PerActivationTimeout time.Duration

	PricesTTL  time.Duration
	BalanceTTL time.Duration
	StatusTTL  time.Duration
}

type activationService struct {
	repo     activation.Repository
	provider Provider
	cache    cache.Cache
	log      zerolog.Logger
	settings Settings
}

// NewActivationService creates the service. cache may be nil, in which
// case every lookup goes to the provider.
func NewActivationService(
	repo activation.Repository,
	provider Provider,
	c cache.Cache,
	log zerolog.Logger,
	settings Settings,
) ActivationService {
	// Apply sane defaults if config values are missing or invalid.
	if settings.BatchSize <= 0 {
		settings.BatchSize = 100
	}
	if settings.MaxWorkers <= 0 {
		settings.MaxWorkers = 4
	}
	if settings.PerActivationTimeout <= 0 {
		settings.PerActivationTimeout = 5 * time.Second
	}

	return &activationService{
		repo:     repo,
		provider: provider,
		cache:    c,
		log:      log.With().Str("component", "activation_service").Logger(),
		settings: settings,
	}
}

func (s *activationService) Balance(ctx context.Context) (decimal.Decimal, error) {
	key := cache.Balance.Key("account")
	if v, ok := s.cached(ctx, key); ok {
		if amount, err := decimal.NewFromString(v); err == nil {
			return amount, nil
		}
	}

	amount, err := s.provider.GetBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	s.store(ctx, key, amount.String(), s.settings.BalanceTTL)
	return amount, nil
}

func (s *activationService) NumbersStatus(ctx context.Context, country, operator string) (json.RawMessage, error) {
	return s.provider.GetNumbersStatus(ctx, country, operator)
}

func (s *activationService) Prices(ctx context.Context, service, country string) (smshub.PriceTable, error) {
	key := cache.Prices.Key(service, country)
	if v, ok := s.cached(ctx, key); ok {
		var table smshub.PriceTable
		if err := json.Unmarshal([]byte(v), &table); err == nil {
			return table, nil
		}
	}

	table, err := s.provider.GetPrices(ctx, service, country)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(table); err == nil {
		s.store(ctx, key, string(raw), s.settings.PricesTTL)
	}
	return table, nil
}

// Order reserves a number and records it. If the record cannot be saved the
// reservation is cancelled with the provider so it is not left dangling.
func (s *activationService) Order(ctx context.Context, country, operator, service string) (*activation.Activation, error) {
	num, err := s.provider.GetNumber(ctx, country, operator, service)
	if err != nil {
		return nil, err
	}

	a, err := activation.New(num.ID, num.Number, country, operator, service)
	if err != nil {
		return nil, fmt.Errorf("build activation %s: %w", num.ID, err)
	}

	if err := s.repo.Save(ctx, a); err != nil {
		s.log.Error().Err(err).Str("provider_id", num.ID).Msg("failed to save activation, cancelling reservation")
		// ctx may be the reason the save failed.
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
		if _, cErr := s.provider.SetStatus(cctx, num.ID, smshub.RequestCancel); cErr != nil {
			s.log.Error().Err(cErr).Str("provider_id", num.ID).Msg("failed to cancel orphaned reservation")
		}
		cancel()
		return nil, fmt.Errorf("save activation %s: %w", num.ID, err)
	}

	// Balance changed with the purchase.
	s.drop(ctx, cache.Balance.Key("account"))

	s.log.Info().
		Str("id", a.ID.String()).
		Str("provider_id", a.ProviderID).
		Str("service", service).
		Str("country", country).
		Msg("number reserved")
	return a, nil
}

func (s *activationService) Get(ctx context.Context, id uuid.UUID) (*activation.Activation, error) {
	return s.repo.Get(ctx, id)
}

func (s *activationService) List(ctx context.Context, page, limit int) ([]*activation.Activation, int64, error) {
	return s.repo.List(ctx, page, limit)
}

// SetStatus forwards req to the provider and records the state it implies.
func (s *activationService) SetStatus(ctx context.Context, id uuid.UUID, req smshub.StatusRequest) (*activation.Activation, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.IsTerminal() {
		return nil, activation.ErrTerminal
	}

	if _, err := s.provider.SetStatus(ctx, a.ProviderID, req); err != nil {
		return nil, err
	}

	if err := a.Apply(statusAfterRequest(a.Status, req), ""); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("update activation %s: %w", a.ID, err)
	}
	s.drop(ctx, cache.ActivationStatus.Key(a.ProviderID))

	s.log.Info().
		Str("id", a.ID.String()).
		Str("request", req.Name()).
		Str("status", string(a.Status)).
		Msg("activation status changed")
	return a, nil
}

// Refresh asks the provider for the current status of one activation. A
// status fetched less than StatusTTL ago is not fetched again; the stored
// activation already reflects it.
func (s *activationService) Refresh(ctx context.Context, id uuid.UUID) (*activation.Activation, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ProcessBatch polls the provider for every pending activation using a
// bounded number of concurrent requests. Failures of single activations are
// logged and do not fail the batch.
func (s *activationService) ProcessBatch(ctx context.Context) error {
	pending, err := s.repo.GetPending(ctx, s.settings.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending activations: %w", err)
	}

	// Nothing to do; exit quickly so the scheduler can tick again.
	if len(pending) == 0 {
		s.log.Debug().Msg("no pending activations to poll")
		return nil
	}

	s.log.Info().
		Int("count", len(pending)).
		Int("max_workers", s.settings.MaxWorkers).
		Msg("polling pending activations")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.MaxWorkers)

	for _, a := range pending {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			actCtx, cancel := context.WithTimeout(gctx, s.settings.PerActivationTimeout)
			defer cancel()

			if err := s.refresh(actCtx, a); err != nil {
				s.log.Warn().Err(err).Str("id", a.ID.String()).Msg("failed to poll activation")
			}
			return nil
		})
	}

	_ = g.Wait()

	s.log.Debug().Msg("polling batch completed")
	return ctx.Err()
}

func (s *activationService) refresh(ctx context.Context, a *activation.Activation) error {
	if a.IsTerminal() {
		return nil
	}

	key := cache.ActivationStatus.Key(a.ProviderID)
	if _, fresh := s.cached(ctx, key); fresh {
		return nil
	}

	report, err := s.provider.CheckStatus(ctx, a.ProviderID)
	if err != nil {
		return err
	}

	previous := a.Status
	if err := a.Apply(fromProviderStatus(report.Status), report.Code); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return fmt.Errorf("update activation %s: %w", a.ID, err)
	}

	s.store(ctx, key, string(report.Status), s.settings.StatusTTL)

	if previous != a.Status {
		s.log.Info().
			Str("id", a.ID.String()).
			Str("from", string(previous)).
			Str("to", string(a.Status)).
			Msg("activation status updated")
	}
	return nil
}

func (s *activationService) cached(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	v, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return "", false
	}
	return v, true
}

func (s *activationService) store(ctx context.Context, key, value string, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *activationService) drop(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

func fromProviderStatus(st smshub.Status) activation.Status {
	switch st {
	case smshub.StatusWaitResend:
		return activation.StatusWaitResend
	case smshub.StatusCancel:
		return activation.StatusCancelled
	case smshub.StatusOK:
		return activation.StatusOK
	default:
		return activation.StatusWaitCode
	}
}

func statusAfterRequest(current activation.Status, req smshub.StatusRequest) activation.Status {
	switch req {
	case smshub.RequestResend:
		return activation.StatusWaitResend
	case smshub.RequestComplete:
		return activation.StatusFinished
	case smshub.RequestCancel:
		return activation.StatusCancelled
	default:
		return current
	}
}
