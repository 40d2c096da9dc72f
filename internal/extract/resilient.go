package extract

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"golang.org/x/time/rate"
)

// Cache stores successful model answers keyed by the raw message.
type Cache interface {
	GetExtraction(ctx context.Context, kind, text string) ([]byte, bool, error)
	SetExtraction(ctx context.Context, kind, text string, payload []byte) error
}

// Cache kinds
const (
	kindSingle = "single"
	kindMulti  = "multi"
)

// Stages used in failure logs
const (
	stageExtract      = "extract"
	stageExtractMulti = "extract_multi"
)

var errThrottled = errors.New("extractor throttled")

// ResilientConfig tunes the remote call guard rails.
type ResilientConfig struct {
	Timeout          time.Duration
	BreakerThreshold int
	BreakerReset     time.Duration
	RatePerSecond    float64 // zero disables throttling
	Burst            int
}

// Resilient runs the remote extractor under a timeout, a circuit breaker and a rate
// limit, and answers with the deterministic Fallback whenever any of them refuses or the
// call fails. It never returns an error.
type Resilient struct {
	primary  Extractor
	name     string
	fallback Fallback
	timeout  time.Duration
	breaker  *CircuitBreaker
	limiter  *rate.Limiter
	cache    Cache
	log      logger.Logger
}

var _ Extractor = (*Resilient)(nil)

// NewResilient wraps primary. A nil primary means every call uses the fallback.
// cache may be nil.
func NewResilient(primary Extractor, name string, cfg ResilientConfig, cache Cache, log logger.Logger) *Resilient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerReset <= 0 {
		cfg.BreakerReset = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Resilient{
		primary: primary,
		name:    name,
		timeout: cfg.Timeout,
		breaker: NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerReset),
		limiter: limiter,
		cache:   cache,
		log:     log.Named("extract"),
	}
}

// Extract never fails; see Resilient.
func (r *Resilient) Extract(ctx context.Context, text string) (domain.ParsedQueryItem, error) {
	var item domain.ParsedQueryItem
	if r.fromCache(ctx, kindSingle, text, &item) {
		return item, nil
	}

	err := r.call(ctx, func(cctx context.Context) error {
		var err error
		item, err = r.primary.Extract(cctx, text)
		return err
	})
	if err != nil {
		r.logFallback(text, stageExtract, err)
		item, _ = r.fallback.Extract(ctx, text)
		return item, nil
	}

	r.toCache(ctx, kindSingle, text, item)
	return item, nil
}

// ExtractMulti never fails; see Resilient.
func (r *Resilient) ExtractMulti(ctx context.Context, text string) (domain.ParsedBatch, error) {
	var batch domain.ParsedBatch
	if r.fromCache(ctx, kindMulti, text, &batch) {
		return batch, nil
	}

	err := r.call(ctx, func(cctx context.Context) error {
		var err error
		batch, err = r.primary.ExtractMulti(cctx, text)
		return err
	})
	if err != nil {
		r.logFallback(text, stageExtractMulti, err)
		batch, _ = r.fallback.ExtractMulti(ctx, text)
		return batch, nil
	}

	r.toCache(ctx, kindMulti, text, batch)
	return batch, nil
}

// Status describes the extractor for the health surface.
type Status struct {
	Mode                string `json:"mode"`
	Breaker             string `json:"breaker"`
	ConsecutiveFailures int    `json:"consecutiveFailures"`
}

func (r *Resilient) Status() Status {
	if r.primary == nil {
		return Status{Mode: "fallback", Breaker: CircuitClosed.String()}
	}
	return Status{
		Mode:                r.name,
		Breaker:             r.breaker.State().String(),
		ConsecutiveFailures: r.breaker.ConsecutiveFailures(),
	}
}

// call applies the guard rails around fn. Only failures of the model itself count
// against the breaker.
func (r *Resilient) call(ctx context.Context, fn func(context.Context) error) error {
	if r.primary == nil {
		return errors.New("no remote extractor configured")
	}
	if r.limiter != nil && !r.limiter.Allow() {
		return errThrottled
	}
	if ok, err := r.breaker.Allow(); !ok {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := fn(cctx); err != nil {
		// a caller that went away says nothing about the model
		if ctx.Err() != nil {
			r.breaker.Release()
			return err
		}
		r.breaker.RecordFailure()
		return err
	}
	r.breaker.RecordSuccess()
	return nil
}

func (r *Resilient) fromCache(ctx context.Context, kind, text string, dst any) bool {
	if r.cache == nil || r.primary == nil {
		return false
	}
	payload, ok, err := r.cache.GetExtraction(ctx, kind, text)
	if err != nil {
		r.log.Debug("extraction cache read failed", logger.Error(err))
		return false
	}
	if !ok {
		return false
	}
	return json.Unmarshal(payload, dst) == nil
}

func (r *Resilient) toCache(ctx context.Context, kind, text string, v any) {
	if r.cache == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.SetExtraction(ctx, kind, text, payload); err != nil {
		r.log.Debug("extraction cache write failed", logger.Error(err))
	}
}

func (r *Resilient) logFallback(text, stage string, err error) {
	if r.primary == nil {
		return
	}
	r.log.Warn("remote extraction failed, using fallback",
		logger.String("query", text),
		logger.Stage(stage),
		logger.String("provider", r.name),
		logger.Error(err),
	)
}
