// Package daemon provides the long-running subscription timeline service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/subcal/internal/charges"
	"github.com/theirongolddev/subcal/internal/config"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/viewport"
)

// Source is the read side of the subscription store.
type Source interface {
	List(ctx context.Context) ([]model.Subscription, error)
	Version(ctx context.Context) (int64, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	Viewport     viewport.Options
	InitialWidth float64
	Rates        config.RatesConfig
	Now          func() time.Time
}

// Snapshot is a compact state for status and event payloads.
type Snapshot struct {
	At            time.Time            `json:"at"`
	Version       int64                `json:"version"`
	Subscriptions int                  `json:"subscriptions"`
	Active        int                  `json:"active"`
	Month         string               `json:"month"`
	MonthTotal    model.CurrencyBucket `json:"month_total"`
	YearTotal     model.CurrencyBucket `json:"year_total"`
	MonthlyUSD    float64              `json:"monthly_usd"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Subscriptions int     `json:"subscriptions"`
	Active        int     `json:"active"`
	MonthlyUSD    float64 `json:"monthly_usd"`
}

func (d Delta) isZero() bool {
	return d.Subscriptions == 0 && d.Active == 0 && d.MonthlyUSD == 0
}

// Event types.
const (
	EventSnapshot             = "snapshot"
	EventSubscriptionsChanged = "subscriptions_changed"
)

// Event is emitted whenever the stored subscription set changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
	MemoHits        int       `json:"memo_hits"`
	MemoMisses      int       `json:"memo_misses"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	src     Source
	log     *zap.Logger
	metrics *Metrics
	memo    *charges.Memo

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service reading from src.
func New(cfg Config, src Source, log *zap.Logger) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 5 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Viewport.Bounds == (dayindex.Range{}) {
		cfg.Viewport.Bounds = dayindex.DefaultRange()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		src:       src,
		log:       log,
		metrics:   NewMetrics(),
		memo:      &charges.Memo{Aggregator: &charges.Aggregator{Logger: log}},
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

func (s *Service) today() dayindex.Day {
	return s.cfg.Viewport.Bounds.Clamp(dayindex.FromTime(s.cfg.Now()))
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", zap.String("addr", s.cfg.Addr), zap.Duration("interval", s.cfg.Interval))

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// pollOnce publishes an event when the store version or the derived
// snapshot changed since the last poll.
func (s *Service) pollOnce(ctx context.Context) {
	now := s.cfg.Now()
	snap, err := s.buildSnapshot(ctx, now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.metrics.polls.WithLabelValues("error").Inc()
		s.log.Warn("poll failed", zap.Error(err))
		return
	}
	s.metrics.polls.WithLabelValues("ok").Inc()
	s.metrics.subscriptions.Set(float64(snap.Subscriptions))

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	switch {
	case !prevExists:
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	case prev.Version != snap.Version || !diffSnapshots(prev, snap).isZero():
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSubscriptionsChanged,
			Timestamp: now,
			Snapshot:  snap,
			Delta:     diffSnapshots(prev, snap),
		}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug("publishing event", zap.String("type", ev.Type), zap.Int64("version", snap.Version))
		s.publishEvent(ev)
	}
}

type storeSnapshot struct {
	version int64
	subs    []model.Subscription
}

// load reads one consistent view of the store. The version is read before
// and after listing; a write in between makes it retry.
func (s *Service) load(ctx context.Context) (storeSnapshot, error) {
	for attempt := 0; attempt < 3; attempt++ {
		before, err := s.src.Version(ctx)
		if err != nil {
			return storeSnapshot{}, fmt.Errorf("reading version: %w", err)
		}
		subs, err := s.src.List(ctx)
		if err != nil {
			return storeSnapshot{}, fmt.Errorf("listing subscriptions: %w", err)
		}
		after, err := s.src.Version(ctx)
		if err != nil {
			return storeSnapshot{}, fmt.Errorf("reading version: %w", err)
		}
		if before == after {
			return storeSnapshot{version: after, subs: subs}, nil
		}
	}
	return storeSnapshot{}, errors.New("store kept changing while reading")
}

func (s *Service) buildSnapshot(ctx context.Context, now time.Time) (Snapshot, error) {
	st, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	today := s.today()
	p := today.Parts()
	yearStart := dayindex.FromParts(p.Year, 0, 1)
	yearEnd := dayindex.FromParts(p.Year, 11, 31)

	start := time.Now()
	totals := s.memo.Aggregate(st.version, st.subs, yearStart, yearEnd)
	s.metrics.observeAggregation("snapshot", start)

	active := 0
	monthly := model.CurrencyBucket{}
	for _, sub := range st.subs {
		if sub.ActiveOn(today) {
			active++
			monthly.Add(sub.Currency, charges.EstimateMonthly(sub))
		}
	}
	usd, _ := s.cfg.Rates.BucketToUSD(monthly)

	return Snapshot{
		At:            now,
		Version:       st.version,
		Subscriptions: len(st.subs),
		Active:        active,
		Month:         fmt.Sprintf("%04d-%02d", p.Year, p.Month+1),
		MonthTotal:    totals.Month(p.Year, p.Month).Clone(),
		YearTotal:     totals.Year(p.Year).Clone(),
		MonthlyUSD:    usd,
	}, nil
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Subscriptions: curr.Subscriptions - prev.Subscriptions,
		Active:        curr.Active - prev.Active,
		MonthlyUSD:    curr.MonthlyUSD - prev.MonthlyUSD,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
	s.metrics.events.Inc()
}

func (s *Service) snapshotStatus() Status {
	hits, misses := s.memo.Stats()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		MemoHits:        hits,
		MemoMisses:      misses,
	}
}

func (s *Service) eventsSince(after int64) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID > after {
			out = append(out, ev)
		}
	}
	return out
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
