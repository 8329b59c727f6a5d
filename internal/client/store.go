package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/transport/http/response"
	"github.com/sirupsen/logrus"
)

const (
	defaultSuccessTTL        = 5 * time.Second
	defaultEnrichmentTimeout = 15 * time.Second
)

type CreatureAPI interface {
	List(ctx context.Context) ([]response.Creature, error)
	Create(ctx context.Context, name string) (response.CreatureResponse, error)
	Update(ctx context.Context, id, name string) (response.CreatureResponse, error)
	Delete(ctx context.Context, id string) error
}

type Enricher interface {
	Describe(ctx context.Context, name string) (string, error)
}

// State is a snapshot of what the store mirrors from the server.
type State struct {
	Creatures      []response.Creature
	IsLoading      bool
	Error          string
	SuccessMessage string
	EnrichmentText string
}

// Result reports how a store operation ended. Error is the user-facing text.
type Result struct {
	Success bool
	Error   string
}

type Option func(*Store)

func WithSuccessTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.successTTL = ttl
		}
	}
}

func WithEnrichmentTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.enrichmentTimeout = timeout
		}
	}
}

// Store mirrors the server's creature list for an interactive client.
// Every mutation is followed by a full refetch; nothing is patched locally.
// Overlapping calls are not coordinated beyond the state mutex.
type Store struct {
	api               CreatureAPI
	enricher          Enricher
	log               *logrus.Logger
	successTTL        time.Duration
	enrichmentTimeout time.Duration

	mu           sync.Mutex
	state        State
	successGen   uint64
	successTimer *time.Timer
}

// NewStore builds a store. enricher may be nil to skip enrichment.
func NewStore(api CreatureAPI, enricher Enricher, log *logrus.Logger, opts ...Option) *Store {
	s := &Store{
		api:               api,
		enricher:          enricher,
		log:               log,
		successTTL:        defaultSuccessTTL,
		enrichmentTimeout: defaultEnrichmentTimeout,
		state:             State{Creatures: []response.Creature{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Creatures = slices.Clone(s.state.Creatures)
	return out
}

// Close stops a pending success-message timer.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.successTimer != nil {
		s.successTimer.Stop()
	}
}

// FetchAll replaces the list with the server's. On failure the previous list is kept.
func (s *Store) FetchAll(ctx context.Context) Result {
	s.begin()
	defer s.end()

	if err := s.refresh(ctx); err != nil {
		return Result{Error: s.Snapshot().Error}
	}
	return Result{Success: true}
}

func (s *Store) Add(ctx context.Context, key string) Result {
	s.begin()
	defer s.end()

	resp, err := s.api.Create(ctx, key)
	if err != nil {
		return s.fail("add creature", err, "failed to add creature")
	}
	_ = s.refresh(ctx)

	name := displayName(resp, key)
	s.showSuccess(fmt.Sprintf("creature %s added", name))
	s.enrich(name)
	return Result{Success: true}
}

func (s *Store) Update(ctx context.Context, id, key string) Result {
	s.begin()
	defer s.end()

	resp, err := s.api.Update(ctx, id, key)
	if err != nil {
		return s.fail("update creature", err, "failed to update creature")
	}
	_ = s.refresh(ctx)

	name := displayName(resp, key)
	s.showSuccess(fmt.Sprintf("creature updated to %s", name))
	s.enrich(name)
	return Result{Success: true}
}

func (s *Store) Delete(ctx context.Context, id, name string) Result {
	s.begin()
	defer s.end()

	if err := s.api.Delete(ctx, id); err != nil {
		return s.fail("delete creature", err, "failed to delete creature")
	}
	_ = s.refresh(ctx)

	s.showSuccess(fmt.Sprintf("creature %s deleted", name))
	return Result{Success: true}
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = true
	s.state.Error = ""
}

func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = false
}

func (s *Store) refresh(ctx context.Context) error {
	creatures, err := s.api.List(ctx)
	if err != nil {
		s.fail("fetch creatures", err, "failed to fetch creatures")
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Creatures = creatures
	return nil
}

func (s *Store) fail(op string, err error, fallback string) Result {
	message := fallback
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	s.log.WithError(err).Errorf("%s failed", op)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = message
	return Result{Error: message}
}

// showSuccess sets the message and clears it after the TTL unless a newer one replaced it.
func (s *Store) showSuccess(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successGen++
	gen := s.successGen
	s.state.SuccessMessage = message
	if s.successTimer != nil {
		s.successTimer.Stop()
	}
	s.successTimer = time.AfterFunc(s.successTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.successGen == gen {
			s.state.SuccessMessage = ""
		}
	})
}

// enrich runs detached; its outcome never touches Error or loading.
func (s *Store) enrich(name string) {
	if s.enricher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.enrichmentTimeout)
		defer cancel()

		text, err := s.enricher.Describe(ctx, name)
		if err != nil {
			s.log.WithError(err).WithField("name", name).Warn("creature enrichment failed")
			return
		}
		if text == "" {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state.EnrichmentText = text
	}()
}

func displayName(resp response.CreatureResponse, key string) string {
	if resp.Creature.Name != "" {
		return resp.Creature.Name
	}
	return key
}
