package repository

import (
	"context"
	"sync"

	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/realtime"
)

// LiveStore decorates a domain.Store: successful writes publish a change event
// and Subscribe* methods deliver full collection snapshots on every change.
type LiveStore struct {
	domain.Store
	hub       *realtime.Hub
	publisher realtime.Publisher
}

// NewLiveStore wraps store. publisher may be nil, in which case hub is used directly.
func NewLiveStore(store domain.Store, hub *realtime.Hub, publisher realtime.Publisher) *LiveStore {
	if publisher == nil {
		publisher = hub
	}
	return &LiveStore{Store: store, hub: hub, publisher: publisher}
}

func (s *LiveStore) changed(ctx context.Context, accountID string, topic realtime.Topic) {
	s.publisher.Publish(ctx, realtime.Event{AccountID: accountID, Topic: topic})
}

func (s *LiveStore) SaveVaccine(ctx context.Context, accountID string, vaccine domain.Vaccine) error {
	if err := s.Store.SaveVaccine(ctx, accountID, vaccine); err != nil {
		return err
	}
	s.changed(ctx, accountID, realtime.TopicVaccines)
	return nil
}

func (s *LiveStore) DeleteVaccine(ctx context.Context, accountID, id string) error {
	if err := s.Store.DeleteVaccine(ctx, accountID, id); err != nil {
		return err
	}
	s.changed(ctx, accountID, realtime.TopicVaccines)
	return nil
}

func (s *LiveStore) ReplaceSuggestions(ctx context.Context, accountID string, suggestions []domain.Suggestion) error {
	if err := s.Store.ReplaceSuggestions(ctx, accountID, suggestions); err != nil {
		return err
	}
	s.changed(ctx, accountID, realtime.TopicSuggestions)
	return nil
}

func (s *LiveStore) DeleteSuggestion(ctx context.Context, accountID, id string) error {
	if err := s.Store.DeleteSuggestion(ctx, accountID, id); err != nil {
		return err
	}
	s.changed(ctx, accountID, realtime.TopicSuggestions)
	return nil
}

func (s *LiveStore) CreateDietEntries(ctx context.Context, accountID string, entries []domain.DietEntry) error {
	if err := s.Store.CreateDietEntries(ctx, accountID, entries); err != nil {
		return err
	}
	s.changed(ctx, accountID, realtime.TopicDiet)
	return nil
}

func (s *LiveStore) DeleteDietEntry(ctx context.Context, accountID, id string) error {
	if err := s.Store.DeleteDietEntry(ctx, accountID, id); err != nil {
		return err
	}
	s.changed(ctx, accountID, realtime.TopicDiet)
	return nil
}

// SubscribeVaccines delivers the account's vaccines now and after every change
func (s *LiveStore) SubscribeVaccines(ctx context.Context, accountID string, fn func([]domain.Vaccine)) func() {
	return subscribe(ctx, s.hub, accountID, realtime.TopicVaccines, func(ctx context.Context) ([]domain.Vaccine, error) {
		return s.Store.ListVaccines(ctx, accountID)
	}, fn)
}

// SubscribeSuggestions delivers the account's suggestions now and after every change
func (s *LiveStore) SubscribeSuggestions(ctx context.Context, accountID string, fn func([]domain.Suggestion)) func() {
	return subscribe(ctx, s.hub, accountID, realtime.TopicSuggestions, func(ctx context.Context) ([]domain.Suggestion, error) {
		return s.Store.ListSuggestions(ctx, accountID)
	}, fn)
}

// SubscribeDietEntries delivers the account's diet entries now and after every change
func (s *LiveStore) SubscribeDietEntries(ctx context.Context, accountID string, fn func([]domain.DietEntry)) func() {
	return subscribe(ctx, s.hub, accountID, realtime.TopicDiet, func(ctx context.Context) ([]domain.DietEntry, error) {
		return s.Store.ListDietEntries(ctx, accountID)
	}, fn)
}

// subscribe runs one delivery goroutine per subscriber. Deliveries happen in
// order; changes that arrive while a snapshot is being delivered collapse into
// a single reload.
func subscribe[T any](
	ctx context.Context,
	hub *realtime.Hub,
	accountID string,
	topic realtime.Topic,
	load func(context.Context) (T, error),
	deliver func(T),
) func() {
	ctx, cancel := context.WithCancel(ctx)
	signal := make(chan struct{}, 1)
	signal <- struct{}{}

	unsubscribe := hub.Subscribe(accountID, topic, func(realtime.Event) {
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
			snapshot, err := load(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("Failed to load snapshot", "account_id", accountID, "topic", topic, "error", err)
				}
				continue
			}
			if ctx.Err() != nil {
				return
			}
			deliver(snapshot)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			cancel()
		})
	}
}
