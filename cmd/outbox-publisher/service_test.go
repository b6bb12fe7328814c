package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rakapradana/kasirpoint-backend/pkg/config"
	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
)

type stubPublisher struct {
	published  []models.OutboxEvent
	attributes []map[string]string
	failFor    map[uuid.UUID]error
}

func (s *stubPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	id, _ := uuid.Parse(attributes["aggregate_id"])
	if err, ok := s.failFor[id]; ok {
		return "", err
	}
	var event models.OutboxEvent
	event.AggregateID = id
	event.Payload = data
	s.published = append(s.published, event)
	s.attributes = append(s.attributes, attributes)
	return uuid.NewString(), nil
}

type stubStore struct {
	pending      []models.OutboxEvent
	publishedIDs []uuid.UUID
	failedIDs    []uuid.UUID
	fetchErr     error
}

func (s *stubStore) FetchUnpublished(limit int) ([]models.OutboxEvent, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if limit < len(s.pending) {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *stubStore) MarkPublished(id uuid.UUID) error {
	s.publishedIDs = append(s.publishedIDs, id)
	return nil
}

func (s *stubStore) MarkFailed(id uuid.UUID, err error) error {
	s.failedIDs = append(s.failedIDs, id)
	return nil
}

func pendingEvent() models.OutboxEvent {
	payload, _ := json.Marshal(map[string]string{"tran_id": "TRX-20260314-0001"})
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventTransactionCreated,
		AggregateType: enums.AggregateTransaction,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

func newTestService(t *testing.T, store outboxStore, pub publisher) *Service {
	t.Helper()

	service, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "outbox-publisher-test"}),
		Repository: store,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return service
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	t.Parallel()

	first := pendingEvent()
	second := pendingEvent()
	store := &stubStore{pending: []models.OutboxEvent{first, second}}
	pub := &stubPublisher{}

	service := newTestService(t, store, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatal("expected work to be reported")
	}
	if len(pub.published) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(pub.published))
	}
	if len(store.publishedIDs) != 2 {
		t.Fatalf("expected 2 rows marked published, got %d", len(store.publishedIDs))
	}

	attrs := pub.attributes[0]
	if attrs["event_type"] != string(enums.EventTransactionCreated) {
		t.Fatalf("event type attribute missing: %v", attrs)
	}
	if attrs["aggregate_id"] != first.AggregateID.String() {
		t.Fatalf("aggregate id attribute mismatch: %v", attrs)
	}
}

func TestProcessBatchMarksFailuresAndContinues(t *testing.T) {
	t.Parallel()

	broken := pendingEvent()
	healthy := pendingEvent()
	store := &stubStore{pending: []models.OutboxEvent{broken, healthy}}
	pub := &stubPublisher{failFor: map[uuid.UUID]error{
		broken.AggregateID: errors.New("topic unavailable"),
	}}

	service := newTestService(t, store, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("a single failed publish must not abort the batch: %v", err)
	}
	if !processed {
		t.Fatal("expected work to be reported")
	}
	if len(store.failedIDs) != 1 || store.failedIDs[0] != broken.ID {
		t.Fatalf("failure not recorded: %v", store.failedIDs)
	}
	if len(store.publishedIDs) != 1 || store.publishedIDs[0] != healthy.ID {
		t.Fatalf("healthy event must still publish: %v", store.publishedIDs)
	}
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	t.Parallel()

	service := newTestService(t, &stubStore{}, &stubPublisher{})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed {
		t.Fatal("empty queue must report no work")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	service := newTestService(t, &stubStore{}, &stubPublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- service.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestNextBackoffDoublesAndCaps(t *testing.T) {
	t.Parallel()

	base := 5 * time.Second
	got := nextBackoff(base, base, time.Minute)
	if got != 10*time.Second {
		t.Fatalf("expected doubling, got %s", got)
	}
	got = nextBackoff(40*time.Second, base, time.Minute)
	if got != time.Minute {
		t.Fatalf("expected cap at one minute, got %s", got)
	}
	got = nextBackoff(0, base, time.Minute)
	if got != 10*time.Second {
		t.Fatalf("zero backoff restarts from base, got %s", got)
	}
}
