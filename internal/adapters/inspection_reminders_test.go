package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"

	"github.com/google/uuid"
)

// eventStore implements only GetByID; the reminder path never calls the rest.
type eventStore struct {
	service.Repository
	events map[uuid.UUID]repository.Event
}

func (s *eventStore) GetByID(_ context.Context, id uuid.UUID) (repository.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return repository.Event{}, apperr.NotFound("schedule event not found")
	}
	return e, nil
}

func TestInspectionReminderSourceMapsScheduledInspection(t *testing.T) {
	id := uuid.New()
	date := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	store := &eventStore{events: map[uuid.UUID]repository.Event{
		id: {
			ID:           id,
			ProjectID:    uuid.New(),
			EventType:    string(domain.EventInspection),
			Title:        "Fire safety inspection",
			ScheduleDate: date,
			AssigneeID:   uuid.New(),
			Status:       string(domain.EventScheduled),
		},
	}}
	src := NewInspectionReminderSource(service.New(store, nil, nil, logger.Discard()))

	got, ok, err := src.PendingInspection(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("expected pending inspection, got ok=%v err=%v", ok, err)
	}
	if got.EventID != id || got.Title != "Fire safety inspection" || !got.ScheduleDate.Equal(date) {
		t.Fatalf("unexpected mapping %+v", got)
	}
}

func TestInspectionReminderSourceSkipsCompletedAndMissing(t *testing.T) {
	done := uuid.New()
	store := &eventStore{events: map[uuid.UUID]repository.Event{
		done: {ID: done, EventType: string(domain.EventInspection), Status: string(domain.EventCompleted)},
	}}
	src := NewInspectionReminderSource(service.New(store, nil, nil, logger.Discard()))

	for _, id := range []uuid.UUID{done, uuid.New()} {
		_, ok, err := src.PendingInspection(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatalf("expected %s to be skipped", id)
		}
	}
}
