package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sms-bridge/internal/domain"
	"sms-bridge/internal/repository"
)

type mockStatusRepo struct {
	lastUpsert domain.DeliveryStatus
	upserts    int
	upsertErr  error
	stored     map[string]domain.DeliveryStatus
}

func newMockStatusRepo() *mockStatusRepo {
	return &mockStatusRepo{stored: make(map[string]domain.DeliveryStatus)}
}

func (m *mockStatusRepo) Upsert(_ context.Context, st domain.DeliveryStatus) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	m.lastUpsert = st
	m.stored[st.MessageSID] = st
	return nil
}

func (m *mockStatusRepo) GetBySID(_ context.Context, sid string) (domain.DeliveryStatus, error) {
	st, ok := m.stored[sid]
	if !ok {
		return domain.DeliveryStatus{}, repository.ErrNotFound
	}
	return st, nil
}

func TestStatusServiceRecord_NormalizesAndDefaults(t *testing.T) {
	repo := newMockStatusRepo()
	svc := NewStatusService(repo)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	err := svc.Record(context.Background(), domain.DeliveryStatus{
		MessageSID: " SM123 ",
		Status:     " Delivered ",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastUpsert.MessageSID != "SM123" || repo.lastUpsert.Status != "delivered" {
		t.Fatalf("expected normalized status, got %+v", repo.lastUpsert)
	}
	if !repo.lastUpsert.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected updated_at default, got %s", repo.lastUpsert.UpdatedAt)
	}
}

func TestStatusServiceRecord_MissingSID(t *testing.T) {
	repo := newMockStatusRepo()
	svc := NewStatusService(repo)

	err := svc.Record(context.Background(), domain.DeliveryStatus{Status: "sent"})
	if !errors.Is(err, ErrStatusMissingSID) {
		t.Fatalf("expected ErrStatusMissingSID, got %v", err)
	}
	if repo.upserts != 0 {
		t.Fatalf("expected no upsert")
	}
}

func TestStatusServiceRecord_NotConfigured(t *testing.T) {
	var svc *StatusService
	if err := svc.Record(context.Background(), domain.DeliveryStatus{MessageSID: "SM1"}); !errors.Is(err, ErrStatusServiceNotConfigured) {
		t.Fatalf("expected ErrStatusServiceNotConfigured, got %v", err)
	}
}

func TestStatusServiceGet(t *testing.T) {
	repo := newMockStatusRepo()
	svc := NewStatusService(repo)
	_ = svc.Record(context.Background(), domain.DeliveryStatus{MessageSID: "SM1", Status: "sent"})
	_ = svc.Record(context.Background(), domain.DeliveryStatus{MessageSID: "SM1", Status: "delivered"})

	st, err := svc.Get(context.Background(), "SM1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if st.Status != "delivered" {
		t.Fatalf("expected latest status, got %q", st.Status)
	}

	if _, err := svc.Get(context.Background(), "SM404"); !errors.Is(err, ErrStatusNotFound) {
		t.Fatalf("expected ErrStatusNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), ""); !errors.Is(err, ErrStatusMissingSID) {
		t.Fatalf("expected ErrStatusMissingSID, got %v", err)
	}
}
