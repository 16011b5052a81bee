package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sms-bridge/internal/domain"
	"sms-bridge/internal/repository"
)

// StatusService registra el último estado de entrega de cada mensaje saliente.
type StatusService struct {
	repo repository.StatusRepository
	now  func() time.Time
}

var (
	ErrStatusServiceNotConfigured = errors.New("status service not configured")
	ErrStatusMissingSID           = errors.New("status missing message sid")
	ErrStatusNotFound             = errors.New("status not found")
)

func NewStatusService(repo repository.StatusRepository) *StatusService {
	return &StatusService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *StatusService) Record(ctx context.Context, st domain.DeliveryStatus) error {
	if s == nil || s.repo == nil {
		return ErrStatusServiceNotConfigured
	}

	st.MessageSID = strings.TrimSpace(st.MessageSID)
	st.Status = strings.ToLower(strings.TrimSpace(st.Status))
	st.ErrorCode = strings.TrimSpace(st.ErrorCode)
	if st.MessageSID == "" {
		return ErrStatusMissingSID
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = s.now()
	}
	return s.repo.Upsert(ctx, st)
}

func (s *StatusService) Get(ctx context.Context, messageSID string) (domain.DeliveryStatus, error) {
	if s == nil || s.repo == nil {
		return domain.DeliveryStatus{}, ErrStatusServiceNotConfigured
	}
	messageSID = strings.TrimSpace(messageSID)
	if messageSID == "" {
		return domain.DeliveryStatus{}, ErrStatusMissingSID
	}
	st, err := s.repo.GetBySID(ctx, messageSID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.DeliveryStatus{}, ErrStatusNotFound
	}
	return st, err
}
