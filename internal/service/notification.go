package service

import (
	"context"

	"flexicredit-backend/internal/domain"
	"flexicredit-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, accountID int64, page, pageSize int64) ([]domain.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.noteRepo.List(ctx, accountID, page, pageSize)
}

func (s *notificationService) MarkAsRead(ctx context.Context, accountID, notificationID int64) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, accountID)
}
