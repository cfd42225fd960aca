// internal/services/notification_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

const (
	userNotificationTitle      = "New Notification"
	broadcastNotificationTitle = "New Update"
)

type NotificationService struct {
	db          *gorm.DB
	pusher      Pusher
	perPage     int
	pushTimeout time.Duration
}

type SendNotificationRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Message string `json:"message" validate:"required"`
	Link    string `json:"link" validate:"required"`
}

type BroadcastRequest struct {
	Message string `json:"message" validate:"required"`
	Link    string `json:"link" validate:"required"`
}

func NewNotificationService(db *gorm.DB, pusher Pusher, perPage int, pushTimeout time.Duration) *NotificationService {
	return &NotificationService{db: db, pusher: pusher, perPage: perPage, pushTimeout: pushTimeout}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page int) (*utils.PageResult, error) {
	scoped := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return nil, utils.Unexpected(err)
	}

	notifications := []models.Notification{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(utils.Offset(page, s.perPage)).
		Limit(s.perPage).
		Find(&notifications).Error
	if err != nil {
		return nil, utils.Unexpected(err)
	}

	return &utils.PageResult{
		Data:       notifications,
		Count:      len(notifications),
		TotalCount: total,
		ResPerPage: s.perPage,
	}, nil
}

func (s *NotificationService) HasUnread(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).
		Select("id").
		Where("user_id = ? AND is_read = ?", userID, false).
		Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, utils.Unexpected(err)
	}
	return true, nil
}

// MarkRead flips one notification to read. Only the owner may do so, and a
// read notification never becomes unread again.
func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, rawID string) (*models.Notification, error) {
	id, err := parseID("Notification", rawID)
	if err != nil {
		return nil, err
	}

	var notification models.Notification
	if err := s.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, utils.StoreError(err, "Notification", id)
	}
	if notification.UserID != userID {
		return nil, utils.Forbidden("Not authorized to perform this action.")
	}

	if !notification.IsRead {
		notification.IsRead = true
		if err := s.db.WithContext(ctx).Model(&notification).UpdateColumn("is_read", true).Error; err != nil {
			return nil, utils.Unexpected(err)
		}
	}
	return &notification, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		UpdateColumn("is_read", true).Error
	if err != nil {
		return utils.Unexpected(err)
	}
	return nil
}

// SendToUser stores a notification for one user and pushes it to their
// device when they have registered one.
func (s *NotificationService) SendToUser(ctx context.Context, req *SendNotificationRequest) (*models.Notification, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, utils.Validation("User ID, message, and link are all required.")
	}
	userID, err := parseID("User", req.UserID)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "push_token").First(&user, "id = ?", userID).Error; err != nil {
		return nil, utils.StoreError(err, "User", userID)
	}

	notification := &models.Notification{UserID: userID, Message: req.Message, Link: req.Link}
	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, utils.Unexpected(err)
	}

	if user.PushToken != nil && *user.PushToken != "" {
		pushAsync(s.pusher, s.pushTimeout, []string{*user.PushToken}, userNotificationTitle, req.Message,
			map[string]string{"link": req.Link})
	}
	return notification, nil
}

// SendToAll notifies every user with a registered push token and returns
// how many were reached.
func (s *NotificationService) SendToAll(ctx context.Context, req *BroadcastRequest) (int, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return 0, utils.Validation("Message and link are required.")
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Select("id", "push_token").
		Where("push_token IS NOT NULL AND push_token <> ''").
		Find(&users).Error
	if err != nil {
		return 0, utils.Unexpected(err)
	}
	if len(users) == 0 {
		return 0, &utils.AppError{Kind: utils.KindNotFound, Message: "No users with push tokens found."}
	}

	notifications := make([]models.Notification, 0, len(users))
	tokens := make([]string, 0, len(users))
	for _, u := range users {
		notifications = append(notifications, models.Notification{UserID: u.ID, Message: req.Message, Link: req.Link})
		tokens = append(tokens, *u.PushToken)
	}
	if err := s.db.WithContext(ctx).CreateInBatches(notifications, 500).Error; err != nil {
		return 0, utils.Unexpected(err)
	}

	pushAsync(s.pusher, s.pushTimeout, tokens, broadcastNotificationTitle, req.Message,
		map[string]string{"link": req.Link})
	return len(users), nil
}
