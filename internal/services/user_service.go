// internal/services/user_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/database"
	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type UserService struct {
	db         *gorm.DB
	aggregator *RatingAggregator
}

type UpdateMeRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=4,max=30"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strong_password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type PushTokenRequest struct {
	Token string `json:"token"`
}

// AdminUpdateUserRequest is what an administrator may change on an account.
type AdminUpdateUserRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=4,max=30"`
	Email      *string          `json:"email" validate:"omitempty,email"`
	Role       *models.UserRole `json:"role" validate:"omitempty,oneof=user admin"`
	IsVerified *bool            `json:"isVerified"`
}

func NewUserService(db *gorm.DB, aggregator *RatingAggregator) *UserService {
	return &UserService{db: db, aggregator: aggregator}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, utils.StoreError(err, "User", userID)
	}
	return &user, nil
}

func (s *UserService) UpdateMe(ctx context.Context, userID uuid.UUID, req *UpdateMeRequest) (*models.User, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = normalizeEmail(*req.Email)
	}
	return s.apply(ctx, userID, updates)
}

func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, req *UpdatePasswordRequest) error {
	if err := utils.ValidateRequest(req); err != nil {
		return err
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.CheckPassword(req.OldPassword); err != nil {
		return utils.Unauthorized("Incorrect old password.")
	}
	if req.NewPassword != req.ConfirmPassword {
		return utils.Validation("New passwords do not match.")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("password_hash", user.PasswordHash).Error; err != nil {
		return utils.Unexpected(err)
	}
	return nil
}

// UpdatePushToken registers the device token; an empty token unregisters it.
func (s *UserService) UpdatePushToken(ctx context.Context, userID uuid.UUID, req *PushTokenRequest) error {
	var token interface{}
	if t := strings.TrimSpace(req.Token); t != "" {
		token = t
	}
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).UpdateColumn("push_token", token)
	if result.Error != nil {
		return utils.Unexpected(result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.NotFound("User", userID)
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, utils.Unexpected(err)
	}
	return users, nil
}

func (s *UserService) AdminUpdateUser(ctx context.Context, rawID string, req *AdminUpdateUserRequest) (*models.User, error) {
	id, err := parseID("User", rawID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = normalizeEmail(*req.Email)
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsVerified != nil {
		updates["is_verified"] = *req.IsVerified
	}
	return s.apply(ctx, id, updates)
}

// DeleteUser removes the account together with its reviews, wishlist,
// notifications and try-on history. Ratings of reviewed products are
// recalculated afterwards.
func (s *UserService) DeleteUser(ctx context.Context, rawID string) error {
	id, err := parseID("User", rawID)
	if err != nil {
		return err
	}
	if _, err := s.GetUserByID(ctx, id); err != nil {
		return err
	}

	var reviewed []uuid.UUID
	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Model(&models.Review{}).Where("user_id = ?", id).Pluck("product_id", &reviewed).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.Review{}, &models.WishlistItem{}, &models.Notification{}, &models.TryOnHistory{}} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return utils.Unexpected(err)
	}

	for _, productID := range reviewed {
		refreshRating(ctx, s.aggregator, productID)
	}
	return nil
}

func (s *UserService) apply(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	if len(updates) > 0 {
		result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, utils.StoreError(result.Error, "User", id)
		}
	}
	return s.GetUserByID(ctx, id)
}
