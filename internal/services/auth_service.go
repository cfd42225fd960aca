// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/config"
	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

const (
	otpLifetime   = 10 * time.Minute
	resetWindow   = 5 * time.Minute
	mailTimeout   = 30 * time.Second
	invalidOTPMsg = "Invalid or expired OTP"
)

type AuthService struct {
	db       *gorm.DB
	mailer   Mailer
	tokenTTL int
	now      func() time.Time
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"omitempty,min=4,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,strong_password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// AuthResponse is returned to the client and mirrored into the auth cookie.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func NewAuthService(db *gorm.DB, mailer Mailer, cfg config.JWTConfig) *AuthService {
	return &AuthService{db: db, mailer: mailer, tokenTTL: cfg.AccessTokenTTL, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account and mails it a one-time code. An
// earlier unverified account with the same email is replaced.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateRequest(req); err != nil {
		return "", err
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return "", utils.Unexpected(err)
	}
	expires := s.now().Add(otpLifetime)

	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Role:      models.UserRoleUser,
		OTPCode:   &otp,
		OTPExpire: &expires,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", req.Email).Take(&existing).Error
		switch {
		case err == nil && existing.IsVerified:
			return utils.Validation("Email already registered")
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(user).Error
	})
	if err != nil {
		if _, ok := utils.AsAppError(err); ok {
			return "", err
		}
		return "", utils.StoreError(err, "User", req.Email)
	}

	s.sendOTP(user.Email, otp)
	return user.Email, nil
}

func (s *AuthService) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userByEmail(ctx, req.Email)
	if err != nil || !user.OTPMatches(req.OTP, s.now()) {
		return nil, utils.Validation(invalidOTPMsg)
	}

	user.IsVerified = true
	user.ClearOTP()
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, utils.Unexpected(err)
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// AdminSignIn is Login restricted to administrators.
func (s *AuthService) AdminSignIn(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, utils.Forbidden("Not authorized: Access denied")
	}
	return s.issue(user)
}

func (s *AuthService) authenticate(ctx context.Context, req *LoginRequest) (*models.User, error) {
	user, err := s.userByEmail(ctx, req.Email)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.Unauthorized("Invalid credentials")
		}
		return nil, err
	}
	if err := user.CheckPassword(req.Password); err != nil {
		return nil, utils.Unauthorized("Invalid credentials")
	}
	return user, nil
}

// ForgotPassword mails a fresh one-time code to an existing account.
func (s *AuthService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) (string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateRequest(req); err != nil {
		return "", err
	}
	user, err := s.userByEmail(ctx, req.Email)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return "", &utils.AppError{Kind: utils.KindNotFound, Message: "User not found with this email"}
		}
		return "", err
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return "", utils.Unexpected(err)
	}
	expires := s.now().Add(otpLifetime)
	user.OTPCode = &otp
	user.OTPExpire = &expires
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return "", utils.Unexpected(err)
	}

	s.sendOTP(user.Email, otp)
	return user.Email, nil
}

// VerifyResetOTP consumes the code and opens a short password reset window.
func (s *AuthService) VerifyResetOTP(ctx context.Context, req *VerifyOTPRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateRequest(req); err != nil {
		return err
	}
	user, err := s.userByEmail(ctx, req.Email)
	if err != nil || !user.OTPMatches(req.OTP, s.now()) {
		return utils.Validation(invalidOTPMsg)
	}

	until := s.now().Add(resetWindow)
	user.ClearOTP()
	user.ResetPasswordAllowed = true
	user.ResetPasswordAllowedExpire = &until
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return utils.Unexpected(err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userByEmail(ctx, req.Email)
	if err != nil || !user.ResetPasswordAllowed ||
		user.ResetPasswordAllowedExpire == nil || s.now().After(*user.ResetPasswordAllowedExpire) {
		return nil, utils.Validation("Password reset not allowed or session expired.")
	}
	if req.Password != req.ConfirmPassword {
		return nil, utils.Validation("Passwords do not match")
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.ResetPasswordAllowed = false
	user.ResetPasswordAllowedExpire = nil
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, utils.Unexpected(err)
	}
	return s.issue(user)
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, utils.StoreError(err, "User", email)
	}
	return &user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateJWT(user.ID, string(user.Role), s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// sendOTP mails in the background. The account change is already stored, so
// a delivery failure is only logged.
func (s *AuthService) sendOTP(email, otp string) {
	if s.mailer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := s.mailer.SendOTP(ctx, email, otp); err != nil {
			logrus.WithError(err).WithField("email", email).Error("Failed to send OTP mail")
		}
	}()
}
