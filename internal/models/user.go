// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name                       string     `json:"name" gorm:"size:30"`
	Email                      string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash               string     `json:"-" gorm:"size:255;not null"`
	Role                       UserRole   `json:"role" gorm:"type:varchar(20);default:'user';not null"`
	PushToken                  *string    `json:"-" gorm:"size:255;index"`
	OTPCode                    *string    `json:"-" gorm:"size:16"`
	OTPExpire                  *time.Time `json:"-"`
	IsVerified                 bool       `json:"isVerified" gorm:"default:false;not null"`
	ResetPasswordAllowed       bool       `json:"-" gorm:"default:false;not null"`
	ResetPasswordAllowedExpire *time.Time `json:"-"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// OTPMatches reports whether code is the user's current, unexpired OTP.
func (u *User) OTPMatches(code string, now time.Time) bool {
	if u.OTPCode == nil || u.OTPExpire == nil {
		return false
	}
	return *u.OTPCode == code && now.Before(*u.OTPExpire)
}

func (u *User) ClearOTP() {
	u.OTPCode = nil
	u.OTPExpire = nil
}
