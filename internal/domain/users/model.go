package users

import (
	"time"
)

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Email        string  `gorm:"size:120;not null;uniqueIndex:idx_users_email"`
	PasswordHash string  `gorm:"column:password_hash;size:256;not null"`
	Name         *string `gorm:"size:100"`
	Surname      *string `gorm:"size:100"`
	IsVerified   bool    `gorm:"not null;default:false"`

	VerificationCode   *string    `gorm:"column:verification_code;size:6"`
	VerificationExpiry *time.Time `gorm:"column:verification_expiry"`

	ResetCode          *string    `gorm:"column:reset_code;size:6"`
	ResetCodeTimestamp *time.Time `gorm:"column:reset_code_timestamp"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

// IssueVerificationCode puts the user in the unverified state with a code valid until now+ttl.
func (u *User) IssueVerificationCode(code string, now time.Time, ttl time.Duration) {
	expiry := now.Add(ttl)
	u.VerificationCode = &code
	u.VerificationExpiry = &expiry
}

// VerificationCodeValid reports whether code matches and now is strictly before the expiry.
func (u *User) VerificationCodeValid(code string, now time.Time) bool {
	if u.VerificationCode == nil || u.VerificationExpiry == nil {
		return false
	}
	return *u.VerificationCode == code && now.Before(*u.VerificationExpiry)
}

// MarkVerified is one-way: the code and expiry are consumed.
func (u *User) MarkVerified() {
	u.IsVerified = true
	u.VerificationCode = nil
	u.VerificationExpiry = nil
}

func (u *User) IssueResetCode(code string, now time.Time) {
	u.ResetCode = &code
	u.ResetCodeTimestamp = &now
}

// ResetCodeValid allows the code up to and including ttl after it was issued.
func (u *User) ResetCodeValid(code string, now time.Time, ttl time.Duration) bool {
	if u.ResetCode == nil || u.ResetCodeTimestamp == nil {
		return false
	}
	if now.Sub(*u.ResetCodeTimestamp) > ttl {
		return false
	}
	return *u.ResetCode == code
}

func (u *User) ClearResetCode() {
	u.ResetCode = nil
	u.ResetCodeTimestamp = nil
}
