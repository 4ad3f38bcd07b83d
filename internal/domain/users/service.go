package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"navibu-api/internal/domain/apperr"
	"navibu-api/internal/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultVerificationCodeTTL = 30 * time.Minute
	DefaultResetCodeTTL        = 15 * time.Minute
)

// Notifier delivers the one-time codes to the user's mailbox.
type Notifier interface {
	SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error
	SendPasswordResetCode(ctx context.Context, to, code string, ttl time.Duration) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	Issue(userID uint, email string) (string, error)
}

// Service implements registration, verification, login and password reset.
type Service struct {
	db     *gorm.DB
	hasher PasswordHasher
	tokens TokenIssuer
	mailer Notifier
	codes  CodeGenerator
	now    func() time.Time

	verificationTTL time.Duration
	resetTTL        time.Duration

	// compared against on unknown emails so both login failures cost one bcrypt check
	dummyHash string
}

type Option func(*Service)

func WithCodeGenerator(g CodeGenerator) Option {
	return func(s *Service) { s.codes = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCodeTTLs(verification, reset time.Duration) Option {
	return func(s *Service) {
		if verification > 0 {
			s.verificationTTL = verification
		}
		if reset > 0 {
			s.resetTTL = reset
		}
	}
}

func NewService(db *gorm.DB, hasher PasswordHasher, tokens TokenIssuer, mailer Notifier, opts ...Option) *Service {
	s := &Service{
		db:              db,
		hasher:          hasher,
		tokens:          tokens,
		mailer:          mailer,
		codes:           RandomCodes(),
		now:             func() time.Time { return time.Now().UTC() },
		verificationTTL: DefaultVerificationCodeTTL,
		resetTTL:        DefaultResetCodeTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	hash, err := s.hasher.Hash("navibu-dummy-password")
	if err != nil {
		logger.Log.Errorw("failed to precompute dummy password hash", "err", err)
	}
	s.dummyHash = hash
	return s
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Surname  string
}

type RegisterResult struct {
	UserID    uint
	EmailSent bool
}

type LoginResult struct {
	Token string
	User  *User
}

// Register creates an unverified user and mails a verification code.
// The user row is durable once created; a failed mail only clears EmailSent.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperr.ErrValidation)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}
	code, err := s.codes.Generate()
	if err != nil {
		return nil, err
	}

	user := User{
		Email:        email,
		PasswordHash: hash,
		Name:         optional(in.Name),
		Surname:      optional(in.Surname),
	}
	user.IssueVerificationCode(code, s.now(), s.verificationTTL)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("email %w", apperr.ErrConflict)
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("email %w", apperr.ErrConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			logger.Log.Errorw("failed to create user", "email", email, "err", err)
		}
		return nil, err
	}

	res := &RegisterResult{UserID: user.ID, EmailSent: true}
	if err := s.mailer.SendVerificationCode(ctx, email, code, s.verificationTTL); err != nil {
		logger.Log.Warnw("verification mail not sent", "user_id", user.ID, "err", err)
		res.EmailSent = false
	}
	return res, nil
}

// VerifyAccount consumes the verification code. Wrong and expired codes are reported the same way.
func (s *Service) VerifyAccount(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and code are required", apperr.ErrValidation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockByEmail(tx, email)
		if err != nil {
			return err
		}
		if user.IsVerified {
			return apperr.ErrAlreadyVerified
		}
		if !user.VerificationCodeValid(code, s.now()) {
			return apperr.ErrInvalidOrExpiredCode
		}

		user.MarkVerified()
		return tx.Save(user).Error
	})
}

// ResendVerification replaces the pending code. If the mail cannot be sent the
// new code is rolled back and the previous one stays in force.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", apperr.ErrValidation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockByEmail(tx, email)
		if err != nil {
			return err
		}
		if user.IsVerified {
			return apperr.ErrAlreadyVerified
		}

		code, err := s.codes.Generate()
		if err != nil {
			return err
		}
		user.IssueVerificationCode(code, s.now(), s.verificationTTL)
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		if err := s.mailer.SendVerificationCode(ctx, user.Email, code, s.verificationTTL); err != nil {
			logger.Log.Errorw("failed to resend verification mail", "user_id", user.ID, "err", err)
			return fmt.Errorf("%w: %v", apperr.ErrNotificationFailed, err)
		}
		return nil
	})
}

// Login does not distinguish an unknown email from a wrong password.
// Unverified users may log in.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperr.ErrValidation)
	}

	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		logger.Log.Errorw("failed to load user", "err", err)
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		logger.Log.Errorw("failed to issue token", "user_id", user.ID, "err", err)
		return nil, err
	}
	return &LoginResult{Token: token, User: &user}, nil
}

// ForgotPassword issues a reset code. Persisting and mailing happen in one
// transaction, so a code the user never received is never left usable.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", apperr.ErrValidation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockByEmail(tx, email)
		if err != nil {
			return err
		}

		code, err := s.codes.Generate()
		if err != nil {
			return err
		}
		user.IssueResetCode(code, s.now())
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		if err := s.mailer.SendPasswordResetCode(ctx, user.Email, code, s.resetTTL); err != nil {
			logger.Log.Errorw("failed to send password reset mail", "user_id", user.ID, "err", err)
			return fmt.Errorf("%w: %v", apperr.ErrNotificationFailed, err)
		}
		return nil
	})
}

func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" || newPassword == "" {
		return fmt.Errorf("%w: email, code and new_password are required", apperr.ErrValidation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockByEmail(tx, email)
		if err != nil {
			return err
		}
		if !user.ResetCodeValid(code, s.now(), s.resetTTL) {
			return apperr.ErrInvalidOrExpiredCode
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		user.ClearResetCode()
		return tx.Save(user).Error
	})
}

// CheckUserHasRoutes reports whether the user selected at least one route.
func (s *Service) CheckUserHasRoutes(ctx context.Context, userID uint) (bool, error) {
	db := s.db.WithContext(ctx)
	if _, err := findByID(db, userID); err != nil {
		return false, err
	}

	var count int64
	if err := db.Table("user_routes").Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) Profile(ctx context.Context, userID uint) (*User, error) {
	return findByID(s.db.WithContext(ctx), userID)
}

func lockByEmail(tx *gorm.DB, email string) (*User, error) {
	var user User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func findByID(db *gorm.DB, id uint) (*User, error) {
	var user User
	err := db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
