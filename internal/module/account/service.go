package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/koiconsult/internal/domain"
)

// TokenIssuer signs bearer tokens for authenticated principals.
type TokenIssuer interface {
	Issue(p domain.Principal) (string, time.Time, error)
}

// Service defines the account operations.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, login, password string) (*TokenResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in ResetPasswordInput) error
	EnsureAdmin(ctx context.Context, userName, email, password string) (bool, error)
}

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	UserName string
	Email    string
	Password string
}

// ResetPasswordInput carries a reset-password request.
type ResetPasswordInput struct {
	Email           string
	NewPassword     string
	ConfirmPassword string
	Token           string
}

// Options tunes the account service.
type Options struct {
	ResetTokenTTL time.Duration
	ResetURL      string
	BcryptCost    int
}

// accountService implements Service.
type accountService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	mailer Mailer
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new account Service.
func NewService(users domain.UserRepository, tokens TokenIssuer, mailer Mailer, opts Options, logger *slog.Logger) Service {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &accountService{users: users, tokens: tokens, mailer: mailer, opts: opts, logger: logger, now: time.Now}
}

// Register creates a member account.
func (s *accountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	userName := strings.TrimSpace(in.UserName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateRegisterInput(userName, email, in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUserName(ctx, userName); err == nil {
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "User name is already taken", nil)
	} else if !domain.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "Email is already registered", nil)
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleMember,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by email, or by user name when login has no "@".
func (s *accountService) Login(ctx context.Context, login, password string) (*TokenResponse, error) {
	login = strings.TrimSpace(login)
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.users.GetByEmail(ctx, login)
	} else {
		user, err = s.users.GetByUserName(ctx, login)
	}
	if err != nil {
		// Unknown accounts and bad passwords look the same to the caller.
		if domain.IsNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}

	principal := domain.Principal{UserID: user.ID, UserName: user.UserName, Role: user.Role}
	token, expires, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to issue token", err)
	}
	return &TokenResponse{
		Token:     token,
		ExpiresAt: expires.Unix(),
		UserID:    user.ID,
		UserName:  user.UserName,
		Email:     user.Email,
		Role:      user.Role,
	}, nil
}

var errBadCredentials = domain.NewAppError(domain.CodeUnauthorized, "Invalid email or password", nil)

// ForgotPassword issues a reset token for the account behind email and hands
// a link to the mailer. Unknown emails succeed silently.
func (s *accountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if domain.IsNotFound(err) {
		s.logger.InfoContext(ctx, "password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token := rand.Text()
	expires := s.now().Add(s.opts.ResetTokenTTL)
	user.ResetTokenHash = hashToken(token)
	user.ResetTokenExpiry = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.UserName, resetLink(s.opts.ResetURL, user.Email, token)); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset", slog.Any("error", err))
	}
	return nil
}

// ResetPassword sets a new password when token matches the one issued to
// email and has not expired. A token works once.
func (s *accountService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if in.NewPassword != in.ConfirmPassword {
		return domain.Validationf("Passwords do not match")
	}
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if domain.IsNotFound(err) {
		return errBadResetToken
	}
	if err != nil {
		return err
	}
	if user.ResetTokenHash == "" || user.ResetTokenExpiry == nil || s.now().After(*user.ResetTokenExpiry) {
		return errBadResetToken
	}
	if subtle.ConstantTimeCompare([]byte(user.ResetTokenHash), []byte(hashToken(strings.TrimSpace(in.Token)))) != 1 {
		return errBadResetToken
	}

	hash, err := s.hash(in.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ResetTokenHash = ""
	user.ResetTokenExpiry = nil
	return s.users.Update(ctx, user)
}

var errBadResetToken = domain.Validationf("Reset token is invalid or expired")

// EnsureAdmin creates the bootstrap administrator unless an account with
// userName already exists. It reports whether an account was created.
func (s *accountService) EnsureAdmin(ctx context.Context, userName, email, password string) (bool, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return false, nil
	}
	if _, err := s.users.GetByUserName(ctx, userName); err == nil {
		return false, nil
	} else if !domain.IsNotFound(err) {
		return false, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateRegisterInput(userName, email, password); err != nil {
		return false, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	admin := &domain.User{UserName: userName, Email: email, PasswordHash: hash, Role: domain.RoleAdmin}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "admin account created", slog.String("user_name", userName))
	return true, nil
}

func (s *accountService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func validateRegisterInput(userName, email, password string) error {
	n := utf8.RuneCountInString(userName)
	if n == 0 {
		return domain.Validationf("User name is required")
	}
	if n > 100 {
		return domain.Validationf("User name must not exceed 100 characters")
	}
	if strings.ContainsAny(userName, "@/ ") {
		return domain.Validationf("User name must not contain spaces, '@' or '/'")
	}
	if email == "" {
		return domain.Validationf("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return domain.Validationf("Email must be a valid email address")
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.Validationf("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return domain.Validationf("Password must not exceed 72 characters")
	}
	return nil
}
