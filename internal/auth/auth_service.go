package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/khanghh/docportal/internal/audit"
	"github.com/khanghh/docportal/internal/mail"
	"github.com/khanghh/docportal/internal/store"
	"github.com/khanghh/docportal/internal/users"
	"github.com/khanghh/docportal/model"
	"github.com/khanghh/docportal/model/query"
	"github.com/khanghh/docportal/params"
)

type SignupResult struct {
	User      *model.User
	EmailSent bool
}

type VerifyResult struct {
	Email           string
	AlreadyVerified bool
}

// ResendRecord marks an email that was recently sent a verification link.
type ResendRecord struct {
	Email  string `redis:"email"`
	SentAt int64  `redis:"sent_at"`
}

// Transactor runs fc within a single database transaction. *query.Query
// satisfies it.
type Transactor interface {
	Transaction(fc func(tx *query.Query) error, opts ...*sql.TxOptions) error
}

type Options struct {
	BaseURL           string
	EmailDomain       string
	AdminEmails       []string
	PasswordMinLength int
	TokenExpiration   time.Duration
	MailTimeout       time.Duration
	ResendCooldown    time.Duration
}

type AuthService struct {
	txm         Transactor
	userRepo    users.UserRepository
	recorder    *audit.Recorder
	hasher      PasswordHasher
	tokens      *TokenIssuer
	mailSender  mail.MailSender
	resendStore store.Store[ResendRecord]
	validator   *Validator
	admins      map[string]bool
	opts        Options
	now         func() time.Time
}

// fail records a failed attempt and returns err. A failed event write is
// joined to err.
func (s *AuthService) fail(ctx context.Context, entry audit.Entry, reason string, err error) error {
	entry.Status = audit.Failed(reason)
	if recErr := s.recorder.Record(ctx, entry); recErr != nil {
		return errors.Join(err, recErr)
	}
	return err
}

func (s *AuthService) roleFor(email string) model.Role {
	if s.admins[email] {
		return model.RoleAdmin
	}
	return model.RoleUser
}

func (s *AuthService) verifyURL(token string) (string, error) {
	verifyURL, err := url.JoinPath(s.opts.BaseURL, "verify-email")
	if err != nil {
		return "", err
	}
	return verifyURL + "?" + url.Values{"token": {token}}.Encode(), nil
}

// sendVerification issues a fresh token for user and mails the link, bounded
// by the configured mail timeout.
func (s *AuthService) sendVerification(ctx context.Context, user *model.User) error {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}
	verifyURL, err := s.verifyURL(token)
	if err != nil {
		return err
	}
	mailCtx, cancel := context.WithTimeout(ctx, s.opts.MailTimeout)
	defer cancel()
	if err := mail.SendVerificationEmail(mailCtx, s.mailSender, user.Email, verifyURL, s.opts.TokenExpiration); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func (s *AuthService) Signup(ctx context.Context, email string, password string, confirmPassword string) (*SignupResult, error) {
	email = normalizeEmail(email)
	entry := audit.Entry{Action: model.ActionSignup, ActorLabel: email}

	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, s.fail(ctx, entry, audit.ReasonInvalidEmailFormat, err)
	}
	if err := s.validator.ValidatePassword(password); err != nil {
		return nil, s.fail(ctx, entry, audit.ReasonInvalidPasswordFormat, err)
	}
	if password != confirmPassword {
		return nil, s.fail(ctx, entry, audit.ReasonPasswordsMismatch, &ValidationError{
			Field:   "confirmPassword",
			Reason:  audit.ReasonPasswordsMismatch,
			Message: "Passwords do not match.",
		})
	}

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, s.fail(ctx, entry, audit.ReasonUserExists, ErrUserExists)
	}
	if !errors.Is(err, users.ErrUserNotFound) {
		return nil, s.fail(ctx, entry, audit.ReasonServerError, fmt.Errorf("lookup user: %w", err))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.fail(ctx, entry, audit.ReasonServerError, fmt.Errorf("hash password: %w", err))
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Verified:     false,
		Role:         s.roleFor(email),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrEmailRegistered) {
			return nil, s.fail(ctx, entry, audit.ReasonUserExists, ErrUserExists)
		}
		return nil, s.fail(ctx, entry, audit.ReasonServerError, fmt.Errorf("create user: %w", err))
	}

	entry.ActorUserID = user.ID
	entry.Status = audit.StatusPendingVerification
	emailSent := true
	if err := s.sendVerification(ctx, user); err != nil {
		slog.Warn("Verification email not sent", "userID", user.ID, "error", err)
		entry.Status = audit.StatusEmailNotSent
		emailSent = false
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		return nil, err
	}
	return &SignupResult{User: user, EmailSent: emailSent}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*VerifyResult, error) {
	entry := audit.Entry{Action: model.ActionVerifyEmail}

	claims, err := s.tokens.Verify(token)
	if errors.Is(err, ErrTokenExpired) {
		entry.ActorLabel = claims.Email
		return nil, s.fail(ctx, entry, audit.ReasonTokenExpired, ErrTokenExpired)
	}
	if err != nil {
		return nil, s.fail(ctx, entry, audit.ReasonInvalidToken, ErrTokenInvalid)
	}
	entry.ActorLabel = claims.Email

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, s.fail(ctx, entry, audit.ReasonUserNotFound, ErrUserNotFound)
	}
	if err != nil {
		return nil, s.fail(ctx, entry, audit.ReasonServerError, fmt.Errorf("lookup user: %w", err))
	}
	if !strings.EqualFold(user.Email, claims.Email) {
		return nil, s.fail(ctx, entry, audit.ReasonUserNotFound, ErrUserNotFound)
	}
	entry.ActorUserID = user.ID

	result := &VerifyResult{Email: user.Email, AlreadyVerified: user.Verified}
	if user.Verified {
		entry.Status = audit.StatusAlreadyVerified
		if err := s.recorder.Record(ctx, entry); err != nil {
			return nil, err
		}
		return result, nil
	}

	// the verified flag and its event commit together
	var markErr, recordErr error
	err = s.txm.Transaction(func(tx *query.Query) error {
		flipped, err := s.userRepo.WithTx(tx).MarkVerified(ctx, user.ID, user.Email)
		if err != nil {
			markErr = err
			return err
		}
		// lost a race with a concurrent verification of the same user
		result.AlreadyVerified = !flipped
		entry.Status = audit.StatusSuccess
		if result.AlreadyVerified {
			entry.Status = audit.StatusAlreadyVerified
		}
		recordErr = s.recorder.WithTx(tx).Record(ctx, entry)
		return recordErr
	})
	switch {
	case markErr != nil:
		return nil, s.fail(ctx, entry, audit.ReasonServerError, fmt.Errorf("mark verified: %w", markErr))
	case recordErr != nil:
		return nil, recordErr
	case err != nil:
		return nil, s.fail(ctx, entry, audit.ReasonServerError, fmt.Errorf("commit verification: %w", err))
	}
	return result, nil
}

// ResendVerification mails a new verification link. Unknown emails are
// reported as success to the caller.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	entry := audit.Entry{Action: model.ActionResendVerification, ActorLabel: email}

	if err := s.validator.ValidateEmail(email); err != nil {
		return s.fail(ctx, entry, audit.ReasonInvalidEmailFormat, err)
	}

	_, err := s.resendStore.Get(ctx, email)
	if err == nil {
		return s.fail(ctx, entry, audit.ReasonTooManyRequests, ErrResendTooSoon)
	}
	if !errors.Is(err, store.ErrNotFound) {
		slog.Warn("Could not read resend cooldown", "error", err)
	}
	record := ResendRecord{Email: email, SentAt: s.now().Unix()}
	if err := s.resendStore.Set(ctx, email, record, s.opts.ResendCooldown); err != nil {
		slog.Warn("Could not store resend cooldown", "error", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, users.ErrUserNotFound) {
		return s.fail(ctx, entry, audit.ReasonUserNotFound, nil)
	}
	if err != nil {
		return s.fail(ctx, entry, audit.ReasonServerError, fmt.Errorf("lookup user: %w", err))
	}
	entry.ActorUserID = user.ID

	entry.Status = audit.StatusAlreadyVerified
	if !user.Verified {
		entry.Status = audit.StatusSuccess
		if err := s.sendVerification(ctx, user); err != nil {
			slog.Warn("Verification email not sent", "userID", user.ID, "error", err)
			entry.Status = audit.StatusEmailNotSent
		}
	}
	return s.recorder.Record(ctx, entry)
}

func (s *AuthService) Login(ctx context.Context, email string, password string, sess Session) (*model.Identity, error) {
	email = normalizeEmail(email)
	entry := audit.Entry{Action: model.ActionLogin, ActorLabel: email}

	if email == "" || password == "" {
		return nil, s.fail(ctx, entry, audit.ReasonMissingCredentials, &ValidationError{
			Field:   "credentials",
			Reason:  audit.ReasonMissingCredentials,
			Message: "Email and password are required.",
		})
	}
	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, s.fail(ctx, entry, audit.ReasonInvalidEmailFormat, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, s.fail(ctx, entry, audit.ReasonUserNotFound, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, s.fail(ctx, entry, audit.ReasonServerError, fmt.Errorf("lookup user: %w", err))
	}
	entry.ActorUserID = user.ID

	if !user.Verified {
		return nil, s.fail(ctx, entry, audit.ReasonNotVerified, ErrNotVerified)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, s.fail(ctx, entry, audit.ReasonIncorrectPassword, ErrInvalidCredentials)
		}
		return nil, s.fail(ctx, entry, audit.ReasonServerError, fmt.Errorf("compare password: %w", err))
	}

	ident := user.Identity()
	if err := sess.Establish(ident); err != nil {
		return nil, s.fail(ctx, entry, audit.ReasonSessionError, fmt.Errorf("%w: %v", ErrSessionFailed, err))
	}

	entry.Status = audit.StatusSuccess
	if err := s.recorder.Record(ctx, entry); err != nil {
		if destroyErr := sess.Destroy(); destroyErr != nil {
			slog.Error("Could not destroy unrecorded session", "userID", user.ID, "error", destroyErr)
		}
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		slog.Warn("Could not update last login time", "userID", user.ID, "error", err)
	}
	return &ident, nil
}

func (s *AuthService) Logout(ctx context.Context, sess Session) error {
	entry := audit.Entry{Action: model.ActionLogout}
	ident, ok := sess.Identity()
	if !ok {
		return s.fail(ctx, entry, audit.ReasonNotAuthenticated, ErrNotAuthenticated)
	}
	entry = audit.ActorEntry(model.ActionLogout, ident, "", audit.StatusSuccess)

	if err := sess.Destroy(); err != nil {
		return s.fail(ctx, entry, audit.ReasonSessionError, fmt.Errorf("%w: %v", ErrSessionFailed, err))
	}
	return s.recorder.Record(ctx, entry)
}

func applyDefaults(opts Options) Options {
	if opts.TokenExpiration <= 0 {
		opts.TokenExpiration = params.VerificationTokenExpiration
	}
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = params.MailSendTimeout
	}
	if opts.ResendCooldown <= 0 {
		opts.ResendCooldown = params.ResendVerificationCooldown
	}
	return opts
}

func NewAuthService(
	txm Transactor,
	userRepo users.UserRepository,
	recorder *audit.Recorder,
	hasher PasswordHasher,
	tokens *TokenIssuer,
	mailSender mail.MailSender,
	resendStore store.Store[ResendRecord],
	opts Options,
) *AuthService {
	opts = applyDefaults(opts)
	admins := make(map[string]bool, len(opts.AdminEmails))
	for _, email := range opts.AdminEmails {
		admins[normalizeEmail(email)] = true
	}
	return &AuthService{
		txm:         txm,
		userRepo:    userRepo,
		recorder:    recorder,
		hasher:      hasher,
		tokens:      tokens,
		mailSender:  mailSender,
		resendStore: resendStore,
		validator:   NewValidator(opts.EmailDomain, opts.PasswordMinLength),
		admins:      admins,
		opts:        opts,
		now:         time.Now,
	}
}
