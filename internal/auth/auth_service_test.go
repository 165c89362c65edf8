package auth

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/khanghh/docportal/internal/audit"
	"github.com/khanghh/docportal/internal/render"
	"github.com/khanghh/docportal/internal/store"
	"github.com/khanghh/docportal/model"
	"golang.org/x/crypto/bcrypt"
)

const (
	testDomain   = "bank.example"
	testPassword = "Passw0rd!"
)

func TestMain(m *testing.M) {
	if err := render.Initialize(map[string]interface{}{"siteName": "Test Portal"}, ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testEnv struct {
	svc    *AuthService
	txm    *fakeTransactor
	users  *fakeUserRepository
	events *memoryActivityRepository
	mailer *fakeMailSender
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	if opts.BaseURL == "" {
		opts.BaseURL = "https://portal.bank.example"
	}
	if opts.EmailDomain == "" {
		opts.EmailDomain = testDomain
	}
	env := &testEnv{
		users:  newFakeUserRepository(),
		events: &memoryActivityRepository{},
		mailer: &fakeMailSender{},
	}
	env.txm = &fakeTransactor{users: env.users}
	resendStore := store.New[ResendRecord](&memoryStorage{data: map[string]ResendRecord{}}, "rv:")
	env.svc = NewAuthService(
		env.txm,
		env.users,
		audit.NewRecorder(env.events),
		NewBcryptHasher(bcrypt.MinCost),
		NewTokenIssuer("test-secret", time.Hour),
		env.mailer,
		resendStore,
		opts,
	)
	return env
}

// signupVerified creates a verified user directly through the service.
func (env *testEnv) signupVerified(t *testing.T, email string) *model.User {
	t.Helper()
	res, err := env.svc.Signup(context.Background(), email, testPassword, testPassword)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	token, err := env.svc.tokens.Issue(res.User.ID, res.User.Email)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := env.svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}
	return env.users.get(email)
}

func (env *testEnv) lastEvent(t *testing.T) *model.ActivityEvent {
	t.Helper()
	events := env.events.all()
	if len(events) == 0 {
		t.Fatalf("expected at least one activity event")
	}
	return events[len(events)-1]
}

func TestSignupSuccess(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := audit.WithClientInfo(context.Background(), "10.1.1.1", "browser")

	res, err := env.svc.Signup(ctx, " Alice@Bank.Example ", testPassword, testPassword)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if !res.EmailSent {
		t.Fatalf("expected verification email to be sent")
	}

	user := env.users.get("alice@bank.example")
	if user == nil {
		t.Fatalf("expected user to be stored with normalized email")
	}
	if user.Verified {
		t.Fatalf("new user must start unverified")
	}
	if user.Role != model.RoleUser {
		t.Fatalf("expected role user, got %s", user.Role)
	}
	if user.PasswordHash == testPassword || strings.Contains(user.PasswordHash, testPassword) {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(testPassword)); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	sent := env.mailer.sent()
	if len(sent) != 1 || sent[0].To[0] != "alice@bank.example" {
		t.Fatalf("unexpected mails %+v", sent)
	}
	if !strings.Contains(sent[0].Body, "https://portal.bank.example/verify-email?token=") {
		t.Fatalf("mail body does not contain verification link: %s", sent[0].Body)
	}
	if strings.Contains(sent[0].Body, testPassword) {
		t.Fatalf("mail body must not contain the password")
	}

	events := env.events.all()
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}
	ev := events[0]
	if ev.ActionType != model.ActionSignup || ev.Status != audit.StatusPendingVerification {
		t.Fatalf("unexpected event %s %q", ev.ActionType, ev.Status)
	}
	if ev.ActorUserID == nil || *ev.ActorUserID != user.ID {
		t.Fatalf("expected actor %d, got %v", user.ID, ev.ActorUserID)
	}
	if ev.IP != "10.1.1.1" {
		t.Fatalf("expected client ip on event, got %q", ev.IP)
	}
}

func TestSignupValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		confirm  string
		reason   string
	}{
		{"foreign domain", "alice@gmail.com", testPassword, testPassword, audit.ReasonInvalidEmailFormat},
		{"lookalike domain", "alice@bank.example.evil", testPassword, testPassword, audit.ReasonInvalidEmailFormat},
		{"weak password", "alice@bank.example", "password", "password", audit.ReasonInvalidPasswordFormat},
		{"short password", "alice@bank.example", "Aa1!", "Aa1!", audit.ReasonInvalidPasswordFormat},
		{"mismatch", "alice@bank.example", testPassword, testPassword + "x", audit.ReasonPasswordsMismatch},
		{"overlong password", "alice@bank.example", "Aa1!" + strings.Repeat("x", 80), "Aa1!" + strings.Repeat("x", 80), audit.ReasonInvalidPasswordFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Options{})
			_, err := env.svc.Signup(context.Background(), tt.email, tt.password, tt.confirm)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, verr.Reason)
			}
			if env.users.get(strings.ToLower(tt.email)) != nil {
				t.Fatalf("no user must be created on validation failure")
			}
			events := env.events.all()
			if len(events) != 1 {
				t.Fatalf("expected exactly one event, got %d", len(events))
			}
			if events[0].Status != audit.Failed(tt.reason) || events[0].ActorUserID != nil {
				t.Fatalf("unexpected event status %q actor %v", events[0].Status, events[0].ActorUserID)
			}
			if len(env.mailer.sent()) != 0 {
				t.Fatalf("no mail must be sent")
			}
		})
	}
}

func TestSignupExistingEmail(t *testing.T) {
	env := newTestEnv(t, Options{})
	if _, err := env.svc.Signup(context.Background(), "alice@bank.example", testPassword, testPassword); err != nil {
		t.Fatalf("first Signup returned error: %v", err)
	}

	_, err := env.svc.Signup(context.Background(), "alice@bank.example", testPassword, testPassword)
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if got := env.lastEvent(t).Status; got != audit.Failed(audit.ReasonUserExists) {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestSignupConcurrentSameEmail(t *testing.T) {
	env := newTestEnv(t, Options{})
	const attempts = 8

	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Signup(context.Background(), "race@bank.example", testPassword, testPassword)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrUserExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful signup, got %d", succeeded)
	}
	if got := len(env.events.all()); got != attempts {
		t.Fatalf("expected one event per attempt, got %d", got)
	}
}

func TestSignupAdminRole(t *testing.T) {
	env := newTestEnv(t, Options{AdminEmails: []string{"Boss@Bank.Example"}})
	res, err := env.svc.Signup(context.Background(), "boss@bank.example", testPassword, testPassword)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if res.User.Role != model.RoleAdmin {
		t.Fatalf("expected admin role, got %s", res.User.Role)
	}
}

func TestSignupMailTimeoutIsPartialSuccess(t *testing.T) {
	env := newTestEnv(t, Options{MailTimeout: 20 * time.Millisecond})
	env.mailer.delay = time.Second

	start := time.Now()
	res, err := env.svc.Signup(context.Background(), "slow@bank.example", testPassword, testPassword)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("signup waited %v for the mail server", elapsed)
	}
	if res.EmailSent {
		t.Fatalf("expected EmailSent=false")
	}
	if env.users.get("slow@bank.example") == nil {
		t.Fatalf("user must be kept when the mail is not sent")
	}
	if got := env.lastEvent(t).Status; got != audit.StatusEmailNotSent {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestVerifyEmail(t *testing.T) {
	env := newTestEnv(t, Options{})
	res, err := env.svc.Signup(context.Background(), "alice@bank.example", testPassword, testPassword)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	token, err := env.svc.tokens.Issue(res.User.ID, res.User.Email)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	result, err := env.svc.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}
	if result.AlreadyVerified || result.Email != "alice@bank.example" {
		t.Fatalf("unexpected result %+v", result)
	}
	if !env.users.get("alice@bank.example").Verified {
		t.Fatalf("user must be verified")
	}
	ev := env.lastEvent(t)
	if ev.ActionType != model.ActionVerifyEmail || ev.Status != audit.StatusSuccess {
		t.Fatalf("unexpected event %s %q", ev.ActionType, ev.Status)
	}

	// replaying the link is a no-op success
	result, err = env.svc.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("second VerifyEmail returned error: %v", err)
	}
	if !result.AlreadyVerified {
		t.Fatalf("expected AlreadyVerified on replay")
	}
	if got := env.lastEvent(t).Status; got != audit.StatusAlreadyVerified {
		t.Fatalf("unexpected status %q", got)
	}
	if !env.users.get("alice@bank.example").Verified {
		t.Fatalf("verified flag must never revert")
	}
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	env := newTestEnv(t, Options{})
	res, err := env.svc.Signup(context.Background(), "alice@bank.example", testPassword, testPassword)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	env.svc.tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := env.svc.tokens.Issue(res.User.ID, res.User.Email)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	env.svc.tokens.now = time.Now

	_, err = env.svc.VerifyEmail(context.Background(), token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if env.users.get("alice@bank.example").Verified {
		t.Fatalf("expired token must not verify the user")
	}
	ev := env.lastEvent(t)
	if ev.Status != audit.Failed(audit.ReasonTokenExpired) || ev.ActorLabel != "alice@bank.example" {
		t.Fatalf("unexpected event %q %q", ev.Status, ev.ActorLabel)
	}
}

func TestVerifyEmailInvalidToken(t *testing.T) {
	env := newTestEnv(t, Options{})
	foreign := NewTokenIssuer("another-secret", time.Hour)
	forged, err := foreign.Issue(1, "alice@bank.example")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	for _, token := range []string{"", "not-a-token", forged} {
		_, err := env.svc.VerifyEmail(context.Background(), token)
		if !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", token, err)
		}
		if got := env.lastEvent(t).Status; got != audit.Failed(audit.ReasonInvalidToken) {
			t.Fatalf("unexpected status %q", got)
		}
	}
}

func TestVerifyEmailUnknownUser(t *testing.T) {
	env := newTestEnv(t, Options{})
	token, err := env.svc.tokens.Issue(999, "ghost@bank.example")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	_, err = env.svc.VerifyEmail(context.Background(), token)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if got := env.lastEvent(t).Status; got != audit.Failed(audit.ReasonUserNotFound) {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestVerifyEmailEventWriteFailureKeepsUserUnverified(t *testing.T) {
	env := newTestEnv(t, Options{})
	res, err := env.svc.Signup(context.Background(), "alice@bank.example", testPassword, testPassword)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	token, err := env.svc.tokens.Issue(res.User.ID, res.User.Email)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	env.events.err = errors.New("db down")
	if _, err := env.svc.VerifyEmail(context.Background(), token); err == nil {
		t.Fatalf("expected error when the event cannot be written")
	}
	if env.users.get("alice@bank.example").Verified {
		t.Fatalf("verification must roll back with its event")
	}

	env.events.err = nil
	result, err := env.svc.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if result.AlreadyVerified || !env.users.get("alice@bank.example").Verified {
		t.Fatalf("retry must verify the user, got %+v", result)
	}
}

func TestVerifyEmailCommitFailure(t *testing.T) {
	env := newTestEnv(t, Options{})
	res, err := env.svc.Signup(context.Background(), "alice@bank.example", testPassword, testPassword)
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	token, err := env.svc.tokens.Issue(res.User.ID, res.User.Email)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	env.txm.commitErr = errors.New("connection reset")
	if _, err := env.svc.VerifyEmail(context.Background(), token); err == nil {
		t.Fatalf("expected commit error")
	}
	if env.users.get("alice@bank.example").Verified {
		t.Fatalf("user must stay unverified after a failed commit")
	}
	if got := env.lastEvent(t).Status; got != audit.Failed(audit.ReasonServerError) {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestLoginBeforeVerification(t *testing.T) {
	env := newTestEnv(t, Options{})
	if _, err := env.svc.Signup(context.Background(), "alice@bank.example", testPassword, testPassword); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	sess := &fakeSession{id: "anonymous"}
	_, err := env.svc.Login(context.Background(), "alice@bank.example", testPassword, sess)
	if !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
	if _, ok := sess.Identity(); ok {
		t.Fatalf("unverified user must not be logged in")
	}
	if got := env.lastEvent(t).Status; got != audit.Failed(audit.ReasonNotVerified) {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t, Options{})
	user := env.signupVerified(t, "alice@bank.example")

	sess := &fakeSession{id: "pre-login"}
	ident, err := env.svc.Login(context.Background(), "ALICE@bank.example", testPassword, sess)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if ident.UserID != user.ID || ident.Email != "alice@bank.example" {
		t.Fatalf("unexpected identity %+v", ident)
	}
	if sess.ID() == "pre-login" {
		t.Fatalf("session id must change on login")
	}
	if got, ok := sess.Identity(); !ok || got.UserID != user.ID {
		t.Fatalf("session not bound to identity")
	}
	ev := env.lastEvent(t)
	if ev.ActionType != model.ActionLogin || ev.Status != audit.StatusSuccess {
		t.Fatalf("unexpected event %s %q", ev.ActionType, ev.Status)
	}
	if ev.ActorUserID == nil || *ev.ActorUserID != user.ID {
		t.Fatalf("expected actor %d, got %v", user.ID, ev.ActorUserID)
	}
	if env.users.get("alice@bank.example").LastLoginAt == nil {
		t.Fatalf("expected last login time to be updated")
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.signupVerified(t, "alice@bank.example")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
		reason   string
	}{
		{"wrong password", "alice@bank.example", "Wrong0ne!", ErrInvalidCredentials, audit.ReasonIncorrectPassword},
		{"unknown user", "bob@bank.example", testPassword, ErrInvalidCredentials, audit.ReasonUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{}
			_, err := env.svc.Login(context.Background(), tt.email, tt.password, sess)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if sess.issued != 0 {
				t.Fatalf("session must not be established")
			}
			if got := env.lastEvent(t).Status; got != audit.Failed(tt.reason) {
				t.Fatalf("unexpected status %q", got)
			}
		})
	}
}

func TestLoginInputValidation(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, err := env.svc.Login(context.Background(), "", "", &fakeSession{})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != audit.ReasonMissingCredentials {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
	if env.users.lookups != 0 {
		t.Fatalf("missing credentials must not reach the store")
	}

	_, err = env.svc.Login(context.Background(), "alice@gmail.com", testPassword, &fakeSession{})
	if !errors.As(err, &verr) || verr.Reason != audit.ReasonInvalidEmailFormat {
		t.Fatalf("expected invalid email error, got %v", err)
	}
	if got := len(env.events.all()); got != 2 {
		t.Fatalf("expected one event per attempt, got %d", got)
	}
}

func TestLoginSessionFailure(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.signupVerified(t, "alice@bank.example")

	sess := &fakeSession{establishErr: errors.New("redis down")}
	_, err := env.svc.Login(context.Background(), "alice@bank.example", testPassword, sess)
	if !errors.Is(err, ErrSessionFailed) {
		t.Fatalf("expected ErrSessionFailed, got %v", err)
	}
	if got := env.lastEvent(t).Status; got != audit.Failed(audit.ReasonSessionError) {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestLoginEventWriteFailureDropsSession(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.signupVerified(t, "alice@bank.example")
	env.events.err = errors.New("db down")

	sess := &fakeSession{}
	if _, err := env.svc.Login(context.Background(), "alice@bank.example", testPassword, sess); err == nil {
		t.Fatalf("expected error when the login event cannot be recorded")
	}
	if _, ok := sess.Identity(); ok {
		t.Fatalf("session must not stay authenticated without a login event")
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, Options{})
	user := env.signupVerified(t, "alice@bank.example")
	sess := &fakeSession{}
	if _, err := env.svc.Login(context.Background(), "alice@bank.example", testPassword, sess); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := env.svc.Logout(context.Background(), sess); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, ok := sess.Identity(); ok {
		t.Fatalf("session must be destroyed")
	}
	ev := env.lastEvent(t)
	if ev.ActionType != model.ActionLogout || ev.Status != audit.StatusSuccess || *ev.ActorUserID != user.ID {
		t.Fatalf("unexpected event %s %q", ev.ActionType, ev.Status)
	}

	if err := env.svc.Logout(context.Background(), sess); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	ev = env.lastEvent(t)
	if ev.Status != audit.Failed(audit.ReasonNotAuthenticated) || ev.ActorUserID != nil {
		t.Fatalf("unexpected event %q %v", ev.Status, ev.ActorUserID)
	}
}

func TestResendVerificationCooldown(t *testing.T) {
	env := newTestEnv(t, Options{})
	if _, err := env.svc.Signup(context.Background(), "alice@bank.example", testPassword, testPassword); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	if err := env.svc.ResendVerification(context.Background(), "alice@bank.example"); err != nil {
		t.Fatalf("ResendVerification returned error: %v", err)
	}
	if got := len(env.mailer.sent()); got != 2 {
		t.Fatalf("expected 2 verification mails, got %d", got)
	}
	if got := env.lastEvent(t).Status; got != audit.StatusSuccess {
		t.Fatalf("unexpected status %q", got)
	}

	err := env.svc.ResendVerification(context.Background(), "alice@bank.example")
	if !errors.Is(err, ErrResendTooSoon) {
		t.Fatalf("expected ErrResendTooSoon, got %v", err)
	}
	if got := env.lastEvent(t).Status; got != audit.Failed(audit.ReasonTooManyRequests) {
		t.Fatalf("unexpected status %q", got)
	}
	if got := len(env.mailer.sent()); got != 2 {
		t.Fatalf("no mail must be sent during cooldown, got %d", got)
	}
}

func TestResendVerificationUnknownOrVerified(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.signupVerified(t, "alice@bank.example")
	mailsBefore := len(env.mailer.sent())

	if err := env.svc.ResendVerification(context.Background(), "ghost@bank.example"); err != nil {
		t.Fatalf("unknown email must look like success, got %v", err)
	}
	if got := env.lastEvent(t).Status; got != audit.Failed(audit.ReasonUserNotFound) {
		t.Fatalf("unexpected status %q", got)
	}

	if err := env.svc.ResendVerification(context.Background(), "alice@bank.example"); err != nil {
		t.Fatalf("ResendVerification returned error: %v", err)
	}
	if got := env.lastEvent(t).Status; got != audit.StatusAlreadyVerified {
		t.Fatalf("unexpected status %q", got)
	}
	if got := len(env.mailer.sent()); got != mailsBefore {
		t.Fatalf("no mail expected, got %d new", got-mailsBefore)
	}
}
