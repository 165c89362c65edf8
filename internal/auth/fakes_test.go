package auth

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/khanghh/docportal/internal/audit"
	"github.com/khanghh/docportal/internal/mail"
	"github.com/khanghh/docportal/internal/store"
	"github.com/khanghh/docportal/internal/users"
	"github.com/khanghh/docportal/model"
	"github.com/khanghh/docportal/model/query"
)

type fakeUserRepository struct {
	mu      sync.Mutex
	nextID  uint
	byEmail map[string]*model.User
	lookups int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{byEmail: make(map[string]*model.User)}
}

func (r *fakeUserRepository) WithTx(tx *query.Query) users.UserRepository {
	return r
}

func (r *fakeUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return users.ErrEmailRegistered
	}
	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.byEmail[user.Email] = &stored
	return nil
}

func (r *fakeUserRepository) FindByID(ctx context.Context, userID uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	for _, user := range r.byEmail {
		if user.ID == userID {
			found := *user
			return &found, nil
		}
	}
	return nil, users.ErrUserNotFound
}

func (r *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	user, ok := r.byEmail[email]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (r *fakeUserRepository) MarkVerified(ctx context.Context, userID uint, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byEmail[email]
	if !ok || user.ID != userID || user.Verified {
		return false, nil
	}
	user.Verified = true
	return true, nil
}

func (r *fakeUserRepository) UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byEmail {
		if user.ID == userID {
			user.LastLoginAt = &at
			return nil
		}
	}
	return users.ErrUserNotFound
}

func (r *fakeUserRepository) get(email string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email]
}

func (r *fakeUserRepository) snapshot() map[string]model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make(map[string]model.User, len(r.byEmail))
	for email, user := range r.byEmail {
		rows[email] = *user
	}
	return rows
}

func (r *fakeUserRepository) restore(rows map[string]model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail = make(map[string]*model.User, len(rows))
	for email, user := range rows {
		user := user
		r.byEmail[email] = &user
	}
}

// fakeTransactor runs fc directly and restores the user rows when fc or the
// commit fails.
type fakeTransactor struct {
	users     *fakeUserRepository
	commitErr error
}

func (f *fakeTransactor) Transaction(fc func(tx *query.Query) error, opts ...*sql.TxOptions) error {
	rows := f.users.snapshot()
	err := fc(nil)
	if err == nil {
		err = f.commitErr
	}
	if err != nil {
		f.users.restore(rows)
	}
	return err
}

type memoryActivityRepository struct {
	mu     sync.Mutex
	events []*model.ActivityEvent
	err    error
}

func (r *memoryActivityRepository) WithTx(tx *query.Query) audit.ActivityRepository {
	return r
}

func (r *memoryActivityRepository) Append(ctx context.Context, event *model.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	event.ID = uint64(len(r.events) + 1)
	r.events = append(r.events, event)
	return nil
}

func (r *memoryActivityRepository) Find(ctx context.Context, filter audit.Filter) ([]*model.ActivityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events, nil
}

func (r *memoryActivityRepository) all() []*model.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.ActivityEvent(nil), r.events...)
}

type fakeMailSender struct {
	mu       sync.Mutex
	delay    time.Duration
	err      error
	messages []*mail.Message
}

func (m *fakeMailSender) Send(ctx context.Context, message *mail.Message) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, message)
	return nil
}

func (m *fakeMailSender) sent() []*mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mail.Message(nil), m.messages...)
}

type memoryStorage struct {
	mu   sync.Mutex
	data map[string]ResendRecord
}

func (s *memoryStorage) Get(ctx context.Context, key string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[key]
	if !ok {
		return store.ErrNotFound
	}
	*(val.(*ResendRecord)) = rec
	return nil
}

func (s *memoryStorage) Set(ctx context.Context, key string, val any, expiresIn time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = val.(ResendRecord)
	return nil
}

func (s *memoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

type fakeSession struct {
	id           string
	ident        *model.Identity
	issued       int
	establishErr error
	destroyErr   error
}

func (s *fakeSession) ID() string {
	return s.id
}

func (s *fakeSession) Identity() (model.Identity, bool) {
	if s.ident == nil {
		return model.Identity{}, false
	}
	return *s.ident, true
}

func (s *fakeSession) Establish(ident model.Identity) error {
	if s.establishErr != nil {
		return s.establishErr
	}
	s.issued++
	s.id = fmt.Sprintf("session-%d", s.issued)
	s.ident = &ident
	return nil
}

func (s *fakeSession) Destroy() error {
	if s.destroyErr != nil {
		return s.destroyErr
	}
	s.id = ""
	s.ident = nil
	return nil
}
