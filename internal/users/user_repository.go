package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/khanghh/docportal/model"
	"github.com/khanghh/docportal/model/query"
	"gorm.io/gen"
	"gorm.io/gorm"
)

const mysqlErrDuplicateEntry = 1062

type UserRepository interface {
	WithTx(tx *query.Query) UserRepository
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	MarkVerified(ctx context.Context, userID uint, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

type userRepository struct {
	query *query.Query
}

func (r *userRepository) WithTx(tx *query.Query) UserRepository {
	return NewUserRepository(tx)
}

func (r *userRepository) first(ctx context.Context, conds ...gen.Condition) (*model.User, error) {
	user, err := r.query.User.WithContext(ctx).Where(conds...).First()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Create inserts a new user. The unique index on email is the arbiter for
// concurrent signups: the losing insert gets ErrEmailRegistered.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.query.User.WithContext(ctx).Create(user)
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
		return ErrEmailRegistered
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailRegistered
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, userID uint) (*model.User, error) {
	return r.first(ctx, r.query.User.ID.Eq(userID))
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, r.query.User.Email.Eq(strings.ToLower(email)))
}

// MarkVerified flips the verified flag only if it is still false. It reports
// whether this call performed the transition.
func (r *userRepository) MarkVerified(ctx context.Context, userID uint, email string) (bool, error) {
	u := r.query.User
	info, err := u.WithContext(ctx).
		Where(u.ID.Eq(userID), u.Email.Eq(email), u.Verified.Is(false)).
		Update(u.Verified, true)
	if err != nil {
		return false, err
	}
	return info.RowsAffected > 0, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error {
	u := r.query.User
	_, err := u.WithContext(ctx).Where(u.ID.Eq(userID)).Update(u.LastLoginAt, at)
	return err
}

func NewUserRepository(query *query.Query) UserRepository {
	return &userRepository{query}
}
