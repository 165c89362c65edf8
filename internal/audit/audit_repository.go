package audit

import (
	"context"

	"github.com/khanghh/docportal/model"
	"github.com/khanghh/docportal/model/query"
	"gorm.io/gen"
)

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 500
)

type Filter struct {
	ActorUserID    *uint
	ActorLabel     string
	ActionType     model.ActionType
	TargetResource string
	Limit          int
}

type ActivityRepository interface {
	WithTx(tx *query.Query) ActivityRepository
	Append(ctx context.Context, event *model.ActivityEvent) error
	Find(ctx context.Context, filter Filter) ([]*model.ActivityEvent, error)
}

type activityRepository struct {
	query *query.Query
}

func (r *activityRepository) WithTx(tx *query.Query) ActivityRepository {
	return NewActivityRepository(tx)
}

func (r *activityRepository) Append(ctx context.Context, event *model.ActivityEvent) error {
	return r.query.ActivityEvent.WithContext(ctx).Create(event)
}

// Find returns the most recent events matching filter, newest first. Reads go
// to a replica when one is registered.
func (r *activityRepository) Find(ctx context.Context, filter Filter) ([]*model.ActivityEvent, error) {
	e := r.query.ActivityEvent
	var conds []gen.Condition
	if filter.ActorUserID != nil {
		conds = append(conds, e.ActorUserID.Eq(*filter.ActorUserID))
	}
	if filter.ActorLabel != "" {
		conds = append(conds, e.ActorLabel.Eq(filter.ActorLabel))
	}
	if filter.ActionType != "" {
		conds = append(conds, e.ActionType.Eq(filter.ActionType))
	}
	if filter.TargetResource != "" {
		conds = append(conds, e.TargetResource.Eq(filter.TargetResource))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}

	return e.WithContext(ctx).ReadDB().
		Where(conds...).
		Order(e.OccurredAt.Desc(), e.ID.Desc()).
		Limit(limit).
		Find()
}

func NewActivityRepository(query *query.Query) ActivityRepository {
	return &activityRepository{
		query: query,
	}
}
