package web

import (
	"context"

	"github.com/khanghh/docportal/internal/audit"
	"github.com/khanghh/docportal/internal/auth"
	"github.com/khanghh/docportal/internal/documents"
	"github.com/khanghh/docportal/model"
)

type AuthService interface {
	Signup(ctx context.Context, email string, password string, confirmPassword string) (*auth.SignupResult, error)
	VerifyEmail(ctx context.Context, token string) (*auth.VerifyResult, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email string, password string, sess auth.Session) (*model.Identity, error)
	Logout(ctx context.Context, sess auth.Session) error
}

type DocumentService interface {
	Track(ctx context.Context, action model.ActionType, ident model.Identity, target string) error
	Open(ctx context.Context, action model.ActionType, ident model.Identity, name string) (*documents.Document, error)
	DeletePolicy(ctx context.Context, ident model.Identity, name string) error
	ListDocuments(ctx context.Context, category string) ([]documents.DocumentInfo, error)
	RecentActivity(ctx context.Context, filter audit.Filter) ([]*model.ActivityEvent, error)
}
