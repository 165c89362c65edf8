package documents

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/khanghh/docportal/internal/audit"
	"github.com/khanghh/docportal/model"
)

type Document struct {
	DocumentInfo
	Content io.ReadCloser
}

// Tracker serves documents to authenticated identities and records one
// activity event for every access attempt.
type Tracker struct {
	files    FileStore
	recorder *audit.Recorder
}

func (t *Tracker) fail(ctx context.Context, entry audit.Entry, reason string, err error) error {
	entry.Status = audit.Failed(reason)
	if recErr := t.recorder.Record(ctx, entry); recErr != nil {
		return errors.Join(err, recErr)
	}
	return err
}

// Track records a client reported interaction with a document.
func (t *Tracker) Track(ctx context.Context, action model.ActionType, ident model.Identity, target string) error {
	if ident.IsZero() {
		return ErrAnonymous
	}
	switch action {
	case model.ActionView, model.ActionClick, model.ActionDownload:
	default:
		return ErrUnsupportedAction
	}
	if target == "" {
		return ErrMissingTarget
	}
	return t.recorder.Record(ctx, audit.ActorEntry(action, ident, target, audit.StatusSuccess))
}

// Open opens a document for viewing or downloading. The access is recorded
// before the content is handed out.
func (t *Tracker) Open(ctx context.Context, action model.ActionType, ident model.Identity, name string) (*Document, error) {
	if ident.IsZero() {
		return nil, ErrAnonymous
	}
	if action != model.ActionView && action != model.ActionDownload {
		return nil, ErrUnsupportedAction
	}

	entry := audit.ActorEntry(action, ident, name, audit.StatusSuccess)
	content, info, err := t.files.Open(name)
	if errors.Is(err, ErrDocumentNotFound) || errors.Is(err, ErrInvalidName) {
		return nil, t.fail(ctx, entry, audit.ReasonFileNotFound, err)
	}
	if err != nil {
		return nil, t.fail(ctx, entry, audit.ReasonFileSystemError, fmt.Errorf("open document: %w", err))
	}

	if err := t.recorder.Record(ctx, entry); err != nil {
		content.Close()
		return nil, err
	}
	return &Document{DocumentInfo: info, Content: content}, nil
}

// DeletePolicy removes a document. Only admins may delete; the outcome is
// recorded after the removal is attempted.
func (t *Tracker) DeletePolicy(ctx context.Context, ident model.Identity, name string) error {
	entry := audit.ActorEntry(model.ActionDeletePolicy, ident, name, audit.StatusSuccess)
	if !ident.IsAdmin() || ident.IsZero() {
		return t.fail(ctx, entry, audit.ReasonUnauthorized, ErrForbidden)
	}

	err := t.files.Remove(name)
	if errors.Is(err, ErrDocumentNotFound) || errors.Is(err, ErrInvalidName) {
		return t.fail(ctx, entry, audit.ReasonFileNotFound, err)
	}
	if err != nil {
		return t.fail(ctx, entry, audit.ReasonFileSystemError, fmt.Errorf("remove document: %w", err))
	}
	return t.recorder.Record(ctx, entry)
}

func (t *Tracker) ListDocuments(ctx context.Context, category string) ([]DocumentInfo, error) {
	return t.files.List(category)
}

func (t *Tracker) RecentActivity(ctx context.Context, filter audit.Filter) ([]*model.ActivityEvent, error) {
	return t.recorder.Recent(ctx, filter)
}

func NewTracker(files FileStore, recorder *audit.Recorder) *Tracker {
	return &Tracker{
		files:    files,
		recorder: recorder,
	}
}
