package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/khanghh/docportal/model"
	"github.com/khanghh/docportal/model/query"
)

const (
	statusFailedPrefix  = "FAILED - "
	statusPartialPrefix = "PARTIAL - "
	UnknownActor        = "unknown"
)

const (
	StatusSuccess             = "SUCCESS"
	StatusPendingVerification = "SUCCESS - Pending Verification"
	StatusAlreadyVerified     = "SUCCESS - Already Verified"
	StatusEmailNotSent        = "PARTIAL - Verification Email Not Sent"
)

// Failure reasons, rendered as "FAILED - <reason>".
const (
	ReasonInvalidEmailFormat    = "Invalid Email Format"
	ReasonInvalidPasswordFormat = "Invalid Password Format"
	ReasonPasswordsMismatch     = "Passwords Mismatch"
	ReasonUserExists            = "User Exists"
	ReasonServerError           = "Server Error"
	ReasonInvalidToken          = "Invalid Token"
	ReasonTokenExpired          = "Token Expired"
	ReasonUserNotFound          = "User Not Found"
	ReasonMissingCredentials    = "Missing Credentials"
	ReasonNotVerified           = "Not Verified"
	ReasonIncorrectPassword     = "Incorrect Password"
	ReasonSessionError          = "Session Error"
	ReasonNotAuthenticated      = "Not Authenticated"
	ReasonTooManyRequests       = "Too Many Requests"
	ReasonUnauthorized          = "Unauthorized"
	ReasonFileNotFound          = "File Not Found"
	ReasonFileSystemError       = "File System Error"
)

// column sizes of user_policy_activity, in characters
const (
	maxIPLength        = 45
	maxLabelLength     = 256
	maxTargetLength    = 512
	maxUserAgentLength = 512
)

// truncate cuts s to at most n characters. Invalid UTF-8 is replaced so the
// result is always storable in a utf8mb4 column.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func Failed(reason string) string {
	return statusFailedPrefix + reason
}

// Entry describes one security relevant action about to be recorded.
type Entry struct {
	Action         model.ActionType
	ActorUserID    uint // zero when no user row is known
	ActorLabel     string
	TargetResource string
	Status         string
}

// ActorEntry builds an entry attributed to an authenticated identity.
func ActorEntry(action model.ActionType, ident model.Identity, target string, status string) Entry {
	return Entry{
		Action:         action,
		ActorUserID:    ident.UserID,
		ActorLabel:     ident.Email,
		TargetResource: target,
		Status:         status,
	}
}

// Recorder is the single write path for activity events.
type Recorder struct {
	repo ActivityRepository
	now  func() time.Time
}

// Record appends exactly one event. A failed write is reported on the
// operator channel (log and metric) and returned; callers decide whether it
// affects their response.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	event := &model.ActivityEvent{
		ActionType: entry.Action,
		ActorLabel: entry.ActorLabel,
		Status:     entry.Status,
		OccurredAt: r.now(),
	}
	if entry.ActorUserID != 0 {
		uid := entry.ActorUserID
		event.ActorUserID = &uid
	}
	if event.ActorLabel == "" {
		event.ActorLabel = UnknownActor
	}
	if entry.TargetResource != "" {
		target := truncate(entry.TargetResource, maxTargetLength)
		event.TargetResource = &target
	}
	client := clientInfoFromContext(ctx)
	event.IP = truncate(client.IP, maxIPLength)
	event.UserAgent = truncate(client.UserAgent, maxUserAgentLength)
	event.ActorLabel = truncate(event.ActorLabel, maxLabelLength)

	if err := r.repo.Append(ctx, event); err != nil {
		eventWriteFailures.WithLabelValues(string(entry.Action)).Inc()
		slog.Error("Failed to record activity event",
			"action", entry.Action,
			"actor", event.ActorLabel,
			"target", entry.TargetResource,
			"status", entry.Status,
			"error", err,
		)
		return fmt.Errorf("record %s event: %w", entry.Action, err)
	}
	eventsRecorded.WithLabelValues(string(entry.Action), outcomeOf(entry.Status)).Inc()
	slog.Debug("Activity recorded", "action", entry.Action, "actor", event.ActorLabel, "status", entry.Status)
	return nil
}

// WithTx returns a recorder whose events are written within tx.
func (r *Recorder) WithTx(tx *query.Query) *Recorder {
	return &Recorder{
		repo: r.repo.WithTx(tx),
		now:  r.now,
	}
}

func (r *Recorder) Recent(ctx context.Context, filter Filter) ([]*model.ActivityEvent, error) {
	return r.repo.Find(ctx, filter)
}

func NewRecorder(repo ActivityRepository) *Recorder {
	return &Recorder{
		repo: repo,
		now:  time.Now,
	}
}
