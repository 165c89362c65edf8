package model

import (
	"database/sql/driver"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrImmutableEvent = errors.New("activity events are append-only")

type ActionType string

func (a ActionType) Value() (driver.Value, error) {
	return string(a), nil
}

const (
	ActionSignup             ActionType = "SIGNUP"
	ActionLogin              ActionType = "LOGIN"
	ActionLogout             ActionType = "LOGOUT"
	ActionVerifyEmail        ActionType = "VERIFY_EMAIL"
	ActionResendVerification ActionType = "RESEND_VERIFICATION"
	ActionView               ActionType = "VIEW"
	ActionDownload           ActionType = "DOWNLOAD"
	ActionClick              ActionType = "CLICK"
	ActionDeletePolicy       ActionType = "DELETE_POLICY"
)

type ActivityEvent struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement"`
	ActionType     ActionType `gorm:"size:32;not null;index"`
	ActorUserID    *uint      `gorm:"index"`                   // null only for pre-authentication failures
	ActorLabel     string     `gorm:"size:256;not null;index"` // snapshot of email at event time
	TargetResource *string    `gorm:"size:512"`                // document name, null for account events
	Status         string     `gorm:"size:128;not null"`       // SUCCESS, FAILED - <reason>...
	IP             string     `gorm:"size:45;not null"`        // IPv4/IPv6
	UserAgent      string     `gorm:"size:512;not null"`
	OccurredAt     time.Time  `gorm:"not null;index"`
}

func (ActivityEvent) TableName() string {
	return "user_policy_activity"
}

func (e *ActivityEvent) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableEvent
}

func (e *ActivityEvent) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableEvent
}
