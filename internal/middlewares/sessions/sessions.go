package sessions

import (
	"crypto/rand"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/khanghh/docportal/model"
)

const (
	sessionContextKey = "session"
	sessionDataKey    = "data"
)

func init() {
	gob.Register(SessionData{})
}

type SessionData struct {
	UserID    uint       // user id
	Email     string     // user email at login
	Role      model.Role // user role at login
	IP        string     // client ip address
	LoginTime time.Time  // last login time
	LastSeen  time.Time  // last request time
}

func (s *SessionData) IsLoggedIn() bool {
	return s.UserID != 0
}

type Session struct {
	*session.Session
	SessionData
	clientIP  string
	id        string // cached once the underlying session is saved
	committed bool   // persisted or destroyed during this request
}

func (s *Session) ID() string {
	if s.committed {
		return s.id
	}
	return s.Session.ID()
}

func (s *Session) Identity() (model.Identity, bool) {
	if !s.IsLoggedIn() {
		return model.Identity{}, false
	}
	return model.Identity{
		UserID: s.UserID,
		Email:  s.Email,
		Role:   s.Role,
	}, true
}

// Establish binds ident to a newly generated session id and persists it
// immediately. The previous id is removed from the storage.
func (s *Session) Establish(ident model.Identity) error {
	if s.committed {
		return fmt.Errorf("session already committed")
	}
	if err := s.Session.Regenerate(); err != nil {
		return err
	}
	now := time.Now()
	s.SessionData = SessionData{
		UserID:    ident.UserID,
		Email:     ident.Email,
		Role:      ident.Role,
		IP:        s.clientIP,
		LoginTime: now,
		LastSeen:  now,
	}
	s.Set(sessionDataKey, s.SessionData)
	s.id = s.Session.ID()
	// Save releases the underlying session
	s.committed = true
	return s.Session.Save()
}

func (s *Session) Destroy() error {
	if s.committed {
		return nil
	}
	s.id = ""
	s.SessionData = SessionData{}
	s.committed = true
	return s.Session.Destroy()
}

func newSession(sess *session.Session, clientIP string) *Session {
	data, _ := sess.Get(sessionDataKey).(SessionData)
	return &Session{
		Session:     sess,
		SessionData: data,
		clientIP:    clientIP,
	}
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Could not generate session id", "error", err)
		return ""
	}
	return hex.EncodeToString(b)
}

func Get(ctx *fiber.Ctx) *Session {
	sess, _ := ctx.Locals(sessionContextKey).(*Session)
	return sess
}

func Destroy(ctx *fiber.Ctx) error {
	sess := Get(ctx)
	if sess == nil {
		return nil
	}
	return sess.Destroy()
}

type Config struct {
	Storage        fiber.Storage
	SessionMaxAge  time.Duration
	CookieSecure   bool
	CookieHttpOnly bool
	CookieName     string
}

func applyDefaults(conf Config) Config {
	if conf.SessionMaxAge <= 0 {
		conf.SessionMaxAge = 24 * time.Hour
	}
	if conf.CookieName == "" {
		conf.CookieName = "sid"
	}
	return conf
}

func New(config Config) fiber.Handler {
	config = applyDefaults(config)
	store := session.New(session.Config{
		Storage:        config.Storage,
		Expiration:     config.SessionMaxAge,
		CookieSecure:   config.CookieSecure,
		CookieHTTPOnly: config.CookieHttpOnly,
		CookieSameSite: "Lax",
		KeyLookup:      fmt.Sprintf("cookie:%s", config.CookieName),
		KeyGenerator:   generateSessionID,
	})

	return func(ctx *fiber.Ctx) error {
		sess, err := store.Get(ctx)
		if err != nil {
			return err
		}

		session := newSession(sess, ctx.IP())
		ctx.Locals(sessionContextKey, session)
		handlerErr := ctx.Next()

		if session.committed || !session.IsLoggedIn() {
			return handlerErr
		}
		session.LastSeen = time.Now()
		sess.Set(sessionDataKey, session.SessionData)
		if err := sess.Save(); err != nil {
			slog.Error("Could not save session", "error", err)
			if handlerErr == nil {
				return err
			}
		}
		return handlerErr
	}
}
