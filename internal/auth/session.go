package auth

import "github.com/khanghh/docportal/model"

// Session is the per-client session the service authenticates into.
type Session interface {
	ID() string
	Identity() (model.Identity, bool)
	// Establish issues a fresh session id bound to ident and persists it.
	Establish(ident model.Identity) error
	Destroy() error
}
