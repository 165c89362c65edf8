package model

// Identity is the authenticated principal attached to a session.
type Identity struct {
	UserID uint
	Email  string
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (i Identity) IsZero() bool {
	return i.UserID == 0
}
