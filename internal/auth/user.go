package auth

import "fmt"

// User is the lightweight identity the session-auth layer and the blog
// engine both resolve stored ids to.
type User struct {
	ID    string
	Label string
}

// UserLoader builds User values for an organization. The session-auth
// middleware and the blog author lookup must share one loader so post
// authorship and session identity agree.
type UserLoader struct {
	organization string
}

func NewUserLoader(organization string) *UserLoader {
	return &UserLoader{organization: organization}
}

// LoadUser returns the user for a stored id, or nil for an empty id.
func (l *UserLoader) LoadUser(id string) *User {
	if id == "" {
		return nil
	}
	return &User{
		ID:    id,
		Label: fmt.Sprintf("%s Staff #%s", l.organization, id),
	}
}
