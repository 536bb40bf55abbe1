package auth

// Identity is the external user resolved by the OAuth provider for the
// current session. It contains facts only, no decisions.
type Identity struct {
	ExternalID  string // provider-scoped user id
	DisplayName string
}

// AuthTypeFacebook is recorded in the session for identities that came
// from the Facebook login flow.
const AuthTypeFacebook = "facebook"

// Principal is the request-scoped identity with the capabilities granted
// to it. It is rebuilt on every identity load and never persisted.
type Principal struct {
	ID           string
	AuthType     string
	Capabilities Capabilities
}

// AnonymousPrincipal is the identity of a visitor who is not logged in.
func AnonymousPrincipal() Principal {
	return Principal{Capabilities: Capabilities{}}
}

func (p Principal) IsAnonymous() bool {
	return p.ID == ""
}

// Can reports whether the principal provides c.
func (p Principal) Can(c Capability) bool {
	return p.Capabilities.Has(c)
}
