package resolver

import (
	"ditroboticstw/internal/auth"
)

// Resolver decides which capabilities an external identity is granted.
// It is the ONLY place where identity-to-role logic lives.
type Resolver interface {
	Resolve(externalID string) auth.Capabilities
}
