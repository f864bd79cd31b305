package auth

import (
	"crypto/subtle"
	"errors"
)

// HeaderAdminKey carries the shared admin secret on mutating requests.
const HeaderAdminKey = "x-admin-key"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrAdminKeyNotSet = errors.New("ADMIN_API_KEY not set on server")
)

// Guard decides whether a caller may perform admin operations.
// In public mode everything is allowed; otherwise the presented credential
// must equal the configured key exactly.
type Guard struct {
	public bool
	key    string
}

func NewGuard(public bool, key string) *Guard {
	return &Guard{public: public, key: key}
}

func (g *Guard) Public() bool {
	return g.public
}

// Authorize checks a presented credential. A gated guard with no key
// configured fails closed with ErrAdminKeyNotSet.
func (g *Guard) Authorize(credential string) error {
	if g.public {
		return nil
	}
	if g.key == "" {
		return ErrAdminKeyNotSet
	}
	if subtle.ConstantTimeCompare([]byte(credential), []byte(g.key)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
