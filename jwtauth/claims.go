package jwtauth

import "time"

// TokenValidity is the fixed lifetime of every issued token, at one-second
// granularity.
const TokenValidity = 24 * time.Hour

// Claims represents parsed and validated JWT claims. Only sub and exp are
// trusted; any other field present in a token is ignored.
type Claims struct {
	Subject   string    // Credential identifier (sub claim)
	ExpiresAt time.Time // Expiration time (exp claim)
}
