// Package domain defines the records exchanged with the backend and market-data services.
package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidSession is returned when a login response lacks the identity fields.
	ErrInvalidSession = errors.New("invalid session")
	// ErrInvalidWallet is returned for wallet addresses that are not 20-byte hex addresses.
	ErrInvalidWallet = errors.New("invalid wallet address")
)

// Session authenticated identity.
type Session struct {
	// Username login name confirmed by the backend.
	Username string `json:"username"`
	// Wallet address whose transactions the dashboard shows.
	Wallet string `json:"wallet"`
}

// NewSession builds a session from the identity fields returned by the backend.
func NewSession(username, wallet string) (Session, error) {
	username = strings.TrimSpace(username)
	wallet = strings.TrimSpace(wallet)
	if username == "" || wallet == "" {
		return Session{}, errors.Wrap(ErrInvalidSession, "username and wallet are required")
	}

	return Session{Username: username, Wallet: wallet}, nil
}

// IsZero reports whether s is the "no session" value.
func (s Session) IsZero() bool {
	return s.Username == "" && s.Wallet == ""
}

// ValidateWallet checks that wallet looks like an EVM account address.
func ValidateWallet(wallet string) error {
	if !common.IsHexAddress(wallet) {
		return errors.Wrapf(ErrInvalidWallet, "%q", wallet)
	}
	return nil
}

// LoginResult outcome of a login attempt as reported by the gateway.
type LoginResult struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Wallet   string `json:"wallet,omitempty"`
	Message  string `json:"message,omitempty"`
	// Unreachable is set when the backend could not be reached or answered
	// with something other than a login response.
	Unreachable bool `json:"-"`
}

// Session returns the identity carried by a successful result.
func (r LoginResult) Session() (Session, error) {
	if !r.Success {
		return Session{}, errors.Wrap(ErrInvalidSession, "login was not successful")
	}
	return NewSession(r.Username, r.Wallet)
}
