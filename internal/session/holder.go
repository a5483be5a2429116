package session

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cryptoguard/walletwatch/internal/domain"
)

// ErrBackendUnavailable is returned by Login when the backend could not be asked.
var ErrBackendUnavailable = errors.New("authentication backend unavailable")

type authenticator interface {
	Login(ctx context.Context, username, password string) domain.LoginResult
}

// Holder drives the login/logout lifecycle on top of a Store.
type Holder struct {
	store  *Store
	auth   authenticator
	logger *zap.Logger
}

// NewHolder creates a holder publishing into store.
func NewHolder(store *Store, auth authenticator, logger *zap.Logger) *Holder {
	if store == nil {
		store = NewStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{store: store, auth: auth, logger: logger.Named("session")}
}

// Login authenticates and, on success, publishes the session. Wrong credentials
// return false with a nil error; an unreachable backend returns ErrBackendUnavailable.
// The session is left untouched on failure.
func (h *Holder) Login(ctx context.Context, username, password string) (bool, error) {
	res := h.auth.Login(ctx, username, password)
	if !res.Success {
		if res.Unreachable {
			return false, errors.Wrap(ErrBackendUnavailable, res.Message)
		}
		h.logger.Info("login rejected", zap.String("username", username))
		return false, nil
	}

	sess, err := res.Session()
	if err != nil {
		return false, errors.Wrap(ErrBackendUnavailable, err.Error())
	}

	h.store.Set(sess)
	h.logger.Info("logged in", zap.String("username", sess.Username), zap.String("wallet", sess.Wallet))
	return true, nil
}

// Current returns the logged in identity, if any.
func (h *Holder) Current() (domain.Session, bool) {
	return h.store.Get()
}

// Logout clears the session unconditionally.
func (h *Holder) Logout() {
	if sess, ok := h.store.Get(); ok {
		h.logger.Info("logged out", zap.String("username", sess.Username))
	}
	h.store.Clear()
}
