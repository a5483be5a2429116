package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cryptoguard/walletwatch/internal/orchestrator"
	"github.com/cryptoguard/walletwatch/internal/session"
)

const cookieName = "walletwatch_session"

// browser is the state of one browser: its own session store and dashboard.
type browser struct {
	id        string
	holder    *session.Holder
	dashboard *orchestrator.Dashboard

	mu       sync.Mutex
	lastSeen time.Time
}

func (b *browser) touch(now time.Time) {
	b.mu.Lock()
	b.lastSeen = now
	b.mu.Unlock()
}

func (b *browser) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen
}

type registry struct {
	gw            Gateway
	logger        *zap.Logger
	dashboardOpts []orchestrator.Option
	idleTTL       time.Duration
	now           func() time.Time

	mu       sync.Mutex
	browsers map[string]*browser
}

func newRegistry(gw Gateway, logger *zap.Logger, idleTTL time.Duration) *registry {
	return &registry{
		gw:       gw,
		logger:   logger,
		idleTTL:  idleTTL,
		now:      time.Now,
		browsers: make(map[string]*browser),
	}
}

// lookup returns the browser named by the request cookie.
func (r *registry) lookup(req *http.Request) (*browser, bool) {
	c, err := req.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}

	r.mu.Lock()
	b, ok := r.browsers[c.Value]
	r.mu.Unlock()
	if ok {
		b.touch(r.now())
	}
	return b, ok
}

// ensure returns the request's browser, creating it and setting the cookie when
// the request has none.
func (r *registry) ensure(w http.ResponseWriter, req *http.Request) *browser {
	if b, ok := r.lookup(req); ok {
		return b
	}

	r.prune()

	id := uuid.NewString()
	logger := r.logger.With(zap.String("browser", id))
	holder := session.NewHolder(session.NewStore(), r.gw, logger)
	b := &browser{
		id:        id,
		holder:    holder,
		dashboard: orchestrator.NewDashboard(r.gw, holder, logger, r.dashboardOpts...),
		lastSeen:  r.now(),
	}

	r.mu.Lock()
	r.browsers[id] = b
	r.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   req.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return b
}

// prune drops browsers idle for longer than idleTTL.
func (r *registry) prune() {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.browsers {
		if b.idleSince().Before(cutoff) {
			b.dashboard.Deactivate()
			delete(r.browsers, id)
		}
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.browsers)
}
