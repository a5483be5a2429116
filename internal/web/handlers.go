package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cryptoguard/walletwatch/internal/orchestrator"
	"github.com/cryptoguard/walletwatch/internal/render"
	"github.com/cryptoguard/walletwatch/internal/session"
)

// Login form messages.
const (
	invalidCredentialsMessage = "Invalid username or password"
	loginFailedMessage        = "An error occurred during login"
	missingFieldsMessage      = "Username and password are required"
)

type pageData struct {
	Title     string
	LoggedIn  bool
	Username  string
	Error     string
	Form      loginForm
	Dashboard *render.DashboardView
	Logs      *render.TransactionTable
	Clock     string
}

type loginForm struct {
	Username string
}

func (s *Server) page(r *http.Request, title string) pageData {
	data := pageData{Title: title}
	if b, ok := s.browsers.lookup(r); ok {
		if sess, ok := b.holder.Current(); ok {
			data.LoggedIn = true
			data.Username = sess.Username
		}
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, name string, status int, data pageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("render page", zap.String("page", name), zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

// requireSession resolves the logged in browser or redirects to the login page.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (*browser, bool) {
	b, ok := s.browsers.lookup(r)
	if ok {
		if _, logged := b.holder.Current(); logged {
			return b, true
		}
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return nil, false
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "home", http.StatusOK, s.page(r, "Wallet Watch"))
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := s.page(r, "Login")
	if data.LoggedIn {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, "login", http.StatusOK, data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	data := s.page(r, "Login")
	data.Form.Username = username
	if username == "" || password == "" {
		data.Error = missingFieldsMessage
		s.render(w, "login", http.StatusBadRequest, data)
		return
	}

	b := s.browsers.ensure(w, r)
	ok, err := b.holder.Login(r.Context(), username, password)
	switch {
	case errors.Is(err, session.ErrBackendUnavailable):
		s.logger.Warn("login failed", zap.Error(err))
		data.Error = loginFailedMessage
		s.render(w, "login", http.StatusBadGateway, data)
	case err != nil:
		s.logger.Error("login", zap.Error(err))
		data.Error = loginFailedMessage
		s.render(w, "login", http.StatusInternalServerError, data)
	case !ok:
		data.Error = invalidCredentialsMessage
		s.render(w, "login", http.StatusUnauthorized, data)
	default:
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if b, ok := s.browsers.lookup(r); ok {
		b.dashboard.Deactivate()
		b.holder.Logout()
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	b, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	// every visit reloads like a fresh page mount; the stream delivers the result
	go func() {
		err := b.dashboard.Activate(s.ctx)
		if err != nil && !errors.Is(err, orchestrator.ErrNoSession) {
			s.logger.Warn("dashboard load", zap.String("browser", b.id), zap.Error(err))
		}
	}()

	data := s.page(r, "Dashboard")
	view := render.Dashboard(b.dashboard.Snapshot(), s.loc)
	if sess, ok := b.holder.Current(); ok {
		view.Username, view.Wallet = sess.Username, sess.Wallet
		view.WalletShort = render.TruncateAddress(sess.Wallet)
	}
	view.Loading = true
	data.Dashboard = &view
	s.render(w, "dashboard", http.StatusOK, data)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	b, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	coinID := strings.TrimSpace(r.PostForm.Get("coin"))

	known := false
	for _, c := range b.dashboard.Snapshot().TopCoins {
		if c.ID == coinID {
			known = true
			break
		}
	}
	if !known {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown coin"})
		return
	}

	go func() {
		if err := b.dashboard.SelectCoinByID(s.ctx, coinID); err != nil {
			s.logger.Warn("select coin", zap.String("coin", coinID), zap.Error(err))
		}
	}()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"selected": coinID})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	b, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, render.Dashboard(b.dashboard.Snapshot(), s.loc))
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	b, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, render.Comparison(b.dashboard.Comparison(r.Context())))
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	logs := orchestrator.NewLogs(s.gw, s.logger)
	_ = logs.Load(r.Context())
	state := logs.Snapshot()

	data := s.page(r, "Logs")
	data.Error = state.Error
	table := render.Logs(state.Logs, s.loc)
	data.Logs = &table
	s.render(w, "logs", http.StatusOK, data)
}
