package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/cryptoguard/walletwatch/internal/domain"
)

// BackendClient talks to the wallet backend (login, dashboard and stored logs).
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBackendClient creates a client for the backend rooted at baseURL.
func NewBackendClient(baseURL string, httpClient *http.Client) *BackendClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginBody keeps Success as a pointer to tell a login response from any other JSON.
type loginBody struct {
	Success  *bool  `json:"success"`
	Username string `json:"username"`
	Wallet   string `json:"wallet"`
	Message  string `json:"message"`
}

// Login posts credentials to /api/login. A rejection that carries a login body is
// returned as a result, not an error, whatever the status code.
func (c *BackendClient) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	var body loginBody
	_, err := doJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/login",
		loginRequest{Username: username, Password: password}, &body)

	if body.Success != nil {
		return domain.LoginResult{
			Success:  *body.Success && err == nil,
			Username: body.Username,
			Wallet:   body.Wallet,
			Message:  body.Message,
		}, nil
	}
	if err != nil {
		return domain.LoginResult{}, errors.Wrap(err, "login")
	}

	return domain.LoginResult{}, &DecodeError{Err: errors.New("login response has no success field")}
}

// GetDashboard fetches the aggregate view of a wallet from /api/dashboard.
func (c *BackendClient) GetDashboard(ctx context.Context, wallet string) (domain.DashboardSummary, error) {
	endpoint := c.baseURL + "/api/dashboard?wallet=" + url.QueryEscape(wallet)

	var summary domain.DashboardSummary
	if _, err := doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, &summary); err != nil {
		return domain.DashboardSummary{}, errors.Wrapf(err, "dashboard for %s", wallet)
	}

	summary.Normalize()
	if err := summary.Validate(); err != nil {
		return domain.DashboardSummary{}, &DecodeError{Err: err}
	}
	return summary, nil
}

// GetLogs fetches every stored transaction from /api/logs.
func (c *BackendClient) GetLogs(ctx context.Context) ([]domain.Transaction, error) {
	var raw json.RawMessage
	if _, err := doJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/api/logs", nil, &raw); err != nil {
		return nil, errors.Wrap(err, "logs")
	}

	var logs []domain.Transaction
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if logs == nil {
		logs = []domain.Transaction{}
	}
	if err := domain.ValidateTransactions(logs); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return logs, nil
}
