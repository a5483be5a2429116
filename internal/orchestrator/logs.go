package orchestrator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cryptoguard/walletwatch/internal/domain"
)

// LogsErrorMessage is shown when the stored logs could not be loaded.
const LogsErrorMessage = "Failed to load logs"

// LogsState displayed state of the stored-logs view.
type LogsState struct {
	Logs    []domain.Transaction
	Loading bool
	Error   string
}

// Logs loads the stored transaction log for the logs view.
type Logs struct {
	gw     dataGateway
	logger *zap.Logger

	mu    sync.Mutex
	state LogsState
}

// NewLogs creates a logs view in the loading state.
func NewLogs(gw dataGateway, logger *zap.Logger) *Logs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logs{gw: gw, logger: logger.Named("logs"), state: LogsState{Loading: true, Logs: []domain.Transaction{}}}
}

// Load fetches the logs. Loading is cleared whatever the outcome.
func (l *Logs) Load(ctx context.Context) error {
	l.mu.Lock()
	l.state.Loading = true
	l.mu.Unlock()

	logs, err := l.gw.GetLogs(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Loading = false
	if err != nil {
		l.logger.Error("loading logs failed", zap.Error(err))
		l.state.Logs = []domain.Transaction{}
		l.state.Error = LogsErrorMessage
		return err
	}
	l.state.Logs = logs
	l.state.Error = ""
	return nil
}

// Snapshot returns a copy of the current state.
func (l *Logs) Snapshot() LogsState {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.state
	s.Logs = append([]domain.Transaction(nil), l.state.Logs...)
	return s
}
