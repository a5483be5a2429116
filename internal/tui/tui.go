// Package tui is the terminal front end: a login form followed by the dashboard
// with a coin picker.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cryptoguard/walletwatch/internal/orchestrator"
	"github.com/cryptoguard/walletwatch/internal/render"
	"github.com/cryptoguard/walletwatch/internal/session"
)

const (
	invalidCredentialsMessage = "Invalid username or password"
	loginFailedMessage        = "An error occurred during login"

	actionRefresh = ":refresh"
	actionLogs    = ":logs"
	actionLogout  = ":logout"
	actionQuit    = ":quit"
)

// App runs the terminal session.
type App struct {
	holder    *session.Holder
	dashboard *orchestrator.Dashboard
	logs      *orchestrator.Logs
	logger    *zap.Logger
	out       io.Writer
	loc       *time.Location
	// ticks carries clock updates to the redraw loop.
	ticks chan string
}

// New creates the terminal front end.
func New(holder *session.Holder, dashboard *orchestrator.Dashboard, logs *orchestrator.Logs, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		holder:    holder,
		dashboard: dashboard,
		logs:      logs,
		logger:    logger.Named("tui"),
		out:       os.Stdout,
		loc:       time.Local,
		ticks:     make(chan string, 1),
	}
}

// Run loops between login and dashboard until the user quits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	clock := orchestrator.NewClock(func(now string) {
		select {
		case a.ticks <- now:
		default:
		}
	})
	clock.Start(ctx)
	defer clock.Stop()

	for ctx.Err() == nil {
		if _, ok := a.holder.Current(); !ok {
			if err := a.login(ctx); err != nil {
				return quitErr(err)
			}
		}

		quit, err := a.dashboardLoop(ctx, clock)
		if err != nil {
			return quitErr(err)
		}
		if quit {
			return nil
		}
	}
	return nil
}

func quitErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) clear() {
	fmt.Fprint(a.out, "\033[H\033[2J")
}

func (a *App) login(ctx context.Context) error {
	var (
		username string
		password string
		message  string
	)

	for {
		a.clear()
		fmt.Fprintln(a.out, header(""))
		if message != "" {
			fmt.Fprintln(a.out, errorStyle.Render(message))
		}

		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Username").
					Value(&username).
					Validate(required("username")),
				huh.NewInput().
					Title("Password").
					EchoMode(huh.EchoModePassword).
					Value(&password).
					Validate(required("password")),
			),
		).RunWithContext(ctx)
		if err != nil {
			return err
		}

		ok, err := a.holder.Login(ctx, strings.TrimSpace(username), password)
		switch {
		case err != nil:
			a.logger.Warn("login failed", zap.Error(err))
			message = loginFailedMessage
		case !ok:
			message = invalidCredentialsMessage
		default:
			return nil
		}
		password = ""
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// dashboardLoop shows the dashboard until logout (false) or quit (true).
func (a *App) dashboardLoop(ctx context.Context, clock *orchestrator.Clock) (bool, error) {
	a.activate(ctx, clock)

	for {
		view := a.draw(clock.Current())

		var choice string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Choose a coin or an action").
					Options(actionOptions(view.Coins)...).
					Value(&choice),
			),
		).RunWithContext(ctx)
		if err != nil {
			a.dashboard.Deactivate()
			return false, err
		}

		switch choice {
		case actionQuit:
			a.dashboard.Deactivate()
			return true, nil
		case actionLogout:
			a.dashboard.Deactivate()
			a.holder.Logout()
			return false, nil
		case actionRefresh:
			a.activate(ctx, clock)
		case actionLogs:
			if err := a.showLogs(ctx); err != nil {
				return false, err
			}
		default:
			a.whileLoading(ctx, clock, func(ctx context.Context) {
				if err := a.dashboard.SelectCoinByID(ctx, choice); err != nil {
					a.logger.Warn("select coin", zap.String("coin", choice), zap.Error(err))
				}
			})
		}
	}
}

func (a *App) activate(ctx context.Context, clock *orchestrator.Clock) {
	a.whileLoading(ctx, clock, func(ctx context.Context) {
		if err := a.dashboard.Activate(ctx); err != nil {
			a.logger.Warn("dashboard load", zap.Error(err))
		}
	})
}

// whileLoading runs load and redraws the dashboard on every state change and clock
// tick until it returns. The picker form owns the terminal afterwards, so redraws
// stop there.
func (a *App) whileLoading(ctx context.Context, clock *orchestrator.Clock, load func(context.Context)) {
	changes, unsubscribe := a.dashboard.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		load(ctx)
	}()

	a.draw(clock.Current())
	for {
		select {
		case <-done:
			a.draw(clock.Current())
			return
		case <-changes:
			a.draw(clock.Current())
		case now := <-a.ticks:
			a.draw(now)
		}
	}
}

func (a *App) draw(clock string) render.DashboardView {
	view := render.Dashboard(a.dashboard.Snapshot(), a.loc)
	a.clear()
	fmt.Fprintln(a.out, dashboardView(view, clock))
	return view
}

func actionOptions(coins []render.CoinRow) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(coins)+4)
	for _, c := range coins {
		label := fmt.Sprintf("%s  %s", c.Symbol, c.Name)
		if c.Selected {
			label = selectionMarker + " " + label
		}
		opts = append(opts, huh.NewOption(label, c.ID))
	}
	return append(opts,
		huh.NewOption("Refresh", actionRefresh),
		huh.NewOption("Stored logs", actionLogs),
		huh.NewOption("Logout", actionLogout),
		huh.NewOption("Quit", actionQuit),
	)
}

func (a *App) showLogs(ctx context.Context) error {
	a.clear()
	fmt.Fprintln(a.out, mutedStyle.Render("Loading logs..."))
	_ = a.logs.Load(ctx)
	state := a.logs.Snapshot()

	a.clear()
	fmt.Fprintln(a.out, logsView(render.Logs(state.Logs, a.loc), state.Error))

	var back string
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(huh.NewOption("Back to dashboard", "back")).
				Value(&back),
		),
	).RunWithContext(ctx)
}
