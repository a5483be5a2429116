// Command stream_load opens many logged-in dashboard streams against a running
// walletwatch web front end and reports connection and event counts.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type counters struct {
	connected   atomic.Int64
	loginErrs   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64
	stateEvents atomic.Int64
	clockEvents atomic.Int64
}

func (c *counters) fields() []zap.Field {
	return []zap.Field{
		zap.Int64("connected", c.connected.Load()),
		zap.Int64("login_errs", c.loginErrs.Load()),
		zap.Int64("connect_errs", c.connectErrs.Load()),
		zap.Int64("stream_errs", c.streamErrs.Load()),
		zap.Int64("state_events", c.stateEvents.Load()),
		zap.Int64("clock_events", c.clockEvents.Load()),
	}
}

func main() {
	var (
		baseURL      string
		username     string
		password     string
		connections  int
		testDuration time.Duration
		rampUp       time.Duration
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "walletwatch base URL")
	flag.StringVar(&username, "user", "", "username to log in with")
	flag.StringVar(&password, "password", "", "password to log in with")
	flag.IntVar(&connections, "conns", 100, "number of concurrent browser sessions")
	flag.DurationVar(&testDuration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	flag.DurationVar(&rampUp, "ramp", 0, "ramp-up duration (spread session starts across this window)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if connections <= 0 {
		logger.Fatal("invalid conns", zap.Int("conns", connections))
	}
	if username == "" || password == "" {
		logger.Fatal("--user and --password are required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if rampUp == 0 && connections > 100 {
		// 1 second per 100 sessions, each one logs in first
		rampUp = time.Duration(connections/100) * time.Second
		logger.Info("using default ramp-up", zap.Duration("ramp", rampUp))
	}

	transport := &http.Transport{
		MaxConnsPerHost:     connections*2 + 100,
		MaxIdleConns:        connections*2 + 100,
		MaxIdleConnsPerHost: connections*2 + 100,
		DisableCompression:  true,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if testDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, testDuration)
		defer cancel()
	}

	logger.Info("starting stream load",
		zap.String("url", baseURL), zap.Int("conns", connections),
		zap.Duration("duration", testDuration), zap.Duration("ramp", rampUp))

	var (
		c     counters
		wg    sync.WaitGroup
		start = time.Now()
	)

	var interval time.Duration
	if rampUp > 0 {
		interval = rampUp / time.Duration(connections)
	}

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info("status", append(c.fields(), zap.Duration("elapsed", time.Since(start).Truncate(time.Second)))...)
			}
		}
	}()

	for i := 0; i < connections && ctx.Err() == nil; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			client, err := login(ctx, transport, baseURL, username, password)
			if err != nil {
				if ctx.Err() == nil {
					c.loginErrs.Add(1)
					logger.Debug("login", zap.Error(err))
				}
				return
			}
			stream(ctx, client, baseURL, &c)
		}()
	}

	wg.Wait()

	elapsed := time.Since(start)
	events := c.stateEvents.Load() + c.clockEvents.Load()
	fmt.Printf("done: connected=%d login_errs=%d connect_errs=%d stream_errs=%d state=%d clock=%d elapsed=%s events/s=%.2f\n",
		c.connected.Load(), c.loginErrs.Load(), c.connectErrs.Load(), c.streamErrs.Load(),
		c.stateEvents.Load(), c.clockEvents.Load(),
		elapsed.Truncate(time.Millisecond), float64(events)/max(elapsed.Seconds(), 0.001),
	)
}

// login returns a client whose cookie jar holds a logged-in browser session.
func login(ctx context.Context, transport http.RoundTripper, baseURL, username, password string) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		Transport: transport,
		Jar:       jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "post login")
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/dashboard" {
		return nil, errors.Errorf("login rejected with status %d", resp.StatusCode)
	}

	// the page visit triggers the dashboard load the stream then reports
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/dashboard", nil)
	if err != nil {
		return nil, err
	}
	resp, err = client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "get dashboard")
	}
	_ = resp.Body.Close()

	return client, nil
}

func stream(ctx context.Context, client *http.Client, baseURL string, c *counters) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/dashboard/stream", nil)
	if err != nil {
		c.connectErrs.Add(1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.connectErrs.Add(1)
		}
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.connectErrs.Add(1)
		return
	}

	c.connected.Add(1)
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() == nil {
				c.streamErrs.Add(1)
			}
			return
		}
		switch strings.TrimSpace(line) {
		case "event: state":
			c.stateEvents.Add(1)
		case "event: clock":
			c.clockEvents.Add(1)
		}
	}
}
