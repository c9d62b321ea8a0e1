package wxfeed

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the event observations arrive with.
const DefaultEvent = "observation"

// connectTimeout bounds the wait for the initial connection.
const connectTimeout = 15 * time.Second

// Config locates the observation feed.
type Config struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
}

// Handler receives every decoded observation. It runs on the socket.io
// client's goroutine.
type Handler func(ctx context.Context, obs Observation)

// Listen connects to the feed and calls h for every observation until ctx
// is cancelled. It returns an error only when the connection cannot be
// established.
func Listen(ctx context.Context, cfg Config, h Handler) error {
	ctx, logger := ctxlog.With(ctx, "feed", cfg.URL)

	event := cfg.Event
	if event == "" {
		event = DefaultEvent
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse weather feed URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("weather feed URL '%s' needs a scheme and a host", cfg.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting weather feed client")
		io.Disconnect()
	}()

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Weather feed connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.On(types.EventName(event), func(data ...any) {
		if len(data) == 0 {
			logger.Warn("Observation event without payload")
			return
		}
		obs, err := DecodeObservation(data[0])
		if err != nil {
			logger.Warn("Dropping observation", "error", err)
			return
		}
		logger.Debug("Observation received", "station", obs.Station)
		h(ctx, obs)
	})

	logger.Debug("Connecting to weather feed...", "event", event)
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			return fmt.Errorf("weather feed connection failed: %w", err)
		}
	case <-ctx.Done():
		return nil
	case <-time.After(connectTimeout):
		return fmt.Errorf("timed out after %v waiting for the weather feed connection", connectTimeout)
	}

	<-ctx.Done()
	logger.Info("Weather feed stopped")
	return nil
}
