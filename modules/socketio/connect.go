package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/provision"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ConnectTimeout bounds the initial connection handshake.
const ConnectTimeout = 15 * time.Second

// NewClient connects to env.Endpoint and returns a client bound to that
// connection. The caller must Close it.
func NewClient(ctx context.Context, env *config.Environment) (provision.Client, error) {
	logger := ctxlog.FromContext(ctx).With("client", Kind, "url", env.Endpoint)

	parsedURL, err := parseEndpoint(env.Endpoint)
	if err != nil {
		return nil, err
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if env.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(env.Namespace, opts)

	c := newClient(env.Timeout, func(event string, args ...any) {
		io.Emit(event, args...)
	}, func() {
		io.Disconnect()
	})

	io.On(types.EventName(EventProvisioned), func(data ...any) {
		c.dispatch(data...)
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Warn("Disconnected from deployment agent", "reason", fmt.Sprint(reason...))
		c.failPending(fmt.Errorf("socket.io connection lost: %v", fmt.Sprint(reason...)))
	})

	connected := newConnectSignal()
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connected.deliver(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connected.deliver(err)
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	timeout := ConnectTimeout
	if env.Timeout > 0 && env.Timeout < timeout {
		timeout = env.Timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}
}

// connectSignal carries the first connection outcome. Later outcomes, such as
// a connect after connect_error or anything after a timeout, are dropped.
type connectSignal chan error

func newConnectSignal() connectSignal {
	return make(connectSignal, 1)
}

func (s connectSignal) deliver(err error) {
	select {
	case s <- err:
	default:
	}
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", endpoint)
	}
	return u, nil
}
