// Package gateway is the websocket client for the chat gateway sidecar
//
// The Client is a long-lived service object. Its event channel is created once and
// survives Stop/Start cycles, so consumers subscribe a single time.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	perr "triggerbot/internal/platform/errors"
	"triggerbot/internal/platform/logger"
	"triggerbot/internal/platform/metrics"
	dispatch "triggerbot/internal/services/dispatch/domain"
	orch "triggerbot/internal/services/orchestrator/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// State of the gateway session
type State string

const (
	StateStopped      State = "stopped"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
)

// Status is a snapshot for the ops API
type Status struct {
	State State     `json:"state"`
	URL   string    `json:"url"`
	Since time.Time `json:"since"`
	Error string    `json:"error,omitempty"`
}

const (
	defaultDialTimeout = 10 * time.Second
	defaultPongWait    = 60 * time.Second
	defaultBuffer      = 256
	writeWait          = 10 * time.Second
	maxFrameSize       = 32 << 20
)

// Options configures the Client
type Options struct {
	URL         string
	Token       string
	DialTimeout time.Duration
	PongWait    time.Duration
	// Buffer bounds the event channel; the read loop blocks when it is full
	Buffer int
}

// Client connects to the sidecar, streams inbound events and sends payloads
type Client struct {
	opts   Options
	events chan orch.InboundEvent
	log    logger.Logger
	now    func() time.Time

	mu    sync.Mutex
	sess  *session
	state State
	since time.Time
	err   string
}

// New constructs a stopped client
func New(o Options) *Client {
	if o.DialTimeout <= 0 {
		o.DialTimeout = defaultDialTimeout
	}
	if o.PongWait <= 0 {
		o.PongWait = defaultPongWait
	}
	if o.Buffer <= 0 {
		o.Buffer = defaultBuffer
	}
	return &Client{
		opts:   o,
		events: make(chan orch.InboundEvent, o.Buffer),
		log:    *logger.Named("gateway"),
		now:    func() time.Time { return time.Now().UTC() },
		state:  StateStopped,
		since:  time.Now().UTC(),
	}
}

// Events is the inbound stream; it is never closed
func (c *Client) Events() <-chan orch.InboundEvent { return c.events }

// Status returns the current session state
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{State: c.state, URL: c.opts.URL, Since: c.since, Error: c.err}
}

func (c *Client) setState(s State, errText string) {
	c.state, c.since, c.err = s, c.now(), errText
	metrics.SetGatewayConnected(s == StateConnected)
}

// Start dials the sidecar; it is a no-op while already connected
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		return nil
	}
	if c.opts.URL == "" {
		c.mu.Unlock()
		return perr.Newf(perr.ErrorCodeInvalidArgument, "gateway: no url configured")
	}
	c.setState(StateConnecting, "")
	c.mu.Unlock()

	hdr := http.Header{}
	if c.opts.Token != "" {
		hdr.Set("Authorization", "Bearer "+c.opts.Token)
	}
	d := websocket.Dialer{HandshakeTimeout: c.opts.DialTimeout, Proxy: http.ProxyFromEnvironment}
	dctx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	conn, _, err := d.DialContext(dctx, c.opts.URL, hdr)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setState(StateDisconnected, err.Error())
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "gateway: dial")
	}
	if c.sess != nil {
		// lost a race with a concurrent Start
		_ = conn.Close()
		return nil
	}

	s := newSession(conn)
	c.sess = s
	c.setState(StateConnected, "")
	go c.readLoop(s)
	go c.pingLoop(s)
	c.log.Info().Str("url", c.opts.URL).Msg("gateway connected")
	return nil
}

// Stop closes the session; pending sends fail as transport-fatal
func (c *Client) Stop() error {
	c.mu.Lock()
	s := c.sess
	c.sess = nil
	c.setState(StateStopped, "")
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	s.close()
	c.log.Info().Msg("gateway stopped")
	return nil
}

// Send delivers p to recipient and waits for the sidecar's ack
// A missing session, a closed connection, a write failure or a fatal ack is transport-fatal
func (c *Client) Send(ctx context.Context, recipient string, p dispatch.Payload) (string, error) {
	c.mu.Lock()
	s := c.sess
	c.mu.Unlock()
	if s == nil {
		return "", perr.TransportFatalf("gateway: not connected")
	}

	id := uuid.NewString()
	ack := s.expect(id)
	defer s.forget(id)

	b, err := json.Marshal(sendFrame(id, recipient, p))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "gateway: encode send")
	}
	if err := s.write(ctx, websocket.TextMessage, b); err != nil {
		c.drop(s, err)
		return "", perr.Wrap(err, perr.ErrorCodeTransportFatal, "gateway: write")
	}

	select {
	case a := <-ack:
		switch {
		case a.OK:
			return a.MessageID, nil
		case a.Fatal:
			return "", perr.TransportFatalf("gateway: %s", a.Error)
		default:
			return "", perr.Newf(perr.ErrorCodeUnavailable, "gateway: send rejected: %s", a.Error)
		}
	case <-s.done:
		return "", perr.TransportFatalf("gateway: connection closed")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Client) readLoop(s *session) {
	defer c.drop(s, nil)

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				c.log.Warn().Err(err).Msg("gateway read failed")
				c.drop(s, err)
			}
			return
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.log.Warn().Err(err).Msg("gateway sent malformed frame")
			continue
		}
		switch f.Type {
		case frameAck:
			s.resolve(f)
		case frameMessage:
			select {
			case c.events <- f.event(c.now()):
			case <-s.done:
				return
			}
		default:
			c.log.Debug().Str("type", f.Type).Msg("ignoring gateway frame")
		}
	}
}

func (c *Client) pingLoop(s *session) {
	t := time.NewTicker(c.opts.PongWait * 9 / 10)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.drop(s, err)
				return
			}
		}
	}
}

// drop tears s down; if s is still the live session the client becomes disconnected
func (c *Client) drop(s *session, cause error) {
	c.mu.Lock()
	if c.sess == s {
		c.sess = nil
		text := "connection closed"
		if cause != nil {
			text = cause.Error()
		}
		c.setState(StateDisconnected, text)
	}
	c.mu.Unlock()
	s.close()
}
