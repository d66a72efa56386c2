package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lhj-lhj/SocialRobotics/logging"
)

// Connection defaults. The host and port match the robot's stock event
// gateway on a lab network.
const (
	DefaultHost             = "192.168.1.114"
	DefaultPort             = 54321
	DefaultPath             = "/api/events"
	DefaultConnectTimeout   = 15 * time.Second
	defaultCloseGracePeriod = 2 * time.Second
)

// ErrClosed is returned by requests issued after Close.
var ErrClosed = errors.New("robot connection is closed")

// Handlers receives robot events decoded by the read loop. Callbacks run on
// the read loop goroutine in arrival order, so they must return promptly;
// long work belongs in a goroutine of the handler's own. Nil fields are
// skipped.
type Handlers struct {
	// HearStart fires when the robot detects the user starting to speak.
	HearStart func()
	// HearPartial carries an interim transcript of the ongoing utterance.
	HearPartial func(text string)
	// HearEnd carries the final transcript of a finished utterance.
	HearEnd func(text string)
	// SpeakStart fires when the robot begins voicing a queued utterance.
	SpeakStart func(text string)
	// SpeakEnd fires when an utterance finishes or is cut off (aborted).
	SpeakEnd func(text string, aborted bool)
	// Error receives robot-reported errors and terminal transport failures.
	Error func(err error)
}

// Options configure a robot connection.
type Options struct {
	// Host and Port locate the robot's event gateway.
	Host string
	Port int

	// Path is the websocket endpoint path on the gateway.
	Path string

	// URL overrides Host/Port/Path with a full ws:// or wss:// endpoint.
	URL string

	// AuthKey, when set, is sent as a bearer token during the handshake.
	AuthKey string

	// ConnectTimeout bounds the dial when the context has no deadline.
	ConnectTimeout time.Duration

	// Handlers receive robot events. They can also be swapped later via
	// SetHandlers.
	Handlers Handlers

	// Logger receives connection lifecycle and frame decode logs.
	Logger logging.Logger
}

// Client is a live robot connection. A single read loop goroutine decodes
// event frames and dispatches them to the registered handlers; requests are
// serialized through a write mutex so the client is safe for concurrent use.
type Client struct {
	opts Options
	conn *websocket.Conn

	done chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool

	errMu sync.Mutex
	err   error

	handlerMu sync.RWMutex
	handlers  Handlers
}

// Connect dials the robot's event gateway and starts the read loop. The
// returned client is ready for requests; callers must Close it when done.
func Connect(ctx context.Context, optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Host:           DefaultHost,
		Port:           DefaultPort,
		Path:           DefaultPath,
		ConnectTimeout: DefaultConnectTimeout,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}

	endpoint := opts.URL
	if endpoint == "" {
		endpoint = fmt.Sprintf("ws://%s:%d%s", opts.Host, opts.Port, opts.Path)
	}

	headers := make(http.Header)
	if opts.AuthKey != "" {
		headers.Set("Authorization", "Bearer "+opts.AuthKey)
	}

	dialer := &websocket.Dialer{HandshakeTimeout: opts.ConnectTimeout}

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	conn, resp, err := dialer.DialContext(dialCtx, endpoint, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial robot %s (status %d): %w", endpoint, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial robot %s: %w", endpoint, err)
	}

	c := &Client{
		opts:     opts,
		conn:     conn,
		done:     make(chan struct{}),
		handlers: opts.Handlers,
	}

	go c.readLoop()

	opts.Logger.Info("Robot connection established", "endpoint", endpoint)

	return c, nil
}

// SetHandlers replaces the event handlers. Frames arriving after the call
// see the new set.
func (c *Client) SetHandlers(h Handlers) {
	c.handlerMu.Lock()
	c.handlers = h
	c.handlerMu.Unlock()
}

// Close sends a close handshake, tears the connection down and waits for
// the read loop to exit. It is idempotent.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(defaultCloseGracePeriod))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
	<-c.done
	return nil
}

// Err blocks until the connection ends and returns the terminal transport
// error, or nil after a clean close.
func (c *Client) Err() error {
	if c == nil {
		return nil
	}
	<-c.done
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Done is closed when the read loop exits, whether by Close or by a
// transport failure.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) setErr(err error) {
	if err == nil {
		return
	}
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *Client) sendJSON(v any) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || c.closed.Load() {
				return
			}
			c.setErr(err)
			c.opts.Logger.Warn("Robot connection lost", "error", err)
			c.dispatchError(fmt.Errorf("robot connection lost: %w", err))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.dispatchFrame(data)
	}
}

func (c *Client) dispatchFrame(data []byte) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.opts.Logger.Warn("Undecodable robot frame", "error", err)
		return
	}

	c.handlerMu.RLock()
	h := c.handlers
	c.handlerMu.RUnlock()

	switch envelope.Type {
	case frameHearStart:
		if h.HearStart != nil {
			h.HearStart()
		}
	case frameHearPartial:
		var frame hearTextFrame
		if !c.decode(data, &frame, envelope.Type) {
			return
		}
		if h.HearPartial != nil {
			h.HearPartial(frame.Text)
		}
	case frameHearEnd:
		var frame hearTextFrame
		if !c.decode(data, &frame, envelope.Type) {
			return
		}
		if h.HearEnd != nil {
			h.HearEnd(frame.Text)
		}
	case frameSpeakStart:
		var frame speakStartEventFrame
		if !c.decode(data, &frame, envelope.Type) {
			return
		}
		if h.SpeakStart != nil {
			h.SpeakStart(frame.Text)
		}
	case frameSpeakEnd:
		var frame speakEndEventFrame
		if !c.decode(data, &frame, envelope.Type) {
			return
		}
		if h.SpeakEnd != nil {
			h.SpeakEnd(frame.Text, frame.Aborted)
		}
	case frameError:
		var frame errorFrame
		if !c.decode(data, &frame, envelope.Type) {
			return
		}
		c.opts.Logger.Warn("Robot reported error", "message", frame.Message)
		c.dispatchError(fmt.Errorf("robot error: %s", frame.Message))
	default:
		c.opts.Logger.Debug("Ignoring robot frame", "type", envelope.Type)
	}
}

func (c *Client) decode(data []byte, v any, frameType string) bool {
	if err := json.Unmarshal(data, v); err != nil {
		c.opts.Logger.Warn("Undecodable robot frame", "type", frameType, "error", err)
		return false
	}
	return true
}

func (c *Client) dispatchError(err error) {
	c.handlerMu.RLock()
	h := c.handlers
	c.handlerMu.RUnlock()
	if h.Error != nil {
		h.Error(err)
	}
}
