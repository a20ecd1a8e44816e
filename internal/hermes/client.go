package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectTimelineGenerated announces every persisted timeline.
	SubjectTimelineGenerated = "timemachine.timeline.generated"
	// SubjectTimelineRequested asks the service to generate a timeline.
	SubjectTimelineRequested = "timemachine.timeline.requested"
)

// TimelineGenerated is the payload published on SubjectTimelineGenerated.
type TimelineGenerated struct {
	ID        string    `json:"id"`
	Scenario  string    `json:"scenario"`
	Events    int       `json:"events"`
	Degraded  bool      `json:"degraded"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineRequested is the payload consumed from SubjectTimelineRequested.
type TimelineRequested struct {
	Scenario string `json:"scenario"`
	Depth    string `json:"depth,omitempty"`
}

type Options struct {
	Token string
	// DrainTimeout bounds Drain inside the nats client. It should exceed
	// the time one handler can take.
	DrainTimeout time.Duration
}

// Client publishes timeline events and runs request handlers. Handlers
// for one subscription run sequentially.
type Client struct {
	conn      *nats.Conn
	inflight  sync.WaitGroup
	closed    chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

func NewClient(ctx context.Context, url string, opts Options, logger *slog.Logger) (*Client, error) {
	c := &Client{closed: make(chan struct{}), logger: logger}

	natsOpts := []nats.Option{
		nats.Name("timemachine"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.closeOnce.Do(func() { close(c.closed) })
		}),
	}
	if opts.Token != "" {
		natsOpts = append(natsOpts, nats.Token(opts.Token))
	}
	if opts.DrainTimeout > 0 {
		natsOpts = append(natsOpts, nats.DrainTimeout(opts.DrainTimeout))
	}

	nc, err := nats.Connect(url, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	c.conn = nc
	return c, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

// Subscribe runs handler for every message on subject. Close waits for
// running handlers and for messages already queued for them.
func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	_, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		c.inflight.Add(1)
		defer c.inflight.Done()

		start := time.Now()
		handler(msg.Subject, msg.Data)
		c.logger.Debug("handled bus message", "subject", msg.Subject, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

// Close drains the connection: no new messages are accepted, queued ones are
// handled, pending publishes are flushed. It returns once the connection is
// closed and every handler has returned, or when ctx ends, in which case the
// connection is closed immediately.
func (c *Client) Close(ctx context.Context) error {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
		return fmt.Errorf("nats drain: %w", err)
	}

	done := make(chan struct{})
	go func() {
		<-c.closed
		c.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("nats drained")
		return nil
	case <-ctx.Done():
		c.conn.Close()
		return fmt.Errorf("nats drain: %w", ctx.Err())
	}
}
