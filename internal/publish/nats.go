// Package publish sends router snapshots to NATS so other services can
// consume what `asuswrt watch` polls.
package publish

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rileyhilliard/asuswrt/internal/errors"
	"github.com/rileyhilliard/asuswrt/internal/logger"
	"github.com/rileyhilliard/asuswrt/pkg/asuswrt"
)

// Connection defaults
const (
	ClientName     = "asuswrt"
	ConnectTimeout = 10 * time.Second
	ReconnectWait  = 2 * time.Second
)

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Message is the JSON body published for each snapshot.
type Message struct {
	Name string `json:"name"`
	*asuswrt.Snapshot
}

// Publisher publishes snapshots on <subject>.<router name>.
type Publisher struct {
	conn    Conn
	subject string
	log     logger.Logger
}

// New wraps an existing connection.
func New(conn Conn, subject string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Noop()
	}
	return &Publisher{conn: conn, subject: subject, log: log}
}

// Connect dials the NATS server at url. The connection reconnects forever
// and logs disconnects rather than failing the watch loop.
func Connect(url, subject string, log logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Noop()
	}

	nc, err := nats.Connect(url,
		nats.Name(ClientName),
		nats.Timeout(ConnectTimeout),
		nats.ReconnectWait(ReconnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error("nats error: %v", err)
		}),
	)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrPublish,
			"Can't connect to NATS at "+url,
			"Check the server is running and watch.nats_url is right")
	}
	log.Debug("connected to nats at %s", nc.ConnectedUrl())

	return New(nc, subject, log), nil
}

// Subject returns the subject snapshots of the named router go to.
func (p *Publisher) Subject(name string) string {
	return p.subject + "." + subjectToken(name)
}

// Publish sends snap as JSON and waits for the server to acknowledge the
// flush, so a dead connection shows up as an error on this poll.
func (p *Publisher) Publish(ctx context.Context, name string, snap *asuswrt.Snapshot) error {
	data, err := json.Marshal(Message{Name: name, Snapshot: snap})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrPublish, "Can't encode snapshot of "+name, "")
	}

	subject := p.Subject(name)
	if err := p.conn.Publish(subject, data); err != nil {
		return errors.WrapWithCode(err, errors.ErrPublish, "Can't publish to "+subject, "")
	}

	// nats refuses to flush without a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ConnectTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapWithCode(err, errors.ErrPublish, "NATS did not acknowledge "+subject, "")
	}

	p.log.Debug("published %d bytes to %s", len(data), subject)
	return nil
}

// Close closes the connection.
func (p *Publisher) Close() {
	p.conn.Close()
}

// subjectToken makes a router name safe as one subject token.
func subjectToken(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, name)
}
