// Package journal records widget session events on an embedded NATS
// JetStream log. It is a debug facility: enabled only with the debug flag,
// append-only, and never read back to restore wizard state. Subjects follow
// epoxyview.{session}.{type}.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	natsio "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/skisplace/epoxyview/internal/logger"
	"github.com/skisplace/epoxyview/internal/nats"
)

// Event types recorded by the widget.
const (
	EventTransition = "transition" // wizard step changes
	EventStroke     = "stroke"     // committed mask strokes
	EventNetwork    = "network"    // upload/fetch/render completions
	EventError      = "error"      // overlay errors
)

// Event is one journal entry.
type Event struct {
	Timestamp time.Time       `json:"timestamp"`
	Session   string          `json:"session"`
	Type      string          `json:"type"`
	Action    string          `json:"action"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// NewSessionID derives a session identifier from the wall clock. Subjects
// only allow token-safe characters, so the format avoids colons.
func NewSessionID() string {
	return time.Now().Format("20060102-150405")
}

// Journal owns an embedded in-process NATS server with JetStream storage
// under the widget data directory.
type Journal struct {
	ns      *server.Server
	nc      *natsio.Conn
	js      jetstream.JetStream
	stream  jetstream.Stream
	session string
}

// Open starts the embedded server and creates (or reuses) the event stream.
func Open(ctx context.Context, dataDir, session string) (*Journal, error) {
	ns, err := nats.StartEmbedded(dataDir)
	if err != nil {
		return nil, fmt.Errorf("starting journal server: %w", err)
	}
	nc, js, err := nats.ConnectInProcess(ns)
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("connecting to journal server: %w", err)
	}
	stream, err := nats.SetupStream(ctx, js)
	if err != nil {
		_ = nats.Shutdown(nc, ns)
		return nil, fmt.Errorf("creating journal stream: %w", err)
	}

	logger.Debug("journal open: session=%s dir=%s", session, dataDir)
	return &Journal{ns: ns, nc: nc, js: js, stream: stream, session: session}, nil
}

// Record appends one event. Journal failures are logged and swallowed: the
// preview flow must never stall on its debug log.
func (j *Journal) Record(ctx context.Context, eventType, action string, meta any) {
	if j == nil {
		return
	}
	ev := Event{
		Timestamp: time.Now(),
		Session:   j.session,
		Type:      eventType,
		Action:    action,
	}
	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			logger.Warn("journal meta marshal failed: %v", err)
		} else {
			ev.Meta = raw
		}
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Warn("journal event marshal failed: %v", err)
		return
	}
	if _, err := j.js.Publish(ctx, nats.SubjectForEvent(j.session, eventType), data); err != nil {
		logger.Warn("journal publish failed: %v", err)
	}
}

// Replay reads back every event of the session in order, for the doctor
// command's inspection view.
func (j *Journal) Replay(ctx context.Context, fn func(Event)) error {
	cons, err := nats.CreateReplayConsumer(ctx, j.stream, j.session)
	if err != nil {
		return fmt.Errorf("creating replay consumer: %w", err)
	}

	info, err := cons.Info(ctx)
	if err != nil {
		return fmt.Errorf("reading consumer info: %w", err)
	}
	pending := int(info.NumPending)
	if pending == 0 {
		return nil
	}

	batch, err := cons.Fetch(pending, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return fmt.Errorf("fetching journal events: %w", err)
	}
	for msg := range batch.Messages() {
		var ev Event
		if err := json.Unmarshal(msg.Data(), &ev); err != nil {
			logger.Warn("skipping undecodable journal event: %v", err)
		} else {
			fn(ev)
		}
		_ = msg.Ack()
	}
	return batch.Error()
}

// Close drains the connection and shuts the embedded server down.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return nats.Shutdown(j.nc, j.ns)
}
