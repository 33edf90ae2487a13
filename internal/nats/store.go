package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamName is the single journal stream covering all widget sessions.
const StreamName = "epoxyview_events"

// SubjectForSession returns the wildcard subject matching every event of a
// session. Example: "epoxyview.20260829-101500.>"
func SubjectForSession(session string) string {
	return fmt.Sprintf("epoxyview.%s.>", session)
}

// SubjectForEvent returns the subject for one event type within a session.
// Example: "epoxyview.20260829-101500.stroke"
func SubjectForEvent(session, eventType string) string {
	return fmt.Sprintf("epoxyview.%s.%s", session, eventType)
}

// SetupStream creates or reuses the journal stream. Events expire after a
// week; the journal is a short-lived debugging aid, not an archive.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"epoxyview.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
}

// CreateReplayConsumer creates an ephemeral consumer that replays a single
// session's events from the beginning.
func CreateReplayConsumer(ctx context.Context, stream jetstream.Stream, session string) (jetstream.Consumer, error) {
	return stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		FilterSubject: SubjectForSession(session),
	})
}
