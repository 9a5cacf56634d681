// Package worker manages the JetStream pull consumer that turns playback
// events into durable watch history.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/events"
	"github.com/example/ott-platform/services/activity/internal/store"
)

const (
	playbackStream  = "PLAYBACK"
	historyConsumer = "history_writer"
)

// Consumer wraps a JetStream pull subscription over playback events and
// applies them to the history store.
type Consumer struct {
	sub       *nats.Subscription
	history   store.HistoryStore
	batchSize int
	wait      time.Duration
	log       *zap.Logger
}

// New creates the PLAYBACK JetStream stream if needed and returns a
// Consumer ready to call Run.
func New(nc *nats.Conn, history store.HistoryStore, batchSize, batchIntervalMs int, log *zap.Logger) (*Consumer, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}

	ensureStream(js, log)

	sub, err := js.PullSubscribe(">", historyConsumer, nats.BindStream(playbackStream))
	if err != nil {
		return nil, err
	}

	return &Consumer{
		sub:       sub,
		history:   history,
		batchSize: batchSize,
		wait:      time.Duration(batchIntervalMs) * time.Millisecond,
		log:       log,
	}, nil
}

// Run processes messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.sub.Fetch(c.batchSize, nats.MaxWait(c.wait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			c.log.Error("history consumer: fetch", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range msgs {
			if err := c.apply(ctx, msg.Subject, msg.Data); err != nil {
				c.log.Warn("history consumer: apply", zap.String("subject", msg.Subject), zap.Error(err))
				if err := msg.Nak(); err != nil {
					c.log.Warn("history consumer: nak", zap.Error(err))
				}
				continue
			}
			if err := msg.Ack(); err != nil {
				c.log.Warn("history consumer: ack", zap.Error(err))
			}
		}
	}
}

// apply maps one playback event onto the history table. Started events carry
// no position and are skipped; the stale-write guard in the store makes
// redelivered messages harmless.
func (c *Consumer) apply(ctx context.Context, subject string, data []byte) error {
	var ev events.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}

	switch subject {
	case events.SubjectPlaybackPosition, events.SubjectPlaybackCompleted:
	default:
		return nil
	}

	rec := store.HistoryRecord{
		UserID:       ev.UserID,
		ProfileID:    propString(ev.Properties, "profile_id"),
		ContentID:    propString(ev.Properties, "content_id"),
		EpisodeID:    propString(ev.Properties, "episode_id"),
		Completed:    subject == events.SubjectPlaybackCompleted,
		OccurredAtMs: ev.OccurredAt.UnixMilli(),
	}
	if rec.UserID == "" || rec.ProfileID == "" || rec.ContentID == "" {
		// Malformed event; drop rather than redeliver forever.
		return nil
	}
	if pos, ok := propInt(ev.Properties, "position"); ok {
		rec.PositionSeconds = pos
	}
	return c.history.Upsert(ctx, rec)
}

func propString(props map[string]any, key string) string {
	v, _ := props[key].(string)
	return v
}

func propInt(props map[string]any, key string) (int, bool) {
	// JSON numbers decode as float64.
	if f, ok := props[key].(float64); ok {
		return int(f), true
	}
	return 0, false
}

// ensureStream creates the PLAYBACK JetStream stream if it doesn't exist.
// The streaming service publishes to these subjects without owning the
// stream, so whichever side starts first wins the create.
func ensureStream(js nats.JetStreamContext, log *zap.Logger) {
	cfg := &nats.StreamConfig{
		Name:      playbackStream,
		Subjects:  []string{"playback.>"},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    30 * 24 * time.Hour,
	}

	_, err := js.AddStream(cfg)
	if err == nil {
		log.Info("history consumer: stream created", zap.String("stream", playbackStream))
		return
	}
	if !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		if _, updateErr := js.UpdateStream(cfg); updateErr != nil {
			log.Warn("history consumer: stream update failed", zap.Error(updateErr))
		}
	}
}
