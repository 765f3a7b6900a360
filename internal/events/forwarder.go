// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package events

import (
	"context"

	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/models"
)

// Broadcaster fans an activity delta out to connected live clients.
type Broadcaster interface {
	BroadcastActivity(activity *models.Activity)
}

// Forwarder drains the activity bus into the live broadcast hub. It runs as
// a supervised service; on restart it resubscribes and continues with new
// messages, since the bus holds no history.
type Forwarder struct {
	bus         *Bus
	broadcaster Broadcaster
}

// NewForwarder wires the bus to a broadcaster.
func NewForwarder(bus *Bus, broadcaster Broadcaster) *Forwarder {
	return &Forwarder{bus: bus, broadcaster: broadcaster}
}

// Serve consumes activity messages until ctx is canceled. A message that
// fails to decode is acked and dropped; one bad payload must not wedge the
// live feed.
func (f *Forwarder) Serve(ctx context.Context) error {
	msgs, err := f.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	logging.Info().Msg("activity forwarder started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return ctx.Err()
			}

			activity, err := DecodeActivity(msg)
			if err != nil {
				logging.Warn().Err(err).Msg("dropping undecodable activity message")
				msg.Ack()
				continue
			}

			f.broadcaster.BroadcastActivity(activity)
			msg.Ack()
		}
	}
}

// String identifies the service in supervisor logs.
func (f *Forwarder) String() string {
	return "activity-forwarder"
}
