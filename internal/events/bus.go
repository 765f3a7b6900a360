// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package events carries recorded activity from the write path to the live
// broadcast fan-out. The bus is in-process and at-most-once: subscribers
// that are not listening when a message is published never see it, which is
// exactly the semantics a live ticker needs. Persistence and replay live in
// the database, not here.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"

	"github.com/hmassawe/karatasi/internal/models"
)

// TopicActivity is the bus topic for recorded access activity.
const TopicActivity = "activity.recorded"

// Bus wraps the Watermill in-process Pub/Sub.
type Bus struct {
	pubsub *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

// NewBus creates the activity bus. The output buffer absorbs short bursts;
// when a subscriber falls further behind, publishing blocks rather than
// dropping, and the forwarder drains fast enough that this does not happen
// in practice.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)

	return &Bus{pubsub: pubsub}
}

// PublishActivity serializes and publishes one activity delta.
func (b *Bus) PublishActivity(activity *models.Activity) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("activity bus is closed")
	}
	b.mu.RUnlock()

	data, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to serialize activity: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("action", activity.Action)

	if err := b.pubsub.Publish(TopicActivity, msg); err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}

	return nil
}

// Subscribe returns a channel of raw activity messages. The channel closes
// when ctx is canceled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	msgs, err := b.pubsub.Subscribe(ctx, TopicActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to activity topic: %w", err)
	}
	return msgs, nil
}

// Close shuts the bus down. Subsequent publishes fail.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	return b.pubsub.Close()
}

// DecodeActivity deserializes a bus message back into an activity.
func DecodeActivity(msg *message.Message) (*models.Activity, error) {
	var activity models.Activity
	if err := json.Unmarshal(msg.Payload, &activity); err != nil {
		return nil, fmt.Errorf("failed to decode activity message %s: %w", msg.UUID, err)
	}
	return &activity, nil
}
