package mqtt

import (
	"fmt"
)

// maxPayloadSize caps a single message at 1MB.
const maxPayloadSize = 1 << 20

// PublishAsync queues a message with the configured QoS and returns
// without waiting. Delivery failures are logged.
//
// The controller publishes from its protocol goroutine, which must not
// stall on a slow broker.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "doorlock/front-door/mode")
//   - payload: The message payload (typically JSON, max 1MB)
//   - retained: Whether the broker keeps the message for new subscribers
//
// Returns:
//   - error: validation failure or ErrNotConnected; nil once queued
func (c *Client) PublishAsync(topic string, payload []byte, retained bool) error {
	qos := byte(c.cfg.QoS) //nolint:gosec // QoS validated by config
	if err := validatePublish(topic, payload, qos); err != nil {
		return err
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	go func() {
		if !token.WaitTimeout(defaultPublishTimeout) {
			c.warn("mqtt publish timed out", topic, nil)
			return
		}
		if err := token.Error(); err != nil {
			c.warn("mqtt publish failed", topic, err)
		}
	}()
	return nil
}

func (c *Client) warn(msg, topic string, err error) {
	if logger := c.getLogger(); logger != nil {
		logger.Warn(msg, "topic", topic, "error", err)
	}
}

func validatePublish(topic string, payload []byte, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	return nil
}
