package telemetry

import (
	"encoding/json"
	"strconv"

	"github.com/nerrad567/gray-logic-doorlock/internal/controller"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/mqtt"
)

// Publisher is the part of mqtt.Client the observer needs.
type Publisher interface {
	PublishAsync(topic string, payload []byte, retained bool) error
}

// Logger is the optional logging dependency.
type Logger interface {
	Warn(msg string, args ...any)
}

// MQTTObserver publishes every event on doorlock/{node}/event/{type} and
// keeps the retained doorlock/{node}/mode topic current.
type MQTTObserver struct {
	pub    Publisher
	topics mqtt.Topics
	logger Logger
}

// NewMQTTObserver creates an observer for one node. logger may be nil.
func NewMQTTObserver(pub Publisher, nodeID string, logger Logger) *MQTTObserver {
	return &MQTTObserver{pub: pub, topics: mqtt.Topics{Node: nodeID}, logger: logger}
}

// Observe implements controller.Observer.
func (o *MQTTObserver) Observe(ev controller.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		o.warn("encoding event", string(ev.Type), err)
		return
	}
	if err := o.pub.PublishAsync(o.topics.Event(string(ev.Type)), payload, false); err != nil {
		o.warn("publishing event", string(ev.Type), err)
	}

	if ev.Type == controller.EventModeChanged {
		mode := []byte(strconv.Quote(ev.Mode.String()))
		if err := o.pub.PublishAsync(o.topics.Mode(), mode, true); err != nil {
			o.warn("publishing mode", ev.Mode.String(), err)
		}
	}
}

func (o *MQTTObserver) warn(msg, subject string, err error) {
	if o.logger != nil {
		o.logger.Warn(msg, "subject", subject, "error", err)
	}
}
