package mqtt

import "fmt"

// TopicPrefix is the root of every door lock topic.
const TopicPrefix = "doorlock"

// Topics builds the topics one node publishes on.
//
//	topics := mqtt.Topics{Node: "front-door"}
//	topics.Event("access_attempt") // doorlock/front-door/event/access_attempt
type Topics struct {
	Node string
}

// Event returns the topic for one controller event type.
//
// Example: doorlock/front-door/event/lockout
func (t Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/%s/event/%s", TopicPrefix, t.Node, eventType)
}

// Mode returns the retained topic carrying the node's current mode.
//
// Example: doorlock/front-door/mode
func (t Topics) Mode() string {
	return fmt.Sprintf("%s/%s/mode", TopicPrefix, t.Node)
}

// SystemStatus returns the shared online/offline status topic.
//
// Example: doorlock/system/status
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// AllEvents returns a pattern matching every event of every node.
//
// Pattern: doorlock/+/event/+
func (Topics) AllEvents() string {
	return TopicPrefix + "/+/event/+"
}
