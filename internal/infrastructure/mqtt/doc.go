// Package mqtt publishes door lock status and events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained online/offline status with a Last Will and Testament
//   - Event and mode publishing, synchronous or fire-and-forget
//
// # Topics
//
//	doorlock/system/status               retained online/offline (LWT)
//	doorlock/{node_id}/mode              retained current mode
//	doorlock/{node_id}/event/{type}      one JSON message per event
//
// The node never subscribes; the door is driven by the keypad only.
//
// # Security Considerations
//
//   - Enable TLS (mqtt.broker.tls) outside a lab network
//   - Event payloads carry outcomes and opcodes, never passcode digits
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Node.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishAsync(client.Topics().Mode(), []byte(`"idle"`), true)
package mqtt
