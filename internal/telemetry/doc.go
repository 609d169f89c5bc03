// Package telemetry forwards controller events to MQTT and InfluxDB.
//
// Both observers are fire-and-forget: a broker or database outage is
// logged and never changes what the controller replies on the link.
package telemetry
