// Package controller implements the back-end node: the authentication state
// machine that answers front-end requests and drives the door motor and the
// intrusion alarm.
//
// The controller is strictly lock-step with the panel. After boot it runs the
// credential setup exchange until a passcode is agreed, then serves requests
// forever:
//
//	AwaitingLink → SettingCredential → Idle ⇄ Verifying* → RunningDoorSequence
//	                                               ↘ RunningLockout
//
// There is no timeout anywhere in the protocol. A lost or corrupted byte
// leaves the controller blocked in Receive; only closing the link (process
// shutdown) ends that.
//
// Every outcome is reported to an Observer. Observers feed the audit trail,
// MQTT events and InfluxDB metrics; they never alter protocol behaviour.
package controller
