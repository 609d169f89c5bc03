// Package influxdb records door lock metrics in InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. Points are written
// through the non-blocking, batched write API so the controller never waits
// on the network.
//
// # Measurements
//
//	access_attempts     tags option, outcome; fields granted, failures
//	door_cycles         tag phase; field count
//	lockouts            fields active, failures
//	credential_changes  tag outcome; field round
//
// Every point also carries the node tag.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Node.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteAccessAttempt("open", "match", 0, time.Now())
package influxdb
