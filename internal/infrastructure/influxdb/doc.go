// Package influxdb writes pressure readings to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. Writes go through the
// blocking write API so the caller learns the outcome of every point, and the
// client is configured for second precision.
//
// # Usage
//
//	client, err := influxdb.New(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.WriteReading(ctx, 2310, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
//
// # Error Handling
//
// Write failures are returned wrapped in ErrWriteFailed and are never retried.
package influxdb
