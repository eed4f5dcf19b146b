// Package ingest turns one raw sensor payload into its two side effects:
// a line in the CSV journal and a point in InfluxDB.
//
// The flow is strictly sequential: parse, timestamp, append to the journal,
// write the point, report. The two side effects are independent; a journal
// failure never prevents the database write and neither failure is retried.
// Each outcome becomes a plain-text status line for the caller.
//
// The same Service backs the HTTP endpoint and the MQTT subscription.
package ingest
