package mqtt

import "fmt"

// Topic prefixes owned by the pressure logger.
const (
	// TopicPrefixSystem is the base for service status topics.
	TopicPrefixSystem = "pressure/system"

	// TopicPrefixIngest is the base for ingest outcome topics.
	TopicPrefixIngest = "pressure/ingest"

	// DefaultReadingsTopic is where ESP32 sensors publish raw readings.
	DefaultReadingsTopic = "sensors/esp32/pressure"
)

// Topics provides builders for the service's MQTT topics.
//
//	status := mqtt.Topics{}.SystemStatus()
//	// Returns: "pressure/system/status"
type Topics struct{}

// SystemStatus returns the retained online/offline status topic. It is also
// the Last Will topic.
//
// Example: pressure/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// IngestResult returns the topic where the outcome of each MQTT reading is
// published. Kept outside the sensors/ tree so a wildcard readings
// subscription never receives its own replies.
//
// Example: pressure/ingest/result
func (Topics) IngestResult() string {
	return fmt.Sprintf("%s/result", TopicPrefixIngest)
}
