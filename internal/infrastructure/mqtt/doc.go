// Package mqtt connects the pressure logger to an MQTT broker so sensors
// that cannot reach the HTTP endpoint can publish readings instead.
//
// The client wraps paho.mqtt.golang and adds:
//   - Auto-reconnect with subscriptions restored after each reconnect
//   - A retained status topic (pressure/system/status) with a Last Will
//     so dashboards see when the logger goes away
//   - Panic recovery and error logging around message handlers
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(cfg.MQTT.Topic, byte(cfg.MQTT.QoS),
//	    func(topic string, payload []byte) error {
//	        return handle(payload)
//	    })
package mqtt
