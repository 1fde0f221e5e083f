// Package mqtt connects parkzone to an MQTT broker.
//
// The editor publishes its change events under parkzone/editor/{camera}/
// and accepts commands (currently "reload") on
// parkzone/editor/{camera}/command/{name}. A retained status message on
// parkzone/system/status reports whether the editor is online; the broker
// publishes the offline variant as Last Will if the process dies.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(mqtt.Topics{}.EditorEvent(7, "zone_updated"), payload, 1, false)
//
// Subscriptions are tracked and restored after a reconnect.
package mqtt
