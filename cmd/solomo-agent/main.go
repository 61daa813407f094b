// solomo-agent publishes simulated position samples to the MQTT topic
// the server's broker-fed provider subscribes to. Useful for demos and
// for exercising the full pipeline without a real device.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// positionMessage mirrors the wire format the server's provider parses.
type positionMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Altitude  float64 `json:"altitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp int64   `json:"timestamp"`
}

func main() {
	broker := flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	topic := flag.String("topic", "solomo/position", "Position topic")
	deviceID := flag.String("device", "agent-1", "Device identifier")
	lat := flag.Float64("lat", 40.4168, "Starting latitude")
	lng := flag.Float64("lng", -3.7038, "Starting longitude")
	interval := flag.Duration("interval", 2*time.Second, "Publish interval")
	flag.Parse()

	opts := paho.NewClientOptions().
		AddBroker(*broker).
		SetClientID("solomo-agent-" + *deviceID).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("could not connect to broker: %v", token.Error())
	}
	defer client.Disconnect(250)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("Agent started. Publishing to %s as %s", *topic, *deviceID)

	curLat, curLng := *lat, *lng
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Agent stopping")
			return
		case <-ticker.C:
			// Random walk, roughly ten meters per step.
			curLat += (rand.Float64() - 0.5) * 0.0002
			curLng += (rand.Float64() - 0.5) * 0.0002

			msg := positionMessage{
				DeviceID:  *deviceID,
				Latitude:  curLat,
				Longitude: curLng,
				Accuracy:  5 + rand.Float64()*10,
				Speed:     rand.Float64() * 2,
				Heading:   rand.Float64() * 360,
				Timestamp: time.Now().Unix(),
			}

			payload, err := json.Marshal(msg)
			if err != nil {
				log.Printf("marshal error: %v", err)
				continue
			}

			if token := client.Publish(*topic, 1, false, payload); token.Wait() && token.Error() != nil {
				log.Printf("publish failed: %v", token.Error())
			}
		}
	}
}
