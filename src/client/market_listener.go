package client

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

// Listen subscribes to the upstream market-bundle stream and forwards
// raw frames into the channel, reconnecting forever on failure.
func Listen(address string, bundleChannel chan<- []byte, connectionId int64) *websocket.Conn {
	connection, _, err := websocket.DefaultDialer.Dial(address, nil)
	if err != nil {
		log.Printf("Market [err_1] WS Bundles [%s]: %s, wait and reconnect...", address, err.Error())
		time.Sleep(time.Second * 3)
		connectionId++

		return Listen(address, bundleChannel, connectionId)
	}

	go func() {
		for {
			_, message, err := connection.ReadMessage()
			if err != nil {
				log.Printf("Market [err_2] WS Bundles, read [%s]: %s", address, err.Error())

				_ = connection.Close()
				log.Printf("Market [err_2] WS Bundles, wait and reconnect...")
				time.Sleep(time.Second * 3)
				connectionId++
				Listen(address, bundleChannel, connectionId)
				return
			}

			bundleChannel <- message
		}
	}()

	return connection
}

// ParseBundle decodes one stream frame. A frame that does not carry a
// symbol is dropped by the caller.
func ParseBundle(message []byte) (model.MarketBundle, error) {
	var bundle model.MarketBundle
	err := json.Unmarshal(message, &bundle)
	if err != nil {
		return bundle, err
	}

	if bundle.Timestamp == 0 {
		bundle.Timestamp = model.NowMilli()
	}

	return bundle, nil
}
