package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-quant/go-fractal-engine/src/model"
)

func TestParseBundle(t *testing.T) {
	assertion := assert.New(t)

	message := []byte(`{
		"symbol": "SPX",
		"timestamp": 1700000000000,
		"fast": {
			"bars": [{"symbol": "SPX", "open": 100, "high": 101, "low": 99.5, "close": 100.5, "volume": 1200, "timestamp": 1700000000000}],
			"trades": [{"price": 100.4, "quantity": 10, "side": "buy", "timestamp": 1700000000000}],
			"orderBook": {
				"bids": [{"price": 100.3, "size": 500}],
				"asks": [{"price": 100.5, "size": 400}]
			}
		},
		"chain": [{"strike": 100, "expiry": 1700600000000, "type": "call", "gamma": 0.02, "openInterest": 1500, "impliedVol": 0.22, "delta": 0.5}]
	}`)

	bundle, err := ParseBundle(message)

	assertion.NoError(err)
	assertion.Equal("SPX", bundle.Symbol)
	assertion.Equal(int64(1700000000000), bundle.Timestamp.Value())
	assertion.Len(bundle.Fast.Bars, 1)
	assertion.Equal(100.50, bundle.Fast.Bars[0].Close)
	assertion.Len(bundle.Chain, 1)
	assertion.Equal(model.OptionTypeCall, bundle.Chain[0].Type)
	assertion.InDelta(100.50, bundle.SpotPrice(), 1e-9)
}

func TestParseBundleInvalidJson(t *testing.T) {
	assertion := assert.New(t)

	_, err := ParseBundle([]byte("not json"))
	assertion.Error(err)
}

func TestParseBundleFillsMissingTimestamp(t *testing.T) {
	assertion := assert.New(t)

	bundle, err := ParseBundle([]byte(`{"symbol": "SPX"}`))

	assertion.NoError(err)
	assertion.Greater(bundle.Timestamp.Value(), int64(0))
}
