package translator

import (
	"github.com/amimof/huego"
	"smartlinc-bridge/internal/domain/protocol"
)

// Translator defines the interface for translating between gateway status bytes and Hue states
type Translator interface {
	ToHue(code protocol.StatusCode) *huego.State
	// ToGateway reports whether the device should be switched on.
	ToGateway(state *huego.State) bool
}
