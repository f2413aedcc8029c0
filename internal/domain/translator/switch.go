package translator

import (
	"github.com/amimof/huego"
	"smartlinc-bridge/internal/domain/protocol"
)

const maxBri = 254

// SwitchStrategy handles on/off relays (ApplianceLinc, OutletLinc).
type SwitchStrategy struct{}

func (s *SwitchStrategy) ToHue(code protocol.StatusCode) *huego.State {
	state := &huego.State{Reachable: true}
	state.On = code != protocol.StatusOff
	if state.On {
		state.Bri = maxBri
	}
	return state
}

func (s *SwitchStrategy) ToGateway(state *huego.State) bool {
	return state.On
}
