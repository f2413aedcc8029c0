package translator

import (
	"github.com/amimof/huego"
	"smartlinc-bridge/internal/domain/protocol"
)

// DimmerStrategy reads the status byte as an on-level 0x00-0xFF.
type DimmerStrategy struct{}

func (s *DimmerStrategy) ToHue(code protocol.StatusCode) *huego.State {
	state := &huego.State{Reachable: true}
	state.On = code > 0
	state.Bri = uint8(min(int(code), maxBri))
	return state
}

func (s *DimmerStrategy) ToGateway(state *huego.State) bool {
	return state.On && state.Bri > 0
}
