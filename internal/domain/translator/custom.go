package translator

import (
	"math"

	"github.com/Knetic/govaluate"
	"github.com/amimof/huego"
	"smartlinc-bridge/internal/domain/protocol"
)

// CustomStrategy maps the status byte through a user formula over x.
type CustomStrategy struct {
	Formula string
}

func (s *CustomStrategy) ToHue(code protocol.StatusCode) *huego.State {
	state := &huego.State{Reachable: true}
	input := float64(code)
	output := input
	if s.Formula != "" {
		output = s.evaluate(s.Formula, input)
	}
	switch {
	case output < 0 || math.IsNaN(output):
		output = 0
	case output > maxBri:
		output = maxBri
	}
	state.Bri = uint8(output)
	state.On = state.Bri > 0
	return state
}

func (s *CustomStrategy) ToGateway(state *huego.State) bool {
	return state.On
}

// evaluate handles simple formulas like "x * 254 / 255" or "x > 0 ? 254 : 0"
func (s *CustomStrategy) evaluate(formula string, x float64) float64 {
	expression, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return x
	}
	parameters := make(map[string]interface{}, 1)
	parameters["x"] = x

	result, err := expression.Evaluate(parameters)
	if err != nil {
		return x
	}

	if val, ok := result.(float64); ok {
		return val
	}
	return x
}
