package translator

import (
	"smartlinc-bridge/internal/domain/model"
)

type Factory struct {
	strategies map[model.DeviceType]Translator
}

func NewFactory(customFormula string) *Factory {
	return &Factory{
		strategies: map[model.DeviceType]Translator{
			model.DeviceTypeSwitch: &SwitchStrategy{},
			model.DeviceTypeDimmer: &DimmerStrategy{},
			model.DeviceTypeCustom: &CustomStrategy{Formula: customFormula},
		},
	}
}

func (f *Factory) GetTranslator(deviceType model.DeviceType) Translator {
	if t, ok := f.strategies[deviceType]; ok {
		return t
	}
	return f.strategies[model.DeviceTypeSwitch]
}
