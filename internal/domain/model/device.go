package model

import "github.com/amimof/huego"

type DeviceType string

const (
	DeviceTypeSwitch DeviceType = "switch"
	DeviceTypeDimmer DeviceType = "dimmer"
	DeviceTypeCustom DeviceType = "custom"
)

type Device struct {
	Address string       `json:"address"`
	Type    DeviceType   `json:"type"`
	Status  int          `json:"status"` // raw status byte reported by the device
	State   *huego.State `json:"state"`
}
