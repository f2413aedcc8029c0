package ports

import (
	"context"
	"smartlinc-bridge/internal/domain/model"

	"github.com/amimof/huego"
)

type ControllerPort interface {
	ReadStatus(ctx context.Context, address string) (int, error)
	SetOnOff(ctx context.Context, address string, on bool) error
	FailureCount() int64

	DeviceState(ctx context.Context, address string, deviceType model.DeviceType) (*model.Device, error)
	Apply(ctx context.Context, address string, deviceType model.DeviceType, state *huego.State) error
}
