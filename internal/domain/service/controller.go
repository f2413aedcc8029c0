package service

import (
	"context"
	"errors"
	"fmt"
	"smartlinc-bridge/internal/domain/model"
	"smartlinc-bridge/internal/domain/protocol"
	"smartlinc-bridge/internal/domain/translator"
	"smartlinc-bridge/internal/ports"
	"sync/atomic"
	"time"

	"github.com/amimof/huego"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrProtocolMismatch means the buffer was readable but held no status
	// reply for the device and was not flagged as pending.
	ErrProtocolMismatch = errors.New("no status reply in communication buffer")
	// ErrRetriesExhausted is returned when a configured loop bound is hit.
	ErrRetriesExhausted = errors.New("retry limit reached")
)

const defaultPollInterval = time.Second

var _ ports.ControllerPort = (*DeviceController)(nil)

// Limits bounds the polling loops. A zero field leaves that loop unbounded,
// which waits on the gateway for as long as it takes.
type Limits struct {
	MaxResends        int
	MaxStatusAttempts int
	MaxProgressPolls  int
}

type Option func(*DeviceController)

func WithLogger(l *zap.Logger) Option {
	return func(c *DeviceController) { c.log = l }
}

func WithTelemetry(t ports.TelemetryPort) Option {
	return func(c *DeviceController) { c.telemetry = t }
}

// WithProgress replaces the /status.xml change detector.
func WithProgress(p ProgressWaiter) Option {
	return func(c *DeviceController) { c.progress = p }
}

func WithMatcher(m protocol.Matcher) Option {
	return func(c *DeviceController) { c.matcher = m }
}

func WithLimits(l Limits) Option {
	return func(c *DeviceController) { c.limits = l }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *DeviceController) { c.interval = d }
}

func WithTranslatorFactory(f *translator.Factory) Option {
	return func(c *DeviceController) { c.translatorFactory = f }
}

// DeviceController reads and switches devices behind one SmartLinc gateway.
// Calls are meant to be issued one at a time: the gateway buffer is shared,
// so concurrent operations would read each other's frames.
type DeviceController struct {
	gateway           ports.GatewayPort
	progress          ProgressWaiter
	matcher           protocol.Matcher
	limits            Limits
	interval          time.Duration
	telemetry         ports.TelemetryPort
	translatorFactory *translator.Factory
	log               *zap.Logger

	failures atomic.Int64
}

func NewDeviceController(gateway ports.GatewayPort, opts ...Option) *DeviceController {
	c := &DeviceController{
		gateway:  gateway,
		interval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.telemetry == nil {
		c.telemetry = nopTelemetry{}
	}
	if c.translatorFactory == nil {
		c.translatorFactory = translator.NewFactory("")
	}
	if c.progress == nil {
		c.progress = NewStatusPageProgress(c.fetch, c.interval, c.limits.MaxProgressPolls, c.telemetry)
	}
	return c
}

// ReadStatus queries the device and blocks until its status reply shows up
// in the communication buffer.
func (c *DeviceController) ReadStatus(ctx context.Context, address string) (int, error) {
	query, err := protocol.StatusQueryPath(address)
	if err != nil {
		return 0, err
	}
	addr, _ := protocol.ParseAddress(address)
	log := c.opLogger("read_status", addr)

	code, err := c.resolveStatus(ctx, addr, query, log)
	if err != nil {
		return 0, err
	}
	log.Debug("device status", zap.Int("status", int(code)))
	return int(code), nil
}

// SetOnOff sends the on/off command. It does not read the state back.
func (c *DeviceController) SetOnOff(ctx context.Context, address string, on bool) error {
	cmd, err := protocol.OnOffPath(address, on)
	if err != nil {
		return err
	}
	addr, _ := protocol.ParseAddress(address)
	log := c.opLogger("set_on_off", addr)
	log.Debug("switching device", zap.Bool("on", on))

	_, err = c.sendCommand(ctx, cmd, log)
	return err
}

// FailureCount returns the number of failed gateway exchanges so far.
func (c *DeviceController) FailureCount() int64 {
	return c.failures.Load()
}

func (c *DeviceController) DeviceState(ctx context.Context, address string, deviceType model.DeviceType) (*model.Device, error) {
	status, err := c.ReadStatus(ctx, address)
	if err != nil {
		return nil, err
	}
	addr, _ := protocol.ParseAddress(address)
	if deviceType == "" {
		deviceType = model.DeviceTypeSwitch
	}
	t := c.translatorFactory.GetTranslator(deviceType)
	return &model.Device{
		Address: addr.String(),
		Type:    deviceType,
		Status:  status,
		State:   t.ToHue(protocol.StatusCode(status)),
	}, nil
}

func (c *DeviceController) Apply(ctx context.Context, address string, deviceType model.DeviceType, state *huego.State) error {
	if state == nil {
		return fmt.Errorf("no state given for device %s", address)
	}
	t := c.translatorFactory.GetTranslator(deviceType)
	return c.SetOnOff(ctx, address, t.ToGateway(state))
}

func (c *DeviceController) opLogger(op string, addr protocol.Address) *zap.Logger {
	return c.log.With(
		zap.String("op", op),
		zap.String("op_id", uuid.NewString()),
		zap.String("address", addr.String()),
	)
}

// fetch reports a failed exchange as absent and counts it.
func (c *DeviceController) fetch(ctx context.Context, path string) (string, bool) {
	body, err := c.gateway.Fetch(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return "", false
		}
		c.failures.Add(1)
		c.telemetry.TransportFailed(path)
		c.log.Debug("gateway fetch failed", zap.String("path", path), zap.Error(err))
		return "", false
	}
	return body, true
}

func (c *DeviceController) readBuffer(ctx context.Context) (protocol.Buffer, bool) {
	raw, ok := c.fetch(ctx, protocol.BufferPath)
	if !ok {
		return "", false
	}
	buf, ok := protocol.ParseBuffer(raw)
	if !ok {
		c.log.Debug("communication buffer unparsable", zap.String("body", raw))
	}
	return buf, ok
}

type nopTelemetry struct{}

func (nopTelemetry) TransportFailed(string) {}
func (nopTelemetry) CommandResent()         {}
func (nopTelemetry) ProgressPolled()        {}
func (nopTelemetry) StatusRead(string)      {}
