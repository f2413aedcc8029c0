package service

import (
	"context"
	"errors"
	"smartlinc-bridge/internal/domain/model"
	"smartlinc-bridge/internal/domain/protocol"
	"testing"
	"time"

	"github.com/amimof/huego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	devAddr     = "11F004"
	statusQuery = "/3?026211F0040F1900=I=3"
	switchOn    = "/3?026211F0040F11FF=I=3"
	switchOff   = "/3?026211F0040F13FF=I=3"
	echoQuery   = "026211F0040F190006"
	replyOff    = "025011F004151CAC2B0100"
	replyOn     = "025011F004151CAC2B01FF"
)

func newController(gw *scriptedGateway, opts ...Option) (*DeviceController, *countingProgress) {
	progress := &countingProgress{}
	base := []Option{
		WithProgress(progress),
		WithMatcher(protocol.Matcher{ReplyInfix: "151CAC2B"}),
	}
	return NewDeviceController(gw, append(base, opts...)...), progress
}

func TestReadStatus(t *testing.T) {
	gw := newScriptedGateway().script(protocol.BufferPath, bs(echoQuery+replyOff))
	c, progress := newController(gw)

	status, err := c.ReadStatus(context.Background(), "11f004")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, 1, gw.count(statusQuery))
	assert.Equal(t, 1, progress.calls)
	assert.Equal(t, int64(0), c.FailureCount())
}

func TestReadStatusEndToEnd(t *testing.T) {
	// Reply frames carry the two status bytes right after the device address.
	gw := newScriptedGateway().
		script(protocol.BufferPath, bs("0262151CAC0F1900"+"0250151CAC0100")).
		script(protocol.ProgressPath, reply{body: "<t>1</t>"}, reply{body: "<t>2</t>"})
	c := NewDeviceController(gw, WithPollInterval(0))

	status, err := c.ReadStatus(context.Background(), "151CAC")
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, 2, gw.count(protocol.ProgressPath))
	assert.Equal(t, 2, gw.count(protocol.BufferPath))
}

func TestReadStatusRetriesWhileNotReady(t *testing.T) {
	pending := bs(echoQuery + "025011F004151CAC2B13FF")
	gw := newScriptedGateway().script(protocol.BufferPath,
		// cycle 1: resend check, then pending
		pending, pending,
		// cycle 2: resend check, then the reply
		pending, bs(echoQuery+replyOn),
	)
	c, progress := newController(gw)

	status, err := c.ReadStatus(context.Background(), devAddr)
	require.NoError(t, err)
	assert.Equal(t, 0xFF, status)
	assert.Equal(t, 2, gw.count(statusQuery))
	assert.Equal(t, 2, progress.calls)
}

func TestReadStatusRetriesOnMissingBuffer(t *testing.T) {
	gw := newScriptedGateway().script(protocol.BufferPath,
		reply{body: "<html>busy</html>"},
		reply{err: errors.New("connection reset")},
		bs(replyOff),
	)
	c, progress := newController(gw)

	status, err := c.ReadStatus(context.Background(), devAddr)
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, 2, progress.calls)
	assert.Equal(t, int64(1), c.FailureCount())
}

func TestReadStatusProtocolMismatch(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	gw := newScriptedGateway().script(protocol.BufferPath, bs(echoQuery))
	c, _ := newController(gw, WithLogger(zap.New(core)))

	_, err := c.ReadStatus(context.Background(), devAddr)
	assert.ErrorIs(t, err, ErrProtocolMismatch)
	assert.Contains(t, err.Error(), echoQuery)

	entries := logs.FilterField(zap.String("buffer", echoQuery)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "could not find device status frame in the reply", entries[0].Message)
	assert.Equal(t, 1, gw.count(statusQuery))
}

func TestReadStatusAttemptLimit(t *testing.T) {
	gw := newScriptedGateway().script(protocol.BufferPath, bs(echoQuery+"0250AABBCC151CAC2B01FF"))
	c, progress := newController(gw, WithLimits(Limits{MaxStatusAttempts: 3}))

	_, err := c.ReadStatus(context.Background(), devAddr)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 3, progress.calls)
	assert.Equal(t, 3, gw.count(statusQuery))
}

func TestReadStatusProgressError(t *testing.T) {
	gw := newScriptedGateway()
	progress := &countingProgress{err: context.DeadlineExceeded}
	c := NewDeviceController(gw, WithProgress(progress))

	_, err := c.ReadStatus(context.Background(), devAddr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReadStatusCancelled(t *testing.T) {
	gw := newScriptedGateway()
	c, _ := newController(gw)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReadStatus(ctx, devAddr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, gw.count(statusQuery))
}

func TestReadStatusDeadlineShorterThanPollInterval(t *testing.T) {
	gw := newScriptedGateway().script(protocol.BufferPath, bs(echoQuery))
	c := NewDeviceController(gw, WithPollInterval(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := c.ReadStatus(ctx, devAddr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSendCommandResendsOnNak(t *testing.T) {
	const resends = 4
	nak := bs("026211F0040F11FF15")
	gw := newScriptedGateway().script(protocol.BufferPath, append(repeat(nak, resends), bs("026211F0040F11FF06"))...)
	c, _ := newController(gw)

	require.NoError(t, c.SetOnOff(context.Background(), devAddr, true))
	assert.Equal(t, resends+1, gw.count(switchOn))
	assert.Equal(t, resends+1, gw.count(protocol.BufferPath))
}

func TestSendCommandResendLimit(t *testing.T) {
	gw := newScriptedGateway().script(protocol.BufferPath, bs("026211F0040F13FF15"))
	c, _ := newController(gw, WithLimits(Limits{MaxResends: 2}))

	err := c.SetOnOff(context.Background(), devAddr, false)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 3, gw.count(switchOff))
}

func TestSetOnOffCountsTransportFailures(t *testing.T) {
	gw := newScriptedGateway().
		script(switchOff, reply{err: errors.New("connection refused")}).
		script(protocol.BufferPath, reply{err: errors.New("connection refused")})
	c, _ := newController(gw)

	require.NoError(t, c.SetOnOff(context.Background(), devAddr, false))
	assert.Equal(t, int64(2), c.FailureCount())
	assert.Equal(t, 1, gw.count(switchOff))
}

func TestInvalidAddressMakesNoRequests(t *testing.T) {
	gw := new(MockGateway)
	c := NewDeviceController(gw)

	for _, addr := range []string{"ZZ", "ABC", "12345G"} {
		err := c.SetOnOff(context.Background(), addr, true)
		assert.ErrorIs(t, err, protocol.ErrInvalidAddress)

		_, err = c.ReadStatus(context.Background(), addr)
		assert.ErrorIs(t, err, protocol.ErrInvalidAddress)
	}
	gw.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestSetOnOffWithMockGateway(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Fetch", mock.Anything, switchOn).Return("", nil).Once()
	gw.On("Fetch", mock.Anything, protocol.BufferPath).Return("<response><BS>026211F0040F11FF06</BS></response>", nil).Once()
	c := NewDeviceController(gw)

	require.NoError(t, c.SetOnOff(context.Background(), "11.f0.04", true))
	gw.AssertExpectations(t)
}

func TestDeviceState(t *testing.T) {
	gw := newScriptedGateway().script(protocol.BufferPath, bs(replyOn))
	c, _ := newController(gw)

	d, err := c.DeviceState(context.Background(), "11f004", model.DeviceTypeDimmer)
	require.NoError(t, err)
	assert.Equal(t, "11F004", d.Address)
	assert.Equal(t, 0xFF, d.Status)
	assert.True(t, d.State.On)
	assert.Equal(t, uint8(254), d.State.Bri)

	d, err = c.DeviceState(context.Background(), "11f004", "")
	require.NoError(t, err)
	assert.Equal(t, model.DeviceTypeSwitch, d.Type)
}

func TestApply(t *testing.T) {
	gw := newScriptedGateway()
	c, _ := newController(gw)

	require.NoError(t, c.Apply(context.Background(), devAddr, model.DeviceTypeSwitch, &huego.State{On: false}))
	assert.Equal(t, 1, gw.count(switchOff))

	assert.Error(t, c.Apply(context.Background(), devAddr, model.DeviceTypeSwitch, nil))
}
