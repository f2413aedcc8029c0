package service

import (
	"context"
	"fmt"
	"smartlinc-bridge/internal/domain/protocol"

	"go.uber.org/zap"
)

// Status read outcomes reported to telemetry.
const (
	resultOK        = "ok"
	resultNoBuffer  = "no_buffer"
	resultNotReady  = "not_ready"
	resultMismatch  = "mismatch"
	resultExhausted = "exhausted"
)

// sendCommand sends cmd and checks the buffer afterwards. A buffer ending in
// the NAK byte makes it send the same command again right away.
func (c *DeviceController) sendCommand(ctx context.Context, cmd protocol.CommandPath, log *zap.Logger) (string, error) {
	for resends := 0; ; resends++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if c.limits.MaxResends > 0 && resends > c.limits.MaxResends {
			return "", fmt.Errorf("%w: %s resent %d times", ErrRetriesExhausted, cmd, c.limits.MaxResends)
		}
		if resends > 0 {
			c.telemetry.CommandResent()
			log.Debug("gateway asked for resend", zap.Int("resend", resends))
		}

		data, _ := c.fetch(ctx, string(cmd))
		buf, ok := c.readBuffer(ctx)
		if ok && buf.Tail() == protocol.TailResend {
			continue
		}
		return data, nil
	}
}

// resolveStatus runs query/wait/read cycles until the buffer carries a
// status reply for addr.
func (c *DeviceController) resolveStatus(ctx context.Context, addr protocol.Address, query protocol.CommandPath, log *zap.Logger) (protocol.StatusCode, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if c.limits.MaxStatusAttempts > 0 && attempt > c.limits.MaxStatusAttempts {
			c.telemetry.StatusRead(resultExhausted)
			return 0, fmt.Errorf("%w: no status for %s after %d attempts", ErrRetriesExhausted, addr, c.limits.MaxStatusAttempts)
		}

		if _, err := c.sendCommand(ctx, query, log); err != nil {
			return 0, err
		}
		if err := c.progress.AwaitProgress(ctx); err != nil {
			return 0, err
		}

		buf, ok := c.readBuffer(ctx)
		if !ok {
			c.telemetry.StatusRead(resultNoBuffer)
			log.Debug("no communication buffer yet", zap.Int("attempt", attempt))
			continue
		}
		if code, ok := c.matcher.Match(buf, addr); ok {
			c.telemetry.StatusRead(resultOK)
			return code, nil
		}
		if buf.Tail() == protocol.TailNotReady {
			c.telemetry.StatusRead(resultNotReady)
			log.Debug("device not ready", zap.Int("attempt", attempt))
			continue
		}

		c.telemetry.StatusRead(resultMismatch)
		log.Error("could not find device status frame in the reply", zap.String("buffer", string(buf)))
		return 0, fmt.Errorf("%w: address %s, buffer %q", ErrProtocolMismatch, addr, buf)
	}
}
