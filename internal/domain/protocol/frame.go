package protocol

import (
	"strconv"
	"strings"
)

// Frame start markers: PLM command prefix 0x02 followed by the command byte.
const (
	MarkerSend     = "0262" // echo of a sent Insteon message
	MarkerReceived = "0250" // standard message received
)

const markerLen = 4

// StatusCode is the byte a device reports in its status reply.
type StatusCode byte

const (
	StatusOff StatusCode = 0x00
	StatusOn  StatusCode = 0x01
)

// Frame is one marker-delimited message of the buffer.
type Frame struct {
	Marker string
	Body   string
}

// SplitFrames tokenizes buf on frame markers. Markers are recognised at any
// character offset. Text before the first marker is the tail of a message
// that has scrolled out of the rolling buffer and is dropped, as are empty
// frames.
func SplitFrames(buf Buffer) []Frame {
	s := string(buf)
	var (
		frames  []Frame
		current *Frame
		body    strings.Builder
	)
	flush := func() {
		if current != nil && body.Len() > 0 {
			current.Body = body.String()
			frames = append(frames, *current)
		}
		body.Reset()
	}
	for i := 0; i < len(s); {
		if m := markerAt(s, i); m != "" {
			flush()
			current = &Frame{Marker: m}
			i += markerLen
			continue
		}
		if current != nil {
			body.WriteByte(s[i])
		}
		i++
	}
	flush()
	return frames
}

func markerAt(s string, i int) string {
	if i+markerLen > len(s) {
		return ""
	}
	switch m := s[i : i+markerLen]; m {
	case MarkerSend, MarkerReceived:
		return m
	}
	return ""
}

// Matcher recognises status replies for a device.
//
// A reply frame body is the device address, then ReplyInfix, then "01" or
// "00". ReplyInfix is normally the gateway modem address plus the message
// flags byte (e.g. "151CAC2B"); when empty the two patterns follow the device
// address directly.
type Matcher struct {
	ReplyInfix string
}

// MatchStatusFrame returns the status byte of the first matching frame in
// buffer order. With several replies in the buffer this is the oldest one,
// not necessarily the freshest.
func (m Matcher) MatchStatusFrame(frames []Frame, addr Address) (StatusCode, bool) {
	prefix := string(addr) + strings.ToUpper(m.ReplyInfix)
	for _, f := range frames {
		if !strings.HasPrefix(f.Body, prefix+"01") && !strings.HasPrefix(f.Body, prefix+"00") {
			continue
		}
		code, err := strconv.ParseUint(f.Body[len(f.Body)-2:], 16, 8)
		if err != nil {
			continue
		}
		return StatusCode(code), true
	}
	return 0, false
}

// Match splits buf and looks for a status reply of addr. On a miss the
// caller inspects buf.Tail().
func (m Matcher) Match(buf Buffer, addr Address) (StatusCode, bool) {
	return m.MatchStatusFrame(SplitFrames(buf), addr)
}
