package protocol

import (
	"encoding/xml"
	"strings"
)

// Buffer tails with a meaning of their own.
const (
	// TailResend is the PLM NAK byte: the last command must be sent again.
	TailResend = "15"
	// TailNotReady means the device has not answered yet.
	TailNotReady = "FF"
)

// Buffer is one snapshot of the gateway communication buffer, upper-case hex.
type Buffer string

// Tail returns the last two characters of the buffer.
func (b Buffer) Tail() string {
	if len(b) < 2 {
		return string(b)
	}
	return string(b[len(b)-2:])
}

type buffStatus struct {
	XMLName xml.Name `xml:"response"`
	BS      *string  `xml:"BS"`
}

// ParseBuffer extracts the buffer from a /buffstatus.xml reply, which looks like
//
//	<response><BS>026211F0040F190006025011F004151CAC2B0100</BS></response>
//
// ok is false when the document is not of that shape; callers treat that as
// "no data yet".
func ParseBuffer(raw string) (buf Buffer, ok bool) {
	var doc buffStatus
	if err := xml.Unmarshal([]byte(strings.TrimSpace(raw)), &doc); err != nil {
		return "", false
	}
	if doc.BS == nil {
		return "", false
	}
	hex := strings.ToUpper(strings.TrimSpace(*doc.BS))
	if !isHex(hex) {
		return "", false
	}
	return Buffer(hex), true
}
