package protocol

import "fmt"

// CommandPath is a gateway URL path carrying one instruction.
type CommandPath string

const (
	// BufferPath serves the communication buffer.
	BufferPath = "/buffstatus.xml"
	// ProgressPath serves a status page whose content changes as the gateway works.
	ProgressPath = "/status.xml"
)

// Insteon standard direct command bytes (cmd1).
const (
	OpcodeOn     = 0x11
	OpcodeOff    = 0x13
	OpcodeStatus = 0x19
)

// 0262 = send Insteon message, 0F = standard message flags with max hops.
// The trailing =I=3 selects the gateway's direct-send handler.
const commandTemplate = "/3?0262%s0F%02X%s=I=3"

// StatusQueryPath builds the status request for address. The status
// request carries 00 as cmd2.
func StatusQueryPath(address string) (CommandPath, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return "", err
	}
	return CommandPath(fmt.Sprintf(commandTemplate, addr, OpcodeStatus, "00")), nil
}

// OnOffPath builds the on (0F11) or off (0F13) command for address at full level.
func OnOffPath(address string, on bool) (CommandPath, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return "", err
	}
	op := OpcodeOff
	if on {
		op = OpcodeOn
	}
	return CommandPath(fmt.Sprintf(commandTemplate, addr, op, "FF")), nil
}
