package ports

// TelemetryPort receives counters from the polling loops.
type TelemetryPort interface {
	TransportFailed(path string)
	CommandResent()
	ProgressPolled()
	StatusRead(result string)
}
