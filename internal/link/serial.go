package link

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the deployed UART configuration.
const DefaultBaudRate = 9600

// SerialConfig selects the UART device and line speed.
// Framing is fixed at 8 data bits, no parity, one stop bit.
type SerialConfig struct {
	Device   string
	BaudRate int
}

// serialMode builds the 8N1 mode for cfg.
func serialMode(cfg SerialConfig) *serial.Mode {
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens the UART and returns it as a Stream.
//
// No read timeout is configured: Receive blocks until a byte arrives.
func OpenSerial(cfg SerialConfig) (*Stream, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("%w: serial device not set", ErrOpenFailed)
	}

	port, err := serial.Open(cfg.Device, serialMode(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, cfg.Device, err)
	}

	if err := port.ResetInputBuffer(); err != nil {
		port.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("%w: flushing %s: %w", ErrOpenFailed, cfg.Device, err)
	}

	return NewStream(port), nil
}

// SerialPorts lists the serial devices present on this machine.
func SerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}
	return ports, nil
}
