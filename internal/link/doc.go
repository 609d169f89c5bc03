// Package link implements the byte-oriented lock-step channel between the
// panel (front-end) and the controller (back-end).
//
// # Contract
//
// Channel.Send blocks until the transmit path accepts one byte. Channel.Receive
// blocks until one byte has arrived. Neither has a timeout: a lost or extra
// byte leaves one side waiting forever. The only way out of a blocked call is
// Close, which is reserved for process shutdown and surfaces as ErrClosed.
//
// # Framing
//
// There is none beyond the READY token that precedes each multi-byte block.
// Passcodes travel as Length raw digit bytes (values 0-9). There are no
// sequence numbers and no checksums; a desynchronised exchange is not
// recoverable by this package.
//
// # Transports
//
//   - Stream: any io.ReadWriteCloser (a serial port or a TCP connection)
//   - OpenSerial: 8N1 UART via go.bug.st/serial
//   - Listen / Dial: TCP for bench setups without a UART
//   - Pipe: in-process pair used by the simulator and tests
//
// # Usage
//
//	ch, err := link.OpenSerial(link.SerialConfig{Device: "/dev/ttyUSB0", BaudRate: 9600})
//	if err != nil {
//	    return err
//	}
//	defer ch.Close()
//
//	if err := link.Handshake(ch); err != nil {
//	    return err
//	}
//	err = link.SendPasscode(ch, pc)
package link
