package link

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
)

func TestOpcodeValues(t *testing.T) {
	// Wire values are shared with deployed firmware.
	tests := []struct {
		name string
		got  byte
		want byte
	}{
		{"READY", Ready, 0x10},
		{"OPEN_DOOR_OPTION", OpenDoorOption, 0x2B},
		{"CHANGE_PASSWORD_OPTION", ChangePasswordOption, 0x2D},
		{"PASSWORD_MATCH", PasswordMatch, 0x01},
		{"PASSWORD_UNMATCH", PasswordUnmatch, 0x00},
		{"OPENING_DOOR_ACTION", OpeningDoorAction, 0x88},
		{"CHANGING_PASSWORD_ACTION", ChangingPasswordAction, 0x44},
		{"DANGER", Danger, 0x33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = 0x%02x, want 0x%02x", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestOpcodeName(t *testing.T) {
	if got := OpcodeName(Danger); got != "DANGER" {
		t.Errorf("OpcodeName(Danger) = %q", got)
	}
	if got := OpcodeName(0x7F); got != "0x7f" {
		t.Errorf("OpcodeName(0x7F) = %q, want hex", got)
	}
}

func TestPipe_RoundTrip(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	go func() {
		for _, v := range []byte{Ready, 1, 2, 3} {
			if err := a.Send(v); err != nil {
				t.Errorf("Send() error = %v", err)
				return
			}
		}
	}()

	for _, want := range []byte{Ready, 1, 2, 3} {
		got, err := b.Receive()
		if err != nil {
			t.Fatalf("Receive() error = %v", err)
		}
		if got != want {
			t.Errorf("Receive() = 0x%02x, want 0x%02x", got, want)
		}
	}
}

func TestPipe_SendBlocksWhenSlotFull(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	if err := a.Send(1); err != nil {
		t.Fatalf("first Send() error = %v", err)
	}

	sent := make(chan struct{})
	go func() {
		_ = a.Send(2)
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("second Send() returned before the peer consumed the first byte")
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := b.Receive(); err != nil {
		t.Fatalf("Receive() error = %v", err)
	}

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("second Send() still blocked after the slot was freed")
	}
}

func TestPipe_CloseUnblocksReceive(t *testing.T) {
	a, b := Pipe()

	errCh := make(chan error, 1)
	go func() {
		_, err := b.Receive()
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	a.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Receive() error = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive() still blocked after Close")
	}

	if err := b.Send(1); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after Close error = %v, want ErrClosed", err)
	}
}

func TestStream_OverNetPipe(t *testing.T) {
	c1, c2 := net.Pipe()
	s1, s2 := NewStream(c1), NewStream(c2)
	defer s1.Close()
	defer s2.Close()

	go func() {
		_ = s1.Send(OpeningDoorAction)
	}()

	got, err := s2.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if got != OpeningDoorAction {
		t.Errorf("Receive() = %s, want OPENING_DOOR_ACTION", OpcodeName(got))
	}
}

func TestStream_CloseUnblocksReceive(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c2.Close()
	s := NewStream(c1)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Receive()
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Receive() error = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive() still blocked after Close")
	}

	// Closing twice is fine.
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

// zeroReader returns (0, nil) a few times before yielding data, like a serial
// port with a read timeout.
type zeroReader struct {
	zeros int
	data  []byte
}

func (z *zeroReader) Read(p []byte) (int, error) {
	if z.zeros > 0 {
		z.zeros--
		return 0, nil
	}
	if len(z.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, z.data)
	z.data = z.data[n:]
	return n, nil
}

func (z *zeroReader) Write(p []byte) (int, error) { return len(p), nil }
func (z *zeroReader) Close() error                { return nil }

func TestStream_ReceiveRetriesEmptyReads(t *testing.T) {
	s := NewStream(&zeroReader{zeros: 3, data: []byte{Danger}})

	got, err := s.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if got != Danger {
		t.Errorf("Receive() = 0x%02x, want DANGER", got)
	}

	// Peer gone: EOF maps to ErrClosed.
	if _, err := s.Receive(); !errors.Is(err, ErrClosed) {
		t.Errorf("Receive() at EOF error = %v, want ErrClosed", err)
	}
}

func TestHandshake_DiscardsNoise(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Peer: wait for READY, send noise, then READY.
		if _, err := AwaitReady(b); err != nil {
			t.Errorf("peer AwaitReady() error = %v", err)
			return
		}
		for _, v := range []byte{0x55, PasswordMatch, Ready} {
			if err := b.Send(v); err != nil {
				t.Errorf("peer Send() error = %v", err)
				return
			}
		}
	}()

	if err := Handshake(a); err != nil {
		t.Fatalf("Handshake() error = %v", err)
	}
	wg.Wait()
}

func TestPasscodeTransfer(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	want := passcode.MustParse("40213")
	go func() {
		if err := SendPasscode(a, want); err != nil {
			t.Errorf("SendPasscode() error = %v", err)
		}
	}()

	got, err := ReceivePasscode(b)
	if err != nil {
		t.Fatalf("ReceivePasscode() error = %v", err)
	}
	if got != want {
		t.Errorf("ReceivePasscode() = %s, want %s", got.Reveal(), want.Reveal())
	}
}

func TestReceivePasscode_TruncatedStreamFails(t *testing.T) {
	s := NewStream(&zeroReader{data: []byte{1, 2, 3}})
	if _, err := ReceivePasscode(s); !errors.Is(err, ErrClosed) {
		t.Errorf("ReceivePasscode() error = %v, want ErrClosed", err)
	}
}

type debugRecorder struct {
	mu   sync.Mutex
	logs []string
}

func (d *debugRecorder) Debug(msg string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	buf.WriteString(msg)
	for _, a := range args {
		if s, ok := a.(string); ok {
			buf.WriteString(" " + s)
		}
	}
	d.logs = append(d.logs, buf.String())
}

func TestTrace_HidesDigits(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	rec := &debugRecorder{}
	traced := Trace(a, rec)

	go func() {
		_ = SendPasscode(traced, passcode.MustParse("98765"))
	}()
	if _, err := ReceivePasscode(b); err != nil {
		t.Fatalf("ReceivePasscode() error = %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, line := range rec.logs {
		for _, d := range []string{"9", "8", "7", "6", "5"} {
			if bytes.Contains([]byte(line), []byte(" "+d)) {
				t.Errorf("trace leaked digit %s: %q", d, line)
			}
		}
	}
	if len(rec.logs) != passcode.Length {
		t.Errorf("trace logged %d lines, want %d", len(rec.logs), passcode.Length)
	}
}

func TestTCP_ListenDial(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Reserve a free port.
	free, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	addr := free.Addr().String()
	free.Close()

	type result struct {
		s   *Stream
		err error
	}
	accepted := make(chan result, 1)
	go func() {
		s, err := Listen(ctx, addr)
		accepted <- result{s, err}
	}()

	var client *Stream
	deadline := time.Now().Add(2 * time.Second)
	for {
		client, err = Dial(ctx, addr)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Dial() error = %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer client.Close()

	r := <-accepted
	if r.err != nil {
		t.Fatalf("Listen() error = %v", r.err)
	}
	defer r.s.Close()

	if err := client.Send(Ready); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	got, err := r.s.Receive()
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if got != Ready {
		t.Errorf("Receive() = %s, want READY", OpcodeName(got))
	}
}

func TestListen_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Listen(ctx, "127.0.0.1:0")
	if !errors.Is(err, ErrOpenFailed) {
		t.Errorf("Listen() error = %v, want ErrOpenFailed", err)
	}
}

func TestSerialMode_Defaults(t *testing.T) {
	mode := serialMode(SerialConfig{Device: "/dev/null"})
	if mode.BaudRate != DefaultBaudRate {
		t.Errorf("BaudRate = %d, want %d", mode.BaudRate, DefaultBaudRate)
	}
	if mode.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", mode.DataBits)
	}
}

func TestOpenSerial_MissingDevice(t *testing.T) {
	if _, err := OpenSerial(SerialConfig{}); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("OpenSerial() error = %v, want ErrOpenFailed", err)
	}
	if _, err := OpenSerial(SerialConfig{Device: "/nonexistent/tty"}); !errors.Is(err, ErrOpenFailed) {
		t.Errorf("OpenSerial(nonexistent) error = %v, want ErrOpenFailed", err)
	}
}
