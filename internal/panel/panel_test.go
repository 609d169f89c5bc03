package panel

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-doorlock/internal/hal"
	"github.com/nerrad567/gray-logic-doorlock/internal/link"
	"github.com/nerrad567/gray-logic-doorlock/internal/link/linktest"
	"github.com/nerrad567/gray-logic-doorlock/internal/sequencer"
)

var testTiming = sequencer.Timing{
	DoorOpen:  4,
	DoorHold:  2,
	DoorClose: 4,
	Lockout:   8,
}

type stepClock struct {
	now atomic.Uint32
}

func (c *stepClock) Now() uint32 { return c.now.Load() }
func (c *stepClock) wait()       { c.now.Add(1) }

// scriptedKeypad plays back keys and reports an interrupt once empty.
type scriptedKeypad struct {
	mu   sync.Mutex
	keys []byte
}

func (k *scriptedKeypad) ReadKey() (byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.keys) == 0 {
		return 0, hal.ErrInterrupted
	}
	key := k.keys[0]
	k.keys = k.keys[1:]
	return key, nil
}

// typed converts terminal input such as "12345\r" to key values.
func typed(parts ...string) []byte {
	var keys []byte
	for _, s := range parts {
		for i := 0; i < len(s); i++ {
			keys = append(keys, hal.MapKey(s[i]))
		}
	}
	return keys
}

type recordingDisplay struct {
	mu      sync.Mutex
	screens [][]string
	echoes  []byte
}

func (d *recordingDisplay) Show(lines ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screens = append(d.screens, append([]string(nil), lines...))
	return nil
}

func (d *recordingDisplay) Echo(c byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.echoes = append(d.echoes, c)
	return nil
}

// firstLines returns the top line of every screen shown.
func (d *recordingDisplay) firstLines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.screens))
	for _, s := range d.screens {
		if len(s) > 0 {
			out = append(out, s[0])
		}
	}
	return out
}

func (d *recordingDisplay) showed(line string) bool {
	for _, l := range d.firstLines() {
		if l == line {
			return true
		}
	}
	return false
}

type fixture struct {
	script  *linktest.Script
	keypad  *scriptedKeypad
	display *recordingDisplay
	panel   *Panel
}

func newFixture(t *testing.T, keys []byte, rx ...byte) *fixture {
	t.Helper()

	f := &fixture{
		script:  linktest.NewScript(rx...),
		keypad:  &scriptedKeypad{keys: keys},
		display: &recordingDisplay{},
	}
	clock := &stepClock{}
	p, err := New(Options{
		Channel:      f.script,
		Keypad:       f.keypad,
		Display:      f.display,
		Clock:        clock,
		Timing:       testTiming,
		MessageTicks: 3,
		Wait:         clock.wait,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.panel = p
	return f
}

// setupSent is what the panel transmits for one setup round.
func setupSent(candidate, confirmation string) []byte {
	return linktest.Bytes(
		[]byte{link.Ready}, linktest.Digits(candidate),
		[]byte{link.Ready}, linktest.Digits(confirmation),
	)
}

// setupAnswer is what the controller sends back for one setup round.
func setupAnswer(outcome byte) []byte {
	return []byte{link.Ready, link.Ready, link.Ready, outcome}
}

func TestNew_RequiresDependencies(t *testing.T) {
	full := Options{
		Channel: linktest.NewScript(),
		Keypad:  &scriptedKeypad{},
		Display: &recordingDisplay{},
		Clock:   &stepClock{},
	}
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"channel", func(o *Options) { o.Channel = nil }},
		{"keypad", func(o *Options) { o.Keypad = nil }},
		{"display", func(o *Options) { o.Display = nil }},
		{"clock", func(o *Options) { o.Clock = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := full
			tt.mutate(&opts)
			if _, err := New(opts); !errors.Is(err, ErrMissingDependency) {
				t.Errorf("New() error = %v, want ErrMissingDependency", err)
			}
		})
	}
}

func TestCollectInput(t *testing.T) {
	tests := []struct {
		name  string
		keys  []byte
		want  string
		extra int // keys left unread
	}{
		{"plain", typed("12345\r"), "12345", 0},
		{"non-digits skipped", typed("1+2-3x4*5\r"), "12345", 0},
		{"enter before full is ignored", typed("12\r345\r"), "12345", 0},
		{"digits after full are ignored", typed("123456789\r"), "12345", 0},
		{"stops at enter", typed("00000\r9"), "00000", 1},
		{"control keys skipped", typed("1234\t\x01\x005\r"), "12345", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.keys)

			got, err := f.panel.CollectInput()
			if err != nil {
				t.Fatalf("CollectInput() error = %v", err)
			}
			if got.Reveal() != tt.want {
				t.Errorf("CollectInput() = %s, want %s", got.Reveal(), tt.want)
			}
			if string(f.display.echoes) != strings.Repeat("*", 5) {
				t.Errorf("echoes = %q, want five masks", f.display.echoes)
			}
			if len(f.keypad.keys) != tt.extra {
				t.Errorf("unread keys = %d, want %d", len(f.keypad.keys), tt.extra)
			}
		})
	}
}

func TestCollectInput_RequiresEnter(t *testing.T) {
	f := newFixture(t, typed("12345"))

	if _, err := f.panel.CollectInput(); !errors.Is(err, hal.ErrInterrupted) {
		t.Errorf("CollectInput() error = %v, want interrupt while waiting for Enter", err)
	}
}

func TestPanel_SetupMatch(t *testing.T) {
	f := newFixture(t, typed("12345\r", "12345\r"), setupAnswer(link.PasswordMatch)...)

	if err := f.panel.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got, want := f.script.Sent(), setupSent("12345", "12345"); !reflect.DeepEqual(got, want) {
		t.Errorf("sent = %x, want %x", got, want)
	}
	wantScreens := []string{textNewPass, textConfirmPass, textPassMatch, textMenuOpen}
	if got := f.display.firstLines(); !reflect.DeepEqual(got, wantScreens) {
		t.Errorf("screens = %q, want %q", got, wantScreens)
	}
	if f.panel.Mode() != ShowingMenu {
		t.Errorf("Mode() = %v, want %v", f.panel.Mode(), ShowingMenu)
	}
}

func TestPanel_SetupRetriesUntilMatch(t *testing.T) {
	rx := linktest.Bytes(setupAnswer(link.PasswordUnmatch), setupAnswer(link.PasswordMatch))
	keys := typed("12345\r", "54321\r", "11111\r", "11111\r")
	f := newFixture(t, keys, rx...)

	if err := f.panel.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := linktest.Bytes(setupSent("12345", "54321"), setupSent("11111", "11111"))
	if got := f.script.Sent(); !reflect.DeepEqual(got, want) {
		t.Errorf("sent = %x, want %x", got, want)
	}
	if !f.display.showed(textPassUnmatch) {
		t.Error("retry message not shown")
	}
}

func TestPanel_SetupDiscardsNoiseBeforeReady(t *testing.T) {
	rx := linktest.Bytes([]byte{0x55, link.Ready, 0x00, link.Ready, 0x7F, link.Ready, link.PasswordMatch})
	f := newFixture(t, typed("12345\r", "12345\r"), rx...)

	if err := f.panel.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !f.display.showed(textPassMatch) {
		t.Error("setup should complete despite noise")
	}
}

func TestPanel_MenuReplies(t *testing.T) {
	tests := []struct {
		name       string
		option     string
		reply      byte
		wantScreen []string
	}{
		{
			name:       "open door",
			option:     "+",
			reply:      link.OpeningDoorAction,
			wantScreen: []string{textEnterPass, textDoorOpening, textDoorOpen, textDoorLocking, textMenuOpen},
		},
		{
			name:       "mismatch",
			option:     "+",
			reply:      link.PasswordUnmatch,
			wantScreen: []string{textEnterPass, textWrongPass, textMenuOpen},
		},
		{
			name:       "lockout",
			option:     "-",
			reply:      link.Danger,
			wantScreen: []string{textEnterPass, textDanger, textMenuOpen},
		},
		{
			name:       "unexpected reply shows mismatch",
			option:     "+",
			reply:      0x7F,
			wantScreen: []string{textEnterPass, textWrongPass, textMenuOpen},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rx := linktest.Bytes(setupAnswer(link.PasswordMatch), []byte{tt.reply})
			keys := typed("12345\r", "12345\r", "7", tt.option, "24680\r")
			f := newFixture(t, keys, rx...)

			if err := f.panel.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			sent := f.script.Sent()
			request := sent[len(setupSent("12345", "12345")):]
			wantRequest := linktest.Bytes([]byte{link.Ready}, linktest.Digits("24680"), []byte(tt.option))
			if !reflect.DeepEqual(request, wantRequest) {
				t.Errorf("request = %x, want %x", request, wantRequest)
			}

			screens := f.display.firstLines()
			tail := screens[len(screens)-len(tt.wantScreen):]
			if !reflect.DeepEqual(tail, tt.wantScreen) {
				t.Errorf("screens = %q, want tail %q", screens, tt.wantScreen)
			}
		})
	}
}

func TestPanel_ChangePasswordRunsSetup(t *testing.T) {
	rx := linktest.Bytes(
		setupAnswer(link.PasswordMatch),
		[]byte{link.ChangingPasswordAction},
		setupAnswer(link.PasswordMatch),
	)
	keys := typed("12345\r", "12345\r", "-", "12345\r", "99999\r", "99999\r")
	f := newFixture(t, keys, rx...)

	if err := f.panel.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := linktest.Bytes(
		setupSent("12345", "12345"),
		[]byte{link.Ready}, linktest.Digits("12345"), []byte{link.ChangePasswordOption},
		setupSent("99999", "99999"),
	)
	if got := f.script.Sent(); !reflect.DeepEqual(got, want) {
		t.Errorf("sent = %x, want %x", got, want)
	}
}

func TestPanel_SilentControllerBlocks(t *testing.T) {
	// The controller's reply never arrives.
	keys := typed("12345\r", "12345\r", "+", "12345\r")
	f := newFixture(t, keys, setupAnswer(link.PasswordMatch)...)

	done := make(chan error, 1)
	go func() { done <- f.panel.Run(context.Background()) }()

	if !f.script.WaitBlocked(2 * time.Second) {
		t.Fatal("panel never blocked on the link")
	}
	select {
	case <-done:
		t.Fatal("Run() returned while waiting for a reply")
	case <-time.After(50 * time.Millisecond):
	}
	if f.panel.Mode() != CollectingInput {
		t.Errorf("Mode() = %v, want %v", f.panel.Mode(), CollectingInput)
	}

	_ = f.script.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v after close", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after the link closed")
	}
}

func TestPanel_CancelDuringDoorDisplay(t *testing.T) {
	rx := linktest.Bytes(setupAnswer(link.PasswordMatch), []byte{link.OpeningDoorAction})
	keys := typed("12345\r", "12345\r", "+", "12345\r")
	display := &recordingDisplay{}
	ctx, cancel := context.WithCancel(context.Background())
	clock := &stepClock{}

	p, err := New(Options{
		Channel:      linktest.NewScript(rx...),
		Keypad:       &scriptedKeypad{keys: keys},
		Display:      display,
		Clock:        clock,
		Timing:       testTiming,
		MessageTicks: 1,
		Wait: func() {
			clock.wait()
			if lines := display.firstLines(); len(lines) > 0 && lines[len(lines)-1] == textDoorOpening {
				cancel()
			}
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if p.Mode() != DisplayingDoorSequence {
		t.Errorf("Mode() = %v, want %v", p.Mode(), DisplayingDoorSequence)
	}
	if display.showed(textDoorOpen) {
		t.Error("door display continued after cancel")
	}
}

func TestMode_String(t *testing.T) {
	if DisplayingLockout.String() != "displaying_lockout" {
		t.Errorf("String() = %q", DisplayingLockout.String())
	}
	if Mode(-1).String() != "mode(-1)" {
		t.Errorf("String() = %q", Mode(-1).String())
	}
}
