package link

// Logger is the logging interface used by Trace.
type Logger interface {
	Debug(msg string, args ...any)
}

// traced logs every byte crossing the wrapped channel at debug level.
type traced struct {
	Channel
	logger Logger
}

// Trace wraps ch so each sent and received byte is logged.
// Values 0-9 are logged as "data" so passcode digits stay out of the log.
func Trace(ch Channel, logger Logger) Channel {
	if logger == nil {
		return ch
	}
	return &traced{Channel: ch, logger: logger}
}

func (t *traced) Send(b byte) error {
	err := t.Channel.Send(b)
	t.logger.Debug("link tx", "byte", describe(b), "error", err)
	return err
}

func (t *traced) Receive() (byte, error) {
	b, err := t.Channel.Receive()
	if err != nil {
		t.logger.Debug("link rx failed", "error", err)
		return b, err
	}
	t.logger.Debug("link rx", "byte", describe(b))
	return b, nil
}

// describe hides small values (digits and outcomes) so passcodes never reach the log.
func describe(b byte) string {
	if b <= 9 {
		return "data"
	}
	return OpcodeName(b)
}
