// Package serialio owns the serial port: opening it in raw mode at a
// fixed baud rate, and running a blocking read loop on its own goroutine
// that delivers whole lines to a channel until told to stop.
//
// Only Linux is supported — goserial talks to the port through Linux
// termios ioctls. On any other GOOS, Open returns an error and the
// caller disables the serial sink, the same adapter-shim-construction-
// failure pattern used for every other sink.
package serialio

import (
	"bufio"
	"fmt"
	"log/slog"
	"sync"
	"time"

	serial "github.com/daedaluz/goserial"
)

// pollInterval bounds how long a single Read blocks before the read
// loop re-checks for a stop request. It trades a little read latency
// for a clean, signal-free shutdown path.
const pollInterval = 200 * time.Millisecond

// baudFlags maps common baud rates to the termios CFlag constants that
// don't require the BOTHER/custom-speed escape hatch.
var baudFlags = map[int]serial.CFlag{
	1200:   serial.B1200,
	2400:   serial.B2400,
	4800:   serial.B4800,
	9600:   serial.B9600,
	19200:  serial.B19200,
	38400:  serial.B38400,
	57600:  serial.B57600,
	115200: serial.B115200,
	230400: serial.B230400,
	460800: serial.B460800,
	921600: serial.B921600,
}

// Reader owns one open serial port and turns its byte stream into
// discrete lines on Lines(). Call Close to stop the read goroutine and
// release the port; ReleaseAll-style cleanup of anything downstream is
// the caller's job, not this package's.
type Reader struct {
	logger *slog.Logger
	port   *serial.Port

	lines chan string
	errs  chan error
	stop  chan struct{}
	done  chan struct{}

	closeOnce sync.Once
}

// Open opens device at baud, puts it into raw mode, and starts the
// background read loop. A nil logger defaults to slog.Default().
func Open(device string, baud int, logger *slog.Logger) (*Reader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := serial.NewOptions().SetReadTimeout(pollInterval)
	port, err := serial.Open(device, opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}

	if err := configurePort(port, baud); err != nil {
		port.Close()
		return nil, fmt.Errorf("configure serial port %s: %w", device, err)
	}

	r := &Reader{
		logger: logger,
		port:   port,
		lines:  make(chan string, 64),
		errs:   make(chan error, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.readLoop()
	return r, nil
}

// configurePort switches the port to raw 8N1 mode at the requested
// baud, falling back to a custom speed (Termios2/BOTHER) for rates not
// in baudFlags.
func configurePort(port *serial.Port, baud int) error {
	if flag, ok := baudFlags[baud]; ok {
		attrs, err := port.GetAttr()
		if err != nil {
			return err
		}
		attrs.MakeRaw()
		attrs.SetSpeed(flag)
		return port.SetAttr(serial.TCSANOW, attrs)
	}

	attrs, err := port.GetAttr2()
	if err != nil {
		return err
	}
	attrs.MakeRaw()
	attrs.SetCustomSpeed(uint32(baud))
	return port.SetAttr2(serial.TCSANOW, attrs)
}

// Lines returns the channel of complete, newline-stripped lines read
// from the port. It is closed once the read loop exits.
func (r *Reader) Lines() <-chan string {
	return r.lines
}

// Errs surfaces a fatal read error, if any, exactly once.
func (r *Reader) Errs() <-chan error {
	return r.errs
}

func (r *Reader) readLoop() {
	defer close(r.done)
	defer close(r.lines)

	br := bufio.NewReaderSize(portReader{r.port}, 4096)
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		line, err := br.ReadString('\n')
		if len(line) > 0 {
			select {
			case r.lines <- trimNewline(line):
			case <-r.stop:
				return
			}
		}
		if err != nil {
			if isTimeout(err) {
				continue
			}
			select {
			case r.errs <- fmt.Errorf("serial read: %w", err):
			default:
			}
			return
		}
	}
}

// portReader adapts *serial.Port's timeout-based Read to io.Reader,
// translating a poll timeout into (0, nil) so bufio.Reader spins back
// around rather than treating it as EOF.
type portReader struct {
	port *serial.Port
}

func (p portReader) Read(buf []byte) (int, error) {
	n, err := p.port.ReadTimeout(buf, pollInterval)
	if err != nil && isTimeout(err) {
		return n, nil
	}
	return n, err
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// Close stops the read loop and closes the underlying port. Safe to
// call more than once.
func (r *Reader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stop)
		<-r.done
		err = r.port.Close()
	})
	return err
}
