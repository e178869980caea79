package bridge

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bendahl/uinput"
)

// UinputKeyboard is the Keyboard capability backed by a virtual uinput
// keyboard device. Construction fails, cleanly, when /dev/uinput is
// unavailable or unwritable — in which case the caller disables the
// keyboard sink entirely rather than routing through a broken one.
type UinputKeyboard struct {
	logger *slog.Logger

	mu  sync.Mutex
	dev uinput.Keyboard
}

// NewUinputKeyboard opens a virtual keyboard device named for this
// bridge. devicePath is normally "/dev/uinput"; a nil logger defaults to
// slog.Default().
func NewUinputKeyboard(devicePath string, logger *slog.Logger) (*UinputKeyboard, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dev, err := uinput.CreateKeyboard(devicePath, []byte("mio-bridge-keyboard"))
	if err != nil {
		return nil, fmt.Errorf("open uinput keyboard: %w", err)
	}
	return &UinputKeyboard{logger: logger, dev: dev}, nil
}

func (k *UinputKeyboard) KeyDown(name string) error {
	code, err := keyCode(name)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.dev.KeyDown(code)
}

func (k *UinputKeyboard) KeyUp(name string) error {
	code, err := keyCode(name)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.dev.KeyUp(code)
}

func (k *UinputKeyboard) KeyTap(name string) error {
	code, err := keyCode(name)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.dev.KeyPress(code)
}

// KeyType synthesizes text one rune at a time. Runes outside the
// protocol's documented key names are logged and skipped rather than
// aborting the whole string — partial typing beats dropping it.
func (k *UinputKeyboard) KeyType(text string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, r := range text {
		if r == ' ' {
			if err := k.dev.KeyPress(uinput.KeySpace); err != nil {
				return err
			}
			continue
		}
		code, ok := asciiKeyCode(r)
		if !ok {
			k.logger.Warn("key:type skipped unmappable rune", "rune", string(r))
			continue
		}
		if err := k.dev.KeyPress(code); err != nil {
			return err
		}
	}
	return nil
}

func (k *UinputKeyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.dev.Close()
}
