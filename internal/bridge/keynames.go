package bridge

import (
	"fmt"
	"strings"

	"github.com/bendahl/uinput"
)

// keyCodes maps the wire protocol's lowercase key names to uinput's
// Linux evdev key codes. Single printable characters (a-z, 0-9) and the
// named control keys the protocol documents are covered; anything else
// is rejected by name, not silently dropped.
var keyCodes = map[string]int{
	"a": uinput.KeyA, "b": uinput.KeyB, "c": uinput.KeyC, "d": uinput.KeyD,
	"e": uinput.KeyE, "f": uinput.KeyF, "g": uinput.KeyG, "h": uinput.KeyH,
	"i": uinput.KeyI, "j": uinput.KeyJ, "k": uinput.KeyK, "l": uinput.KeyL,
	"m": uinput.KeyM, "n": uinput.KeyN, "o": uinput.KeyO, "p": uinput.KeyP,
	"q": uinput.KeyQ, "r": uinput.KeyR, "s": uinput.KeyS, "t": uinput.KeyT,
	"u": uinput.KeyU, "v": uinput.KeyV, "w": uinput.KeyW, "x": uinput.KeyX,
	"y": uinput.KeyY, "z": uinput.KeyZ,

	"0": uinput.Key0, "1": uinput.Key1, "2": uinput.Key2, "3": uinput.Key3,
	"4": uinput.Key4, "5": uinput.Key5, "6": uinput.Key6, "7": uinput.Key7,
	"8": uinput.Key8, "9": uinput.Key9,

	"space": uinput.KeySpace, "enter": uinput.KeyEnter, "return": uinput.KeyEnter, "tab": uinput.KeyTab,
	"esc": uinput.KeyEsc, "escape": uinput.KeyEsc,
	"backspace": uinput.KeyBackspace, "delete": uinput.KeyDelete,
	"up": uinput.KeyUp, "down": uinput.KeyDown, "left": uinput.KeyLeft, "right": uinput.KeyRight,
	"home": uinput.KeyHome, "end": uinput.KeyEnd,
	"pageup": uinput.KeyPageup, "pagedown": uinput.KeyPagedown,
	"shift": uinput.KeyLeftshift, "ctrl": uinput.KeyLeftctrl, "control": uinput.KeyLeftctrl,
	"alt": uinput.KeyLeftalt, "meta": uinput.KeyLeftmeta, "super": uinput.KeyLeftmeta,
	"command": uinput.KeyLeftmeta, "cmd": uinput.KeyLeftmeta,
	"capslock": uinput.KeyCapslock,

	"f1": uinput.KeyF1, "f2": uinput.KeyF2, "f3": uinput.KeyF3, "f4": uinput.KeyF4,
	"f5": uinput.KeyF5, "f6": uinput.KeyF6, "f7": uinput.KeyF7, "f8": uinput.KeyF8,
	"f9": uinput.KeyF9, "f10": uinput.KeyF10, "f11": uinput.KeyF11, "f12": uinput.KeyF12,
}

func keyCode(name string) (int, error) {
	code, ok := keyCodes[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown key name %q", name)
	}
	return code, nil
}

// asciiKeyCode maps a single rune typed via key:type to the closest
// uinput key code, used by UinputKeyboard.KeyType when synthesizing a
// string as a sequence of taps. Only the subset keyCodes already covers
// is reachable this way; for anything else it reports false and the
// caller logs and skips that rune.
func asciiKeyCode(r rune) (int, bool) {
	code, ok := keyCodes[strings.ToLower(string(r))]
	return code, ok
}
