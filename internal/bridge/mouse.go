package bridge

import (
	"fmt"
	"sync"

	"github.com/bendahl/uinput"
)

// absRange bounds the virtual touchpad's absolute coordinate space.
// mouse:move carries arbitrary signed pixel coordinates from whatever
// screen geometry the sender assumes; the touchpad device is opened wide
// enough that any coordinate a real display could produce maps cleanly.
const absRange = 1 << 15

// UinputMouse is the Mouse capability backed by two virtual uinput
// devices: a relative mouse for move_rel/click/scroll, and an absolute
// touchpad for move. Real hardware mice don't mix both in one node
// either — compositors tell them apart by device capabilities, which is
// exactly what two separate uinput devices give us for free.
type UinputMouse struct {
	mu    sync.Mutex
	mouse uinput.Mouse
	pad   uinput.TouchPad
}

// NewUinputMouse opens both backing devices.
func NewUinputMouse(devicePath string) (*UinputMouse, error) {
	mouse, err := uinput.CreateMouse(devicePath, []byte("mio-bridge-mouse"))
	if err != nil {
		return nil, fmt.Errorf("open uinput mouse: %w", err)
	}
	pad, err := uinput.CreateTouchPad(devicePath, []byte("mio-bridge-touchpad"), -absRange, absRange, -absRange, absRange)
	if err != nil {
		mouse.Close()
		return nil, fmt.Errorf("open uinput touchpad: %w", err)
	}
	return &UinputMouse{mouse: mouse, pad: pad}, nil
}

func (m *UinputMouse) MoveTo(x, y int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pad.MoveTo(x, y)
}

func (m *UinputMouse) MoveRelative(dx, dy int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dx > 0 {
		if err := m.mouse.MoveRight(dx); err != nil {
			return err
		}
	} else if dx < 0 {
		if err := m.mouse.MoveLeft(-dx); err != nil {
			return err
		}
	}
	if dy > 0 {
		if err := m.mouse.MoveDown(dy); err != nil {
			return err
		}
	} else if dy < 0 {
		if err := m.mouse.MoveUp(-dy); err != nil {
			return err
		}
	}
	return nil
}

func (m *UinputMouse) Click(button string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch button {
	case "left":
		return m.mouse.LeftClick()
	case "right":
		return m.mouse.RightClick()
	case "middle", "center":
		return m.mouse.MiddleClick()
	default:
		return fmt.Errorf("unknown mouse button %q", button)
	}
}

func (m *UinputMouse) ButtonDown(button string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch button {
	case "left":
		return m.mouse.LeftPress()
	case "right":
		return m.mouse.RightPress()
	case "middle", "center":
		return m.mouse.MiddlePress()
	default:
		return fmt.Errorf("unknown mouse button %q", button)
	}
}

func (m *UinputMouse) ButtonUp(button string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch button {
	case "left":
		return m.mouse.LeftRelease()
	case "right":
		return m.mouse.RightRelease()
	case "middle", "center":
		return m.mouse.MiddleRelease()
	default:
		return fmt.Errorf("unknown mouse button %q", button)
	}
}

func (m *UinputMouse) Scroll(axis Axis, amount int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mouse.Wheel(axis == AxisHorizontal, amount)
}

func (m *UinputMouse) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	padErr := m.pad.Close()
	mouseErr := m.mouse.Close()
	if mouseErr != nil {
		return mouseErr
	}
	return padErr
}
