package protocol

import (
	"strconv"
	"strings"
)

// Parse turns a single line from the serial or WebSocket source into a
// Command. It returns ok=false for empty, whitespace-only, or malformed
// input — parsing never panics and never returns a partially-populated
// Command.
func Parse(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, false
	}

	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return Command{}, false
	}
	prefix, rest := line[:colon], line[colon+1:]

	switch prefix {
	case "key":
		return parseKey(rest)
	case "mouse":
		return parseMouse(rest)
	case "midi":
		return parseMidi(rest)
	case "ws":
		return parseWs(rest)
	case "osc":
		return parseOsc(rest)
	default:
		return Command{}, false
	}
}

// parseKey parses key:down,up,tap,type.
func parseKey(rest string) (Command, bool) {
	sub, args := splitSubAndArgs(rest)

	if sub == "type" {
		text, ok := strings.CutPrefix(rest, "type,")
		if !ok {
			return Command{}, false
		}
		return Command{Kind: KeyType, Text: text}, true
	}

	if len(args) == 0 || args[0] == "" {
		return Command{}, false
	}
	key := args[0]

	switch sub {
	case "down":
		return Command{Kind: KeyDown, Key: key}, true
	case "up":
		return Command{Kind: KeyUp, Key: key}, true
	case "tap":
		return Command{Kind: KeyTap, Key: key}, true
	default:
		return Command{}, false
	}
}

// parseMouse parses mouse:move,move_rel,click,down,up,scroll.
func parseMouse(rest string) (Command, bool) {
	sub, args := splitSubAndArgs(rest)

	switch sub {
	case "move":
		x, y, ok := parseXY(args)
		if !ok {
			return Command{}, false
		}
		return Command{Kind: MouseMove, X: x, Y: y}, true
	case "move_rel":
		dx, dy, ok := parseXY(args)
		if !ok {
			return Command{}, false
		}
		return Command{Kind: MouseMoveRel, X: dx, Y: dy}, true
	case "scroll":
		x, y, ok := parseXY(args)
		if !ok {
			return Command{}, false
		}
		return Command{Kind: MouseScroll, X: x, Y: y}, true
	case "click":
		return Command{Kind: MouseClick, Button: buttonOrDefault(args)}, true
	case "down":
		return Command{Kind: MouseDown, Button: buttonOrDefault(args)}, true
	case "up":
		return Command{Kind: MouseUp, Button: buttonOrDefault(args)}, true
	default:
		return Command{}, false
	}
}

func parseXY(args []string) (int32, int32, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	x, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return int32(x), int32(y), true
}

func buttonOrDefault(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "left"
}

// parseMidi parses midi:note_on,note_off,cc,raw. All numeric fields are
// unsigned 8-bit; out-of-range values reject the whole line.
func parseMidi(rest string) (Command, bool) {
	sub, args := splitSubAndArgs(rest)

	switch sub {
	case "note_on":
		note, ok := parseU8(args, 0, false, 0)
		if !ok {
			return Command{}, false
		}
		velocity, ok := parseU8(args, 1, false, 0)
		if !ok {
			return Command{}, false
		}
		channel, ok := parseU8(args, 2, true, 0)
		if !ok {
			return Command{}, false
		}
		return Command{Kind: MidiNoteOn, Note: note, Velocity: velocity, Channel: channel}, true
	case "note_off":
		note, ok := parseU8(args, 0, false, 0)
		if !ok {
			return Command{}, false
		}
		velocity, ok := parseU8(args, 1, true, 0)
		if !ok {
			return Command{}, false
		}
		channel, ok := parseU8(args, 2, true, 0)
		if !ok {
			return Command{}, false
		}
		return Command{Kind: MidiNoteOff, Note: note, Velocity: velocity, Channel: channel}, true
	case "cc":
		controller, ok := parseU8(args, 0, false, 0)
		if !ok {
			return Command{}, false
		}
		value, ok := parseU8(args, 1, false, 0)
		if !ok {
			return Command{}, false
		}
		channel, ok := parseU8(args, 2, true, 0)
		if !ok {
			return Command{}, false
		}
		return Command{Kind: MidiCc, Controller: controller, Value: value, Channel: channel}, true
	case "raw":
		if len(args) < 3 {
			return Command{}, false
		}
		b0, ok := parseU8(args, 0, false, 0)
		if !ok {
			return Command{}, false
		}
		b1, ok := parseU8(args, 1, false, 0)
		if !ok {
			return Command{}, false
		}
		b2, ok := parseU8(args, 2, false, 0)
		if !ok {
			return Command{}, false
		}
		return Command{Kind: MidiRaw, RawBytes: [3]uint8{b0, b1, b2}}, true
	default:
		return Command{}, false
	}
}

// parseU8 reads args[i] as a uint8. A required field (optional=false)
// that is missing rejects the whole command; an optional field that is
// missing falls back to def. A field that is present but unparseable or
// out of uint8 range rejects the whole command, optional or not.
func parseU8(args []string, i int, optional bool, def uint8) (uint8, bool) {
	if i >= len(args) {
		if optional {
			return def, true
		}
		return 0, false
	}
	n, err := strconv.ParseUint(args[i], 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(n), true
}

// parseWs parses ws:raw,<payload> and ws:<id>,<value>.
func parseWs(rest string) (Command, bool) {
	if payload, ok := strings.CutPrefix(rest, "raw,"); ok {
		return Command{Kind: WsRaw, Payload: payload}, true
	}

	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return Command{}, false
	}
	id, value := rest[:comma], rest[comma+1:]
	return Command{Kind: WsBroadcast, ID: id, WsValue: value}, true
}

// parseOsc parses osc:<addr>[,<arg>...]. A leading '/' is not enforced.
func parseOsc(rest string) (Command, bool) {
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return Command{Kind: OscMessage, Address: rest, Args: nil}, true
	}
	address := rest[:comma]
	args := strings.Split(rest[comma+1:], ",")
	return Command{Kind: OscMessage, Address: address, Args: args}, true
}

// splitSubAndArgs splits "subcommand,arg1,arg2" into ("subcommand",
// ["arg1", "arg2"]).
func splitSubAndArgs(rest string) (string, []string) {
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return rest, nil
	}
	sub := rest[:comma]
	argStr := rest[comma+1:]
	return sub, strings.Split(argStr, ",")
}
