package serialio

import "path/filepath"

// deviceGlobs are the device-node patterns real USB/ACM serial adapters
// show up under on Linux.
var deviceGlobs = []string{
	"/dev/ttyUSB*",
	"/dev/ttyACM*",
	"/dev/ttyS*",
}

// ListPorts returns the serial device paths currently present under
// /dev. There is no portable enumeration ioctl exposed by goserial, so
// this mirrors what `ls /dev/ttyUSB*` would show — good enough for the
// CLI's --list-ports convenience flag.
func ListPorts() []string {
	var found []string
	for _, pattern := range deviceGlobs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		found = append(found, matches...)
	}
	return found
}
