package bridge

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hypebeast/go-osc/osc"
)

// UDPOSCSender sends one OSC message per Send call as a single UDP
// datagram from a fixed local port to a fixed remote host:port. Binding
// our own socket (rather than dialing per-send) keeps the source port
// stable for receivers that filter by it.
type UDPOSCSender struct {
	conn *net.UDPConn
}

// NewUDPOSCSender binds localAddr (host:port, port 0 for ephemeral) and
// resolves remoteAddr as the fixed destination for every Send.
func NewUDPOSCSender(localAddr, remoteAddr string) (*UDPOSCSender, error) {
	local, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve osc local addr: %w", err)
	}
	remote, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve osc remote addr: %w", err)
	}
	conn, err := net.DialUDP("udp", local, remote)
	if err != nil {
		return nil, fmt.Errorf("dial osc udp: %w", err)
	}
	return &UDPOSCSender{conn: conn}, nil
}

// Send encodes address and args as an OSC message and writes it as one
// datagram. Each arg is tried as a float32, then an int32, before falling
// back to a string argument, matching how numeric literals arrive over
// the wire as plain decimal text.
func (s *UDPOSCSender) Send(address string, args []string) error {
	msg := osc.NewMessage(address)
	for _, a := range args {
		if f, err := strconv.ParseFloat(a, 32); err == nil {
			msg.Append(float32(f))
			continue
		}
		if i, err := strconv.ParseInt(a, 10, 32); err == nil {
			msg.Append(int32(i))
			continue
		}
		msg.Append(a)
	}

	data, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode osc message: %w", err)
	}
	_, err = s.conn.Write(data)
	if err != nil {
		return fmt.Errorf("send osc datagram: %w", err)
	}
	return nil
}

func (s *UDPOSCSender) Close() error {
	return s.conn.Close()
}
