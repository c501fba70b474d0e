package zapi

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the fixed size of the message header: length (2),
	// marker (1), version (1), vrf id (4), command (2).
	HeaderSize = 10

	HeaderMarker = 0xfe
	Version      = 6

	// MaxMessageSize bounds a single message including its header.
	MaxMessageSize = 4096
)

// DefaultSocketPath is where routing clients reach the agent.
const DefaultSocketPath = "/var/run/route-agent/zserv.api"

// Command identifies the operation carried by a message.
type Command uint16

const (
	_ Command = iota
	CommandHello
	CommandRouterIDAdd
	CommandInterfaceAdd
	CommandRedistributeAdd
	CommandRedistributeDelete
	CommandRouteAdd
	CommandRouteDelete
)

func (c Command) String() string {
	switch c {
	case CommandHello:
		return "HELLO"
	case CommandRouterIDAdd:
		return "ROUTER_ID_ADD"
	case CommandInterfaceAdd:
		return "INTERFACE_ADD"
	case CommandRedistributeAdd:
		return "REDISTRIBUTE_ADD"
	case CommandRedistributeDelete:
		return "REDISTRIBUTE_DELETE"
	case CommandRouteAdd:
		return "ROUTE_ADD"
	case CommandRouteDelete:
		return "ROUTE_DELETE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(c))
	}
}

type Header struct {
	Len     uint16
	Marker  uint8
	Version uint8
	VRFID   uint32
	Command Command
}

func (h *Header) Serialize() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], h.Len)
	buf[2] = h.Marker
	buf[3] = h.Version
	binary.BigEndian.PutUint32(buf[4:8], h.VRFID)
	binary.BigEndian.PutUint16(buf[8:10], uint16(h.Command))
	return buf, nil
}

func (h *Header) DecodeFromBytes(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("not enough bytes for message header: %d", len(data))
	}
	h.Len = binary.BigEndian.Uint16(data[0:2])
	h.Marker = data[2]
	h.Version = data[3]
	h.VRFID = binary.BigEndian.Uint32(data[4:8])
	h.Command = Command(binary.BigEndian.Uint16(data[8:10]))
	if h.Marker != HeaderMarker {
		return fmt.Errorf("invalid header marker: %d", h.Marker)
	}
	if h.Version != Version {
		return fmt.Errorf("unsupported version: %d", h.Version)
	}
	if h.Len < HeaderSize || h.Len > MaxMessageSize {
		return fmt.Errorf("invalid message length: %d", h.Len)
	}
	return nil
}

// Body is the payload of a message.
type Body interface {
	DecodeFromBytes([]byte) error
	Serialize() ([]byte, error)
}

type Message struct {
	Header Header
	Body   Body
}

func (m *Message) Serialize() ([]byte, error) {
	var body []byte
	if m.Body != nil {
		var err error
		body, err = m.Body.Serialize()
		if err != nil {
			return nil, fmt.Errorf("error serializing message body: %w", err)
		}
	}
	m.Header.Len = uint16(len(body)) + HeaderSize
	hdr, err := m.Header.Serialize()
	if err != nil {
		return nil, fmt.Errorf("error serializing message header: %w", err)
	}
	return append(hdr, body...), nil
}

// ParseMessage decodes a message body for the given header.
func ParseMessage(hdr *Header, data []byte) (*Message, error) {
	m := &Message{Header: *hdr}

	switch hdr.Command {
	case CommandHello:
		m.Body = &HelloBody{}
	case CommandRedistributeAdd, CommandRedistributeDelete:
		m.Body = &RedistributeBody{}
	case CommandRouteAdd, CommandRouteDelete:
		m.Body = &IPRouteBody{API: hdr.Command}
	case CommandRouterIDAdd, CommandInterfaceAdd:
		m.Body = nil
		return m, nil
	default:
		return nil, fmt.Errorf("unknown command: %d", hdr.Command)
	}
	if err := m.Body.DecodeFromBytes(data); err != nil {
		return nil, fmt.Errorf("error decoding %s body: %w", hdr.Command, err)
	}
	return m, nil
}

// HelloBody announces a client and the route type it redistributes.
type HelloBody struct {
	RouteType RouteType
	Instance  uint16
}

func (b *HelloBody) DecodeFromBytes(data []byte) error {
	if len(data) < 3 {
		return fmt.Errorf("not enough bytes for hello body: %d", len(data))
	}
	b.RouteType = RouteType(data[0])
	b.Instance = binary.BigEndian.Uint16(data[1:3])
	return nil
}

func (b *HelloBody) Serialize() ([]byte, error) {
	buf := make([]byte, 3)
	buf[0] = uint8(b.RouteType)
	binary.BigEndian.PutUint16(buf[1:3], b.Instance)
	return buf, nil
}

type RedistributeBody struct {
	AFI       uint8
	RouteType RouteType
	Instance  uint16
}

func (b *RedistributeBody) DecodeFromBytes(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("not enough bytes for redistribute body: %d", len(data))
	}
	b.AFI = data[0]
	b.RouteType = RouteType(data[1])
	b.Instance = binary.BigEndian.Uint16(data[2:4])
	return nil
}

func (b *RedistributeBody) Serialize() ([]byte, error) {
	buf := make([]byte, 4)
	buf[0] = b.AFI
	buf[1] = uint8(b.RouteType)
	binary.BigEndian.PutUint16(buf[2:4], b.Instance)
	return buf, nil
}

// RouteType is the protocol that originated a route.
type RouteType uint8

const (
	RouteSystem RouteType = iota
	RouteKernel
	RouteConnect
	RouteStatic
	RouteRIP
	RouteRIPNG
	RouteOSPF
	RouteOSPF6
	RouteISIS
	RouteBGP
	RouteMax
)

var routeTypeNames = map[RouteType]string{
	RouteSystem:  "system",
	RouteKernel:  "kernel",
	RouteConnect: "connect",
	RouteStatic:  "static",
	RouteRIP:     "rip",
	RouteRIPNG:   "ripng",
	RouteOSPF:    "ospf",
	RouteOSPF6:   "ospf6",
	RouteISIS:    "isis",
	RouteBGP:     "bgp",
}

func (t RouteType) String() string {
	if s, ok := routeTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}
