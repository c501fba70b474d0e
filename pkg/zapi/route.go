package zapi

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/telekom/das-schiff-route-agent/pkg/nexthop"
	"golang.org/x/sys/unix"
)

// Message field bits of an IPRouteBody.
const (
	MessageNexthop  uint8 = 0x01
	MessageDistance uint8 = 0x02
	MessageMetric   uint8 = 0x04
	MessageTag      uint8 = 0x08
)

// NexthopType describes how a wire nexthop addresses its target.
type NexthopType uint8

const (
	_ NexthopType = iota
	NexthopTypeIfindex
	NexthopTypeIPv4
	NexthopTypeIPv4Ifindex
	NexthopTypeIPv6
	NexthopTypeIPv6Ifindex
	NexthopTypeBlackhole
)

// Per-nexthop flag bits.
const (
	NexthopFlagOnlink uint8 = 0x01
	NexthopFlagEVPN   uint8 = 0x02
	NexthopFlagWeight uint8 = 0x04
)

const rmacLen = 6

// APINexthop is the wire form of a nexthop inside a route message.
type APINexthop struct {
	VRFID   uint32
	Type    NexthopType
	Flags   uint8
	Gate    net.IP
	Ifindex uint32
	Weight  uint32
	RMAC    [rmacLen]byte
}

func (a *APINexthop) hasGate() bool {
	switch a.Type {
	case NexthopTypeIPv4, NexthopTypeIPv4Ifindex, NexthopTypeIPv6, NexthopTypeIPv6Ifindex:
		return true
	default:
		return false
	}
}

func (a *APINexthop) hasIfindex() bool {
	switch a.Type {
	case NexthopTypeIfindex, NexthopTypeIPv4Ifindex, NexthopTypeIPv6Ifindex:
		return true
	default:
		return false
	}
}

func (a *APINexthop) gateLen() int {
	switch a.Type {
	case NexthopTypeIPv4, NexthopTypeIPv4Ifindex:
		return net.IPv4len
	case NexthopTypeIPv6, NexthopTypeIPv6Ifindex:
		return net.IPv6len
	default:
		return 0
	}
}

func (a *APINexthop) Serialize() ([]byte, error) {
	buf := make([]byte, 6)
	binary.BigEndian.PutUint32(buf[0:4], a.VRFID)
	buf[4] = uint8(a.Type)
	buf[5] = a.Flags

	if l := a.gateLen(); l > 0 {
		gate := a.Gate
		if l == net.IPv4len {
			gate = gate.To4()
		} else {
			gate = gate.To16()
		}
		if gate == nil {
			return nil, fmt.Errorf("gate %s does not fit nexthop type %d", a.Gate, a.Type)
		}
		buf = append(buf, gate...)
	}
	if a.hasIfindex() {
		bbuf := make([]byte, 4)
		binary.BigEndian.PutUint32(bbuf, a.Ifindex)
		buf = append(buf, bbuf...)
	}
	if a.Flags&NexthopFlagWeight > 0 {
		bbuf := make([]byte, 4)
		binary.BigEndian.PutUint32(bbuf, a.Weight)
		buf = append(buf, bbuf...)
	}
	if a.Flags&NexthopFlagEVPN > 0 {
		buf = append(buf, a.RMAC[:]...)
	}
	return buf, nil
}

// decode consumes one wire nexthop from data and returns the number of
// bytes read.
func (a *APINexthop) decode(data []byte) (int, error) {
	if len(data) < 6 {
		return 0, fmt.Errorf("not enough bytes for nexthop: %d", len(data))
	}
	a.VRFID = binary.BigEndian.Uint32(data[0:4])
	a.Type = NexthopType(data[4])
	a.Flags = data[5]
	pos := 6

	if l := a.gateLen(); l > 0 {
		if len(data[pos:]) < l {
			return 0, fmt.Errorf("not enough bytes for nexthop gate: %d", len(data[pos:]))
		}
		gate := make(net.IP, l)
		copy(gate, data[pos:pos+l])
		a.Gate = gate
		pos += l
	}
	if a.hasIfindex() {
		if len(data[pos:]) < 4 {
			return 0, fmt.Errorf("not enough bytes for nexthop ifindex: %d", len(data[pos:]))
		}
		a.Ifindex = binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4
	}
	if a.Flags&NexthopFlagWeight > 0 {
		if len(data[pos:]) < 4 {
			return 0, fmt.Errorf("not enough bytes for nexthop weight: %d", len(data[pos:]))
		}
		a.Weight = binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4
	}
	if a.Flags&NexthopFlagEVPN > 0 {
		if len(data[pos:]) < rmacLen {
			return 0, fmt.Errorf("not enough bytes for nexthop rmac: %d", len(data[pos:]))
		}
		copy(a.RMAC[:], data[pos:pos+rmacLen])
		pos += rmacLen
	}
	return pos, nil
}

// Resolve converts the wire nexthop into the internal representation. An
// IPv4-mapped IPv6 gate is folded into a plain IPv4 gateway so that routes
// advertised over either address family come out identical.
func (a *APINexthop) Resolve() (nexthop.Nexthop, error) {
	nh := nexthop.Nexthop{
		VRFID:  a.VRFID,
		Weight: a.Weight,
		OnLink: a.Flags&NexthopFlagOnlink > 0,
	}

	switch a.Type {
	case NexthopTypeIfindex:
		nh.LinkIndex = int(a.Ifindex)
	case NexthopTypeIPv4, NexthopTypeIPv4Ifindex:
		nh.Gateway = a.Gate.To4()
		nh.LinkIndex = int(a.Ifindex)
	case NexthopTypeIPv6, NexthopTypeIPv6Ifindex:
		if v4 := a.Gate.To4(); v4 != nil {
			nh.Gateway = v4
		} else {
			nh.Gateway = a.Gate.To16()
		}
		nh.LinkIndex = int(a.Ifindex)
	case NexthopTypeBlackhole:
		nh.Blackhole = true
	default:
		return nexthop.Nexthop{}, fmt.Errorf("unknown nexthop type: %d", a.Type)
	}
	if nh.Gateway == nil && a.hasGate() {
		return nexthop.Nexthop{}, fmt.Errorf("nexthop type %d without usable gate %s", a.Type, a.Gate)
	}

	if err := a.applyEVPN(&nh); err != nil {
		return nexthop.Nexthop{}, err
	}
	return nh, nil
}

// applyEVPN copies the remote router MAC into the nexthop's encapsulation
// payload. Shared by every construction path above; the copy is
// unconditional when the EVPN flag is set, a MAC from an earlier
// resolution is overwritten.
func (a *APINexthop) applyEVPN(nh *nexthop.Nexthop) error {
	if a.Flags&NexthopFlagEVPN == 0 {
		return nil
	}
	if err := nh.SetRemoteMAC(a.RMAC[:]); err != nil {
		return fmt.Errorf("error setting remote MAC: %w", err)
	}
	return nil
}

// IPRouteBody is the payload of CommandRouteAdd and CommandRouteDelete.
type IPRouteBody struct {
	API          Command
	Type         RouteType
	Instance     uint16
	Flags        uint32
	Message      uint8
	SAFI         uint8
	Family       uint8
	Prefix       net.IP
	PrefixLength uint8
	Nexthops     []APINexthop
	Distance     uint8
	Metric       uint32
	Tag          uint32
}

func (b *IPRouteBody) addrLen() (int, error) {
	switch b.Family {
	case unix.AF_INET:
		return net.IPv4len, nil
	case unix.AF_INET6:
		return net.IPv6len, nil
	default:
		return 0, fmt.Errorf("unknown address family: %d", b.Family)
	}
}

func (b *IPRouteBody) Serialize() ([]byte, error) {
	buf := make([]byte, 10)
	buf[0] = uint8(b.Type)
	binary.BigEndian.PutUint16(buf[1:3], b.Instance)
	binary.BigEndian.PutUint32(buf[3:7], b.Flags)
	buf[7] = b.Message
	buf[8] = b.SAFI
	buf[9] = b.Family

	addrLen, err := b.addrLen()
	if err != nil {
		return nil, err
	}
	if int(b.PrefixLength) > addrLen*8 {
		return nil, fmt.Errorf("prefix length %d exceeds family maximum %d", b.PrefixLength, addrLen*8)
	}
	byteLen := (int(b.PrefixLength) + 7) / 8
	pbuf := make([]byte, byteLen)
	copy(pbuf, b.Prefix)
	buf = append(buf, b.PrefixLength)
	buf = append(buf, pbuf...)

	if b.Message&MessageNexthop > 0 {
		bbuf := make([]byte, 2)
		binary.BigEndian.PutUint16(bbuf, uint16(len(b.Nexthops)))
		buf = append(buf, bbuf...)
		for i := range b.Nexthops {
			nbuf, err := b.Nexthops[i].Serialize()
			if err != nil {
				return nil, err
			}
			buf = append(buf, nbuf...)
		}
	}
	if b.Message&MessageDistance > 0 {
		buf = append(buf, b.Distance)
	}
	if b.Message&MessageMetric > 0 {
		bbuf := make([]byte, 4)
		binary.BigEndian.PutUint32(bbuf, b.Metric)
		buf = append(buf, bbuf...)
	}
	if b.Message&MessageTag > 0 {
		bbuf := make([]byte, 4)
		binary.BigEndian.PutUint32(bbuf, b.Tag)
		buf = append(buf, bbuf...)
	}
	return buf, nil
}

func (b *IPRouteBody) DecodeFromBytes(data []byte) error {
	if len(data) < 11 {
		return fmt.Errorf("not enough bytes for route body: %d", len(data))
	}
	b.Type = RouteType(data[0])
	b.Instance = binary.BigEndian.Uint16(data[1:3])
	b.Flags = binary.BigEndian.Uint32(data[3:7])
	b.Message = data[7]
	b.SAFI = data[8]
	b.Family = data[9]
	b.PrefixLength = data[10]
	pos := 11

	addrLen, err := b.addrLen()
	if err != nil {
		return err
	}
	if int(b.PrefixLength) > addrLen*8 {
		return fmt.Errorf("prefix length %d exceeds family maximum %d", b.PrefixLength, addrLen*8)
	}
	byteLen := (int(b.PrefixLength) + 7) / 8
	if len(data[pos:]) < byteLen {
		return fmt.Errorf("not enough bytes for prefix: %d", len(data[pos:]))
	}
	prefix := make(net.IP, addrLen)
	copy(prefix, data[pos:pos+byteLen])
	b.Prefix = prefix
	pos += byteLen

	if b.Message&MessageNexthop > 0 {
		if len(data[pos:]) < 2 {
			return fmt.Errorf("not enough bytes for nexthop count: %d", len(data[pos:]))
		}
		num := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		pos += 2
		b.Nexthops = make([]APINexthop, 0, num)
		for i := 0; i < num; i++ {
			var nh APINexthop
			n, err := nh.decode(data[pos:])
			if err != nil {
				return fmt.Errorf("error decoding nexthop %d: %w", i, err)
			}
			b.Nexthops = append(b.Nexthops, nh)
			pos += n
		}
	}
	if b.Message&MessageDistance > 0 {
		if len(data[pos:]) < 1 {
			return fmt.Errorf("not enough bytes for distance")
		}
		b.Distance = data[pos]
		pos++
	}
	if b.Message&MessageMetric > 0 {
		if len(data[pos:]) < 4 {
			return fmt.Errorf("not enough bytes for metric")
		}
		b.Metric = binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4
	}
	if b.Message&MessageTag > 0 {
		if len(data[pos:]) < 4 {
			return fmt.Errorf("not enough bytes for tag")
		}
		b.Tag = binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4
	}
	if len(data[pos:]) != 0 {
		return fmt.Errorf("%d trailing bytes after route body", len(data[pos:]))
	}
	return nil
}

// PrefixNet returns the advertised prefix as *net.IPNet.
func (b *IPRouteBody) PrefixNet() *net.IPNet {
	bits := 8 * net.IPv4len
	if b.Family == unix.AF_INET6 {
		bits = 8 * net.IPv6len
	}
	return &net.IPNet{
		IP:   b.Prefix,
		Mask: net.CIDRMask(int(b.PrefixLength), bits),
	}
}

func (b *IPRouteBody) String() string {
	return fmt.Sprintf("type: %s, prefix: %s/%d, nexthops: %d, metric: %d",
		b.Type, b.Prefix, b.PrefixLength, len(b.Nexthops), b.Metric)
}
