package nl

import (
	"errors"
	"fmt"

	"github.com/telekom/das-schiff-route-agent/pkg/nexthop"
	"github.com/vishvananda/netlink/nl"
	"golang.org/x/sys/unix"
)

// Encapsulation attribute layout understood by the kernel's VXLAN route
// handler: a nested RTA_ENCAP with the VNI first and the remote router
// MAC second.
const (
	encapTypeVXLAN uint16 = 100

	vxlanVNIAttr  = 0
	vxlanRMACAttr = 1
)

// ErrMessageTooLong is returned when an attribute does not fit into the
// remaining route message buffer. Nothing is appended in that case.
var ErrMessageTooLong = errors.New("route message buffer exhausted")

// ErrIncompleteEncap is returned for a VXLAN nexthop whose remote MAC is
// unset. Such a nexthop must not reach the forwarding plane.
var ErrIncompleteEncap = errors.New("incomplete VXLAN encapsulation, remote MAC not set")

// attrBuilder collects route attributes against a fixed byte limit.
type attrBuilder struct {
	attrs []*nl.RtAttr
	avail int
}

func newAttrBuilder(avail int) *attrBuilder {
	return &attrBuilder{avail: avail}
}

func (b *attrBuilder) add(attrs ...*nl.RtAttr) error {
	need := 0
	for _, a := range attrs {
		need += len(a.Serialize())
	}
	if need > b.avail {
		return ErrMessageTooLong
	}
	b.avail -= need
	b.attrs = append(b.attrs, attrs...)
	return nil
}

// appendVxlanEncap appends RTA_ENCAP_TYPE and the nested RTA_ENCAP for a
// VXLAN nexthop. The pair is appended atomically: on any failure the
// builder is left untouched, a partial nested attribute is never emitted.
func (n *Manager) appendVxlanEncap(b *attrBuilder, encap nexthop.VxlanEncap) error {
	if encap.VNI == 0 || encap.VNI > nexthop.MaxVNI {
		return fmt.Errorf("VNI %d out of range", encap.VNI)
	}
	if !encap.HasRemoteMAC() {
		return ErrIncompleteEncap
	}

	if n.debugKernel {
		n.logger.Info(fmt.Sprintf("appendVxlanEncap: VNI:%d RMAC:%s", encap.VNI, encap.MAC()))
	}

	typeAttr := nl.NewRtAttr(unix.RTA_ENCAP_TYPE, nl.Uint16Attr(encapTypeVXLAN))
	encapAttr := nl.NewRtAttr(unix.RTA_ENCAP|unix.NLA_F_NESTED, nil)
	encapAttr.AddRtAttr(vxlanVNIAttr, nl.Uint32Attr(encap.VNI))
	encapAttr.AddRtAttr(vxlanRMACAttr, encap.MAC())

	if err := b.add(typeAttr, encapAttr); err != nil {
		return fmt.Errorf("error appending VXLAN encap for VNI %d: %w", encap.VNI, err)
	}
	return nil
}

// vxlanEncapSize is the serialized size of RTA_ENCAP_TYPE plus the nested
// RTA_ENCAP with VNI and remote MAC, all rtattr-aligned.
const vxlanEncapSize = 8 /* encap type */ + 4 /* nest header */ + 8 /* vni */ + 12 /* rmac, padded */

// parseVxlanEncap is the decoder counterpart of appendVxlanEncap. It reads
// the children of a nested RTA_ENCAP payload.
func parseVxlanEncap(data []byte) (nexthop.VxlanEncap, error) {
	var encap nexthop.VxlanEncap

	attrs, err := nl.ParseRouteAttr(data)
	if err != nil {
		return encap, fmt.Errorf("error parsing encap attributes: %w", err)
	}
	native := nl.NativeEndian()
	for _, attr := range attrs {
		switch attr.Attr.Type {
		case vxlanVNIAttr:
			if len(attr.Value) < 4 {
				return encap, fmt.Errorf("short VNI attribute: %d bytes", len(attr.Value))
			}
			encap.VNI = native.Uint32(attr.Value[0:4])
		case vxlanRMACAttr:
			if err := encap.SetMAC(attr.Value); err != nil {
				return encap, fmt.Errorf("error parsing remote MAC attribute: %w", err)
			}
		}
	}
	if encap.VNI == 0 {
		return encap, fmt.Errorf("encap attribute without VNI")
	}
	return encap, nil
}
