package nl

import (
	"errors"
	"net"
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	mock_nl "github.com/telekom/das-schiff-route-agent/pkg/nl/mock"
	"github.com/telekom/das-schiff-route-agent/pkg/nexthop"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netlink/nl"
	"go.uber.org/mock/gomock"
	"golang.org/x/sys/unix"
)

var mockctrl *gomock.Controller

func TestNL(t *testing.T) {
	RegisterFailHandler(Fail)
	mockctrl = gomock.NewController(t)
	defer mockctrl.Finish()
	RunSpecs(t,
		"NL Suite")
}

func testEncap() nexthop.VxlanEncap {
	encap := nexthop.VxlanEncap{VNI: 5000}
	mac, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	Expect(err).ToNot(HaveOccurred())
	Expect(encap.SetMAC(mac)).To(Succeed())
	return encap
}

func testPrefix(s string) *net.IPNet {
	_, prefix, err := net.ParseCIDR(s)
	Expect(err).ToNot(HaveOccurred())
	return prefix
}

// routeAttrs serializes a captured request and returns its route attributes.
func routeAttrs(req *nl.NetlinkRequest) []syscallAttr {
	data := req.Serialize()
	Expect(len(data)).To(BeNumerically(">=", unix.SizeofNlMsghdr+unix.SizeofRtMsg))
	attrs, err := nl.ParseRouteAttr(data[unix.SizeofNlMsghdr+unix.SizeofRtMsg:])
	Expect(err).ToNot(HaveOccurred())
	out := make([]syscallAttr, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, syscallAttr{Type: a.Attr.Type, Value: a.Value})
	}
	return out
}

type syscallAttr struct {
	Type  uint16
	Value []byte
}

func findAttr(attrs []syscallAttr, attrType uint16) *syscallAttr {
	for i := range attrs {
		if attrs[i].Type == attrType {
			return &attrs[i]
		}
	}
	return nil
}

var _ = Describe("appendVxlanEncap()", func() {
	netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
	It("returns error if VNI is out of range", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		encap := testEncap()
		encap.VNI = nexthop.MaxVNI + 1
		b := newAttrBuilder(routeMessageMaxSize)
		err := nm.appendVxlanEncap(b, encap)
		Expect(err).To(HaveOccurred())
		Expect(b.attrs).To(BeEmpty())
	})
	It("refuses a nexthop without remote MAC", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		b := newAttrBuilder(routeMessageMaxSize)
		err := nm.appendVxlanEncap(b, nexthop.VxlanEncap{VNI: 5000})
		Expect(errors.Is(err, ErrIncompleteEncap)).To(BeTrue())
		Expect(b.attrs).To(BeEmpty())
	})
	It("emits the encap type and the nested attribute", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		b := newAttrBuilder(routeMessageMaxSize)
		Expect(nm.appendVxlanEncap(b, testEncap())).To(Succeed())
		Expect(b.attrs).To(HaveLen(2))

		typeData := b.attrs[0].Serialize()
		Expect(nl.NativeEndian().Uint16(typeData[2:4])).To(Equal(uint16(unix.RTA_ENCAP_TYPE)))
		Expect(nl.NativeEndian().Uint16(typeData[4:6])).To(Equal(encapTypeVXLAN))

		nestData := b.attrs[1].Serialize()
		Expect(nl.NativeEndian().Uint16(nestData[2:4])).To(Equal(uint16(unix.RTA_ENCAP | unix.NLA_F_NESTED)))
		children, err := nl.ParseRouteAttr(nestData[4:])
		Expect(err).ToNot(HaveOccurred())
		Expect(children).To(HaveLen(2))
		Expect(children[0].Attr.Type).To(Equal(uint16(vxlanVNIAttr)))
		Expect(nl.NativeEndian().Uint32(children[0].Value)).To(Equal(uint32(5000)))
		Expect(children[1].Attr.Type).To(Equal(uint16(vxlanRMACAttr)))
		Expect(net.HardwareAddr(children[1].Value).String()).To(Equal("aa:bb:cc:dd:ee:ff"))
	})
	It("leaves the builder untouched when the buffer is exhausted", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		b := newAttrBuilder(vxlanEncapSize - 1)
		err := nm.appendVxlanEncap(b, testEncap())
		Expect(errors.Is(err, ErrMessageTooLong)).To(BeTrue())
		Expect(b.attrs).To(BeEmpty())
		Expect(b.avail).To(Equal(vxlanEncapSize - 1))
	})
	It("succeeds when the attributes exactly fit", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		b := newAttrBuilder(vxlanEncapSize)
		Expect(nm.appendVxlanEncap(b, testEncap())).To(Succeed())
		Expect(b.attrs).To(HaveLen(2))
		Expect(b.avail).To(Equal(0))
	})
})

var _ = Describe("parseVxlanEncap()", func() {
	netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
	It("round-trips the emitted attributes", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		b := newAttrBuilder(routeMessageMaxSize)
		Expect(nm.appendVxlanEncap(b, testEncap())).To(Succeed())

		nestData := b.attrs[1].Serialize()
		encap, err := parseVxlanEncap(nestData[4:])
		Expect(err).ToNot(HaveOccurred())
		Expect(encap).To(Equal(testEncap()))
	})
	It("returns error if the VNI is missing", func() {
		attr := nl.NewRtAttr(unix.RTA_ENCAP|unix.NLA_F_NESTED, nil)
		attr.AddRtAttr(vxlanRMACAttr, make([]byte, 6))
		_, err := parseVxlanEncap(attr.Serialize()[4:])
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("InstallRoute()", func() {
	netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
	It("returns error if the route has no nexthops", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		err := nm.InstallRoute(&Route{Prefix: testPrefix("10.0.0.0/24")})
		Expect(err).To(HaveOccurred())
	})
	It("returns error if a VXLAN nexthop has no remote MAC", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		nh := nexthop.Nexthop{Gateway: net.ParseIP("192.0.2.1")}
		Expect(nh.SetVxlanVNI(5000)).To(Succeed())
		err := nm.InstallRoute(&Route{
			Prefix:   testPrefix("10.0.0.0/24"),
			Nexthops: []nexthop.Nexthop{nh},
		})
		Expect(errors.Is(err, ErrIncompleteEncap)).To(BeTrue())
	})
	It("programs a plain route without encap attributes", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		var captured *nl.NetlinkRequest
		netlinkMock.EXPECT().ExecuteNetlinkRequest(gomock.Any(), unix.NETLINK_ROUTE, uint16(0)).
			DoAndReturn(func(req *nl.NetlinkRequest, _ int, _ uint16) ([][]byte, error) {
				captured = req
				return nil, nil
			})

		err := nm.InstallRoute(&Route{
			Table:  254,
			Prefix: testPrefix("10.0.0.0/24"),
			Nexthops: []nexthop.Nexthop{
				{Gateway: net.ParseIP("192.0.2.1"), LinkIndex: 3},
			},
		})
		Expect(err).ToNot(HaveOccurred())

		attrs := routeAttrs(captured)
		Expect(findAttr(attrs, unix.RTA_ENCAP_TYPE)).To(BeNil())
		Expect(findAttr(attrs, unix.RTA_ENCAP|unix.NLA_F_NESTED)).To(BeNil())
		gw := findAttr(attrs, unix.RTA_GATEWAY)
		Expect(gw).ToNot(BeNil())
		Expect(net.IP(gw.Value).String()).To(Equal("192.0.2.1"))
	})
	It("programs VNI and remote MAC for a VXLAN nexthop", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		var captured *nl.NetlinkRequest
		netlinkMock.EXPECT().ExecuteNetlinkRequest(gomock.Any(), unix.NETLINK_ROUTE, uint16(0)).
			DoAndReturn(func(req *nl.NetlinkRequest, _ int, _ uint16) ([][]byte, error) {
				captured = req
				return nil, nil
			})

		nh := nexthop.Nexthop{Gateway: net.ParseIP("192.0.2.1"), LinkIndex: 3, Vxlan: testEncap()}
		Expect(nh.SetVxlanVNI(5000)).To(Succeed())
		err := nm.InstallRoute(&Route{
			Table:    1055,
			Prefix:   testPrefix("10.0.0.0/24"),
			Nexthops: []nexthop.Nexthop{nh},
		})
		Expect(err).ToNot(HaveOccurred())

		attrs := routeAttrs(captured)
		encapType := findAttr(attrs, unix.RTA_ENCAP_TYPE)
		Expect(encapType).ToNot(BeNil())
		Expect(nl.NativeEndian().Uint16(encapType.Value)).To(Equal(encapTypeVXLAN))

		nest := findAttr(attrs, unix.RTA_ENCAP|unix.NLA_F_NESTED)
		Expect(nest).ToNot(BeNil())
		encap, err := parseVxlanEncap(nest.Value)
		Expect(err).ToNot(HaveOccurred())
		Expect(encap.VNI).To(Equal(uint32(5000)))
		Expect(encap.MAC().String()).To(Equal("aa:bb:cc:dd:ee:ff"))

		table := findAttr(attrs, unix.RTA_TABLE)
		Expect(table).ToNot(BeNil())
		Expect(nl.NativeEndian().Uint32(table.Value)).To(Equal(uint32(1055)))
	})
	It("programs per-nexthop encap for a multipath route", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		var captured *nl.NetlinkRequest
		netlinkMock.EXPECT().ExecuteNetlinkRequest(gomock.Any(), unix.NETLINK_ROUTE, uint16(0)).
			DoAndReturn(func(req *nl.NetlinkRequest, _ int, _ uint16) ([][]byte, error) {
				captured = req
				return nil, nil
			})

		first := nexthop.Nexthop{Gateway: net.ParseIP("192.0.2.1"), LinkIndex: 3, Vxlan: testEncap()}
		Expect(first.SetVxlanVNI(5000)).To(Succeed())
		second := nexthop.Nexthop{Gateway: net.ParseIP("192.0.2.2"), LinkIndex: 3, Vxlan: testEncap()}
		Expect(second.SetVxlanVNI(5000)).To(Succeed())
		err := nm.InstallRoute(&Route{
			Table:    254,
			Prefix:   testPrefix("10.0.0.0/24"),
			Nexthops: []nexthop.Nexthop{first, second},
		})
		Expect(err).ToNot(HaveOccurred())

		attrs := routeAttrs(captured)
		multipath := findAttr(attrs, unix.RTA_MULTIPATH)
		Expect(multipath).ToNot(BeNil())
		count, err := countMultipathVxlan(multipath.Value)
		Expect(err).ToNot(HaveOccurred())
		Expect(count).To(Equal(2))
	})
	It("rejects the whole route when the attributes do not fit", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		nhs := make([]nexthop.Nexthop, 0, 200)
		for i := 0; i < 200; i++ {
			nh := nexthop.Nexthop{Gateway: net.ParseIP("192.0.2.1"), LinkIndex: 3, Vxlan: testEncap()}
			Expect(nh.SetVxlanVNI(5000)).To(Succeed())
			nhs = append(nhs, nh)
		}
		err := nm.InstallRoute(&Route{
			Table:    254,
			Prefix:   testPrefix("10.0.0.0/24"),
			Nexthops: nhs,
		})
		Expect(errors.Is(err, ErrMessageTooLong)).To(BeTrue())
	})
})

var _ = Describe("DeleteRoute()", func() {
	netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
	It("withdraws a route without nexthops", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		var captured *nl.NetlinkRequest
		netlinkMock.EXPECT().ExecuteNetlinkRequest(gomock.Any(), unix.NETLINK_ROUTE, uint16(0)).
			DoAndReturn(func(req *nl.NetlinkRequest, _ int, _ uint16) ([][]byte, error) {
				captured = req
				return nil, nil
			})

		err := nm.DeleteRoute(&Route{Table: 254, Prefix: testPrefix("10.0.0.0/24")})
		Expect(err).ToNot(HaveOccurred())
		Expect(captured.NlMsghdr.Type).To(Equal(uint16(unix.RTM_DELROUTE)))
	})
})

var _ = Describe("GetL3ByName()", func() {
	netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
	It("returns error if the VRF does not exist", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		netlinkMock.EXPECT().LinkList().Return([]netlink.Link{}, nil)
		_, err := nm.GetL3ByName("red")
		Expect(err).To(HaveOccurred())
	})
	It("reports the VNI and oper state of the VXLAN device", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		netlinkMock.EXPECT().LinkList().Return([]netlink.Link{
			&netlink.Vrf{LinkAttrs: netlink.LinkAttrs{Name: "red", Index: 10}, Table: 1055},
		}, nil)
		netlinkMock.EXPECT().LinkByName(bridgePrefix + "red").Return(&netlink.Bridge{LinkAttrs: netlink.LinkAttrs{Index: 11}}, nil)
		netlinkMock.EXPECT().LinkByName(vxlanPrefix+"red").Return(&netlink.Vxlan{
			LinkAttrs: netlink.LinkAttrs{Index: 12, Flags: net.FlagUp, OperState: netlink.OperUp},
			VxlanId:   5000,
		}, nil)

		info, err := nm.GetL3ByName("red")
		Expect(err).ToNot(HaveOccurred())
		Expect(info.VNI).To(Equal(5000))
		Expect(info.OperUp).To(BeTrue())
		Expect(info.Table()).To(Equal(1055))
		Expect(info.VTEPIndex()).To(Equal(12))
	})
	It("reports a down L3VNI when the VXLAN device is down", func() {
		nm := NewManager(netlinkMock, logr.Discard())
		netlinkMock.EXPECT().LinkList().Return([]netlink.Link{
			&netlink.Vrf{LinkAttrs: netlink.LinkAttrs{Name: "red", Index: 10}, Table: 1055},
		}, nil)
		netlinkMock.EXPECT().LinkByName(bridgePrefix + "red").Return(&netlink.Bridge{}, nil)
		netlinkMock.EXPECT().LinkByName(vxlanPrefix+"red").Return(&netlink.Vxlan{
			LinkAttrs: netlink.LinkAttrs{Index: 12, OperState: netlink.OperDown},
			VxlanId:   5000,
		}, nil)

		info, err := nm.GetL3ByName("red")
		Expect(err).ToNot(HaveOccurred())
		Expect(info.OperUp).To(BeFalse())
	})
})

var _ = Describe("ListRouteInformation()", func() {
	netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
	It("aggregates routes and counts VXLAN nexthops", func() {
		nm := NewManager(netlinkMock, logr.Discard())

		encapMsg := buildRouteMessage(254, unix.RTPROT_BGP, true)
		plainMsg := buildRouteMessage(254, unix.RTPROT_BGP, false)
		netlinkMock.EXPECT().ExecuteNetlinkRequest(gomock.Any(), unix.NETLINK_ROUTE, uint16(unix.RTM_NEWROUTE)).
			Return([][]byte{encapMsg, plainMsg}, nil)

		infos, err := nm.ListRouteInformation()
		Expect(err).ToNot(HaveOccurred())
		Expect(infos).To(HaveLen(1))
		Expect(infos[0].Quantity).To(Equal(2))
		Expect(infos[0].VxlanNexthops).To(Equal(1))
		Expect(infos[0].VrfName).To(Equal("main"))
	})
})

// buildRouteMessage assembles a raw RTM_NEWROUTE payload the way the
// kernel would answer a dump.
func buildRouteMessage(table uint8, protocol int, withEncap bool) []byte {
	msg := nl.NewRtMsg()
	msg.Family = unix.AF_INET
	msg.Table = table
	msg.Protocol = uint8(protocol)
	data := msg.Serialize()

	dst := nl.NewRtAttr(unix.RTA_DST, net.ParseIP("10.0.0.0").To4())
	data = append(data, dst.Serialize()...)
	if withEncap {
		typeAttr := nl.NewRtAttr(unix.RTA_ENCAP_TYPE, nl.Uint16Attr(encapTypeVXLAN))
		data = append(data, typeAttr.Serialize()...)
		encapAttr := nl.NewRtAttr(unix.RTA_ENCAP|unix.NLA_F_NESTED, nil)
		encapAttr.AddRtAttr(vxlanVNIAttr, nl.Uint32Attr(5000))
		mac, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
		encapAttr.AddRtAttr(vxlanRMACAttr, mac)
		data = append(data, encapAttr.Serialize()...)
	}
	return data
}
