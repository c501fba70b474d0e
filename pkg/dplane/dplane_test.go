package dplane

import (
	"net"
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/telekom/das-schiff-route-agent/pkg/config"
	"github.com/telekom/das-schiff-route-agent/pkg/nl"
	mock_nl "github.com/telekom/das-schiff-route-agent/pkg/nl/mock"
	"github.com/telekom/das-schiff-route-agent/pkg/zapi"
	"github.com/vishvananda/netlink"
	vnl "github.com/vishvananda/netlink/nl"
	"go.uber.org/mock/gomock"
	"golang.org/x/sys/unix"
)

var mockctrl *gomock.Controller

func TestDplane(t *testing.T) {
	RegisterFailHandler(Fail)
	mockctrl = gomock.NewController(t)
	defer mockctrl.Finish()
	RunSpecs(t,
		"Dplane Suite")
}

func testStore() *config.Store {
	return config.NewStore(&config.Config{
		VRFConfig: map[string]config.VRFConfig{
			"red": {ID: 1, VNI: 5000},
		},
	})
}

func evpnRouteBody() *zapi.IPRouteBody {
	mac, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	nh := zapi.APINexthop{
		Type:    zapi.NexthopTypeIPv4Ifindex,
		Flags:   zapi.NexthopFlagEVPN,
		Gate:    net.ParseIP("192.0.2.1"),
		Ifindex: 3,
	}
	copy(nh.RMAC[:], mac)
	return &zapi.IPRouteBody{
		Type:         zapi.RouteBGP,
		Message:      zapi.MessageNexthop,
		Family:       unix.AF_INET,
		Prefix:       net.ParseIP("10.1.0.0").To4(),
		PrefixLength: 16,
		Nexthops:     []zapi.APINexthop{nh},
	}
}

// expectVRF wires the link lookups for the red VRF with its VXLAN device
// in the given oper state.
func expectVRF(netlinkMock *mock_nl.MockToolkitInterface, operState netlink.LinkOperState) {
	flags := net.FlagUp
	if operState == netlink.OperDown {
		flags = 0
	}
	netlinkMock.EXPECT().LinkList().Return([]netlink.Link{
		&netlink.Vrf{LinkAttrs: netlink.LinkAttrs{Name: "red", Index: 10}, Table: 1055},
	}, nil).AnyTimes()
	netlinkMock.EXPECT().LinkByName("br.red").Return(&netlink.Bridge{LinkAttrs: netlink.LinkAttrs{Index: 11}}, nil).AnyTimes()
	netlinkMock.EXPECT().LinkByName("vx.red").Return(&netlink.Vxlan{
		LinkAttrs: netlink.LinkAttrs{Index: 12, Flags: flags, OperState: operState},
		VxlanId:   5000,
	}, nil).AnyTimes()
}

func encapOfRequest(req *vnl.NetlinkRequest) *uint32 {
	data := req.Serialize()
	attrs, err := vnl.ParseRouteAttr(data[unix.SizeofNlMsghdr+unix.SizeofRtMsg:])
	Expect(err).ToNot(HaveOccurred())
	for _, attr := range attrs {
		if attr.Attr.Type == unix.RTA_ENCAP|unix.NLA_F_NESTED {
			children, err := vnl.ParseRouteAttr(attr.Value)
			Expect(err).ToNot(HaveOccurred())
			for _, child := range children {
				if child.Attr.Type == 0 {
					vni := vnl.NativeEndian().Uint32(child.Value)
					return &vni
				}
			}
		}
	}
	return nil
}

var _ = Describe("HandleRouteAdd()", func() {
	It("resolves the L3VNI and programs route and fdb entry", func() {
		netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
		expectVRF(netlinkMock, netlink.OperUp)

		var captured *vnl.NetlinkRequest
		netlinkMock.EXPECT().ExecuteNetlinkRequest(gomock.Any(), unix.NETLINK_ROUTE, uint16(0)).
			DoAndReturn(func(req *vnl.NetlinkRequest, _ int, _ uint16) ([][]byte, error) {
				captured = req
				return nil, nil
			})
		var fdbEntry *netlink.Neigh
		netlinkMock.EXPECT().NeighSet(gomock.Any()).DoAndReturn(func(n *netlink.Neigh) error {
			fdbEntry = n
			return nil
		})

		d := NewDispatcher(nl.NewManager(netlinkMock, logr.Discard()), testStore(), logr.Discard())
		Expect(d.HandleRouteAdd(1, evpnRouteBody())).To(Succeed())

		vni := encapOfRequest(captured)
		Expect(vni).ToNot(BeNil())
		Expect(*vni).To(Equal(uint32(5000)))

		Expect(fdbEntry).ToNot(BeNil())
		Expect(fdbEntry.LinkIndex).To(Equal(12))
		Expect(fdbEntry.HardwareAddr.String()).To(Equal("aa:bb:cc:dd:ee:ff"))
		Expect(fdbEntry.IP.String()).To(Equal("192.0.2.1"))
		Expect(fdbEntry.Flags).To(Equal(netlink.NTF_SELF))
	})
	It("leaves the route untunneled when the L3VNI is down", func() {
		netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
		expectVRF(netlinkMock, netlink.OperDown)

		var captured *vnl.NetlinkRequest
		netlinkMock.EXPECT().ExecuteNetlinkRequest(gomock.Any(), unix.NETLINK_ROUTE, uint16(0)).
			DoAndReturn(func(req *vnl.NetlinkRequest, _ int, _ uint16) ([][]byte, error) {
				captured = req
				return nil, nil
			})

		d := NewDispatcher(nl.NewManager(netlinkMock, logr.Discard()), testStore(), logr.Discard())
		Expect(d.HandleRouteAdd(1, evpnRouteBody())).To(Succeed())
		Expect(encapOfRequest(captured)).To(BeNil())
	})
	It("returns error for an unknown client vrf id", func() {
		netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
		d := NewDispatcher(nl.NewManager(netlinkMock, logr.Discard()), testStore(), logr.Discard())
		err := d.HandleRouteAdd(99, evpnRouteBody())
		Expect(err).To(HaveOccurred())
	})
	It("programs the default VRF without L3VNI resolution", func() {
		netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
		var captured *vnl.NetlinkRequest
		netlinkMock.EXPECT().ExecuteNetlinkRequest(gomock.Any(), unix.NETLINK_ROUTE, uint16(0)).
			DoAndReturn(func(req *vnl.NetlinkRequest, _ int, _ uint16) ([][]byte, error) {
				captured = req
				return nil, nil
			})

		body := evpnRouteBody()
		body.Nexthops[0].Flags = 0

		d := NewDispatcher(nl.NewManager(netlinkMock, logr.Discard()), testStore(), logr.Discard())
		Expect(d.HandleRouteAdd(0, body)).To(Succeed())
		Expect(encapOfRequest(captured)).To(BeNil())
	})
})

var _ = Describe("HandleRouteDelete()", func() {
	It("drops the fdb entry with the last route using it", func() {
		netlinkMock := mock_nl.NewMockToolkitInterface(mockctrl)
		expectVRF(netlinkMock, netlink.OperUp)
		netlinkMock.EXPECT().ExecuteNetlinkRequest(gomock.Any(), unix.NETLINK_ROUTE, uint16(0)).
			Return(nil, nil).Times(4)
		netlinkMock.EXPECT().NeighSet(gomock.Any()).Return(nil).Times(1)
		netlinkMock.EXPECT().NeighDel(gomock.Any()).Return(nil).Times(1)

		d := NewDispatcher(nl.NewManager(netlinkMock, logr.Discard()), testStore(), logr.Discard())

		first := evpnRouteBody()
		second := evpnRouteBody()
		second.Prefix = net.ParseIP("10.2.0.0").To4()

		// Two routes share the remote MAC, the entry is installed once.
		Expect(d.HandleRouteAdd(1, first)).To(Succeed())
		Expect(d.HandleRouteAdd(1, second)).To(Succeed())

		Expect(d.HandleRouteDelete(1, first)).To(Succeed())
		Expect(d.HandleRouteDelete(1, second)).To(Succeed())
	})
})
