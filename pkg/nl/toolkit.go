//nolint:wrapcheck
package nl

import (
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netlink/nl"
)

//go:generate mockgen -destination ./mock/mock_nl.go . ToolkitInterface
type ToolkitInterface interface {
	LinkByName(name string) (netlink.Link, error)
	LinkList() ([]netlink.Link, error)
	NeighList(linkIndex int, family int) ([]netlink.Neigh, error)
	NeighSet(neigh *netlink.Neigh) error
	NeighDel(neigh *netlink.Neigh) error
	ExecuteNetlinkRequest(req *nl.NetlinkRequest, sockType int, resType uint16) ([][]byte, error)
}

type Toolkit struct{}

func (*Toolkit) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

func (*Toolkit) LinkList() ([]netlink.Link, error) {
	return netlink.LinkList()
}

func (*Toolkit) NeighList(linkIndex, family int) ([]netlink.Neigh, error) {
	return netlink.NeighList(linkIndex, family)
}

func (*Toolkit) NeighSet(neigh *netlink.Neigh) error {
	return netlink.NeighSet(neigh)
}

func (*Toolkit) NeighDel(neigh *netlink.Neigh) error {
	return netlink.NeighDel(neigh)
}

func (*Toolkit) ExecuteNetlinkRequest(req *nl.NetlinkRequest, sockType int, resType uint16) ([][]byte, error) {
	return req.Execute(sockType, resType)
}
