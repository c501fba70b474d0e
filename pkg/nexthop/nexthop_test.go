package nexthop

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVxlanVNI(t *testing.T) {
	var nh Nexthop
	require.NoError(t, nh.SetVxlanVNI(5000))
	assert.Equal(t, EncapVXLAN, nh.EncapType)
	assert.Equal(t, uint32(5000), nh.Vxlan.VNI)

	assert.Error(t, nh.SetVxlanVNI(0))
	assert.Error(t, nh.SetVxlanVNI(MaxVNI+1))
	require.NoError(t, nh.SetVxlanVNI(MaxVNI))
}

func TestSetVxlanVNIKeepsRemoteMAC(t *testing.T) {
	var nh Nexthop
	mac, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	require.NoError(t, nh.SetRemoteMAC(mac))

	require.NoError(t, nh.SetVxlanVNI(5000))
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", nh.Vxlan.MAC().String())
}

func TestSetRemoteMACLastWriteWins(t *testing.T) {
	var nh Nexthop
	first, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	second, err := net.ParseMAC("11:22:33:44:55:66")
	require.NoError(t, err)

	require.NoError(t, nh.SetRemoteMAC(first))
	require.NoError(t, nh.SetRemoteMAC(second))
	assert.Equal(t, "11:22:33:44:55:66", nh.Vxlan.MAC().String())

	assert.Error(t, nh.SetRemoteMAC(net.HardwareAddr{0x01, 0x02}))
}

func TestReadyForInstall(t *testing.T) {
	var nh Nexthop
	assert.True(t, nh.ReadyForInstall(), "plain nexthop needs no encap payload")

	require.NoError(t, nh.SetVxlanVNI(5000))
	assert.False(t, nh.ReadyForInstall(), "VXLAN nexthop without remote MAC must not install")

	mac, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	require.NoError(t, nh.SetRemoteMAC(mac))
	assert.True(t, nh.ReadyForInstall())
}

func TestVxlanEncapString(t *testing.T) {
	encap := VxlanEncap{VNI: 5000}
	mac, err := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	require.NoError(t, encap.SetMAC(mac))
	assert.Equal(t, "VNI:5000 RMAC:aa:bb:cc:dd:ee:ff", encap.String())
}
