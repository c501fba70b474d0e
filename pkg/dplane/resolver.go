package dplane

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/telekom/das-schiff-route-agent/pkg/config"
	"github.com/telekom/das-schiff-route-agent/pkg/nexthop"
	"github.com/telekom/das-schiff-route-agent/pkg/nl"
)

// VRFLister is the kernel view the resolver works against.
type VRFLister interface {
	GetL3ByName(name string) (*nl.VRFInformation, error)
}

// Resolver attaches the L3VNI of a VRF to nexthops that carry a remote
// router MAC. It decides the VNI and nothing else: a remote MAC learned
// from the routing client is passed through untouched.
type Resolver struct {
	kernel VRFLister
	logger logr.Logger
}

func NewResolver(kernel VRFLister, logger logr.Logger) *Resolver {
	return &Resolver{
		kernel: kernel,
		logger: logger.WithName("l3vni-resolver"),
	}
}

// ResolveL3VNI stamps the configured VNI onto every nexthop with a remote
// MAC and returns the VRF's kernel state. When the VXLAN device is absent
// or operationally down the nexthops are left without encapsulation, so
// the route falls back to plain forwarding instead of failing.
func (r *Resolver) ResolveL3VNI(vrfName string, vrfCfg *config.VRFConfig, nhs []nexthop.Nexthop) (*nl.VRFInformation, error) {
	info, err := r.kernel.GetL3ByName(vrfName)
	if err != nil {
		return nil, fmt.Errorf("error looking up VRF %s: %w", vrfName, err)
	}

	vni := vrfCfg.VNI
	if vni == 0 {
		vni = info.VNI
	}
	if vni == 0 {
		r.logger.V(1).Info("VRF has no L3VNI, leaving nexthops untunneled", "vrf", vrfName)
		return info, nil
	}
	if info.VNI != 0 && vni != info.VNI {
		return nil, fmt.Errorf("configured VNI %d of VRF %s does not match device VNI %d", vni, vrfName, info.VNI)
	}
	if !info.OperUp {
		r.logger.V(1).Info("L3VNI operationally down, leaving nexthops untunneled", "vrf", vrfName, "vni", vni)
		return info, nil
	}

	for i := range nhs {
		if !nhs[i].Vxlan.HasRemoteMAC() {
			continue
		}
		if err := nhs[i].SetVxlanVNI(uint32(vni)); err != nil {
			return nil, fmt.Errorf("error resolving VNI for nexthop %d: %w", i, err)
		}
	}
	return info, nil
}
