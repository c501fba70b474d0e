package frr

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

const defaultVtyshPath = "/usr/bin/vtysh"

// Cli queries the routing suite over vtysh. All show commands request
// JSON output.
type Cli struct {
	binaryPath string

	// execute is swapped in tests.
	execute func(binary string, args []string) ([]byte, error)
}

func NewCli() *Cli {
	return &Cli{
		binaryPath: defaultVtyshPath,
		execute:    runVtysh,
	}
}

func runVtysh(binary string, args []string) ([]byte, error) {
	cmd := exec.Command(binary, "-c", strings.Join(args, " "))
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("error executing %s -c %q: %w", binary, strings.Join(args, " "), err)
	}
	return output, nil
}

// ExecuteWithJSON runs a show command with JSON output appended.
func (c *Cli) ExecuteWithJSON(args []string) ([]byte, error) {
	return c.execute(c.binaryPath, append(args, "json"))
}

// ShowVRFVnis returns the VRF to L3VNI bindings known to the routing
// suite.
func (c *Cli) ShowVRFVnis() (*VRFVniList, error) {
	data, err := c.ExecuteWithJSON([]string{"show", "vrf", "vni"})
	if err != nil {
		return nil, err
	}
	list := &VRFVniList{}
	if err := json.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("error unmarshalling vrf vni output: %w", err)
	}
	return list, nil
}

// ShowEVPNVnis returns the EVPN VNI state including the local router MAC
// per L3VNI.
func (c *Cli) ShowEVPNVnis() (map[string]EVPNVni, error) {
	data, err := c.ExecuteWithJSON([]string{"show", "evpn", "vni"})
	if err != nil {
		return nil, err
	}
	vnis := map[string]EVPNVni{}
	if err := json.Unmarshal(data, &vnis); err != nil {
		return nil, fmt.Errorf("error unmarshalling evpn vni output: %w", err)
	}
	return vnis, nil
}
