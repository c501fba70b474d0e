package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

var defaultConfigFile = "/opt/route-agent/config.yaml"

type Config struct {
	// SocketPath is the unix socket the routing clients connect to.
	SocketPath string `yaml:"socketPath"`
	// VRFConfig maps a VRF name to its client-facing id and L3VNI.
	VRFConfig map[string]VRFConfig `yaml:"vrfConfig"`
	// DebugNetlink enables diagnostics of kernel-bound messages.
	DebugNetlink bool `yaml:"debugNetlink"`
}

type VRFConfig struct {
	// ID is the VRF id routing clients reference in their messages.
	// The default VRF has id 0 and does not need to be listed.
	ID uint32 `yaml:"id"`
	VNI int    `yaml:"vni"`
	RT  string `yaml:"rt"`
}

func LoadConfig() (*Config, error) {
	config := &Config{}

	configFile := defaultConfigFile
	if val := os.Getenv("ROUTE_AGENT_CONFIG"); val != "" {
		configFile = val
	}

	read, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	err = yaml.Unmarshal(read, &config)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling config file: %w", err)
	}

	return config, nil
}

// VRFByID resolves a client-facing VRF id to its name and configuration.
func (c *Config) VRFByID(id uint32) (string, *VRFConfig, bool) {
	for name, vrf := range c.VRFConfig {
		if vrf.ID == id {
			return name, &vrf, true
		}
	}
	return "", nil, false
}

// Store hands out the active configuration and lets the file watcher swap
// it atomically on reload.
type Store struct {
	mu     sync.RWMutex
	active *Config
}

func NewStore(initial *Config) *Store {
	return &Store{active: initial}
}

func (s *Store) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *Store) Set(c *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = c
}
