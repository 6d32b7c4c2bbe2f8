package config

// PeerConfig names a remote worker and the address to reach it.
// Example YAML:
//
//	peers:
//	  - name: "bob"
//	    address: "tcp://10.0.0.2:7711"
//	  - name: "charlie"
//	    address: "ws://10.0.0.3:8777"
type PeerConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
}

// Peer looks up a configured peer by name.
func (c *Config) Peer(name string) (PeerConfig, bool) {
	for _, p := range c.Peers {
		if p.Name == name {
			return p, true
		}
	}
	return PeerConfig{}, false
}
