package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"mpihole/internal/pihole"
)

// ErrConfigNotFound is returned when the server list file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

const serverListPerm = 0o600

// PiServer is one Pi-hole entry of the server list.
type PiServer struct {
	BaseURL  string `mapstructure:"base_url" json:"base_url"`
	Password string `mapstructure:"password" json:"password"`
	Insecure bool   `mapstructure:"insecure" json:"insecure,omitempty"`
}

// NewPiServer normalizes the base URL the way the API client expects it.
func NewPiServer(baseURL, password string) PiServer {
	return PiServer{BaseURL: pihole.NormalizeBaseURL(baseURL), Password: password}
}

// Client builds an API client for the server.
func (s PiServer) Client() *pihole.Client {
	return pihole.New(pihole.Config{BaseURL: s.BaseURL, Password: s.Password, Insecure: s.Insecure})
}

// PiConfig is the list of Pi-hole servers the tools act upon.
type PiConfig struct {
	Servers []PiServer `mapstructure:"servers" json:"servers"`
}

func (c *PiConfig) AddServer(s PiServer) {
	c.Servers = append(c.Servers, s)
}

// newListViper returns a viper instance bound to path. The file format
// follows the extension (.json, .yaml, .toml).
func newListViper(path string) (*viper.Viper, error) {
	if filepath.Ext(path) == "" {
		return nil, fmt.Errorf("server list %q needs a file extension such as .json", path)
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigPermissions(serverListPerm)
	return v, nil
}

// LoadServers reads the server list at path.
func LoadServers(path string) (*PiConfig, error) {
	v, err := newListViper(path)
	if err != nil {
		return nil, err
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("load %s: %w", path, ErrConfigNotFound)
		}
		return nil, fmt.Errorf("deserialize %s: %w", path, err)
	}

	var cfg PiConfig
	if err := v.UnmarshalKey("servers", &cfg.Servers); err != nil {
		return nil, fmt.Errorf("deserialize servers in %s: %w", path, err)
	}
	for i := range cfg.Servers {
		cfg.Servers[i].BaseURL = pihole.NormalizeBaseURL(cfg.Servers[i].BaseURL)
	}
	return &cfg, nil
}

// SaveServers writes the list to path, readable by the owner only.
func SaveServers(path string, c *PiConfig) error {
	v, err := newListViper(path)
	if err != nil {
		return err
	}
	servers := make([]map[string]any, 0, len(c.Servers))
	for _, s := range c.Servers {
		servers = append(servers, map[string]any{
			"base_url": s.BaseURL,
			"password": s.Password,
			"insecure": s.Insecure,
		})
	}
	v.Set("servers", servers)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// WriteConfigAs keeps the mode of an existing file.
	if err := os.Chmod(path, serverListPerm); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
