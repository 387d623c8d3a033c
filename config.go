package cratedock

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ConfigFile is the protocol-mandated name of the config document, resolved
// by clients at <base_url>/config.json.
const ConfigFile = "config.json"

// downloadSuffix is appended to the base URL to form the download template.
// The {crate} and {version} markers are substituted by the client.
const downloadSuffix = "crates/{crate}/{version}/download"

// Config is the registry's config document. DL and API are the fields the
// client protocol defines; the rest are registry-manager extensions, which
// clients ignore. Written once by Initialize and never merged: re-init with
// force replaces the whole document.
type Config struct {
	DL       string   `json:"dl"`
	API      string   `json:"api,omitempty"`
	BaseURL  string   `json:"base_url"`
	Defaults []string `json:"defaults,omitempty"`
}

// DownloadURL substitutes a package name and version into the download
// template.
func (c Config) DownloadURL(name, version string) string {
	return strings.NewReplacer("{crate}", name, "{version}", version).Replace(c.DL)
}

func newConfig(baseURL string, opts *initOptions) (Config, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return Config{}, fmt.Errorf("parse base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	base := baseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	cfg := Config{
		DL:       base + downloadSuffix,
		BaseURL:  baseURL,
		Defaults: opts.defaults,
	}
	if opts.api {
		cfg.API = strings.TrimSuffix(baseURL, "/")
	}
	return cfg, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, ErrNotInitialized
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
