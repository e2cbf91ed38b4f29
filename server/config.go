package server

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/janelia-flyem/ngportal/compiler"
	"github.com/janelia-flyem/ngportal/portal"
)

const (
	// DefaultWebAddress is the default address of the portal web server.
	DefaultWebAddress = "localhost:8000"

	// DefaultReadTimeout and DefaultWriteTimeout bound each request, in seconds.
	DefaultReadTimeout  = 30
	DefaultWriteTimeout = 30
)

// Config is the parsed TOML server configuration.
//
//	[server]
//	httpAddress = "localhost:8000"
//	viewerHost = "https://neuroglancer-demo.appspot.com/"
//	corsDomains = ["https://openorganelle.janelia.org"]
//
//	[catalog]
//	ref = "file:///data/catalog"
//	concurrency = 8
//
//	[logging]
//	logfile = "ngportal.log"
//	max_log_size = 500 # MB
//	max_log_age = 30   # days
type Config struct {
	Server  serverConfig
	Catalog catalogConfig
	Logging portal.LogConfig
}

type serverConfig struct {
	HTTPAddress  string   `toml:"httpAddress"`
	ViewerHost   string   `toml:"viewerHost"`
	CorsDomains  []string `toml:"corsDomains"`
	ReadTimeout  int      `toml:"readTimeout"`
	WriteTimeout int      `toml:"writeTimeout"`
}

type catalogConfig struct {
	Ref         string `toml:"ref"`
	Concurrency int    `toml:"concurrency"`
}

// DefaultConfig returns the configuration used for any setting a file leaves out.
func DefaultConfig() *Config {
	return &Config{
		Server: serverConfig{
			HTTPAddress:  DefaultWebAddress,
			ViewerHost:   compiler.DefaultViewerHost,
			CorsDomains:  []string{"*"},
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
	}
}

// Some settings in the TOML can be given as relative paths.
// This function converts them in-place to absolute paths,
// assuming the given paths were relative to the TOML file's own directory.
func (c *Config) convertPathsToAbsolute(configPath string) error {
	configDir := filepath.Dir(configPath)

	// [logging].logfile
	if c.Logging.Logfile != "" {
		abs, err := portal.ConvertToAbsolute(c.Logging.Logfile, configDir)
		if err != nil {
			return fmt.Errorf("error converting logfile setting to absolute path: %v", err)
		}
		c.Logging.Logfile = abs
	}
	return nil
}

func (c *Config) validate() error {
	if c.Catalog.Ref == "" {
		return fmt.Errorf("[catalog] ref must give the bucket URL of the dataset catalog")
	}
	if c.Server.ViewerHost == "" {
		return fmt.Errorf("[server] viewerHost must not be empty")
	}
	return nil
}

// CompilerOptions returns the link compiler options for this configuration.
func (c *Config) CompilerOptions() compiler.Options {
	opts := compiler.DefaultOptions()
	opts.ViewerHost = c.Server.ViewerHost
	return opts
}

func (c *Config) readTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeout) * time.Second
}

func (c *Config) writeTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeout) * time.Second
}

// LoadConfig loads server configuration from a TOML file.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("no server TOML configuration file provided")
	}
	c := DefaultConfig()
	md, err := toml.DecodeFile(filename, c)
	if err != nil {
		return nil, fmt.Errorf("could not decode TOML config: %v", err)
	}
	for _, key := range md.Undecoded() {
		portal.Warningf("unknown setting %q in config %s\n", key.String(), filename)
	}
	if err := c.convertPathsToAbsolute(filename); err != nil {
		return nil, fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %v", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	portal.Debugf("config from %s: %+v\n", filename, *c)
	return c, nil
}
