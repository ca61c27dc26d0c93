/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package config holds the settings of the debugging server: where it listens and which tabs
// every session starts with. Values come from command-line flags, with RDP_* environment variables
// supplying the defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/microsoft/devtools-rdp/internal/devtools"
)

const (
	RDP_ADDRESS      = "RDP_ADDRESS"      // Address of the RDP (TCP) listener
	RDP_HTTP_ADDRESS = "RDP_HTTP_ADDRESS" // Address of the discovery/WebSocket listener, empty to disable
	RDP_TABS_FILE    = "RDP_TABS_FILE"    // YAML file listing the tabs each session starts with

	DefaultAddress     = "127.0.0.1:6080"
	DefaultHTTPAddress = "127.0.0.1:6081"

	defaultTabTitle = "New Tab"
	defaultTabURL   = "about:blank"
)

var (
	ErrInvalidAddress = errors.New("invalid listen address")
	ErrInvalidTabs    = errors.New("invalid tabs file")
)

type Config struct {
	Address     string
	HTTPAddress string
	TabsFile    string
}

// TabsFile is the layout of the YAML file named by Config.TabsFile.
type TabsFile struct {
	Tabs []devtools.TabSeed `yaml:"tabs"`
}

// AddFlags registers the server flags on fs. Flag defaults are taken from the environment when set.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Address, "address", envOrDefault(RDP_ADDRESS, DefaultAddress), "Address (host:port) the RDP server listens on for debugger connections.")
	fs.StringVar(&c.HTTPAddress, "http-address", envOrDefault(RDP_HTTP_ADDRESS, DefaultHTTPAddress), "Address (host:port) for the discovery and WebSocket endpoints. Set to an empty string to disable.")
	fs.StringVar(&c.TabsFile, "tabs-file", os.Getenv(RDP_TABS_FILE), "YAML file listing the tabs every debugging session starts with. A single blank tab is used when not set.")
}

// Validate checks the listen addresses.
func (c *Config) Validate() error {
	if err := validateAddress(c.Address); err != nil {
		return fmt.Errorf("--address: %w", err)
	}
	if c.HTTPAddress != "" {
		if err := validateAddress(c.HTTPAddress); err != nil {
			return fmt.Errorf("--http-address: %w", err)
		}
		if c.HTTPAddress == c.Address && !hasEphemeralPort(c.Address) {
			return fmt.Errorf("--http-address: %w: '%s' is already used by the RDP listener", ErrInvalidAddress, c.HTTPAddress)
		}
	}
	return nil
}

// Tabs returns the tabs sessions start with: the contents of the tabs file, or one blank tab.
func (c *Config) Tabs() ([]devtools.TabSeed, error) {
	if c.TabsFile == "" {
		return []devtools.TabSeed{{Title: defaultTabTitle, URL: defaultTabURL}}, nil
	}
	return LoadTabs(c.TabsFile)
}

// LoadTabs reads and validates a tabs YAML file.
func LoadTabs(path string) ([]devtools.TabSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read tabs file: %w", err)
	}
	return ParseTabs(data)
}

func ParseTabs(data []byte) ([]devtools.TabSeed, error) {
	var file TabsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTabs, err)
	}
	if len(file.Tabs) == 0 {
		return nil, fmt.Errorf("%w: at least one tab is required", ErrInvalidTabs)
	}
	for i := range file.Tabs {
		if file.Tabs[i].URL == "" {
			return nil, fmt.Errorf("%w: tabs[%d] is missing a url", ErrInvalidTabs, i)
		}
		if file.Tabs[i].Title == "" {
			file.Tabs[i].Title = file.Tabs[i].URL
		}
	}
	return file.Tabs, nil
}

func validateAddress(address string) error {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return fmt.Errorf("%w: '%s' is not an IP address", ErrInvalidAddress, host)
	}
	if _, portErr := strconv.ParseUint(port, 10, 16); portErr != nil {
		return fmt.Errorf("%w: port '%s' is not valid", ErrInvalidAddress, port)
	}
	return nil
}

func hasEphemeralPort(address string) bool {
	_, port, err := net.SplitHostPort(address)
	return err == nil && port == "0"
}

func envOrDefault(key, defaultVal string) string {
	if val, found := os.LookupEnv(key); found {
		return val
	}
	return defaultVal
}
