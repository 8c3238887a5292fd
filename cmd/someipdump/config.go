/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config holds someipdump's static options: the ports to treat as carrying
// SOME/IP traffic, and the set of service ids to print (empty means print
// everything).
type Config struct {
	// Ports lists the UDP/TCP ports someipdump demuxes as SOME/IP. Defaults
	// to the reserved SOME/IP-SD multicast port plus the general unicast
	// port range convention.
	Ports []uint16 `yaml:"ports"`
	// ServiceIDs, if non-empty, restricts output to these service ids.
	ServiceIDs []uint16 `yaml:"service_ids"`
	// TPRetainSeconds is how long, in seconds, a SOME/IP-TP stream may sit incomplete before
	// someipdump evicts it from the reassembly pool.
	TPRetainSeconds int `yaml:"tp_retain_seconds"`
}

// DefaultConfig returns the configuration someipdump uses absent a -config flag.
func DefaultConfig() *Config {
	return &Config{
		Ports:           []uint16{30490, 30491, 30501},
		TPRetainSeconds: 5,
	}
}

// ReadConfig loads a Config from a YAML file.
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) wantsService(id uint16) bool {
	if len(c.ServiceIDs) == 0 {
		return true
	}
	for _, s := range c.ServiceIDs {
		if s == id {
			return true
		}
	}
	return false
}

func (c *Config) wantsPort(port uint16) bool {
	for _, p := range c.Ports {
		if p == port {
			return true
		}
	}
	return false
}
