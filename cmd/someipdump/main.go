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

// Command someipdump is a poor man's tshark for SOME/IP: it decodes SOME/IP
// messages (reassembling SOME/IP-TP segments and parsing Service Discovery
// payloads) out of a pcap/pcapng capture and prints a summary table.
package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

// rootCmd is someipdump's entry point, structured the way the corpus's own
// cobra-based tools structure their root command.
var rootCmd = &cobra.Command{
	Use:   "someipdump [file...]",
	Short: "dump SOME/IP messages parsed from one or more packet captures",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg := DefaultConfig()
		if configPath != "" {
			loaded, err := ReadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if len(args) == 1 {
			return run(cfg, args[0], verbose)
		}
		return runAll(cfg, args, verbose)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a someipdump YAML config")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "dump full Service Discovery contents for SD messages")
}

func main() {
	log.SetLevel(log.InfoLevel)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
