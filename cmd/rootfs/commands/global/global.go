/*
   Copyright The Arcbox Authors.

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

package global

import (
	"github.com/urfave/cli/v3"

	"github.com/arcbox/rootfs/config"
)

// Global flags for the rootfs CLI

const (
	RootFlag   = "root"
	MirrorFlag = "mirror"
	ConfigFlag = "config"
	DebugFlag  = "debug"
	QuietFlag  = "quiet"
)

var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:    RootFlag,
		Usage:   "cache root directory (defaults to the per-user data directory)",
		Sources: cli.EnvVars("ARCBOX_ROOTFS_ROOT"),
	},
	&cli.StringFlag{
		Name:    MirrorFlag,
		Aliases: []string{"m"},
		Usage:   "image index mirror: official, tuna, ustc, bfsu or a custom base URL",
		Sources: cli.EnvVars("ARCBOX_ROOTFS_MIRROR"),
	},
	&cli.StringFlag{
		Name:  ConfigFlag,
		Usage: "path to the TOML configuration file",
		Value: config.DefaultConfigPath,
	},
	&cli.BoolFlag{
		Name:  DebugFlag,
		Usage: "enable debug output",
	},
	&cli.BoolFlag{
		Name:    QuietFlag,
		Aliases: []string{"q"},
		Usage:   "suppress progress output",
	},
}
