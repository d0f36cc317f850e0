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

package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	rootfs "github.com/arcbox/rootfs"
	"github.com/arcbox/rootfs/cmd/rootfs/commands/global"
	"github.com/arcbox/rootfs/config"
	"github.com/arcbox/rootfs/distro"
	"github.com/arcbox/rootfs/fetch"
	"github.com/arcbox/rootfs/simplestreams"
	rhttp "github.com/arcbox/rootfs/util/http"
)

// LoadConfig reads the TOML config file and overlays the global CLI flags
// on top of it.
func LoadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.NewConfigFromToml(cmd.String(global.ConfigFlag))
	if err != nil {
		return nil, err
	}
	if root := cmd.String(global.RootFlag); root != "" {
		cfg.RootPath = root
	}
	if mirror := cmd.String(global.MirrorFlag); mirror != "" {
		cfg.Mirror = mirror
	}
	if cmd.Bool(global.QuietFlag) {
		cfg.Quiet = true
	}
	if cfg.RootPath == "" {
		cfg.RootPath = rootfs.DefaultRootPath()
	}
	return cfg, nil
}

// NewManager builds a Manager from the loaded config.
func NewManager(cfg *config.Config) (*rootfs.Manager, error) {
	client := rhttp.NewRetryableClient(cfg.RetryableHTTPClientConfig)
	return rootfs.New(cfg.RootPath, rootfs.WithHTTPClient(client))
}

// Mirror returns the configured index mirror.
func Mirror(cfg *config.Config) simplestreams.Mirror {
	return simplestreams.Mirror(cfg.Mirror)
}

// ParseImageArgs parses the "<distro>[:<version>]" argument and the --arch
// flag of a command.
func ParseImageArgs(cmd *cli.Command) (distro.Distro, distro.Version, distro.Arch, error) {
	spec := cmd.Args().First()
	if spec == "" {
		return "", "", "", fmt.Errorf("please provide a distribution, e.g. \"alpine:3.21\"")
	}
	d, version, err := distro.Parse(spec)
	if err != nil {
		return "", "", "", err
	}
	arch, err := distro.ParseArch(cmd.String("arch"))
	if err != nil {
		return "", "", "", err
	}
	return d, version, arch, nil
}

// ArchFlag is the shared --arch flag.
var ArchFlag = &cli.StringFlag{
	Name:  "arch",
	Usage: "target architecture (aarch64 or x86_64, defaults to the host)",
}

// Progress returns a progress callback that renders a carriage-return
// progress line on stderr, or nil in quiet mode. Redraws are throttled so
// small read chunks do not flood the terminal.
func Progress(cfg *config.Config) fetch.Progress {
	if cfg.Quiet {
		return nil
	}
	var lastDraw time.Time
	return func(downloaded, total int64) {
		done := total > 0 && downloaded == total
		if !done && time.Since(lastDraw) < 100*time.Millisecond {
			return
		}
		lastDraw = time.Now()
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\rdownloading %s / %s (%3d%%)", FormatBytes(downloaded), FormatBytes(total), downloaded*100/total)
		} else {
			fmt.Fprintf(os.Stderr, "\rdownloading %s", FormatBytes(downloaded))
		}
		if done {
			fmt.Fprintln(os.Stderr)
		}
	}
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
