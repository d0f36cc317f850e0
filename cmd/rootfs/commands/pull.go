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

package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/arcbox/rootfs/cache"
	"github.com/arcbox/rootfs/cmd/rootfs/commands/internal"
)

// PullCommand downloads a rootfs archive into the cache.
var PullCommand = &cli.Command{
	Name:      "pull",
	Usage:     "download a rootfs archive into the cache",
	ArgsUsage: "<distro>[:<version>]",
	Description: `Pull a distribution rootfs archive, verify it and store it in the cache.

By default the archive is resolved through the unified image index, which
covers all supported distributions. With --official the distribution's own
download server is used instead and the archive is verified against its
published checksum file; only some distributions provide this.
`,
	Flags: []cli.Flag{
		internal.ArchFlag,
		&cli.BoolFlag{
			Name:  "official",
			Usage: "download from the distribution's official server",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := internal.LoadConfig(cmd)
		if err != nil {
			return err
		}
		d, version, arch, err := internal.ParseImageArgs(cmd)
		if err != nil {
			return err
		}
		mgr, err := internal.NewManager(cfg)
		if err != nil {
			return err
		}

		var entry *cache.Entry
		if cmd.Bool("official") {
			entry, err = mgr.EnsureOfficial(ctx, d, version, arch, internal.Progress(cfg))
		} else {
			entry, err = mgr.Ensure(ctx, d, version, arch, internal.Mirror(cfg), internal.Progress(cfg))
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.Writer, entry.ArchivePath)
		return nil
	},
}
