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

	"github.com/arcbox/rootfs/cmd/rootfs/commands/internal"
	"github.com/arcbox/rootfs/provider"
	"github.com/arcbox/rootfs/simplestreams"
	rhttp "github.com/arcbox/rootfs/util/http"
)

// ResolveCommand resolves the download URL for a rootfs without fetching it.
var ResolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "resolve the download URL for a rootfs archive",
	ArgsUsage: "<distro>[:<version>]",
	Flags: []cli.Flag{
		internal.ArchFlag,
		&cli.BoolFlag{
			Name:  "official",
			Usage: "resolve against the distribution's official server",
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

		if cmd.Bool("official") {
			p, err := provider.Official(d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Writer, "url:      %s\n", p.RootfsURL(version, arch))
			fmt.Fprintf(cmd.Writer, "checksum: %s (%s)\n", p.ChecksumURL(version, arch), p.HashAlgorithm())
			return nil
		}

		client := simplestreams.NewClient(internal.Mirror(cfg), rhttp.NewRetryableClient(cfg.RetryableHTTPClientConfig))
		resolved, err := client.Resolve(ctx, d, version, arch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.Writer, "url:      %s\n", resolved.URL)
		fmt.Fprintf(cmd.Writer, "sha256:   %s\n", resolved.SHA256)
		fmt.Fprintf(cmd.Writer, "size:     %s\n", internal.FormatBytes(resolved.Size))
		fmt.Fprintf(cmd.Writer, "filename: %s\n", resolved.Filename)
		return nil
	},
}
