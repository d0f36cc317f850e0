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
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/arcbox/rootfs/cmd/rootfs/commands/internal"
)

// ListCommand lists the cached rootfs entries.
var ListCommand = &cli.Command{
	Name:  "list",
	Usage: "list cached rootfs archives",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := internal.LoadConfig(cmd)
		if err != nil {
			return err
		}
		mgr, err := internal.NewManager(cfg)
		if err != nil {
			return err
		}
		entries, err := mgr.List()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.Writer, 4, 8, 4, ' ', 0)
		fmt.Fprintln(w, "DISTRO\tVERSION\tARCH\tSIZE\tDOWNLOADED")
		for _, e := range entries {
			downloaded := "unknown"
			if ts, err := strconv.ParseInt(e.Metadata.DownloadedAt, 10, 64); err == nil {
				downloaded = time.Unix(ts, 0).UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Metadata.Distro,
				e.Metadata.Version,
				e.Metadata.Arch,
				internal.FormatBytes(e.Metadata.Size),
				downloaded,
			)
		}
		return w.Flush()
	},
}
