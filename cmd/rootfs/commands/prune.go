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
)

// PruneCommand removes old cache entries.
var PruneCommand = &cli.Command{
	Name:  "prune",
	Usage: "remove old cached rootfs archives",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "keep",
			Usage: "number of entries to keep per distribution (defaults to the configured retention)",
			Value: -1,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := internal.LoadConfig(cmd)
		if err != nil {
			return err
		}
		keep := cfg.KeepLatest
		if k := cmd.Int("keep"); k >= 0 {
			keep = int(k)
		}

		mgr, err := internal.NewManager(cfg)
		if err != nil {
			return err
		}
		freed, err := mgr.Prune(ctx, keep)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.Writer, "freed %s\n", internal.FormatBytes(freed))
		return nil
	},
}
