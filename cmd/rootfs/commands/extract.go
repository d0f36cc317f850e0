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

// ExtractCommand unpacks a cached rootfs into a directory, pulling it
// first when it is not cached yet.
var ExtractCommand = &cli.Command{
	Name:      "extract",
	Usage:     "extract a rootfs archive into a directory",
	ArgsUsage: "<distro>[:<version>] <target-dir>",
	Flags: []cli.Flag{
		internal.ArchFlag,
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
		target := cmd.Args().Get(1)
		if target == "" {
			return fmt.Errorf("please provide a target directory")
		}

		mgr, err := internal.NewManager(cfg)
		if err != nil {
			return err
		}
		entry, err := mgr.Ensure(ctx, d, version, arch, internal.Mirror(cfg), internal.Progress(cfg))
		if err != nil {
			return err
		}
		if err := entry.ExtractTo(target); err != nil {
			return err
		}

		fmt.Fprintln(cmd.Writer, target)
		return nil
	},
}
