/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package generate

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-dshk/pkg/command"
	"jinr.ru/greenlab/go-dshk/pkg/dshk"
	"jinr.ru/greenlab/go-dshk/pkg/layers"
)

const (
	CountOptionName        = "count"
	NoTimeHeaderOptionName = "no-time-header"
	ApidOptionName         = "apid"
	FilenameOptionName     = "filename"
	StartOptionName        = "start"
)

func NewCommand() *cobra.Command {
	opts := dshk.GenerateOptions{}
	var noTimeHeader bool
	cmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "Write a file of synthetic DS housekeeping packets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TimeHeader = !noTimeHeader
			return command.Generate(args[0], opts)
		},
	}
	cmd.Flags().IntVar(&opts.Count, CountOptionName, 10, "Number of records")
	cmd.Flags().BoolVar(&noTimeHeader, NoTimeHeaderOptionName, false, "Write records without the cFE time header")
	cmd.Flags().Uint16Var(&opts.ApplicationID, ApidOptionName, dshk.DefaultApplicationID, "Application ID, 11 bits")
	cmd.Flags().StringVar(&opts.FilterFilename, FilenameOptionName, dshk.DefaultFilterFilename, "Filter table file name")
	cmd.Flags().Uint32Var(&opts.StartSeconds, StartOptionName, 0, fmt.Sprintf("Seconds since %s of the first record", layers.Epoch.Format(time.RFC3339Nano)))

	return cmd
}
