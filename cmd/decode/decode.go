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

package decode

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-dshk/pkg/command"
	"jinr.ru/greenlab/go-dshk/pkg/config"
	"jinr.ru/greenlab/go-dshk/pkg/dshk"
)

const (
	FormatOptionName     = "format"
	TimeFormatOptionName = "time-format"
	ArchiveOptionName    = "archive"
	OffsetsOptionName    = "offsets"
	VerboseOptionName    = "verbose"
)

const (
	decodeExample = `
Print the records of a DS housekeeping file
# go-dshk decode ds_hk.bin

Print them as YAML with ITOS timestamps and keep them in the archive
# go-dshk decode ds_hk.bin --format yaml --time-format itos --archive pass-42
`
)

func NewCommand(cfg *config.Config) *cobra.Command {
	var format, timeFormat, archive string
	var offsets, verbose bool
	cmd := &cobra.Command{
		Use:     "decode FILE",
		Short:   "Decode a file of concatenated DS housekeeping packets",
		Example: decodeExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = cfg.OutputConfig.Format
			}
			if timeFormat == "" {
				timeFormat = cfg.OutputConfig.TimeFormat
			}
			outputFormat, err := dshk.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			tf, err := dshk.ParseTimeFormat(timeFormat)
			if err != nil {
				return err
			}
			opts := command.DecodeOptions{
				Format: outputFormat,
				TextOptions: dshk.TextOptions{
					TimeFormat: tf,
					Verbose:    verbose,
				},
				Archive: archive,
				Offsets: offsets,
			}
			return command.DecodeFile(cfg, args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&format, FormatOptionName, "", fmt.Sprintf("Output format. %s", dshk.HelpOutputFormats))
	cmd.Flags().StringVar(&timeFormat, TimeFormatOptionName, "", fmt.Sprintf("Time format. %s", dshk.HelpTimeFormats))
	cmd.Flags().StringVar(&archive, ArchiveOptionName, "", "Archive the records under this source name")
	cmd.Flags().BoolVar(&offsets, OffsetsOptionName, false, "Print the offset of every record")
	cmd.Flags().BoolVarP(&verbose, VerboseOptionName, "v", false, "Print raw header words and padding")

	return cmd
}
