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

package records

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-dshk/pkg/command"
	"jinr.ru/greenlab/go-dshk/pkg/config"
	"jinr.ru/greenlab/go-dshk/pkg/dshk"
	"jinr.ru/greenlab/go-dshk/pkg/store"
)

const (
	FormatOptionName = "format"
)

// NewCommand creates the group of commands working with the record archive of a running server
func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Browse the record archive of a running server",
	}
	cmd.AddCommand(NewSourcesCommand(cfg))
	cmd.AddCommand(NewListCommand(cfg))
	cmd.AddCommand(NewGetCommand(cfg))
	cmd.AddCommand(NewDeleteCommand(cfg))
	return cmd
}

func NewSourcesCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources [SOURCE]",
		Short: "List archived sources or describe one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			var sources []*store.SourceInfo
			if len(args) == 1 {
				info, err := apiClient.Source(args[0])
				if err != nil {
					return err
				}
				sources = append(sources, info)
			} else {
				var err error
				sources, err = apiClient.Sources()
				if err != nil {
					return err
				}
			}
			for _, s := range sources {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\trecords: %d\tbytes: %d\tupdated: %s\n",
					s.Name, s.Records, s.Bytes, s.Updated.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	return cmd
}

func newPrinter(cmd *cobra.Command, cfg *config.Config, format string) (*dshk.Printer, error) {
	if format == "" {
		format = cfg.OutputConfig.Format
	}
	outputFormat, err := dshk.ParseOutputFormat(format)
	if err != nil {
		return nil, err
	}
	tf, err := dshk.ParseTimeFormat(cfg.OutputConfig.TimeFormat)
	if err != nil {
		return nil, err
	}
	return dshk.NewPrinter(cmd.OutOrStdout(), outputFormat, dshk.TextOptions{TimeFormat: tf}), nil
}

func NewListCommand(cfg *config.Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list SOURCE",
		Short: "Print all records of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, cfg, format)
			if err != nil {
				return err
			}
			apiClient := command.NewApiClient(cfg)
			records, err := apiClient.Records(args[0])
			if err != nil {
				return err
			}
			for _, rec := range records {
				if err := printer.Print(rec); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, FormatOptionName, "", fmt.Sprintf("Output format. %s", dshk.HelpOutputFormats))
	return cmd
}

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "get SOURCE INDEX",
		Short: "Print one record of a source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("Wrong record index %q", args[1])
			}
			printer, err := newPrinter(cmd, cfg, format)
			if err != nil {
				return err
			}
			apiClient := command.NewApiClient(cfg)
			rec, err := apiClient.Record(args[0], index)
			if err != nil {
				return err
			}
			return printer.Print(rec)
		},
	}
	cmd.Flags().StringVar(&format, FormatOptionName, "", fmt.Sprintf("Output format. %s", dshk.HelpOutputFormats))
	return cmd
}

func NewDeleteCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete SOURCE",
		Short: "Drop a source from the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			return apiClient.DeleteSource(args[0])
		},
	}
	return cmd
}
