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

package dshk

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-dshk/pkg/layers"
)

type TimeFormat string

const (
	TimeFormatRFC3339 TimeFormat = "rfc3339"
	TimeFormatITOS    TimeFormat = "itos"
)

type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatJSON OutputFormat = "json"
)

const HelpOutputFormats = "Must be one of: text, yaml, json."
const HelpTimeFormats = "Must be one of: rfc3339, itos."

// ParseOutputFormat ...
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputFormatText, OutputFormatYAML, OutputFormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("Wrong output format %q. %s", s, HelpOutputFormats)
}

// ParseTimeFormat ...
func ParseTimeFormat(s string) (TimeFormat, error) {
	switch f := TimeFormat(s); f {
	case TimeFormatRFC3339, TimeFormatITOS:
		return f, nil
	}
	return "", fmt.Errorf("Wrong time format %q. %s", s, HelpTimeFormats)
}

// Format renders a time in the given format
func (f TimeFormat) Format(t time.Time) string {
	if f == TimeFormatITOS {
		return layers.ITOSFormat(t)
	}
	return t.Format(time.RFC3339Nano)
}

// TextOptions ...
type TextOptions struct {
	TimeFormat TimeFormat
	// Verbose adds the raw header words, the alignment byte and the raw file name
	Verbose bool
}

// WriteText renders a record as "Name: value" lines
func WriteText(w io.Writer, rec *Record, opts TextOptions) error {
	bw := bufio.NewWriter(w)
	p := func(format string, v ...interface{}) {
		fmt.Fprintf(bw, format+"\n", v...)
	}

	pri := &rec.Primary
	p("TelemetryHeader:")
	p("PrimaryHeader:")
	if opts.Verbose {
		p("StreamID: 0x%04x", pri.StreamID())
		p("Sequence: 0x%04x", pri.SequenceWord())
	}
	p("ApplicationID: %d", pri.ApplicationID)
	p("HasSecondaryHeader: %t", pri.HasSecondaryHeader)
	p("PacketType: %s", pri.PacketType)
	p("CCSDSVersion: %s", pri.Version)
	p("SequenceCount: %d", pri.SequenceCount)
	p("SegmentationFlags: %d", pri.SegmentationFlags)
	p("Length: %d", pri.Length)
	if rec.Secondary != nil {
		p("SecondaryHeader:")
		p("Seconds: %d", rec.Secondary.Seconds)
		p("Subseconds: %d", rec.Secondary.Subseconds)
		p("Date: %s", opts.TimeFormat.Format(rec.Secondary.Time()))
	} else {
		p("No SecondaryHeader")
	}

	hk := &rec.Payload
	p("Payload:")
	p("CmdAcceptedCounter: %d", hk.CmdAcceptedCounter)
	p("CmdRejectedCounter: %d", hk.CmdRejectedCounter)
	p("DestTblLoadCounter: %d", hk.DestTblLoadCounter)
	p("DestTblErrCounter: %d", hk.DestTblErrCounter)
	p("FilterTblLoadCounter: %d", hk.FilterTblLoadCounter)
	p("FilterTblErrCounter: %d", hk.FilterTblErrCounter)
	p("AppEnableState: %d", hk.AppEnableState)
	if opts.Verbose {
		p("Spare8: %d", hk.Spare8)
	}
	p("FileWriteCounter: %d", hk.FileWriteCounter)
	p("FileWriteErrCounter: %d", hk.FileWriteErrCounter)
	p("FileUpdateCounter: %d", hk.FileUpdateCounter)
	p("FileUpdateErrCounter: %d", hk.FileUpdateErrCounter)
	p("DisabledPktCounter: %d", hk.DisabledPktCounter)
	p("IgnoredPktCounter: %d", hk.IgnoredPktCounter)
	p("FilteredPktCounter: %d", hk.FilteredPktCounter)
	p("PassedPktCounter: %d", hk.PassedPktCounter)
	p("FilterTblFilename: %s", hk.FilterTableName())
	if opts.Verbose {
		p("FilterTblFilenameRaw: % x", hk.FilterTblFilename[:])
	}
	return bw.Flush()
}

// WriteYAML writes a record as a YAML document preceded by "---"
func WriteYAML(w io.Writer, rec *Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "---\n%s", data)
	return err
}

// WriteJSON writes a record as one line of JSON
func WriteJSON(w io.Writer, rec *Record) error {
	return json.NewEncoder(w).Encode(rec)
}

// Printer writes records in one of the output formats, separating text records by an empty line
type Printer struct {
	Format OutputFormat
	TextOptions
	w     io.Writer
	count int
}

func NewPrinter(w io.Writer, format OutputFormat, opts TextOptions) *Printer {
	return &Printer{Format: format, TextOptions: opts, w: w}
}

// Print ...
func (p *Printer) Print(rec *Record) error {
	defer func() { p.count++ }()
	switch p.Format {
	case OutputFormatYAML:
		return WriteYAML(p.w, rec)
	case OutputFormatJSON:
		return WriteJSON(p.w, rec)
	default:
		if p.count > 0 {
			if _, err := fmt.Fprintln(p.w); err != nil {
				return err
			}
		}
		return WriteText(p.w, rec, p.TextOptions)
	}
}
