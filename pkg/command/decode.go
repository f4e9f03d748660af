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

package command

import (
	"fmt"
	"io"
	"os"

	"jinr.ru/greenlab/go-dshk/pkg/config"
	"jinr.ru/greenlab/go-dshk/pkg/dshk"
	"jinr.ru/greenlab/go-dshk/pkg/log"
)

type DecodeOptions struct {
	Format dshk.OutputFormat
	dshk.TextOptions
	// Archive is the source name to store the records under, empty means no archiving
	Archive string
	// Offsets prints the buffer offset of every record to the error output
	Offsets bool
}

// DecodeFile decodes a file of concatenated records and prints them to out.
// Records decoded before a failing one are printed before the error is returned.
func DecodeFile(cfg *config.Config, path string, opts DecodeOptions, out, errOut io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	log.Debug("Decoding file: %s bytes: %d", path, len(data))
	return Decode(cfg, data, opts, out, errOut)
}

// Decode prints the records of data, archiving them when opts.Archive is set
func Decode(cfg *config.Config, data []byte, opts DecodeOptions, out, errOut io.Writer) error {
	printer := dshk.NewPrinter(out, opts.Format, opts.TextOptions)
	source := dshk.NewPacketSource(data)
	var raw [][]byte
	for {
		packet, err := source.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		rec, err := dshk.RecordFromPacket(packet)
		if err != nil {
			return err
		}
		offset, _ := dshk.RecordOffset(packet)
		if opts.Offsets {
			fmt.Fprintf(errOut, "offset is %d\n", offset)
		}
		if err := printer.Print(rec); err != nil {
			return err
		}
		raw = append(raw, packet.Data())
	}
	log.Info("Decoded %d records", len(raw))

	if opts.Archive == "" {
		return nil
	}
	st, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	first, err := st.PutRecords(opts.Archive, raw)
	if err != nil {
		return err
	}
	log.Info("Archived %d records: source: %s first index: %d", len(raw), opts.Archive, first)
	return nil
}

// Generate writes a synthetic record file
func Generate(path string, opts dshk.GenerateOptions) error {
	data, err := dshk.Generate(opts)
	if err != nil {
		return err
	}
	log.Info("Writing %d records, %d bytes to %s", opts.Count, len(data), path)
	return os.WriteFile(path, data, 0644)
}
