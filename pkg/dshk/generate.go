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
	"fmt"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-dshk/pkg/layers"
)

const (
	DefaultApplicationID  = 0xB8
	DefaultFilterFilename = "/cf/ds_filter_tbl.tbl"
)

// GenerateOptions describe a synthetic housekeeping stream
type GenerateOptions struct {
	Count          int
	ApplicationID  uint16
	TimeHeader     bool
	FilterFilename string
	// StartSeconds is the time of the first record, each next one is a second later
	StartSeconds uint32
}

// Record returns the i-th record of the stream
func (o GenerateOptions) Record(i int) *Record {
	rec := &Record{
		Primary: layers.PrimaryHeader{
			ApplicationID:      o.ApplicationID & layers.ApplicationIDMask,
			HasSecondaryHeader: o.TimeHeader,
			PacketType:         layers.PacketTypeTelemetry,
			Version:            layers.Version1,
			SequenceCount:      uint16(i) & layers.SequenceCountMask,
			SegmentationFlags:  layers.SegmentationComplete,
		},
		Payload: layers.Housekeeping{
			CmdAcceptedCounter:   uint8(i / 10),
			FilterTblLoadCounter: 1,
			AppEnableState:       1,
			FileWriteCounter:     uint16(i / 4),
			FileUpdateCounter:    uint16(i / 2),
			IgnoredPktCounter:    uint32(i),
			FilteredPktCounter:   uint32(i) * 3,
			PassedPktCounter:     uint32(i) * 7,
		},
	}
	if o.TimeHeader {
		rec.Secondary = &layers.TimeHeader{
			Seconds:    o.StartSeconds + uint32(i),
			Subseconds: uint16(i*125) % 1000,
		}
	}
	rec.Payload.SetFilterTableName(o.FilterFilename)
	size := layers.DSHKPayloadLength + layers.CCSDSPrimaryHeaderLength - layers.CCSDSLengthOffset
	if o.TimeHeader {
		size += layers.CFETimeHeaderLength
	}
	rec.Primary.Length = uint16(size)
	return rec
}

// Generate serializes Count records of a synthetic stream back to back
func Generate(o GenerateOptions) ([]byte, error) {
	if o.Count < 0 {
		return nil, fmt.Errorf("Wrong record count %d", o.Count)
	}
	if len(o.FilterFilename) > layers.MaxPathLength {
		return nil, fmt.Errorf("Filter table file name is longer than %d bytes", layers.MaxPathLength)
	}
	out := make([]byte, 0, o.Count*(layers.CCSDSPrimaryHeaderLength+layers.CFETimeHeaderLength+layers.DSHKPayloadLength))
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	for i := 0; i < o.Count; i++ {
		rec := o.Record(i)
		stack := []gopacket.SerializableLayer{&layers.CCSDSLayer{PrimaryHeader: rec.Primary}}
		if rec.Secondary != nil {
			stack = append(stack, &layers.CFETimeLayer{TimeHeader: *rec.Secondary})
		}
		stack = append(stack, &layers.DSHKLayer{Housekeeping: rec.Payload})
		if err := gopacket.SerializeLayers(buf, opts, stack...); err != nil {
			return nil, err
		}
		out = append(out, buf.Bytes()...)
	}
	return out, nil
}
