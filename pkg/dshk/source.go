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
	"io"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-dshk/pkg/layers"
)

// RecordSource cuts a buffer into records and serves them as packets.
// The capture timestamp of a record is its absolute time and the first
// ancillary data item is its offset in the buffer.
//
// Use NextPacket of the gopacket.PacketSource rather than Packets(), the
// channel based reader retries on errors other than io.EOF.
type RecordSource struct {
	data   []byte
	offset int
	index  int
	err    error
}

var _ gopacket.PacketDataSource = &RecordSource{}

func NewRecordSource(data []byte) *RecordSource {
	return &RecordSource{data: data}
}

// NewPacketSource returns a packet source decoding the records of data
// starting with the CCSDS layer
func NewPacketSource(data []byte) *gopacket.PacketSource {
	source := gopacket.NewPacketSource(NewRecordSource(data), layers.CCSDSLayerType)
	source.DecodeOptions = gopacket.DecodeOptions{NoCopy: true}
	return source
}

// ReadPacketData returns the raw bytes of the next record. It returns io.EOF
// once the buffer is exhausted and the same *RecordError on every call after
// a decode error.
func (s *RecordSource) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	if s.err != nil {
		return nil, gopacket.CaptureInfo{}, s.err
	}
	if s.offset >= len(s.data) {
		return nil, gopacket.CaptureInfo{}, io.EOF
	}
	rest := s.data[s.offset:]
	rec, next, err := DecodeRecord(rest)
	if err != nil {
		s.err = &RecordError{Index: s.index, Offset: s.offset, Err: err}
		return nil, gopacket.CaptureInfo{}, s.err
	}
	size := len(rest) - len(next)
	ci := gopacket.CaptureInfo{
		Timestamp:     rec.Time(),
		CaptureLength: size,
		Length:        size,
		AncillaryData: []interface{}{s.offset},
	}
	data := rest[:size:size]
	s.offset += size
	s.index++
	return data, ci, nil
}

// Offset is the position of the next record in the buffer
func (s *RecordSource) Offset() int {
	return s.offset
}

// RecordOffset returns the buffer offset stored by RecordSource in the packet metadata
func RecordOffset(packet gopacket.Packet) (int, bool) {
	meta := packet.Metadata()
	if len(meta.CaptureInfo.AncillaryData) < 1 {
		return 0, false
	}
	offset, ok := meta.CaptureInfo.AncillaryData[0].(int)
	return offset, ok
}

// RecordFromPacket assembles a record from the layers of a decoded packet
func RecordFromPacket(packet gopacket.Packet) (*Record, error) {
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, errLayer.Error()
	}
	primary, ok := packet.Layer(layers.CCSDSLayerType).(*layers.CCSDSLayer)
	if !ok {
		return nil, layers.ErrTruncated{What: "CCSDS primary header", Need: layers.CCSDSPrimaryHeaderLength}
	}
	payload, ok := packet.Layer(layers.DSHKLayerType).(*layers.DSHKLayer)
	if !ok {
		return nil, layers.ErrTruncated{What: "DS housekeeping payload", Need: layers.DSHKPayloadLength}
	}
	rec := &Record{
		Primary: primary.PrimaryHeader,
		Payload: payload.Housekeeping,
	}
	if secondary, ok := packet.Layer(layers.CFETimeLayerType).(*layers.CFETimeLayer); ok {
		th := secondary.TimeHeader
		rec.Secondary = &th
	}
	return rec, nil
}
