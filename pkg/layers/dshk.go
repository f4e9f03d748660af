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

package layers

import (
	"bytes"
	"encoding/binary"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// DSHKLayerNum identifies the layer
	DSHKLayerNum = 2102
	// MaxPathLength is OS_MAX_PATH_LEN of the flight software
	MaxPathLength = 32
	// DSHKPayloadLength is 8 one byte counters, 4 two byte counters,
	// 4 four byte counters and the filter table file name
	DSHKPayloadLength = 8 + 4*2 + 4*4 + MaxPathLength
)

// Housekeeping is the payload of the Data Storage application housekeeping packet
type Housekeeping struct {
	// Count of valid commands received
	CmdAcceptedCounter uint8 `json:"cmdAcceptedCounter"`
	// Count of invalid commands received
	CmdRejectedCounter uint8 `json:"cmdRejectedCounter"`
	// Count of destination file table loads
	DestTblLoadCounter uint8 `json:"destTblLoadCounter"`
	// Count of failed attempts to get table data pointer
	DestTblErrCounter uint8 `json:"destTblErrCounter"`
	// Count of packet filter table loads
	FilterTblLoadCounter uint8 `json:"filterTblLoadCounter"`
	// Count of failed attempts to get table data pointer
	FilterTblErrCounter uint8 `json:"filterTblErrCounter"`
	// Application enable/disable state
	AppEnableState uint8 `json:"appEnableState"`
	// Structure alignment padding
	Spare8 uint8 `json:"spare8"`

	// Count of good destination file writes
	FileWriteCounter uint16 `json:"fileWriteCounter"`
	// Count of bad destination file writes
	FileWriteErrCounter uint16 `json:"fileWriteErrCounter"`
	// Count of good updates to secondary header
	FileUpdateCounter uint16 `json:"fileUpdateCounter"`
	// Count of bad updates to secondary header
	FileUpdateErrCounter uint16 `json:"fileUpdateErrCounter"`

	// Count of packets discarded (DS was disabled)
	DisabledPktCounter uint32 `json:"disabledPktCounter"`
	// Count of packets discarded because the file and/or filter table failed
	// to load or the packet is not listed in the filter table
	IgnoredPktCounter uint32 `json:"ignoredPktCounter"`
	// Count of packets discarded (failed filter test)
	FilteredPktCounter uint32 `json:"filteredPktCounter"`
	// Count of packets that passed filter test
	PassedPktCounter uint32 `json:"passedPktCounter"`

	// Name of filter table file, NUL padded
	FilterTblFilename [MaxPathLength]byte `json:"-"`
}

// FilterTableName returns the file name up to the first NUL byte
func (h *Housekeeping) FilterTableName() string {
	name := h.FilterTblFilename[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name)
}

// SetFilterTableName stores the name NUL padded, names longer than
// MaxPathLength bytes are cut
func (h *Housekeeping) SetFilterTableName(name string) {
	h.FilterTblFilename = [MaxPathLength]byte{}
	copy(h.FilterTblFilename[:], name)
}

// Serialize writes the payload to a buffer of at least DSHKPayloadLength bytes
func (h *Housekeeping) Serialize(buf []byte) {
	buf[0] = h.CmdAcceptedCounter
	buf[1] = h.CmdRejectedCounter
	buf[2] = h.DestTblLoadCounter
	buf[3] = h.DestTblErrCounter
	buf[4] = h.FilterTblLoadCounter
	buf[5] = h.FilterTblErrCounter
	buf[6] = h.AppEnableState
	buf[7] = h.Spare8
	binary.BigEndian.PutUint16(buf[8:10], h.FileWriteCounter)
	binary.BigEndian.PutUint16(buf[10:12], h.FileWriteErrCounter)
	binary.BigEndian.PutUint16(buf[12:14], h.FileUpdateCounter)
	binary.BigEndian.PutUint16(buf[14:16], h.FileUpdateErrCounter)
	binary.BigEndian.PutUint32(buf[16:20], h.DisabledPktCounter)
	binary.BigEndian.PutUint32(buf[20:24], h.IgnoredPktCounter)
	binary.BigEndian.PutUint32(buf[24:28], h.FilteredPktCounter)
	binary.BigEndian.PutUint32(buf[28:32], h.PassedPktCounter)
	copy(buf[32:DSHKPayloadLength], h.FilterTblFilename[:])
}

// DecodeHousekeeping decodes the payload from the beginning of buf
func DecodeHousekeeping(buf []byte) (Housekeeping, error) {
	var h Housekeeping
	if len(buf) < DSHKPayloadLength {
		return h, ErrTruncated{What: "DS housekeeping payload", Need: DSHKPayloadLength, Have: len(buf)}
	}
	h.CmdAcceptedCounter = buf[0]
	h.CmdRejectedCounter = buf[1]
	h.DestTblLoadCounter = buf[2]
	h.DestTblErrCounter = buf[3]
	h.FilterTblLoadCounter = buf[4]
	h.FilterTblErrCounter = buf[5]
	h.AppEnableState = buf[6]
	h.Spare8 = buf[7]
	h.FileWriteCounter = binary.BigEndian.Uint16(buf[8:10])
	h.FileWriteErrCounter = binary.BigEndian.Uint16(buf[10:12])
	h.FileUpdateCounter = binary.BigEndian.Uint16(buf[12:14])
	h.FileUpdateErrCounter = binary.BigEndian.Uint16(buf[14:16])
	h.DisabledPktCounter = binary.BigEndian.Uint32(buf[16:20])
	h.IgnoredPktCounter = binary.BigEndian.Uint32(buf[20:24])
	h.FilteredPktCounter = binary.BigEndian.Uint32(buf[24:28])
	h.PassedPktCounter = binary.BigEndian.Uint32(buf[28:32])
	copy(h.FilterTblFilename[:], buf[32:DSHKPayloadLength])
	return h, nil
}

// DSHKLayer is the Data Storage housekeeping payload.
// Its own payload is whatever follows the record, usually the next record.
type DSHKLayer struct {
	layers.BaseLayer
	Housekeeping
}

var DSHKLayerType = gopacket.RegisterLayerType(DSHKLayerNum,
	gopacket.LayerTypeMetadata{Name: "DSHKLayerType", Decoder: gopacket.DecodeFunc(decodeDSHKLayer)})

// LayerType returns the type of the DS housekeeping layer in the layer catalog
func (hk *DSHKLayer) LayerType() gopacket.LayerType {
	return DSHKLayerType
}

// CanDecode implements gopacket.DecodingLayer
func (hk *DSHKLayer) CanDecode() gopacket.LayerClass {
	return DSHKLayerType
}

// NextLayerType returns gopacket.LayerTypeZero, the record ends here
func (hk *DSHKLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

func (hk *DSHKLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	h, err := DecodeHousekeeping(data)
	if err != nil {
		df.SetTruncated()
		return err
	}
	hk.Housekeeping = h
	hk.BaseLayer = layers.BaseLayer{
		Contents: data[:DSHKPayloadLength],
		Payload:  data[DSHKPayloadLength:],
	}
	return nil
}

// SerializeTo prepends the payload to the buffer
func (hk *DSHKLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	buf, err := b.PrependBytes(DSHKPayloadLength)
	if err != nil {
		return err
	}
	hk.Housekeeping.Serialize(buf)
	return nil
}

func decodeDSHKLayer(data []byte, p gopacket.PacketBuilder) error {
	hk := &DSHKLayer{}
	err := hk.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(hk)
	if len(hk.Payload) > 0 {
		return p.NextDecoder(gopacket.LayerTypePayload)
	}
	return nil
}
