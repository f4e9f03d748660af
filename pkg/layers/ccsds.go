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
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// CCSDSLayerNum identifies the layer
	CCSDSLayerNum = 2100
	// CCSDSPrimaryHeaderLength is the size of the CCSDS primary header in bytes
	CCSDSPrimaryHeaderLength = 6
	// CCSDSLengthOffset is the difference between the total packet length
	// and the value of the packet length word
	CCSDSLengthOffset = 7
)

// stream id word
//  bits  shift   ------------ description ----------------
// 0x07FF    0  : application ID
// 0x0800   11  : secondary header: 0 = absent, 1 = present
// 0x1000   12  : packet type:      0 = TLM, 1 = CMD
// 0xE000   13  : CCSDS version:    0 = ver 1, 1 = ver 2
//
// sequence word
//  bits  shift   ------------ description ----------------
// 0x3FFF    0  : sequence count
// 0xC000   14  : segmentation flags:  3 = complete packet
const (
	ApplicationIDMask      = 0x07FF
	SecondaryHeaderMask    = 0x0800
	PacketTypeMask         = 0x1000
	PacketTypeShift        = 12
	VersionMask            = 0xE000
	VersionShift           = 13
	SequenceCountMask      = 0x3FFF
	SegmentationFlagsMask  = 0xC000
	SegmentationFlagsShift = 14
)

// SegmentationComplete is the value of the segmentation flags for an unsegmented packet
const SegmentationComplete uint8 = 3

// PacketType is the one bit packet type of the stream id word
type PacketType uint8

const (
	PacketTypeTelemetry PacketType = 0
	PacketTypeCommand   PacketType = 1
)

func (t PacketType) String() string {
	if t == PacketTypeCommand {
		return "CMD"
	}
	return "TLM"
}

// Version is the three bit CCSDS version number. Every raw value is valid,
// values other than Version1 and Version2 are reported as unknown.
type Version uint8

const (
	Version1 Version = 0
	Version2 Version = 1
)

func (v Version) String() string {
	switch v {
	case Version1:
		return "Ver1"
	case Version2:
		return "Ver2"
	default:
		return fmt.Sprintf("Unknown %d", uint8(v))
	}
}

// ApplicationID returns the 11 bit application id of the stream id word
func ApplicationID(streamID uint16) uint16 {
	return streamID & ApplicationIDMask
}

// HasSecondaryHeader tells if the secondary header flag of the stream id word is set
func HasSecondaryHeader(streamID uint16) bool {
	return streamID&SecondaryHeaderMask != 0
}

// PacketTypeOf returns the packet type bit of the stream id word
func PacketTypeOf(streamID uint16) PacketType {
	return PacketType((streamID & PacketTypeMask) >> PacketTypeShift)
}

// VersionOf returns the CCSDS version bits of the stream id word
func VersionOf(streamID uint16) Version {
	return Version((streamID & VersionMask) >> VersionShift)
}

// SequenceCount returns the 14 bit sequence counter of the sequence word
func SequenceCount(sequence uint16) uint16 {
	return sequence & SequenceCountMask
}

// SegmentationFlags returns the 2 bit segmentation flags of the sequence word
func SegmentationFlags(sequence uint16) uint8 {
	return uint8((sequence & SegmentationFlagsMask) >> SegmentationFlagsShift)
}

// PrimaryHeader is the CCSDS primary header with its words split into fields
type PrimaryHeader struct {
	ApplicationID      uint16     `json:"applicationId"`
	HasSecondaryHeader bool       `json:"hasSecondaryHeader"`
	PacketType         PacketType `json:"packetType"`
	Version            Version    `json:"ccsdsVersion"`
	SequenceCount      uint16     `json:"sequenceCount"`
	SegmentationFlags  uint8      `json:"segmentationFlags"`
	// Length is the total packet length - 7
	Length uint16 `json:"length"`
}

// NewPrimaryHeader splits the three header words into fields
func NewPrimaryHeader(streamID, sequence, length uint16) PrimaryHeader {
	return PrimaryHeader{
		ApplicationID:      ApplicationID(streamID),
		HasSecondaryHeader: HasSecondaryHeader(streamID),
		PacketType:         PacketTypeOf(streamID),
		Version:            VersionOf(streamID),
		SequenceCount:      SequenceCount(sequence),
		SegmentationFlags:  SegmentationFlags(sequence),
		Length:             length,
	}
}

// StreamID packs the fields back into the stream id word.
// Out of range field values are masked.
func (h *PrimaryHeader) StreamID() uint16 {
	word := h.ApplicationID & ApplicationIDMask
	if h.HasSecondaryHeader {
		word |= SecondaryHeaderMask
	}
	word |= (uint16(h.PacketType) << PacketTypeShift) & PacketTypeMask
	word |= (uint16(h.Version) << VersionShift) & VersionMask
	return word
}

// SequenceWord packs the sequence count and the segmentation flags back into the sequence word
func (h *PrimaryHeader) SequenceWord() uint16 {
	return (h.SequenceCount & SequenceCountMask) |
		((uint16(h.SegmentationFlags) << SegmentationFlagsShift) & SegmentationFlagsMask)
}

// Serialize writes the three header words to a buffer of at least 6 bytes
func (h *PrimaryHeader) Serialize(buf []byte) {
	binary.BigEndian.PutUint16(buf[0:2], h.StreamID())
	binary.BigEndian.PutUint16(buf[2:4], h.SequenceWord())
	binary.BigEndian.PutUint16(buf[4:6], h.Length)
}

// CCSDSLayer is the CCSDS space packet primary header
type CCSDSLayer struct {
	layers.BaseLayer
	PrimaryHeader
}

var CCSDSLayerType = gopacket.RegisterLayerType(CCSDSLayerNum,
	gopacket.LayerTypeMetadata{Name: "CCSDSLayerType", Decoder: gopacket.DecodeFunc(decodeCCSDSLayer)})

// LayerType returns the type of the CCSDS layer in the layer catalog
func (c *CCSDSLayer) LayerType() gopacket.LayerType {
	return CCSDSLayerType
}

// CanDecode implements gopacket.DecodingLayer
func (c *CCSDSLayer) CanDecode() gopacket.LayerClass {
	return CCSDSLayerType
}

// NextLayerType is the cFE time header if the secondary header flag is set
// and the DS housekeeping payload otherwise
func (c *CCSDSLayer) NextLayerType() gopacket.LayerType {
	if c.HasSecondaryHeader {
		return CFETimeLayerType
	}
	return DSHKLayerType
}

// DecodeFromBytes decodes the primary header and checks that the packet length word
// does not claim more bytes than there are after the header.
// The payload of the layer is everything after the primary header, the length word
// is not used to cut it.
func (c *CCSDSLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < CCSDSPrimaryHeaderLength {
		df.SetTruncated()
		return ErrTruncated{What: "CCSDS primary header", Need: CCSDSPrimaryHeaderLength, Have: len(data)}
	}

	c.PrimaryHeader = NewPrimaryHeader(
		binary.BigEndian.Uint16(data[0:2]),
		binary.BigEndian.Uint16(data[2:4]),
		binary.BigEndian.Uint16(data[4:6]),
	)

	rest := len(data) - CCSDSPrimaryHeaderLength
	if rest < int(c.Length) {
		return ErrIncomplete{Needed: int(c.Length) - rest}
	}

	c.BaseLayer = layers.BaseLayer{
		Contents: data[:CCSDSPrimaryHeaderLength],
		Payload:  data[CCSDSPrimaryHeaderLength:],
	}
	return nil
}

// SerializeTo prepends the primary header to the buffer.
// With FixLengths the length word is computed from the bytes already in the buffer.
func (c *CCSDSLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	payloadLength := len(b.Bytes())
	bytes, err := b.PrependBytes(CCSDSPrimaryHeaderLength)
	if err != nil {
		return err
	}
	if opts.FixLengths {
		if payloadLength < 1 {
			return fmt.Errorf("CCSDS packet data field can not be empty")
		}
		c.Length = uint16(payloadLength + CCSDSPrimaryHeaderLength - CCSDSLengthOffset)
	}
	c.PrimaryHeader.Serialize(bytes)
	return nil
}

func decodeCCSDSLayer(data []byte, p gopacket.PacketBuilder) error {
	c := &CCSDSLayer{}
	err := c.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(c)
	return p.NextDecoder(c.NextLayerType())
}
