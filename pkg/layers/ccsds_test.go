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
	"errors"
	"testing"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/require"
)

func TestStreamIDFields(t *testing.T) {
	tests := []struct {
		name       string
		streamID   uint16
		apid       uint16
		secondary  bool
		packetType PacketType
		version    Version
	}{
		{"zero", 0x0000, 0, false, PacketTypeTelemetry, Version1},
		{"ds hk with time", 0x08B8, 0x0B8, true, PacketTypeTelemetry, Version1},
		{"command", 0x1801, 1, true, PacketTypeCommand, Version1},
		{"version 2", 0x27FF, 0x7FF, false, PacketTypeTelemetry, Version2},
		{"all ones", 0xFFFF, 0x7FF, true, PacketTypeCommand, Version(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.apid, ApplicationID(tt.streamID))
			require.Equal(t, tt.secondary, HasSecondaryHeader(tt.streamID))
			require.Equal(t, tt.packetType, PacketTypeOf(tt.streamID))
			require.Equal(t, tt.version, VersionOf(tt.streamID))
		})
	}
}

func TestSequenceWordFields(t *testing.T) {
	require.Equal(t, uint16(0x3FFF), SequenceCount(0xFFFF))
	require.Equal(t, uint8(3), SegmentationFlags(0xFFFF))
	require.Equal(t, uint16(0x1234), SequenceCount(0xD234))
	require.Equal(t, uint8(3), SegmentationFlags(0xD234))
	require.Equal(t, uint8(1), SegmentationFlags(0x4000))
	require.Equal(t, uint16(0), SequenceCount(0x4000))
}

func TestApplicationIDIsIdempotent(t *testing.T) {
	for v := 0; v <= 0xFFFF; v++ {
		apid := ApplicationID(uint16(v))
		h := PrimaryHeader{ApplicationID: apid}
		if got := ApplicationID(h.StreamID()); got != apid {
			t.Fatalf("stream id 0x%04x: apid %d re-extracted as %d", v, apid, got)
		}
	}
}

func TestVersionIsTotal(t *testing.T) {
	seen := map[Version]bool{}
	for v := 0; v <= 0xFFFF; v++ {
		seen[VersionOf(uint16(v))] = true
	}
	require.Len(t, seen, 8)
	for raw := 0; raw < 8; raw++ {
		version := Version(raw)
		require.True(t, seen[version])
	}
	require.Equal(t, "Ver1", Version1.String())
	require.Equal(t, "Ver2", Version2.String())
	require.Equal(t, "Unknown 5", Version(5).String())
}

func TestHeaderWordsRoundTrip(t *testing.T) {
	for v := 0; v <= 0xFFFF; v++ {
		word := uint16(v)
		h := NewPrimaryHeader(word, word, word)
		require.Equal(t, word, h.StreamID())
		require.Equal(t, word, h.SequenceWord())
		require.Equal(t, word, h.Length)
	}
}

func TestCCSDSLayerDecode(t *testing.T) {
	data := []byte{0x08, 0xB8, 0xC0, 0x2A, 0x00, 0x02, 0xAA, 0xBB, 0xCC}
	c := &CCSDSLayer{}
	require.NoError(t, c.DecodeFromBytes(data, gopacket.NilDecodeFeedback))
	require.Equal(t, uint16(0xB8), c.ApplicationID)
	require.True(t, c.HasSecondaryHeader)
	require.Equal(t, uint16(0x2A), c.SequenceCount)
	require.Equal(t, SegmentationComplete, c.SegmentationFlags)
	require.Equal(t, uint16(2), c.Length)
	require.Equal(t, data[:6], c.LayerContents())
	require.Equal(t, data[6:], c.LayerPayload())
	require.Equal(t, CFETimeLayerType, c.NextLayerType())
}

func TestCCSDSLayerTruncated(t *testing.T) {
	c := &CCSDSLayer{}
	err := c.DecodeFromBytes([]byte{0x08, 0xB8, 0xC0, 0x2A, 0x00}, gopacket.NilDecodeFeedback)
	var truncated ErrTruncated
	require.True(t, errors.As(err, &truncated))
	require.Equal(t, 6, truncated.Need)
	require.Equal(t, 5, truncated.Have)
}

func TestCCSDSLayerIncomplete(t *testing.T) {
	// length word says 10 bytes follow, only 4 do
	data := []byte{0x00, 0xB8, 0xC0, 0x00, 0x00, 0x0A, 1, 2, 3, 4}
	c := &CCSDSLayer{}
	err := c.DecodeFromBytes(data, gopacket.NilDecodeFeedback)
	var incomplete ErrIncomplete
	require.True(t, errors.As(err, &incomplete))
	require.Equal(t, 6, incomplete.Needed)

	// exactly as many bytes as the length word says is enough
	data = []byte{0x00, 0xB8, 0xC0, 0x00, 0x00, 0x04, 1, 2, 3, 4}
	require.NoError(t, c.DecodeFromBytes(data, gopacket.NilDecodeFeedback))
}

func TestSerializeLayers(t *testing.T) {
	c := &CCSDSLayer{PrimaryHeader: PrimaryHeader{
		ApplicationID:      0xB8,
		HasSecondaryHeader: true,
		SequenceCount:      7,
		SegmentationFlags:  SegmentationComplete,
	}}
	tm := &CFETimeLayer{TimeHeader: TimeHeader{Seconds: 0x01020304, Subseconds: 0x0506}}
	hk := &DSHKLayer{Housekeeping: Housekeeping{CmdAcceptedCounter: 1, PassedPktCounter: 0xDEADBEEF}}
	hk.SetFilterTableName("/cf/ds_filter_tbl.tbl")

	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, c, tm, hk)
	require.NoError(t, err)

	data := buf.Bytes()
	total := CCSDSPrimaryHeaderLength + CFETimeHeaderLength + DSHKPayloadLength
	require.Len(t, data, total)
	require.Equal(t, []byte{0x08, 0xB8, 0xC0, 0x07}, data[0:4])
	require.Equal(t, uint16(total-CCSDSLengthOffset), c.Length)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, data[6:12])

	packet := gopacket.NewPacket(data, CCSDSLayerType, gopacket.Default)
	require.Nil(t, packet.ErrorLayer())
	require.Len(t, packet.Layers(), 3)

	decoded, ok := packet.Layer(DSHKLayerType).(*DSHKLayer)
	require.True(t, ok)
	require.Equal(t, hk.Housekeeping, decoded.Housekeeping)
	require.Equal(t, "/cf/ds_filter_tbl.tbl", decoded.FilterTableName())

	decodedTime, ok := packet.Layer(CFETimeLayerType).(*CFETimeLayer)
	require.True(t, ok)
	require.Equal(t, tm.TimeHeader, decodedTime.TimeHeader)
}

func TestNewPacketWithoutTimeHeader(t *testing.T) {
	c := &CCSDSLayer{PrimaryHeader: PrimaryHeader{ApplicationID: 0xB8, SegmentationFlags: SegmentationComplete}}
	hk := &DSHKLayer{}
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, c, hk))

	packet := gopacket.NewPacket(buf.Bytes(), CCSDSLayerType, gopacket.Default)
	require.Nil(t, packet.ErrorLayer())
	require.Nil(t, packet.Layer(CFETimeLayerType))
	require.NotNil(t, packet.Layer(DSHKLayerType))
}
