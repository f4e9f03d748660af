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
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// CFETimeLayerNum identifies the layer
	CFETimeLayerNum = 2101
	// CFETimeHeaderLength is 4 bytes of seconds and 2 bytes of subseconds
	CFETimeHeaderLength = 6
)

// Epoch is the mission time that corresponds to seconds = 0, subseconds = 0
var Epoch = time.Date(2000, time.January, 1, 11, 58, 55, 816*int(time.Millisecond), time.UTC)

// AbsoluteTime converts the raw time of the secondary header to UTC.
// Subseconds are counted as milliseconds, not as 1/65536 of a second.
func AbsoluteTime(seconds uint32, subseconds uint16) time.Time {
	return Epoch.Add(time.Duration(seconds)*time.Second + time.Duration(subseconds)*time.Millisecond)
}

// ITOSFormat formats a time the way ITOS does: YY-DDD-HH:MM:SS.mmm
func ITOSFormat(t time.Time) string {
	return fmt.Sprintf("%02d-%03d-%02d:%02d:%02d.%03d", t.Year()%100, t.YearDay(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/int(time.Millisecond))
}

// TimeHeader is the cFE telemetry secondary header
type TimeHeader struct {
	Seconds    uint32 `json:"seconds"`
	Subseconds uint16 `json:"subseconds"`
}

// Time returns the absolute time of the header
func (h *TimeHeader) Time() time.Time {
	return AbsoluteTime(h.Seconds, h.Subseconds)
}

// Serialize writes the header to a buffer of at least 6 bytes
func (h *TimeHeader) Serialize(buf []byte) {
	binary.BigEndian.PutUint32(buf[0:4], h.Seconds)
	binary.BigEndian.PutUint16(buf[4:6], h.Subseconds)
}

// CFETimeLayer is the cFE telemetry secondary header. It is present only
// when the secondary header flag of the primary header is set.
type CFETimeLayer struct {
	layers.BaseLayer
	TimeHeader
}

var CFETimeLayerType = gopacket.RegisterLayerType(CFETimeLayerNum,
	gopacket.LayerTypeMetadata{Name: "CFETimeLayerType", Decoder: gopacket.DecodeFunc(decodeCFETimeLayer)})

// LayerType returns the type of the cFE time layer in the layer catalog
func (t *CFETimeLayer) LayerType() gopacket.LayerType {
	return CFETimeLayerType
}

// CanDecode implements gopacket.DecodingLayer
func (t *CFETimeLayer) CanDecode() gopacket.LayerClass {
	return CFETimeLayerType
}

// NextLayerType is always the DS housekeeping payload
func (t *CFETimeLayer) NextLayerType() gopacket.LayerType {
	return DSHKLayerType
}

func (t *CFETimeLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < CFETimeHeaderLength {
		df.SetTruncated()
		return ErrTruncated{What: "cFE time header", Need: CFETimeHeaderLength, Have: len(data)}
	}
	t.BaseLayer = layers.BaseLayer{
		Contents: data[:CFETimeHeaderLength],
		Payload:  data[CFETimeHeaderLength:],
	}
	t.Seconds = binary.BigEndian.Uint32(data[0:4])
	t.Subseconds = binary.BigEndian.Uint16(data[4:6])
	return nil
}

// SerializeTo prepends the time header to the buffer
func (t *CFETimeLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(CFETimeHeaderLength)
	if err != nil {
		return err
	}
	t.TimeHeader.Serialize(bytes)
	return nil
}

func decodeCFETimeLayer(data []byte, p gopacket.PacketBuilder) error {
	t := &CFETimeLayer{}
	err := t.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(t)
	return p.NextDecoder(t.NextLayerType())
}
