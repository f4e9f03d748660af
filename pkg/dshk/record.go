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
	"encoding/hex"
	"encoding/json"
	"time"

	"jinr.ru/greenlab/go-dshk/pkg/layers"
)

// Record is one decoded DS housekeeping packet
type Record struct {
	Primary layers.PrimaryHeader
	// Secondary is nil when the secondary header flag is not set
	Secondary *layers.TimeHeader
	Payload   layers.Housekeeping
}

// Size is the number of bytes the record takes on the wire
func (r *Record) Size() int {
	size := layers.CCSDSPrimaryHeaderLength + layers.DSHKPayloadLength
	if r.Secondary != nil {
		size += layers.CFETimeHeaderLength
	}
	return size
}

// TimeHeader returns the secondary header, or seconds = 0, subseconds = 0
// when the record has none
func (r *Record) TimeHeader() layers.TimeHeader {
	if r.Secondary == nil {
		return layers.TimeHeader{}
	}
	return *r.Secondary
}

// Time returns the absolute time of the record. Records without
// secondary header report the epoch.
func (r *Record) Time() time.Time {
	th := r.TimeHeader()
	return th.Time()
}

// Bytes encodes the record back to its wire form
func (r *Record) Bytes() []byte {
	buf := make([]byte, r.Size())
	primary := r.Primary
	if r.Secondary != nil {
		primary.HasSecondaryHeader = true
	}
	primary.Serialize(buf)
	offset := layers.CCSDSPrimaryHeaderLength
	if r.Secondary != nil {
		r.Secondary.Serialize(buf[offset:])
		offset += layers.CFETimeHeaderLength
	}
	r.Payload.Serialize(buf[offset:])
	return buf
}

type primaryDoc struct {
	StreamID uint16 `json:"streamId"`
	layers.PrimaryHeader
	PacketTypeName string `json:"packetTypeName"`
	VersionName    string `json:"ccsdsVersionName"`
}

type secondaryDoc struct {
	layers.TimeHeader
	Time string `json:"time"`
}

type payloadDoc struct {
	layers.Housekeeping
	FilterTblFilename    string `json:"filterTblFilename"`
	FilterTblFilenameRaw string `json:"filterTblFilenameRaw"`
}

type recordDoc struct {
	Primary   primaryDoc   `json:"primaryHeader"`
	Secondary secondaryDoc `json:"secondaryHeader"`
	Payload   payloadDoc   `json:"payload"`
}

// MarshalJSON writes the record with the secondary header always present.
// An absent secondary header is written as seconds = 0, subseconds = 0,
// primaryHeader.hasSecondaryHeader tells the two apart.
func (r *Record) MarshalJSON() ([]byte, error) {
	th := r.TimeHeader()
	doc := recordDoc{
		Primary: primaryDoc{
			StreamID:       r.Primary.StreamID(),
			PrimaryHeader:  r.Primary,
			PacketTypeName: r.Primary.PacketType.String(),
			VersionName:    r.Primary.Version.String(),
		},
		Secondary: secondaryDoc{
			TimeHeader: th,
			Time:       th.Time().Format(time.RFC3339Nano),
		},
		Payload: payloadDoc{
			Housekeeping:         r.Payload,
			FilterTblFilename:    r.Payload.FilterTableName(),
			FilterTblFilenameRaw: hex.EncodeToString(r.Payload.FilterTblFilename[:]),
		},
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads a record written by MarshalJSON. The secondary header
// is kept only when primaryHeader.hasSecondaryHeader is set.
func (r *Record) UnmarshalJSON(data []byte) error {
	var doc recordDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	r.Primary = doc.Primary.PrimaryHeader
	r.Secondary = nil
	if r.Primary.HasSecondaryHeader {
		th := doc.Secondary.TimeHeader
		r.Secondary = &th
	}
	r.Payload = doc.Payload.Housekeeping
	raw, err := hex.DecodeString(doc.Payload.FilterTblFilenameRaw)
	if err != nil || len(raw) != len(r.Payload.FilterTblFilename) {
		r.Payload.SetFilterTableName(doc.Payload.FilterTblFilename)
		return nil
	}
	copy(r.Payload.FilterTblFilename[:], raw)
	return nil
}
