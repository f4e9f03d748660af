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

// Package dshk decodes buffers of concatenated cFS Data Storage housekeeping
// packets. Records have no outer framing, the decoder derives each record's
// size from its primary header.
package dshk

import (
	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-dshk/pkg/layers"
	"jinr.ru/greenlab/go-dshk/pkg/log"
)

// DecodeRecord decodes one record from the beginning of data and returns it
// together with the bytes that follow it. The remainder is a sub-slice of data.
// On error no record is returned and the remainder is data itself.
func DecodeRecord(data []byte) (*Record, []byte, error) {
	var primary layers.CCSDSLayer
	if err := primary.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, data, err
	}
	rec := &Record{Primary: primary.PrimaryHeader}
	rest := primary.LayerPayload()

	if primary.HasSecondaryHeader {
		var secondary layers.CFETimeLayer
		if err := secondary.DecodeFromBytes(rest, gopacket.NilDecodeFeedback); err != nil {
			return nil, data, err
		}
		th := secondary.TimeHeader
		rec.Secondary = &th
		rest = secondary.LayerPayload()
	}

	var payload layers.DSHKLayer
	if err := payload.DecodeFromBytes(rest, gopacket.NilDecodeFeedback); err != nil {
		return nil, data, err
	}
	rec.Payload = payload.Housekeeping

	return rec, payload.LayerPayload(), nil
}

// Iterate decodes records one after another until data is exhausted and calls
// fn for each of them with the offset of the record in data.
// It stops at the first decode error and returns it as a *RecordError,
// or at the first error returned by fn, which is returned as is.
func Iterate(data []byte, fn func(offset int, rec *Record) error) error {
	offset := 0
	index := 0
	rest := data
	for len(rest) > 0 {
		rec, next, err := DecodeRecord(rest)
		if err != nil {
			log.Debug("Decoding stopped: record: %d offset: %d error: %s", index, offset, err)
			return &RecordError{Index: index, Offset: offset, Err: err}
		}
		if err := fn(offset, rec); err != nil {
			return err
		}
		offset += len(rest) - len(next)
		index++
		rest = next
	}
	log.Debug("Decoded %d records, %d bytes", index, offset)
	return nil
}

// DecodeAll decodes every record of data. On error it returns the records
// decoded before the failing one along with the error.
func DecodeAll(data []byte) ([]*Record, error) {
	var records []*Record
	err := Iterate(data, func(_ int, rec *Record) error {
		records = append(records, rec)
		return nil
	})
	return records, err
}
