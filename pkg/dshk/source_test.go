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
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-dshk/pkg/layers"
)

func TestPacketSource(t *testing.T) {
	data := append(buildRecord(t, 1, true), buildRecord(t, 2, false)...)
	source := NewPacketSource(data)

	first, err := source.NextPacket()
	require.NoError(t, err)
	require.Len(t, first.Data(), recordWithTimeLength)
	require.True(t, first.Metadata().Timestamp.Equal(layers.AbsoluteTime(1, 250)))
	offset, ok := RecordOffset(first)
	require.True(t, ok)
	require.Equal(t, 0, offset)
	rec, err := RecordFromPacket(first)
	require.NoError(t, err)
	require.Equal(t, uint16(1), rec.Primary.SequenceCount)
	require.NotNil(t, rec.Secondary)

	second, err := source.NextPacket()
	require.NoError(t, err)
	offset, ok = RecordOffset(second)
	require.True(t, ok)
	require.Equal(t, recordWithTimeLength, offset)
	rec, err = RecordFromPacket(second)
	require.NoError(t, err)
	require.Nil(t, rec.Secondary)
	require.Equal(t, uint16(2), rec.Primary.SequenceCount)

	_, err = source.NextPacket()
	require.Equal(t, io.EOF, err)
}

func TestRecordSourceStopsOnError(t *testing.T) {
	data := append(buildRecord(t, 1, false), 0x00, 0x01, 0x02)
	source := NewRecordSource(data)

	raw, ci, err := source.ReadPacketData()
	require.NoError(t, err)
	require.Len(t, raw, recordLength)
	require.Equal(t, recordLength, ci.CaptureLength)
	require.Equal(t, recordLength, source.Offset())

	_, _, err = source.ReadPacketData()
	var recErr *RecordError
	require.True(t, errors.As(err, &recErr))
	require.Equal(t, 1, recErr.Index)
	require.Equal(t, recordLength, recErr.Offset)
	require.True(t, IsTruncated(err))

	_, _, again := source.ReadPacketData()
	require.Equal(t, err, again)
	require.Equal(t, recordLength, source.Offset())
}
