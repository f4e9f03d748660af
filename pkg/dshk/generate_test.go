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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name       string
		timeHeader bool
		size       int
	}{
		{name: "with time header", timeHeader: true, size: recordWithTimeLength},
		{name: "without time header", timeHeader: false, size: recordLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := GenerateOptions{
				Count:          12,
				ApplicationID:  DefaultApplicationID,
				TimeHeader:     tt.timeHeader,
				FilterFilename: DefaultFilterFilename,
				StartSeconds:   100,
			}
			data, err := Generate(opts)
			require.NoError(t, err)
			require.Len(t, data, 12*tt.size)

			records, err := DecodeAll(data)
			require.NoError(t, err)
			require.Len(t, records, 12)
			for i, rec := range records {
				require.Equal(t, opts.Record(i), rec)
			}
			require.Equal(t, uint16(tt.size-7), records[0].Primary.Length)
			if tt.timeHeader {
				require.Equal(t, uint32(111), records[11].Secondary.Seconds)
			}
		})
	}
}

func TestGenerateRejectsLongFilename(t *testing.T) {
	_, err := Generate(GenerateOptions{Count: 1, FilterFilename: strings.Repeat("x", 33)})
	require.Error(t, err)
}
