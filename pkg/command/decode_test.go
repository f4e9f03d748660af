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

package command

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-dshk/pkg/config"
	"jinr.ru/greenlab/go-dshk/pkg/dshk"
	"jinr.ru/greenlab/go-dshk/pkg/store"
)

func TestGenerateAndDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hk.bin")
	require.NoError(t, Generate(path, dshk.GenerateOptions{
		Count:          3,
		ApplicationID:  dshk.DefaultApplicationID,
		TimeHeader:     true,
		FilterFilename: dshk.DefaultFilterFilename,
	}))

	cfg := config.NewDefaultConfig()
	cfg.DB = filepath.Join(dir, "db", "records.db")
	var out, errOut bytes.Buffer
	opts := DecodeOptions{Format: dshk.OutputFormatText, Archive: "hk", Offsets: true}
	require.NoError(t, DecodeFile(cfg, path, opts, &out, &errOut))

	require.Equal(t, 3, strings.Count(out.String(), "TelemetryHeader:"))
	require.Equal(t, "offset is 0\noffset is 76\noffset is 152\n", errOut.String())

	st, err := store.Open(cfg.DB)
	require.NoError(t, err)
	defer st.Close()
	records, err := st.Records("hk")
	require.NoError(t, err)
	require.Len(t, records, 3)
}

func TestDecodeStopsAtFirstError(t *testing.T) {
	data, err := dshk.Generate(dshk.GenerateOptions{Count: 2, ApplicationID: dshk.DefaultApplicationID})
	require.NoError(t, err)
	data = append(data, 0x00, 0xB8, 0xC0)

	var out, errOut bytes.Buffer
	err = Decode(config.NewDefaultConfig(), data, DecodeOptions{Format: dshk.OutputFormatJSON}, &out, &errOut)
	var recErr *dshk.RecordError
	require.True(t, errors.As(err, &recErr))
	require.Equal(t, 2, recErr.Index)
	require.Equal(t, 140, recErr.Offset)
	require.Equal(t, 2, strings.Count(out.String(), "\n"))
}

func TestDecodeFileMissing(t *testing.T) {
	var out bytes.Buffer
	err := DecodeFile(config.NewDefaultConfig(), filepath.Join(t.TempDir(), "nope"), DecodeOptions{}, &out, &out)
	require.True(t, errors.Is(err, os.ErrNotExist))
}
