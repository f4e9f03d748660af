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

package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "warning")
	defer Init(os.Stderr, "info")

	Info("hidden %d", 1)
	Debug("hidden %d", 2)
	Warning("shown %d", 3)
	Error("shown %d", 4)

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown 3")
	require.Contains(t, out, "level=warning")
	require.Contains(t, out, "shown 4")
	require.Contains(t, out, "level=error")
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	require.Error(t, SetLevel("verbose"))
	require.Panics(t, func() { Init(os.Stderr, "verbose") })
	require.NoError(t, SetLevel("info"))
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "debug")
	defer Init(os.Stderr, "info")

	WithFields(map[string]interface{}{"offset": 76}).Debug("record decoded")
	require.Contains(t, buf.String(), "offset=76")
	require.Contains(t, buf.String(), "record decoded")
}

func TestInitFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "go-dshk.log")
	require.NoError(t, InitFile(&buf, "info", path))
	defer Init(os.Stderr, "info")

	Info("to both")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "to both")
	require.Contains(t, buf.String(), "to both")
}
