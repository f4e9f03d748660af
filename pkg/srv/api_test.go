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

package srv

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-dshk/pkg/config"
	"jinr.ru/greenlab/go-dshk/pkg/dshk"
	"jinr.ru/greenlab/go-dshk/pkg/metrics"
	"jinr.ru/greenlab/go-dshk/pkg/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	api := NewApiServer(context.Background(), config.NewDefaultConfig(), st, metrics.NewMetrics())
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func generate(t *testing.T, count int) []byte {
	t.Helper()
	data, err := dshk.Generate(dshk.GenerateOptions{
		Count:          count,
		ApplicationID:  dshk.DefaultApplicationID,
		TimeHeader:     true,
		FilterFilename: dshk.DefaultFilterFilename,
	})
	require.NoError(t, err)
	return data
}

func post(t *testing.T, url string, data []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/octet-stream", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDecodeAndBrowse(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/api/decode?source=pass-1", generate(t, 3))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decoded := &DecodeResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(decoded))
	require.Equal(t, "pass-1", decoded.Source)
	require.Equal(t, 3*76, decoded.Bytes)
	require.Len(t, decoded.Records, 3)

	resp = get(t, ts.URL+"/api/sources")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sources []*store.SourceInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sources))
	require.Len(t, sources, 1)
	require.Equal(t, uint64(3), sources[0].Records)

	resp = get(t, ts.URL+"/api/sources/pass-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := &store.SourceInfo{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(info))
	require.Equal(t, "pass-1", info.Name)
	require.Equal(t, uint64(3*76), info.Bytes)

	resp = get(t, ts.URL+"/api/sources/pass-2")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(t, ts.URL+"/api/sources/pass-1/records")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var records []*dshk.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Equal(t, decoded.Records, records)

	resp = get(t, ts.URL+"/api/sources/pass-1/records/2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := &dshk.Record{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(rec))
	require.Equal(t, uint16(2), rec.Primary.SequenceCount)

	resp = get(t, ts.URL+"/api/sources/pass-1/records/7")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/sources/pass-1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = get(t, ts.URL+"/api/sources/pass-1/records")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDecodeError(t *testing.T) {
	ts := newTestServer(t)
	data := generate(t, 3)
	data = data[:len(data)-10]

	resp := post(t, ts.URL+"/api/decode?source=broken", data)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := &DecodeErrorResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(body))
	require.Equal(t, dshk.KindIncomplete, body.Kind)
	require.Equal(t, 2, body.Index)
	require.Equal(t, 2*76, body.Offset)
	require.Equal(t, 9, body.Needed)
	require.Len(t, body.Records, 2)

	// nothing is archived when decoding fails
	resp = get(t, ts.URL+"/api/sources/broken/records")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDecodeWithoutArchive(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/decode", generate(t, 1))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, ts.URL+"/api/sources")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(data))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	post(t, ts.URL+"/api/decode", generate(t, 2))
	post(t, ts.URL+"/api/decode", []byte{1, 2, 3})

	resp := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(data)
	require.Contains(t, out, "dshk_records_decoded_total 2")
	require.Contains(t, out, "dshk_bytes_decoded_total 152")
	require.Contains(t, out, `dshk_decode_errors_total{kind="truncated"} 1`)
	require.Contains(t, out, `dshk_api_requests_total{code="200",route="/api/decode"} 1`)
	require.Contains(t, out, `dshk_api_requests_total{code="422",route="/api/decode"} 1`)
}
