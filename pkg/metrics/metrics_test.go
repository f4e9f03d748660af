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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordDecoded(76)
	m.RecordDecoded(70)
	m.DecodeError("incomplete")

	require.Equal(t, float64(2), testutil.ToFloat64(m.RecordsDecoded))
	require.Equal(t, float64(146), testutil.ToFloat64(m.BytesDecoded))
	require.Equal(t, float64(1), testutil.ToFloat64(m.DecodeErrors.WithLabelValues("incomplete")))
	require.Equal(t, float64(0), testutil.ToFloat64(m.DecodeErrors.WithLabelValues("truncated")))

	// a second instance does not clash with the first one
	other := NewMetrics()
	require.Equal(t, float64(0), testutil.ToFloat64(other.RecordsDecoded))
}
