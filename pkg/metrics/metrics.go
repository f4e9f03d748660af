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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of the decoder and its API
type Metrics struct {
	Registry *prometheus.Registry

	RecordsDecoded prometheus.Counter
	BytesDecoded   prometheus.Counter
	DecodeErrors   *prometheus.CounterVec

	APIRequests *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them in a registry of their own
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RecordsDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "dshk_records_decoded_total",
			Help: "Total number of housekeeping records decoded",
		}),
		BytesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "dshk_bytes_decoded_total",
			Help: "Total number of bytes consumed by decoded records",
		}),
		DecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dshk_decode_errors_total",
			Help: "Total number of buffers whose decoding stopped on an error",
		}, []string{"kind"}),
		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dshk_api_requests_total",
			Help: "Total number of API requests",
		}, []string{"route", "code"}),
	}
}

// RecordDecoded counts one record of size bytes
func (m *Metrics) RecordDecoded(size int) {
	m.RecordsDecoded.Inc()
	m.BytesDecoded.Add(float64(size))
}

// DecodeError counts a decode failure of the given kind
func (m *Metrics) DecodeError(kind string) {
	m.DecodeErrors.WithLabelValues(kind).Inc()
}
