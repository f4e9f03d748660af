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

// go-dshk API
//
// RESTful APIs to decode DS housekeeping telemetry and browse the record archive
//
//     Schemes: http
//     Host: localhost:8000
//     Version: 1.0.0
//
//     Consumes:
//     - application/octet-stream
//
//     Produces:
//     - application/json
//
// swagger:meta
package srv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jinr.ru/greenlab/go-dshk/pkg/config"
	"jinr.ru/greenlab/go-dshk/pkg/dshk"
	"jinr.ru/greenlab/go-dshk/pkg/log"
	"jinr.ru/greenlab/go-dshk/pkg/metrics"
	"jinr.ru/greenlab/go-dshk/pkg/store"
)

const (
	// MaxUploadSize limits the body of a decode request
	MaxUploadSize  = 64 << 20
	SourceParam    = "source"
	ShutdownPeriod = 5 * time.Second
)

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	store   *store.Store
	metrics *metrics.Metrics
}

func NewApiServer(ctx context.Context, cfg *config.Config, st *store.Store, m *metrics.Metrics) *ApiServer {
	log.Info("Initializing API server with address: %s port: %d", cfg.APIConfig.Address, cfg.APIConfig.Port)
	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		store:   st,
		metrics: m,
	}
	s.configureRouter()
	return s
}

// Run serves the API until the context is done
func (s *ApiServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.APIConfig.Address, s.Config.APIConfig.Port)
	log.Info("Starting API server: address: %s", addr)
	httpServer := &http.Server{
		Handler:           s.Handler(),
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case <-s.Context.Done():
		log.Info("Stopping API server")
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return err
		}
		return s.Context.Err()
	case err := <-errChan:
		return err
	}
}

// Handler is the router wrapped with access logging and panic recovery
func (s *ApiServer) Handler() http.Handler {
	h := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(s.Router)
	return handlers.CustomLoggingHandler(io.Discard, h, accessLog)
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	s.Router.Use(s.countRequests)
	s.Router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	// swagger:route GET /sources sources listSources
	// List archived sources
	// responses:
	//   200: body:[]SourceInfo
	subRouter.HandleFunc("/sources", s.handleSources()).Methods("GET")
	// swagger:route GET /sources/{source} sources getSource
	// Describe one archived source
	// responses:
	//   200: body:SourceInfo
	//   404: body:ErrorResponse
	subRouter.HandleFunc("/sources/{source}", s.handleSource()).Methods("GET")
	// swagger:route DELETE /sources/{source} sources deleteSource
	// Drop a source from the archive
	// responses:
	//   204: description:Deleted
	//   404: body:ErrorResponse
	subRouter.HandleFunc("/sources/{source}", s.handleDeleteSource()).Methods("DELETE")
	// swagger:route GET /sources/{source}/records records listRecords
	// Decode every archived record of a source
	// responses:
	//   200: body:[]Record
	//   404: body:ErrorResponse
	subRouter.HandleFunc("/sources/{source}/records", s.handleRecords()).Methods("GET")
	// swagger:route GET /sources/{source}/records/{index} records getRecord
	// Decode one archived record
	// responses:
	//   200: body:Record
	//   404: body:ErrorResponse
	subRouter.HandleFunc("/sources/{source}/records/{index:[0-9]+}", s.handleRecord()).Methods("GET")
	// swagger:route POST /decode decode decodeBuffer
	// Decode a buffer of concatenated records, archiving them under ?source= when set
	// responses:
	//   200: body:DecodeResponse
	//   422: body:DecodeErrorResponse
	subRouter.HandleFunc("/decode", s.handleDecode()).Methods("POST")
}

// countRequests counts requests per route template and status code
func (s *ApiServer) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.metrics.APIRequests.WithLabelValues(route, strconv.Itoa(m.Code)).Inc()
	})
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	log.Error("Panic while handling request: %s", fmt.Sprint(v...))
}

func accessLog(_ io.Writer, p handlers.LogFormatterParams) {
	log.WithFields(map[string]interface{}{
		"method": p.Request.Method,
		"uri":    p.URL.RequestURI(),
		"status": p.StatusCode,
		"size":   p.Size,
	}).Debug("API request")
}

// ErrorResponse is the body of every non 2xx reply
// swagger:model
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeResponse is the body of a decode reply
// swagger:model
type DecodeResponse struct {
	Source string `json:"source,omitempty"`
	// First is the archive index of the first record when the buffer was archived
	First   uint64         `json:"first"`
	Bytes   int            `json:"bytes"`
	Records []*dshk.Record `json:"records"`
}

// DecodeErrorResponse is sent with 422 when a record of the buffer can not be decoded.
// Records holds what was decoded before the failing record.
// swagger:model
type DecodeErrorResponse struct {
	Error   string         `json:"error"`
	Kind    string         `json:"kind"`
	Index   int            `json:"index"`
	Offset  int            `json:"offset"`
	Needed  int            `json:"needed,omitempty"`
	Records []*dshk.Record `json:"records"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while encoding response: %s", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var noSource store.ErrSourceNotFound
	var noRecord store.ErrRecordNotFound
	var invalid store.ErrInvalidSource
	switch {
	case errors.As(err, &noSource), errors.As(err, &noRecord):
		code = http.StatusNotFound
	case errors.As(err, &invalid):
		code = http.StatusBadRequest
	}
	writeJSON(w, code, &ErrorResponse{Error: err.Error()})
}

func (s *ApiServer) handleSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := s.store.Sources()
		if err != nil {
			writeError(w, err)
			return
		}
		if sources == nil {
			sources = []*store.SourceInfo{}
		}
		writeJSON(w, http.StatusOK, sources)
	}
}

func (s *ApiServer) handleSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := s.store.Source(mux.Vars(r)["source"])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func (s *ApiServer) handleRecords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := mux.Vars(r)["source"]
		log.Debug("Handling records request: source: %s", source)
		records, err := s.store.Records(source)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func (s *ApiServer) handleRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		index, err := strconv.ParseUint(vars["index"], 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
			return
		}
		rec, err := s.store.Record(vars["source"], index)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *ApiServer) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := mux.Vars(r)["source"]
		log.Info("Deleting source: %s", source)
		if err := s.store.DeleteSource(source); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *ApiServer) handleDecode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadSize))
		if err != nil {
			writeJSON(w, http.StatusRequestEntityTooLarge, &ErrorResponse{Error: err.Error()})
			return
		}
		source := r.URL.Query().Get(SourceParam)
		log.Debug("Handling decode request: bytes: %d source: %q", len(data), source)

		records := []*dshk.Record{}
		var raw [][]byte
		consumed := 0
		err = dshk.Iterate(data, func(offset int, rec *dshk.Record) error {
			size := rec.Size()
			records = append(records, rec)
			raw = append(raw, data[offset:offset+size])
			consumed = offset + size
			s.metrics.RecordDecoded(size)
			return nil
		})
		if err != nil {
			var recErr *dshk.RecordError
			if !errors.As(err, &recErr) {
				writeJSON(w, http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
				return
			}
			kind := dshk.ErrorKind(err)
			s.metrics.DecodeError(kind)
			needed, _ := dshk.IsIncomplete(err)
			writeJSON(w, http.StatusUnprocessableEntity, &DecodeErrorResponse{
				Error:   err.Error(),
				Kind:    kind,
				Index:   recErr.Index,
				Offset:  recErr.Offset,
				Needed:  needed,
				Records: records,
			})
			return
		}

		resp := &DecodeResponse{Source: source, Bytes: consumed, Records: records}
		if source != "" {
			first, err := s.store.PutRecords(source, raw)
			if err != nil {
				writeError(w, err)
				return
			}
			resp.First = first
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
