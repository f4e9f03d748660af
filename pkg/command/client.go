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
	"fmt"
	"net/http"
	"net/url"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-dshk/pkg/config"
	"jinr.ru/greenlab/go-dshk/pkg/dshk"
	"jinr.ru/greenlab/go-dshk/pkg/srv"
	"jinr.ru/greenlab/go-dshk/pkg/store"
)

// ErrApi returned when the API replies with an unexpected status
type ErrApi struct {
	Status string
	Msg    string
}

func (e ErrApi) Error() string {
	if e.Msg == "" {
		return e.Status
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Msg)
}

// ErrDecode returned by Decode when the server could not decode the whole buffer
type ErrDecode struct {
	*srv.DecodeErrorResponse
}

func (e ErrDecode) Error() string {
	return e.DecodeErrorResponse.Error
}

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d/api", cfg.APIConfig.Address, cfg.APIConfig.Port),
	}
}

func (c *ApiClient) sourceUrl(source string) string {
	return fmt.Sprintf("%s/sources/%s", c.ApiPrefix, url.PathEscape(source))
}

func apiError(r *req.Resp) error {
	body := &srv.ErrorResponse{}
	if err := r.ToJSON(body); err != nil {
		return ErrApi{Status: r.Response().Status}
	}
	return ErrApi{Status: r.Response().Status, Msg: body.Error}
}

// Sources sends request to list archived sources
func (c *ApiClient) Sources() ([]*store.SourceInfo, error) {
	r, err := req.Get(fmt.Sprintf("%s/sources", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, apiError(r)
	}
	var sources []*store.SourceInfo
	if err := r.ToJSON(&sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// Source sends request to describe one archived source
func (c *ApiClient) Source(source string) (*store.SourceInfo, error) {
	r, err := req.Get(c.sourceUrl(source))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, apiError(r)
	}
	info := &store.SourceInfo{}
	if err := r.ToJSON(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Records sends request to get all records of a source
func (c *ApiClient) Records(source string) ([]*dshk.Record, error) {
	r, err := req.Get(fmt.Sprintf("%s/records", c.sourceUrl(source)))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, apiError(r)
	}
	var records []*dshk.Record
	if err := r.ToJSON(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// Record sends request to get one record of a source
func (c *ApiClient) Record(source string, index uint64) (*dshk.Record, error) {
	r, err := req.Get(fmt.Sprintf("%s/records/%d", c.sourceUrl(source), index))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, apiError(r)
	}
	rec := &dshk.Record{}
	if err := r.ToJSON(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteSource sends request to drop a source from the archive
func (c *ApiClient) DeleteSource(source string) error {
	r, err := req.Delete(c.sourceUrl(source))
	if err != nil {
		return err
	}
	if r.Response().StatusCode != http.StatusNoContent {
		return apiError(r)
	}
	return nil
}

// Decode uploads a buffer for decoding. A non empty source archives the records.
func (c *ApiClient) Decode(source string, data []byte) (*srv.DecodeResponse, error) {
	param := req.QueryParam{}
	if source != "" {
		param[srv.SourceParam] = source
	}
	header := req.Header{"Content-Type": "application/octet-stream"}
	r, err := req.Post(fmt.Sprintf("%s/decode", c.ApiPrefix), header, param, data)
	if err != nil {
		return nil, err
	}
	switch r.Response().StatusCode {
	case http.StatusOK:
		resp := &srv.DecodeResponse{}
		if err := r.ToJSON(resp); err != nil {
			return nil, err
		}
		return resp, nil
	case http.StatusUnprocessableEntity:
		body := &srv.DecodeErrorResponse{}
		if err := r.ToJSON(body); err != nil {
			return nil, err
		}
		return nil, ErrDecode{DecodeErrorResponse: body}
	default:
		return nil, apiError(r)
	}
}
