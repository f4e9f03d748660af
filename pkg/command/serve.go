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
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"jinr.ru/greenlab/go-dshk/pkg/config"
	"jinr.ru/greenlab/go-dshk/pkg/metrics"
	"jinr.ru/greenlab/go-dshk/pkg/srv"
	"jinr.ru/greenlab/go-dshk/pkg/store"
)

// OpenStore opens the record archive configured in cfg
func OpenStore(cfg *config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DB), 0755); err != nil {
		return nil, err
	}
	return store.Open(cfg.DB)
}

// StartApiServer serves the API until SIGINT or SIGTERM
func StartApiServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	s := srv.NewApiServer(ctx, cfg, st, metrics.NewMetrics())
	err = s.Run()
	if err == context.Canceled {
		return nil
	}
	return err
}
