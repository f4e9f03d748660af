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

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-dshk/pkg/dshk"
	"jinr.ru/greenlab/go-dshk/pkg/log"
)

type APIConfig struct {
	Address string `json:"address,omitempty"`
	Port    int    `json:"port,omitempty"`
}

type OutputConfig struct {
	Format     string `json:"format,omitempty"`
	TimeFormat string `json:"timeFormat,omitempty"`
}

type Config struct {
	LogLevel      string `json:"logLevel,omitempty"`
	LogFile       string `json:"logFile,omitempty"`
	DB            string `json:"db,omitempty"`
	*APIConfig    `json:"api,omitempty"`
	*OutputConfig `json:"output,omitempty"`
	filepath      string
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

func (c *Config) LoadConfig() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	c.fillSections()
	return nil
}

// fillSections puts back the default sections a file set to null
func (c *Config) fillSections() {
	def := NewDefaultConfig()
	if c.APIConfig == nil {
		c.APIConfig = def.APIConfig
	}
	if c.OutputConfig == nil {
		c.OutputConfig = def.OutputConfig
	}
}

// Load reads the config file over the defaults. A missing file is not an error.
func (c *Config) Load() error {
	err := c.LoadConfig()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) Path() string {
	return c.filepath
}

// Validate checks the values a user can get wrong in the file
func (c *Config) Validate() error {
	if !log.ValidLevel(c.LogLevel) {
		return ErrInvalidConfig{Field: "logLevel", Reason: log.HelpLevels}
	}
	if c.APIConfig == nil || c.OutputConfig == nil {
		return ErrInvalidConfig{Field: "api/output", Reason: "Section must not be empty."}
	}
	if (c.APIConfig.Port <= 0 || c.APIConfig.Port > 65535) {
		return ErrInvalidConfig{Field: "api.port", Reason: "Must be in range 1-65535."}
	}
	if _, err := dshk.ParseOutputFormat(c.OutputConfig.Format); err != nil {
		return ErrInvalidConfig{Field: "output.format", Reason: dshk.HelpOutputFormats}
	}
	if _, err := dshk.ParseTimeFormat(c.OutputConfig.TimeFormat); err != nil {
		return ErrInvalidConfig{Field: "output.timeFormat", Reason: dshk.HelpTimeFormats}
	}
	return nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func DefaultConfigPath() string {
	return filepath.Join(configDir(), ConfigFile)
}

func DefaultDBPath() string {
	return filepath.Join(configDir(), DBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		DB:       DefaultDBPath(),
		APIConfig: &APIConfig{
			Address: DefaultAPIAddress,
			Port:    DefaultAPIPort,
		},
		OutputConfig: &OutputConfig{
			Format:     DefaultOutputFormat,
			TimeFormat: DefaultOutputTimeFormat,
		},
		filepath: DefaultConfigPath(),
	}
}
