// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package cmd

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// scanConfig holds the scan settings that can come from the optional
// YAML configuration file. Command line flags override all of them.
type scanConfig struct {
	TempDir       string `mapstructure:"temp_dir"`
	AttachmentDir string `mapstructure:"attachment_dir"`
	Workers       int    `mapstructure:"workers"`
}

func defaultScanConfig() *scanConfig {
	return &scanConfig{
		TempDir:       filepath.Join(os.TempDir(), "emailparser"),
		AttachmentDir: "attachments",
		Workers:       runtime.NumCPU(),
	}
}

// loadScanConfig reads the configuration file at path. A missing file
// yields the defaults.
func loadScanConfig(path string) (*scanConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultScanConfig()
	v.SetDefault("temp_dir", defaults.TempDir)
	v.SetDefault("attachment_dir", defaults.AttachmentDir)
	v.SetDefault("workers", defaults.Workers)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, errors.Wrapf(err, "could not read config %s", path)
	}

	config := defaults
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrapf(err, "could not parse config %s", path)
	}
	return config, nil
}
