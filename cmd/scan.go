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
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/emailparser"
	"github.com/forensicanalysis/emailparser/casestore"
	"github.com/forensicanalysis/emailparser/mboxparse"
	"github.com/forensicanalysis/emailparser/pstparse"
	"github.com/forensicanalysis/emailparser/vcardparse"
)

// Scan is the emailparser scan commandline subcommand
func Scan() *cobra.Command {
	defaults := defaultScanConfig()
	var configFile, device string
	scanCmd := &cobra.Command{
		Use:   "scan <store> <file>...",
		Short: "Extract communication evidence from container files into a case store",
		Args:  cobra.MinimumNArgs(2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadScanConfig(configFile)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("temp-dir") {
				config.TempDir, _ = flags.GetString("temp-dir")
			}
			if flags.Changed("attachment-dir") {
				config.AttachmentDir, _ = flags.GetString("attachment-dir")
			}
			if flags.Changed("workers") {
				config.Workers, _ = flags.GetInt("workers")
			}
			return runScan(context.Background(), args[0], args[1:], config, device)
		},
	}
	scanCmd.Flags().StringVar(&configFile, "config", "emailparser.yaml", "YAML configuration file")
	scanCmd.Flags().String("temp-dir", defaults.TempDir, "directory for staged container copies")
	scanCmd.Flags().String("attachment-dir", defaults.AttachmentDir, "directory for extracted attachments")
	scanCmd.Flags().Int("workers", defaults.Workers, "number of files processed in parallel")
	scanCmd.Flags().StringVar(&device, "device", "", "device id recorded for contact relationships")
	return scanCmd
}

// scanTarget pairs a source description with the path the content can
// be read from.
type scanTarget struct {
	source *emailparser.SourceFile
	path   string
}

func runScan(ctx context.Context, storeName string, patterns []string, config *scanConfig, device string) error {
	logger := log.New(os.Stderr, "emailparser ", log.LstdFlags)

	store, err := casestore.New(storeName)
	if err == casestore.ErrStoreExists {
		store, err = casestore.Open(storeName)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	fs := afero.NewOsFs()
	targets, err := collectTargets(fs, patterns, device)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(config.TempDir, 0750); err != nil {
		return errors.Wrap(err, "could not create staging directory")
	}

	attachments := emailparser.NewAttachmentStore(fs, config.AttachmentDir)
	pipeline := emailparser.NewPipeline(emailparser.Config{
		Accounts: store,
		Evidence: store,
		Queue:    &logQueue{logger: logger},
		Disk:     &diskMonitor{dir: config.TempDir},
		Notifier: &notifier{w: os.Stderr},
		Logger:   logger,
		FS:       fs,
		TempDir:  config.TempDir,
		Parsers: map[emailparser.ContainerFormat]emailparser.Parser{
			emailparser.FormatMbox:  mboxparse.New(fs, attachments, logger),
			emailparser.FormatPst:   pstparse.New(fs, attachments, logger),
			emailparser.FormatVcard: vcardparse.New(fs, logger),
		},
	})

	failed := processAll(ctx, fs, pipeline, logger, targets, config.Workers)
	logger.Printf("processed %d files into %s", len(targets), storeName)
	if failed > 0 {
		return errors.Errorf("failed to process %d of %d files", failed, len(targets))
	}
	return nil
}

// collectTargets expands the given glob patterns and walks matched
// directories. Every regular file below a match becomes one target.
func collectTargets(fs afero.Fs, patterns []string, device string) ([]*scanTarget, error) {
	var targets []*scanTarget
	id := int64(1)
	for _, pattern := range patterns {
		matches, err := afero.Glob(fs, pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "bad file pattern %s", pattern)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no files match %s", pattern)
		}

		for _, match := range matches {
			err := afero.Walk(fs, match, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					return nil
				}
				targets = append(targets, &scanTarget{
					source: &emailparser.SourceFile{
						ID:       id,
						Name:     info.Name(),
						Path:     filepath.ToSlash(filepath.Dir(path)) + "/",
						Size:     info.Size(),
						DeviceID: device,
						// ModTime is the only timestamp a portable stat exposes.
						Crtime: info.ModTime().Unix(),
						Kind:   emailparser.SourceRegular,
					},
					path: path,
				})
				id++
				return nil
			})
			if err != nil {
				return nil, errors.Wrapf(err, "could not walk %s", match)
			}
		}
	}
	return targets, nil
}

// processAll feeds the targets through a fixed worker pool and returns
// the number of failed files.
func processAll(ctx context.Context, fs afero.Fs, pipeline *emailparser.Pipeline, logger *log.Logger,
	targets []*scanTarget, workers int) int {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *scanTarget)
	var wg sync.WaitGroup
	var mutex sync.Mutex
	failed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				if processTarget(ctx, fs, pipeline, logger, target) == emailparser.ResultError {
					mutex.Lock()
					failed++
					mutex.Unlock()
				}
			}
		}()
	}

	for _, target := range targets {
		jobs <- target
	}
	close(jobs)
	wg.Wait()
	return failed
}

func processTarget(ctx context.Context, fs afero.Fs, pipeline *emailparser.Pipeline, logger *log.Logger,
	target *scanTarget) emailparser.Result {
	f, err := fs.Open(target.path)
	if err != nil {
		logger.Printf("failed to open %s: %v", target.path, err)
		return emailparser.ResultError
	}
	defer f.Close()
	return pipeline.Process(ctx, target.source, f)
}
