//   Copyright 2020 Ettore Di Giacinto <mudler@mocaccino.org>
//
//   Licensed under the Apache License, Version 2.0 (the "License");
//   you may not use this file except in compliance with the License.
//   You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
//   Unless required by applicable law or agreed to in writing, software
//   distributed under the License is distributed on an "AS IS" BASIS,
//   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//   See the License for the specific language governing permissions and
//   limitations under the License.

package executor

import (
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"github.com/hashicorp/go-multierror"
	"github.com/mudler/fsformats/pkg/formats"
	"github.com/mudler/fsformats/pkg/logger"
	"github.com/mudler/fsformats/pkg/schema"
	"github.com/mudler/fsformats/pkg/utils"
	"github.com/pkg/errors"
	"github.com/sanity-io/litter"
	"github.com/twpayne/go-vfs/v4"
)

// DefaultExecutor is the default fsformats Executor.
// It walks the layout entries in order and runs every step on each of them.
type DefaultExecutor struct {
	steps  []Step
	values map[string]string
	logger logger.Interface
}

func (e *DefaultExecutor) Steps(p []Step) {
	e.steps = p
}

func (e *DefaultExecutor) Values(v map[string]string) {
	e.values = v
}

func (e *DefaultExecutor) filesystem(c schema.Config, entry schema.Filesystem, fs vfs.FS, console formats.Console) (*formats.Filesystem, error) {
	opts := []formats.Option{
		formats.WithDevice(entry.Device),
		formats.WithExists(!entry.Format),
		formats.WithConsole(console),
		formats.WithFS(fs),
		formats.WithLogger(e.logger),
		formats.WithSettleCommand(c.Settle),
	}
	if entry.Label != "" {
		opts = append(opts, formats.WithLabel(entry.Label))
	}
	if entry.UUID != "" {
		opts = append(opts, formats.WithUUID(entry.UUID))
	}
	if entry.MkfsOptions != "" {
		mkfsOpts, err := shlex.Split(entry.MkfsOptions)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing mkfs_options of %s", entry.Name())
		}
		opts = append(opts, formats.WithMkfsOptions(mkfsOpts...))
	}
	return formats.New(entry.Type, opts...)
}

func (e *DefaultExecutor) applyEntry(c schema.Config, entry schema.Filesystem, fs vfs.FS, console formats.Console) error {
	e.logger.Infof("Processing %s (format: %t, label: %q, verify: %t)", entry.Name(), entry.Format, entry.Label, entry.Verify)
	e.logger.Debugf("Entry: %s", litter.Sdump(entry))

	fsys, err := e.filesystem(c, entry, fs, console)
	if err != nil {
		return err
	}

	// Steps depend on each other, so the first failure stops the entry.
	for _, step := range e.steps {
		if err := step(e.logger, entry, fsys); err != nil {
			return errors.Wrapf(err, "%s", entry.Name())
		}
	}
	return nil
}

// Apply renders and validates the layout, then applies its entries in order.
// A failing entry does not stop the following ones; all errors are returned
// together.
func (e *DefaultExecutor) Apply(c schema.Config, fs vfs.FS, console formats.Console) error {
	if len(c.Filesystems) == 0 {
		e.logger.Debugf("No filesystems defined in %s", c.Name)
		return nil
	}
	c.Filesystems = append([]schema.Filesystem(nil), c.Filesystems...)
	if err := c.Render(e.values); err != nil {
		return errors.Wrapf(err, "rendering %s", c.Name)
	}
	if err := c.Validate(); err != nil {
		return errors.Wrapf(err, "invalid layout %s", c.Name)
	}

	e.logger.Infof("Applying '%s'. Total filesystems: %d", c.Name, len(c.Filesystems))

	var errs error
	for _, entry := range c.Filesystems {
		if err := e.applyEntry(c, entry, fs, console); err != nil {
			e.logger.Error(err.Error())
			errs = multierror.Append(errs, err)
		}
	}

	e.logger.Infof("Layout '%s'. Filesystems: %d. Errors: %t", c.Name, len(c.Filesystems), errs != nil)
	return errs
}

func (e *DefaultExecutor) walkDir(dir string, fs vfs.FS, console formats.Console) error {
	var errs error

	err := vfs.Walk(fs, dir,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if path == dir {
				return nil
			}
			// Process only files
			if info.IsDir() {
				return nil
			}
			ext := filepath.Ext(path)
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}

			if err = e.run(path, fs, console, schema.FromFile); err != nil {
				errs = multierror.Append(errs, err)
			}
			return nil
		})
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs
}

func (e *DefaultExecutor) run(uri string, fs vfs.FS, console formats.Console, l schema.Loader) error {
	config, err := schema.Load(uri, fs, l)
	if err != nil {
		return err
	}
	if config.Name == "" && l != nil {
		config.Name = uri
	}

	e.logger.Infof("Executing %s", config.Name)
	return e.Apply(*config, fs, console)
}

func (e *DefaultExecutor) runSource(uri string, fs vfs.FS, console formats.Console) error {
	f, err := fs.Stat(uri)

	switch {
	case err == nil && f.IsDir():
		return e.walkDir(uri, fs, console)
	case err == nil:
		return e.run(uri, fs, console, schema.FromFile)
	case utils.IsUrl(uri):
		return e.run(uri, fs, console, schema.FromUrl)
	default:
		return e.run(uri, fs, console, nil)
	}
}

// Run takes a list of URI to run layouts from. URI can be a dir, a local path
// or a remote url, as well as an inline yaml.
func (e *DefaultExecutor) Run(fs vfs.FS, console formats.Console, args ...string) error {
	var errs error
	for _, source := range args {
		if err := e.runSource(source, fs, console); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	e.logger.Infof("Done applying %d source(s)", len(args))
	return errs
}
