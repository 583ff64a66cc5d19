// Copyright © 2020 Ettore Di Giacinto <mudler@gentoo.org>
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, see <http://www.gnu.org/licenses/>.

package schema

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mudler/fsformats/pkg/formats"
	"github.com/mudler/fsformats/pkg/utils"
	"github.com/pkg/errors"
	"github.com/twpayne/go-vfs/v4"
	"gopkg.in/yaml.v3"
)

// AutoUUID asks for a UUID derived from the device and label.
const AutoUUID = "auto"

// Filesystem is a single entry of a layout file.
type Filesystem struct {
	Type   string `yaml:"type" json:"type"`
	Device string `yaml:"device" json:"device"`
	// Label is written when non-empty. UnsetLabel removes the label instead.
	Label       string `yaml:"label,omitempty" json:"label,omitempty"`
	UnsetLabel  bool   `yaml:"unset_label,omitempty" json:"unset_label,omitempty"`
	UUID        string `yaml:"uuid,omitempty" json:"uuid,omitempty"`
	Format      bool   `yaml:"format,omitempty" json:"format,omitempty"`
	Verify      bool   `yaml:"verify,omitempty" json:"verify,omitempty"`
	MkfsOptions string `yaml:"mkfs_options,omitempty" json:"mkfs_options,omitempty"`
}

// Name identifies the entry in logs and errors.
func (f Filesystem) Name() string {
	return fmt.Sprintf("%s:%s", f.Type, f.Device)
}

type Config struct {
	Name        string            `yaml:"name,omitempty" json:"name,omitempty"`
	Settle      string            `yaml:"settle,omitempty" json:"settle,omitempty"`
	Values      map[string]string `yaml:"values,omitempty" json:"values,omitempty"`
	Filesystems []Filesystem      `yaml:"filesystems" json:"filesystems"`
}

// Loader fetches the raw bytes of a layout.
type Loader func(s string, fs vfs.FS) ([]byte, error)

// FromFile reads a layout from fs.
func FromFile(s string, fs vfs.FS) ([]byte, error) {
	return fs.ReadFile(s)
}

// FromUrl downloads a layout.
func FromUrl(s string, fs vfs.FS) ([]byte, error) {
	resp, err := http.Get(s)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 > 2 {
		return nil, fmt.Errorf("%s %s", resp.Proto, resp.Status)
	}

	buf := bytes.NewBuffer([]byte{})
	_, err = io.Copy(buf, resp.Body)
	return buf.Bytes(), err
}

// Load fetches s with l and decodes it. A nil loader treats s as the YAML itself.
func Load(s string, fs vfs.FS, l Loader) (*Config, error) {
	data := []byte(s)
	if l != nil {
		var err error
		data, err = l(s, fs)
		if err != nil {
			return nil, errors.Wrapf(err, "while loading %s", s)
		}
	}
	return LoadFromYaml(data)
}

// LoadFromYaml decodes a layout.
func LoadFromYaml(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Render expands templates in devices and labels, resolves "auto" UUIDs and
// canonicalizes type names. extra values override the layout values.
func (c *Config) Render(extra map[string]string) error {
	values := map[string]string{}
	for k, v := range c.Values {
		values[k] = v
	}
	for k, v := range extra {
		values[k] = v
	}

	var errs error
	for i := range c.Filesystems {
		f := &c.Filesystems[i]
		f.Type = formats.Canonical(strings.TrimSpace(f.Type))

		device, err := utils.TemplatedString(f.Device, values)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "rendering device of entry %d", i))
			continue
		}
		f.Device = device

		label, err := utils.TemplatedString(f.Label, values)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "rendering label of %s", f.Name()))
			continue
		}
		f.Label = label

		if f.UUID == AutoUUID {
			id, err := formats.NewUUID(f.Type, f.Device+f.Label)
			if err != nil {
				errs = multierror.Append(errs, errors.Wrapf(err, "generating uuid for %s", f.Name()))
				continue
			}
			f.UUID = id
		}
	}
	return errs
}

// Validate checks every entry against the filesystem registry.
func (c *Config) Validate() error {
	var errs error
	for i, f := range c.Filesystems {
		if _, ok := formats.Lookup(f.Type); !ok {
			errs = multierror.Append(errs, fmt.Errorf("entry %d: unknown filesystem type %q", i, f.Type))
			continue
		}
		if strings.TrimSpace(f.Device) == "" {
			errs = multierror.Append(errs, fmt.Errorf("entry %d (%s): no device", i, f.Type))
		}
		if f.Label != "" && f.UnsetLabel {
			errs = multierror.Append(errs, fmt.Errorf("%s: label and unset_label are mutually exclusive", f.Name()))
		}
		if f.UnsetLabel && formats.Labeling(f.Type) && !formats.LabelUnsettable(f.Type) {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", f.Name(), formats.ErrUnsetNotSupported))
		}
		if f.Label != "" && !formats.LabelFormatOK(f.Type, f.Label) {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w: %q", f.Name(), formats.ErrBadLabelFormat, f.Label))
		}
		if f.UUID != "" && f.UUID != AutoUUID && !formats.UUIDFormatOK(f.Type, f.UUID) {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w: %q", f.Name(), formats.ErrBadUUIDFormat, f.UUID))
		}
		if f.Verify && !formats.LabelReadable(f.Type) {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", f.Name(), formats.ErrNoReadApplication))
		}
	}
	return errs
}
