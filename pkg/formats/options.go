package formats

import (
	"github.com/mudler/fsformats/pkg/logger"
	"github.com/twpayne/go-vfs/v4"
)

// Option configures a Filesystem at construction time.
type Option func(*Filesystem) error

func WithDevice(device string) Option {
	return func(f *Filesystem) error {
		f.device = device
		return nil
	}
}

// WithLabel sets the initial label. Not passing it leaves the label absent.
func WithLabel(label string) Option {
	return func(f *Filesystem) error {
		f.SetLabel(label)
		return nil
	}
}

func WithUUID(id string) Option {
	return func(f *Filesystem) error {
		f.SetUUID(id)
		return nil
	}
}

// WithExists marks the device as already carrying this filesystem, so the
// instance starts Formatted and label operations are allowed without Create.
func WithExists(exists bool) Option {
	return func(f *Filesystem) error {
		if exists {
			f.state = Formatted
		}
		return nil
	}
}

// WithMkfsOptions appends extra mkfs arguments, placed right before the device.
func WithMkfsOptions(opts ...string) Option {
	return func(f *Filesystem) error {
		f.mkfsOptions = append(f.mkfsOptions, opts...)
		return nil
	}
}

// WithSettleCommand sets a shell line run best-effort after a successful Create,
// e.g. "udevadm trigger && udevadm settle".
func WithSettleCommand(cmd string) Option {
	return func(f *Filesystem) error {
		f.settle = cmd
		return nil
	}
}

func WithConsole(c Console) Option {
	return func(f *Filesystem) error {
		f.console = c
		return nil
	}
}

// WithFS sets the filesystem used to check the device path before Create.
// A nil fs disables the check.
func WithFS(fs vfs.FS) Option {
	return func(f *Filesystem) error {
		f.fs = fs
		return nil
	}
}

func WithLogger(l logger.Interface) Option {
	return func(f *Filesystem) error {
		f.logger = l
		return nil
	}
}
