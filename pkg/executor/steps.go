package executor

import (
	"github.com/mudler/fsformats/pkg/formats"
	"github.com/mudler/fsformats/pkg/logger"
	"github.com/mudler/fsformats/pkg/schema"
	"github.com/pkg/errors"
)

// CreateStep formats the device when the entry asks for it.
func CreateStep(l logger.Interface, e schema.Filesystem, fsys *formats.Filesystem) error {
	if !e.Format {
		return nil
	}
	return fsys.Create()
}

// UUIDStep rewrites the UUID of a filesystem that was not created by this run.
// Create already takes care of the UUID otherwise.
func UUIDStep(l logger.Interface, e schema.Filesystem, fsys *formats.Filesystem) error {
	if e.Format || e.UUID == "" {
		return nil
	}
	return fsys.WriteUUID()
}

// LabelStep writes or removes the label. mkfs already wrote it on freshly
// created filesystems.
func LabelStep(l logger.Interface, e schema.Filesystem, fsys *formats.Filesystem) error {
	if e.Label == "" && !e.UnsetLabel {
		return nil
	}
	if e.Format {
		if e.UnsetLabel || fsys.Variant().Mkfs.LabelFlag != "" {
			return nil
		}
	}
	if e.UnsetLabel {
		fsys.UnsetLabel()
	}
	return fsys.WriteLabel()
}

// VerifyStep reads the label back and compares it with the expected one.
func VerifyStep(l logger.Interface, e schema.Filesystem, fsys *formats.Filesystem) error {
	if !e.Verify {
		return nil
	}
	got, err := fsys.ReadLabel()
	if err != nil {
		return err
	}
	want, _ := fsys.Label()
	if got != want {
		return errors.Errorf("label mismatch on %s: expected %q, found %q", fsys.Device(), want, got)
	}
	l.Debugf("Label of %s verified", fsys.Device())
	return nil
}
