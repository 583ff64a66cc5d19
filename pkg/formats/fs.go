// Package formats models filesystem types as capability records and drives
// the external tools that create and label them.
//
// A Filesystem is bound to a device and starts Unformatted. Create formats the
// device and moves it to Formatted; WriteLabel, ReadLabel and WriteUUID are
// only valid once Formatted. Label text is validated per type before any tool
// runs, and each failure kind has its own sentinel error.
package formats

import (
	"os/exec"
	"strings"

	"github.com/mudler/fsformats/pkg/console"
	"github.com/mudler/fsformats/pkg/logger"
	"github.com/pkg/errors"
	"github.com/twpayne/go-vfs/v4"
)

// Console executes the external tools. It is the only way this package
// reaches outside the process.
type Console interface {
	Run(string, ...func(*exec.Cmd)) (string, error)
	Exec([]string, ...func(*exec.Cmd)) (string, error)
}

// State is the lifecycle state of a Filesystem.
type State int

const (
	Unformatted State = iota
	Formatted
)

func (s State) String() string {
	if s == Formatted {
		return "formatted"
	}
	return "unformatted"
}

// Filesystem is a filesystem type bound to a device. It is not safe for
// concurrent use.
type Filesystem struct {
	variant Variant
	device  string

	label    string
	hasLabel bool
	uuid     string
	hasUUID  bool

	state       State
	mkfsOptions []string
	settle      string

	console Console
	fs      vfs.FS
	logger  logger.Interface
}

// New constructs a Filesystem of the given type. It only fails for unknown
// types or failing options; an absent label is always accepted.
func New(fsType string, opts ...Option) (*Filesystem, error) {
	v, ok := Lookup(fsType)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%q", fsType)
	}
	l := logger.NewLogger()
	f := &Filesystem{
		variant: v,
		fs:      vfs.OSFS,
		logger:  l,
		console: console.NewStandardConsole(console.WithLogger(l)),
	}
	for _, o := range opts {
		if err := o(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Filesystem) Type() string     { return f.variant.Name }
func (f *Filesystem) Variant() Variant { return f.variant }
func (f *Filesystem) Device() string   { return f.device }
func (f *Filesystem) State() State     { return f.state }
func (f *Filesystem) Formatted() bool  { return f.state == Formatted }

func (f *Filesystem) Labeling() bool        { return f.variant.Labeling() }
func (f *Filesystem) LabelReadable() bool   { return f.variant.LabelReadable() }
func (f *Filesystem) LabelUnsettable() bool { return f.variant.LabelUnsettable() }

// Label returns the in-memory label and whether one is set.
func (f *Filesystem) Label() (string, bool) { return f.label, f.hasLabel }

// SetLabel stores label in memory. Nothing is validated or written until
// Create or WriteLabel.
func (f *Filesystem) SetLabel(label string) {
	f.label = label
	f.hasLabel = true
}

// UnsetLabel marks the label as absent; a following WriteLabel removes it.
func (f *Filesystem) UnsetLabel() {
	f.label = ""
	f.hasLabel = false
}

func (f *Filesystem) UUID() (string, bool) { return f.uuid, f.hasUUID }

func (f *Filesystem) SetUUID(id string) {
	f.uuid = id
	f.hasUUID = true
}

// SetLabelCommand returns the argv that sets the current label, an absent
// label being rendered as "". It returns nil for non-labeling types.
func (f *Filesystem) SetLabelCommand() []string {
	if !f.Labeling() {
		return nil
	}
	return f.variant.SetLabel.Args(f.device, f.label)
}

// ReadLabelCommand returns the argv that reads the label back, nil when the
// type has no readback tool.
func (f *Filesystem) ReadLabelCommand() []string {
	if !f.LabelReadable() {
		return nil
	}
	return f.variant.ReadLabel.Args(f.device)
}

// WriteUUIDCommand returns the argv that rewrites the UUID, nil when the type
// has no such tool.
func (f *Filesystem) WriteUUIDCommand() []string {
	if f.variant.WriteUUID == nil {
		return nil
	}
	return f.variant.WriteUUID.Args(f.device, f.uuid)
}

// MkfsCommand returns the argv that creates the filesystem, nil when the type
// can't be created. Labels and UUIDs failing their rule are left out.
func (f *Filesystem) MkfsCommand() []string {
	if !f.variant.Formattable() {
		return nil
	}
	return f.variant.Mkfs.args(f.device, f.label, f.mkfsLabel(), f.uuid, f.mkfsUUID(), f.mkfsOptions)
}

func (f *Filesystem) mkfsLabel() bool {
	return f.hasLabel && f.Labeling() && f.variant.LabelFormatOK(f.label)
}

func (f *Filesystem) mkfsUUID() bool {
	return f.hasUUID && f.variant.UUIDRule != nil && f.variant.UUIDRule(f.uuid)
}

func (f *Filesystem) exec(args []string) (string, error) {
	out, err := f.console.Exec(args)
	if err != nil {
		return out, &ExecError{Args: args, Output: out, Err: err}
	}
	return out, nil
}

func (f *Filesystem) checkDevice() error {
	if f.device == "" {
		return ErrNoDevice
	}
	if f.fs == nil {
		return nil
	}
	if _, err := f.fs.Stat(f.device); err != nil {
		return errors.Wrapf(err, "device %s", f.device)
	}
	return nil
}

// Create formats the device. A label or UUID that fails its rule is left out
// of mkfs with a warning. On failure the instance stays Unformatted.
func (f *Filesystem) Create() error {
	if f.Formatted() {
		return errors.Wrapf(ErrAlreadyFormatted, "%s on %s", f.Type(), f.device)
	}
	if !f.variant.Formattable() {
		return errors.Wrapf(ErrNotFormattable, "%s", f.Type())
	}
	if err := f.checkDevice(); err != nil {
		return err
	}
	if f.hasLabel && f.Labeling() && !f.mkfsLabel() {
		f.logger.Warnf("Label %q is not valid for %s, creating %s without it", f.label, f.Type(), f.device)
	}
	if f.hasUUID && !f.mkfsUUID() {
		f.logger.Warnf("UUID %q is not valid for %s, creating %s without it", f.uuid, f.Type(), f.device)
	}

	f.logger.Infof("Creating %s filesystem on %s", f.Type(), f.device)
	if _, err := f.exec(f.MkfsCommand()); err != nil {
		return err
	}
	f.state = Formatted

	if f.settle != "" {
		if out, err := f.console.Run(f.settle); err != nil {
			f.logger.Warnf("Settle command failed after creating %s: %s %s", f.device, err.Error(), out)
		}
	}

	if f.mkfsUUID() && f.variant.Mkfs.UUIDArgs == nil {
		if f.variant.WriteUUID == nil {
			f.logger.Warnf("%s can not set UUID %s on %s, leaving the generated one", f.Type(), f.uuid, f.device)
			return nil
		}
		return f.WriteUUID()
	}
	return nil
}

// WriteLabel persists the in-memory label to the device.
func (f *Filesystem) WriteLabel() error {
	if !f.Formatted() {
		return errors.Wrapf(ErrNotFormatted, "%s on %s", f.Type(), f.device)
	}
	if !f.Labeling() {
		f.logger.Debugf("%s does not support labels, not writing one", f.Type())
		return nil
	}
	if !f.hasLabel && !f.LabelUnsettable() {
		return errors.Wrapf(ErrUnsetNotSupported, "%s on %s", f.Type(), f.device)
	}
	if f.hasLabel && !f.variant.LabelFormatOK(f.label) {
		return errors.Wrapf(ErrBadLabelFormat, "%q for %s", f.label, f.Type())
	}
	if err := f.checkDevice(); err != nil {
		return err
	}

	if f.hasLabel {
		f.logger.Infof("Setting label %q on %s", f.label, f.device)
	} else {
		f.logger.Infof("Removing label from %s", f.device)
	}
	_, err := f.exec(f.SetLabelCommand())
	return err
}

// ReadLabel reads the label back from the device. Types without a readback
// tool always fail with ErrNoReadApplication.
func (f *Filesystem) ReadLabel() (string, error) {
	if !f.Formatted() {
		return "", errors.Wrapf(ErrNotFormatted, "%s on %s", f.Type(), f.device)
	}
	if !f.LabelReadable() {
		return "", errors.Wrapf(ErrNoReadApplication, "%s", f.Type())
	}
	if err := f.checkDevice(); err != nil {
		return "", err
	}
	out, err := f.exec(f.ReadLabelCommand())
	if err != nil {
		return "", err
	}
	label, err := f.variant.ReadLabel.Parse(out)
	if err != nil {
		return "", errors.Wrapf(err, "reading label of %s", f.device)
	}
	f.logger.Debugf("Read label %q from %s", label, f.device)
	return label, nil
}

// WriteUUID rewrites the UUID of an existing filesystem.
func (f *Filesystem) WriteUUID() error {
	if !f.Formatted() {
		return errors.Wrapf(ErrNotFormatted, "%s on %s", f.Type(), f.device)
	}
	if !f.hasUUID || strings.TrimSpace(f.uuid) == "" {
		return ErrNoUUID
	}
	if f.variant.UUIDRule == nil || !f.variant.UUIDRule(f.uuid) {
		return errors.Wrapf(ErrBadUUIDFormat, "%q for %s", f.uuid, f.Type())
	}
	if f.variant.WriteUUID == nil {
		return errors.Wrapf(ErrNoUUIDApplication, "%s", f.Type())
	}
	if err := f.checkDevice(); err != nil {
		return err
	}
	f.logger.Infof("Setting UUID %s on %s", f.uuid, f.device)
	_, err := f.exec(f.WriteUUIDCommand())
	return err
}
