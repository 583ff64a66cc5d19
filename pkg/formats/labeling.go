package formats

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// LabelShape is the argument order a label tool expects.
type LabelShape int

const (
	// FlaggedShort is `tool -l <label> <device>`.
	FlaggedShort LabelShape = iota + 1
	// FlaggedLong is `tool -L <label> <device>`.
	FlaggedLong
	// Positional is `tool <device> <label>`.
	Positional
)

func (s LabelShape) String() string {
	switch s {
	case FlaggedShort:
		return "flagged-short"
	case FlaggedLong:
		return "flagged-long"
	case Positional:
		return "positional"
	}
	return "unknown"
}

// LabelCommand describes the tool that writes a label.
type LabelCommand struct {
	Tool  string
	Shape LabelShape
}

// Args builds the argv for setting label on device. It does no validation.
func (c LabelCommand) Args(device, label string) []string {
	switch c.Shape {
	case FlaggedShort:
		return []string{c.Tool, "-l", label, device}
	case FlaggedLong:
		return []string{c.Tool, "-L", label, device}
	default:
		return []string{c.Tool, device, label}
	}
}

// ReadCommand describes the tool that reads a label back from a device.
type ReadCommand struct {
	Tool  string
	Flags []string
	Parse func(output string) (string, error)
}

func (c ReadCommand) Args(device string) []string {
	args := append([]string{c.Tool}, c.Flags...)
	return append(args, device)
}

func bareLabel(out string) (string, error) {
	return strings.TrimRight(out, "\r\n"), nil
}

// dosfslabel prints "NO NAME" for a volume without a label.
func dosfsLabel(out string) (string, error) {
	l := strings.TrimRight(out, "\r\n")
	if l == "NO NAME" {
		return "", nil
	}
	return l, nil
}

var xfsAdminLabel = regexp.MustCompile(`(?m)^label = "(.*)"\s*$`)

func xfsLabel(out string) (string, error) {
	m := xfsAdminLabel.FindStringSubmatch(out)
	if m == nil {
		return "", errors.Errorf("unexpected xfs_admin output: %q", strings.TrimSpace(out))
	}
	return m[1], nil
}

// MkfsCommand describes how a filesystem type is created.
type MkfsCommand struct {
	Tool string
	// Flags always passed before the per-call options.
	Flags []string
	// LabelFlag is the mkfs option carrying the label, empty when mkfs can't set one.
	LabelFlag string
	// UUIDArgs renders the mkfs options setting the UUID, nil when mkfs can't set one.
	UUIDArgs func(id string) []string
}

func (m MkfsCommand) args(device, label string, hasLabel bool, id string, hasUUID bool, extra []string) []string {
	args := append([]string{m.Tool}, m.Flags...)
	if hasLabel && m.LabelFlag != "" {
		args = append(args, m.LabelFlag, label)
	}
	if hasUUID && m.UUIDArgs != nil {
		args = append(args, m.UUIDArgs(id)...)
	}
	args = append(args, extra...)
	return append(args, device)
}

func flagUUID(flag string) func(string) []string {
	return func(id string) []string { return []string{flag, id} }
}

func xfsUUID(id string) []string { return []string{"-m", "uuid=" + id} }

// mkfs.fat wants the volume ID as 8 hex digits without the dash.
func fatUUID2VolID(id string) []string {
	return []string{"-i", strings.ReplaceAll(id, "-", "")}
}

// UUIDCommand describes the tool that rewrites the UUID of an existing filesystem.
type UUIDCommand struct {
	Tool string
	Flag string
}

func (c UUIDCommand) Args(device, id string) []string {
	return []string{c.Tool, c.Flag, id, device}
}
