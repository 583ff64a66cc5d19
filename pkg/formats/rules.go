package formats

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// LabelRule describes which labels a filesystem type accepts.
type LabelRule struct {
	MaxLength int
	// Allowed is checked for every rune of the label. A nil Allowed accepts any rune.
	Allowed func(rune) bool
}

// OK reports whether label satisfies the rule. Length is counted in runes,
// so the empty label always fits.
func (r LabelRule) OK(label string) bool {
	if utf8.RuneCountInString(label) > r.MaxLength {
		return false
	}
	if r.Allowed == nil {
		return true
	}
	for _, c := range label {
		if !r.Allowed(c) {
			return false
		}
	}
	return true
}

func noSpace(r rune) bool { return !unicode.IsSpace(r) }

var (
	extLabelRule      = LabelRule{MaxLength: 16}
	fatLabelRule      = LabelRule{MaxLength: 11}
	jfsLabelRule      = LabelRule{MaxLength: 16}
	reiserfsLabelRule = LabelRule{MaxLength: 16}
	xfsLabelRule      = LabelRule{MaxLength: 12, Allowed: noSpace}
)

// LabelFormatOK reports whether label is acceptable for fsType.
// Types that do not support labeling accept anything; unknown types accept nothing.
func LabelFormatOK(fsType, label string) bool {
	v, ok := Lookup(fsType)
	if !ok {
		return false
	}
	return v.LabelFormatOK(label)
}

// UUIDRule validates the textual form of a filesystem UUID or volume ID.
type UUIDRule func(string) bool

var (
	fatVolumeID = regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}$`)
	ntfsSerial  = regexp.MustCompile(`^[0-9A-F]{16}$`)
)

// rfc4122UUID only accepts the canonical dashed form; uuid.FromString on its
// own would also take braces, urn prefixes and undashed hex.
func rfc4122UUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.FromString(s)
	return err == nil
}

func fatUUID(s string) bool  { return fatVolumeID.MatchString(s) }
func ntfsUUID(s string) bool { return ntfsSerial.MatchString(s) }

// UUIDFormatOK reports whether id is a valid UUID for fsType.
func UUIDFormatOK(fsType, id string) bool {
	v, ok := Lookup(fsType)
	if !ok || v.UUIDRule == nil {
		return false
	}
	return v.UUIDRule(id)
}

// NewUUID derives a deterministic UUID for fsType from seed, rendered in the
// form the type expects (volume ID for fat, serial for ntfs).
func NewUUID(fsType, seed string) (string, error) {
	v, ok := Lookup(fsType)
	if !ok {
		return "", errors.Wrapf(ErrUnknownType, "%q", fsType)
	}
	if v.UUIDRule == nil {
		return "", errors.Wrapf(ErrNoUUIDApplication, "%s", v.Name)
	}
	id := uuid.NewV5(uuid.NamespaceURL, seed)
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	switch v.Name {
	case Fat:
		return hex[:4] + "-" + hex[4:8], nil
	case NTFS:
		return hex[:16], nil
	}
	return id.String(), nil
}
