package formats

import (
	"sort"
	"strings"
)

const (
	Ext2     = "ext2"
	Ext3     = "ext3"
	Ext4     = "ext4"
	Fat      = "fat"
	Vfat     = "vfat"
	Fat16    = "fat16"
	Fat32    = "fat32"
	Jfs      = "jfs"
	ReiserFS = "reiserfs"
	Xfs      = "xfs"
	Btrfs    = "btrfs"
	HFSPlus  = "hfsplus"
	NTFS     = "ntfs"
	Swap     = "swap"
	NFS      = "nfs"
	NFS4     = "nfs4"
)

// Variant is the capability record of a filesystem type. Everything that
// differs between types lives here and is consulted by Filesystem.
type Variant struct {
	Name    string
	Aliases []string

	// LabelRule and SetLabel are both set for labeling types and both nil otherwise.
	LabelRule *LabelRule
	SetLabel  *LabelCommand
	ReadLabel *ReadCommand
	// UnsetLabel reports whether the label tool accepts an empty label.
	UnsetLabel bool

	Mkfs      *MkfsCommand
	UUIDRule  UUIDRule
	WriteUUID *UUIDCommand
}

func (v Variant) Labeling() bool { return v.SetLabel != nil }

func (v Variant) LabelReadable() bool { return v.ReadLabel != nil }

func (v Variant) LabelUnsettable() bool { return v.Labeling() && v.UnsetLabel }

func (v Variant) Formattable() bool { return v.Mkfs != nil }

// LabelFormatOK validates label against the type rule. Non-labeling types
// never reject a label.
func (v Variant) LabelFormatOK(label string) bool {
	if !v.Labeling() {
		return true
	}
	return v.LabelRule.OK(label)
}

func extVariant(name string) Variant {
	return Variant{
		Name:       name,
		LabelRule:  &extLabelRule,
		SetLabel:   &LabelCommand{Tool: "e2label", Shape: Positional},
		ReadLabel:  &ReadCommand{Tool: "e2label", Parse: bareLabel},
		UnsetLabel: true,
		Mkfs:       &MkfsCommand{Tool: "mkfs." + name, Flags: []string{"-F"}, LabelFlag: "-L", UUIDArgs: flagUUID("-U")},
		UUIDRule:   rfc4122UUID,
		WriteUUID:  &UUIDCommand{Tool: "tune2fs", Flag: "-U"},
	}
}

var registry = map[string]Variant{}
var aliases = map[string]string{}

func register(v Variant) {
	registry[v.Name] = v
	for _, a := range v.Aliases {
		aliases[a] = v.Name
	}
}

func init() {
	register(extVariant(Ext2))
	register(extVariant(Ext3))
	register(extVariant(Ext4))
	register(Variant{
		Name:       Fat,
		Aliases:    []string{Vfat, Fat16, Fat32},
		LabelRule:  &fatLabelRule,
		SetLabel:   &LabelCommand{Tool: "dosfslabel", Shape: Positional},
		ReadLabel:  &ReadCommand{Tool: "dosfslabel", Parse: dosfsLabel},
		UnsetLabel: true,
		Mkfs:       &MkfsCommand{Tool: "mkfs.fat", LabelFlag: "-n", UUIDArgs: fatUUID2VolID},
		UUIDRule:   fatUUID,
	})
	register(Variant{
		Name:       Jfs,
		LabelRule:  &jfsLabelRule,
		SetLabel:   &LabelCommand{Tool: "jfs_tune", Shape: FlaggedLong},
		UnsetLabel: true,
		Mkfs:       &MkfsCommand{Tool: "mkfs.jfs", Flags: []string{"-q"}, LabelFlag: "-L"},
		UUIDRule:   rfc4122UUID,
		WriteUUID:  &UUIDCommand{Tool: "jfs_tune", Flag: "-U"},
	})
	register(Variant{
		Name:       ReiserFS,
		LabelRule:  &reiserfsLabelRule,
		SetLabel:   &LabelCommand{Tool: "reiserfstune", Shape: FlaggedShort},
		UnsetLabel: true,
		Mkfs:       &MkfsCommand{Tool: "mkreiserfs", Flags: []string{"-f", "-f"}, LabelFlag: "-l", UUIDArgs: flagUUID("-u")},
		UUIDRule:   rfc4122UUID,
		WriteUUID:  &UUIDCommand{Tool: "reiserfstune", Flag: "-u"},
	})
	register(Variant{
		Name:      Xfs,
		LabelRule: &xfsLabelRule,
		SetLabel:  &LabelCommand{Tool: "xfs_admin", Shape: FlaggedLong},
		ReadLabel: &ReadCommand{Tool: "xfs_admin", Flags: []string{"-l"}, Parse: xfsLabel},
		Mkfs:      &MkfsCommand{Tool: "mkfs.xfs", Flags: []string{"-f"}, LabelFlag: "-L", UUIDArgs: xfsUUID},
		UUIDRule:  rfc4122UUID,
		WriteUUID: &UUIDCommand{Tool: "xfs_admin", Flag: "-U"},
	})
	register(Variant{
		Name:     Btrfs,
		Mkfs:     &MkfsCommand{Tool: "mkfs.btrfs", Flags: []string{"-f"}, UUIDArgs: flagUUID("-U")},
		UUIDRule: rfc4122UUID,
	})
	register(Variant{
		Name:     HFSPlus,
		Aliases:  []string{"hfs+"},
		Mkfs:     &MkfsCommand{Tool: "mkfs.hfsplus"},
		UUIDRule: rfc4122UUID,
	})
	register(Variant{
		Name:     NTFS,
		Mkfs:     &MkfsCommand{Tool: "mkntfs", Flags: []string{"-f"}},
		UUIDRule: ntfsUUID,
	})
	register(Variant{
		Name:      Swap,
		Mkfs:      &MkfsCommand{Tool: "mkswap", UUIDArgs: flagUUID("-U")},
		UUIDRule:  rfc4122UUID,
		WriteUUID: &UUIDCommand{Tool: "swaplabel", Flag: "-U"},
	})
	register(Variant{Name: NFS})
	register(Variant{Name: NFS4})
}

// Canonical resolves aliases ("vfat", "hfs+", ...) to the registered type key.
// Unknown keys are returned lowercased and unchanged.
func Canonical(fsType string) string {
	t := strings.ToLower(fsType)
	if a, ok := aliases[t]; ok {
		return a
	}
	return t
}

// Lookup returns a copy of the capability record for fsType. Changing it
// does not affect the registry.
func Lookup(fsType string) (Variant, bool) {
	v, ok := registry[Canonical(fsType)]
	if !ok {
		return Variant{}, false
	}
	return v.clone(), true
}

func (v Variant) clone() Variant {
	v.Aliases = append([]string(nil), v.Aliases...)
	if v.LabelRule != nil {
		r := *v.LabelRule
		v.LabelRule = &r
	}
	if v.SetLabel != nil {
		c := *v.SetLabel
		v.SetLabel = &c
	}
	if v.ReadLabel != nil {
		c := *v.ReadLabel
		c.Flags = append([]string(nil), c.Flags...)
		v.ReadLabel = &c
	}
	if v.Mkfs != nil {
		c := *v.Mkfs
		c.Flags = append([]string(nil), c.Flags...)
		v.Mkfs = &c
	}
	if v.WriteUUID != nil {
		c := *v.WriteUUID
		v.WriteUUID = &c
	}
	return v
}

// Types returns every registered type key, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for k := range registry {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

func Labeling(fsType string) bool {
	v, ok := Lookup(fsType)
	return ok && v.Labeling()
}

func LabelReadable(fsType string) bool {
	v, ok := Lookup(fsType)
	return ok && v.LabelReadable()
}

func LabelUnsettable(fsType string) bool {
	v, ok := Lookup(fsType)
	return ok && v.LabelUnsettable()
}
