package formats_test

import (
	. "github.com/mudler/fsformats/pkg/formats"
	"github.com/mudler/fsformats/pkg/logger"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newFS(fsType string, opts ...Option) *Filesystem {
	opts = append([]Option{WithLogger(logger.NewNullLogger())}, opts...)
	f, err := New(fsType, opts...)
	Expect(err).ToNot(HaveOccurred())
	return f
}

var _ = Describe("Label commands", func() {
	var labeled map[string]*Filesystem

	BeforeEach(func() {
		labeled = map[string]*Filesystem{}
		for _, t := range Types() {
			if Labeling(t) {
				labeled[t] = newFS(t, WithDevice("/dev"), WithLabel("myfs"))
			}
		}
	})

	It("uses -l for reiserfs", func() {
		Expect(labeled[ReiserFS].SetLabelCommand()).To(Equal([]string{"reiserfstune", "-l", "myfs", "/dev"}))
	})

	It("uses -L for jfs and xfs", func() {
		Expect(labeled[Jfs].SetLabelCommand()).To(Equal([]string{"jfs_tune", "-L", "myfs", "/dev"}))
		Expect(labeled[Xfs].SetLabelCommand()).To(Equal([]string{"xfs_admin", "-L", "myfs", "/dev"}))
	})

	It("uses no flag for the ext family and fat", func() {
		for _, t := range []string{Ext2, Ext3, Ext4} {
			Expect(labeled[t].SetLabelCommand()).To(Equal([]string{"e2label", "/dev", "myfs"}), t)
		}
		Expect(labeled[Fat].SetLabelCommand()).To(Equal([]string{"dosfslabel", "/dev", "myfs"}))
	})

	It("covers every labeling type", func() {
		Expect(labeled).To(HaveLen(7))
		for t, f := range labeled {
			args := f.SetLabelCommand()
			Expect(args).To(HaveLen(map[LabelShape]int{FlaggedShort: 4, FlaggedLong: 4, Positional: 3}[f.Variant().SetLabel.Shape]), t)
			Expect(args).To(ContainElements("myfs", "/dev"), t)
		}
	})

	It("renders an absent label as empty", func() {
		f := labeled[Ext2]
		f.UnsetLabel()
		Expect(f.SetLabelCommand()).To(Equal([]string{"e2label", "/dev", ""}))
	})

	It("builds no command for non-labeling types", func() {
		f := newFS(Swap, WithDevice("/dev"), WithLabel("myfs"))
		Expect(f.SetLabelCommand()).To(BeNil())
		Expect(f.ReadLabelCommand()).To(BeNil())
	})

	It("stores any label verbatim on non-labeling types", func() {
		label := "Houston, we have a problem!"
		for _, t := range Types() {
			if Labeling(t) {
				continue
			}
			f := newFS(t, WithDevice("/dev"), WithLabel(label))
			l, ok := f.Label()
			Expect(ok).To(BeTrue(), t)
			Expect(l).To(Equal(label), t)
		}
	})

	It("builds readback commands", func() {
		Expect(labeled[Ext4].ReadLabelCommand()).To(Equal([]string{"e2label", "/dev"}))
		Expect(labeled[Fat].ReadLabelCommand()).To(Equal([]string{"dosfslabel", "/dev"}))
		Expect(labeled[Xfs].ReadLabelCommand()).To(Equal([]string{"xfs_admin", "-l", "/dev"}))
		Expect(labeled[Jfs].ReadLabelCommand()).To(BeNil())
		Expect(labeled[ReiserFS].ReadLabelCommand()).To(BeNil())
	})

	It("names the shapes", func() {
		Expect(FlaggedShort.String()).To(Equal("flagged-short"))
		Expect(FlaggedLong.String()).To(Equal("flagged-long"))
		Expect(Positional.String()).To(Equal("positional"))
	})
})

var _ = Describe("Mkfs commands", func() {
	DescribeTable("label and uuid flags",
		func(fsType string, opts []Option, expected []string) {
			f := newFS(fsType, append([]Option{WithDevice("/dev/vdb1")}, opts...)...)
			Expect(f.MkfsCommand()).To(Equal(expected))
		},
		Entry("ext4 bare", Ext4, nil, []string{"mkfs.ext4", "-F", "/dev/vdb1"}),
		Entry("ext4 labeled", Ext4, []Option{WithLabel("root")}, []string{"mkfs.ext4", "-F", "-L", "root", "/dev/vdb1"}),
		Entry("ext2 uuid", Ext2, []Option{WithUUID("01234567-1234-1234-1234-012345678911")},
			[]string{"mkfs.ext2", "-F", "-U", "01234567-1234-1234-1234-012345678911", "/dev/vdb1"}),
		Entry("fat labeled", Fat, []Option{WithLabel("EFI"), WithUUID("ABCD-EF01")},
			[]string{"mkfs.fat", "-n", "EFI", "-i", "ABCDEF01", "/dev/vdb1"}),
		Entry("xfs uuid", Xfs, []Option{WithLabel("data"), WithUUID("01234567-1234-1234-1234-012345678911")},
			[]string{"mkfs.xfs", "-f", "-L", "data", "-m", "uuid=01234567-1234-1234-1234-012345678911", "/dev/vdb1"}),
		Entry("reiserfs labeled", ReiserFS, []Option{WithLabel("data")}, []string{"mkreiserfs", "-f", "-f", "-l", "data", "/dev/vdb1"}),
		Entry("jfs labeled", Jfs, []Option{WithLabel("data")}, []string{"mkfs.jfs", "-q", "-L", "data", "/dev/vdb1"}),
		Entry("swap ignores label", Swap, []Option{WithLabel("mkswap is really pretty permissive about labels")}, []string{"mkswap", "/dev/vdb1"}),
		Entry("ext4 drops invalid uuid", Ext4, []Option{WithUUID("0invalid-uuid-with-righ-tlength00000")}, []string{"mkfs.ext4", "-F", "/dev/vdb1"}),
		Entry("xfs drops invalid label", Xfs, []Option{WithLabel("root file")}, []string{"mkfs.xfs", "-f", "/dev/vdb1"}),
		Entry("btrfs extra options", Btrfs, []Option{WithMkfsOptions("-m", "dup")}, []string{"mkfs.btrfs", "-f", "-m", "dup", "/dev/vdb1"}),
	)

	It("has no command for nfs", func() {
		Expect(newFS(NFS, WithDevice("server:/export")).MkfsCommand()).To(BeNil())
	})

	It("builds uuid rewrite commands", func() {
		id := "01234567-1234-1234-1234-012345678911"
		Expect(newFS(Ext4, WithDevice("/dev/vdb1"), WithUUID(id)).WriteUUIDCommand()).To(Equal([]string{"tune2fs", "-U", id, "/dev/vdb1"}))
		Expect(newFS(Xfs, WithDevice("/dev/vdb1"), WithUUID(id)).WriteUUIDCommand()).To(Equal([]string{"xfs_admin", "-U", id, "/dev/vdb1"}))
		Expect(newFS(ReiserFS, WithDevice("/dev/vdb1"), WithUUID(id)).WriteUUIDCommand()).To(Equal([]string{"reiserfstune", "-u", id, "/dev/vdb1"}))
		Expect(newFS(Fat, WithDevice("/dev/vdb1")).WriteUUIDCommand()).To(BeNil())
	})
})
