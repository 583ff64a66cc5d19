package formats_test

import (
	"errors"

	. "github.com/mudler/fsformats/pkg/formats"
	console "github.com/mudler/fsformats/tests/console"
	"github.com/twpayne/go-vfs/v4/vfst"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const loop = "/dev/loop0"

var _ = Describe("Filesystem", func() {
	var fs *vfst.TestFS
	var cleanup func()
	var testConsole *console.TestConsoleMock

	BeforeEach(func() {
		var err error
		fs, cleanup, err = vfst.NewTestFS(map[string]interface{}{loop: ""})
		Expect(err).ShouldNot(HaveOccurred())
		testConsole = console.New()
	})

	AfterEach(func() {
		Expect(testConsole.Pending()).To(Equal(0))
		cleanup()
	})

	build := func(fsType string, opts ...Option) *Filesystem {
		return newFS(fsType, append([]Option{WithDevice(loop), WithFS(fs), WithConsole(testConsole)}, opts...)...)
	}

	Context("creating", func() {
		It("formats the device and becomes Formatted", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "mkfs.xfs -f /dev/loop0"})
			f := build(Xfs)
			Expect(f.Create()).To(Succeed())
			Expect(f.State()).To(Equal(Formatted))
		})

		It("passes the label to mkfs", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "mkfs.ext4 -F -L an fs /dev/loop0"})
			f := build(Ext4, WithLabel("an fs"))
			Expect(f.Create()).To(Succeed())
		})

		It("formats without a bad label", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "mkfs.xfs -f /dev/loop0"})
			f := build(Xfs, WithLabel("root___filesystem"))
			Expect(f.MkfsCommand()).To(Equal([]string{"mkfs.xfs", "-f", "/dev/loop0"}))
			Expect(f.Create()).To(Succeed())
			Expect(f.State()).To(Equal(Formatted))
			Expect(f.WriteLabel()).To(MatchError(ErrBadLabelFormat))
		})

		It("ignores the label of non-labeling types", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "mkswap /dev/loop0"})
			f := build(Swap, WithLabel("mkswap is really pretty permissive about labels"))
			Expect(f.Create()).To(Succeed())
		})

		It("stays Unformatted when mkfs fails", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "mkfs.ext2 -F /dev/loop0", Output: "device busy", Err: errors.New("exit status 1")})
			f := build(Ext2)
			err := f.Create()
			Expect(err).To(MatchError(ErrExecution))
			var execErr *ExecError
			Expect(errors.As(err, &execErr)).To(BeTrue())
			Expect(execErr.Args).To(Equal([]string{"mkfs.ext2", "-F", "/dev/loop0"}))
			Expect(execErr.Error()).To(ContainSubstring("device busy"))
			Expect(f.State()).To(Equal(Unformatted))
		})

		It("can only be created once", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "mkfs.ext2 -F /dev/loop0"})
			f := build(Ext2)
			Expect(f.Create()).To(Succeed())
			Expect(f.Create()).To(MatchError(ErrAlreadyFormatted))
		})

		It("requires a device", func() {
			f := newFS(Ext2, WithConsole(testConsole), WithFS(fs))
			Expect(f.Create()).To(MatchError(ErrNoDevice))
		})

		It("requires the device to exist", func() {
			f := newFS(Ext2, WithDevice("/dev/missing"), WithConsole(testConsole), WithFS(fs))
			Expect(f.Create()).To(HaveOccurred())
			Expect(f.State()).To(Equal(Unformatted))
		})

		It("can't create network filesystems", func() {
			f := build(NFS)
			Expect(f.Create()).To(MatchError(ErrNotFormattable))
		})

		It("runs the settle command after mkfs", func() {
			testConsole.AddCmds([]console.CmdMock{
				{Cmd: "mkfs.fat -n EFI /dev/loop0"},
				{Cmd: "udevadm trigger && udevadm settle", Err: errors.New("no udev")},
			})
			f := build(Vfat, WithLabel("EFI"), WithSettleCommand("udevadm trigger && udevadm settle"))
			Expect(f.Create()).To(Succeed())
		})

		It("writes the UUID afterwards when mkfs can't set it", func() {
			id := "01234567-1234-1234-1234-012345678911"
			testConsole.AddCmds([]console.CmdMock{
				{Cmd: "mkfs.jfs -q /dev/loop0"},
				{Cmd: "jfs_tune -U " + id + " /dev/loop0"},
			})
			f := build(Jfs, WithUUID(id))
			Expect(f.Create()).To(Succeed())
		})

		It("formats without a bad UUID", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "mkfs.fat /dev/loop0"})
			f := build(Fat, WithUUID("abcd-ef00"))
			Expect(f.Create()).To(Succeed())
			Expect(f.State()).To(Equal(Formatted))
		})

		It("formats ext4 without a malformed UUID", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "mkfs.ext4 -F /dev/loop0"})
			f := build(Ext4, WithUUID("0invalid-uuid-with-righ-tlength00000"))
			Expect(f.Create()).To(Succeed())
			Expect(f.State()).To(Equal(Formatted))
			Expect(f.WriteUUID()).To(MatchError(ErrBadUUIDFormat))
		})

		It("does not rewrite a bad UUID after mkfs", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "mkfs.jfs -q /dev/loop0"})
			f := build(Jfs, WithUUID("not-a-uuid"))
			Expect(f.Create()).To(Succeed())
		})
	})

	Context("labeling", func() {
		It("needs a formatted filesystem", func() {
			f := build(Ext2, WithLabel("an fs"))
			Expect(f.WriteLabel()).To(MatchError(ErrNotFormatted))
			_, err := f.ReadLabel()
			Expect(err).To(MatchError(ErrNotFormatted))
		})

		It("round-trips xfs labels and refuses to unset them", func() {
			testConsole.AddCmds([]console.CmdMock{
				{Cmd: "mkfs.xfs -f /dev/loop0"},
				{Cmd: "xfs_admin -L temeraire /dev/loop0"},
				{Cmd: "xfs_admin -l /dev/loop0", Output: "label = \"temeraire\"\n"},
				{Cmd: "xfs_admin -l /dev/loop0", Output: "label = \"temeraire\"\n"},
			})
			f := build(Xfs)
			Expect(f.Create()).To(Succeed())

			f.SetLabel("temeraire")
			Expect(f.WriteLabel()).To(Succeed())
			Expect(f.ReadLabel()).To(Equal("temeraire"))

			f.UnsetLabel()
			Expect(f.WriteLabel()).To(MatchError(ErrUnsetNotSupported))
			Expect(f.ReadLabel()).To(Equal("temeraire"))

			f.SetLabel("root___filesystem")
			Expect(f.WriteLabel()).To(MatchError(ErrBadLabelFormat))
		})

		It("round-trips fat labels including unset", func() {
			testConsole.AddCmds([]console.CmdMock{
				{Cmd: "mkfs.fat /dev/loop0"},
				{Cmd: "dosfslabel /dev/loop0 an fs"},
				{Cmd: "dosfslabel /dev/loop0", Output: "an fs\n"},
				{Cmd: "dosfslabel /dev/loop0 "},
				{Cmd: "dosfslabel /dev/loop0", Output: "NO NAME\n"},
			})
			f := build(Fat)
			Expect(f.Create()).To(Succeed())

			f.SetLabel("an fs")
			Expect(f.WriteLabel()).To(Succeed())
			Expect(f.ReadLabel()).To(Equal("an fs"))

			f.UnsetLabel()
			Expect(f.WriteLabel()).To(Succeed())
			Expect(f.ReadLabel()).To(Equal(""))

			f.SetLabel("root___filesystem")
			Expect(f.WriteLabel()).To(MatchError(ErrBadLabelFormat))
		})

		It("round-trips ext2 labels including unset", func() {
			testConsole.AddCmds([]console.CmdMock{
				{Cmd: "e2label /dev/loop0 an fs"},
				{Cmd: "e2label /dev/loop0", Output: "an fs\n"},
				{Cmd: "e2label /dev/loop0 "},
				{Cmd: "e2label /dev/loop0", Output: "\n"},
			})
			f := build(Ext2, WithExists(true))
			Expect(f.Formatted()).To(BeTrue())

			f.SetLabel("an fs")
			Expect(f.WriteLabel()).To(Succeed())
			Expect(f.ReadLabel()).To(Equal("an fs"))

			f.UnsetLabel()
			Expect(f.WriteLabel()).To(Succeed())
			Expect(f.ReadLabel()).To(Equal(""))
		})

		for _, t := range []string{Jfs, ReiserFS} {
			fsType := t
			It("writes but can't read "+fsType+" labels", func() {
				f := build(fsType, WithExists(true))
				f.SetLabel("an fs")
				testConsole.AddCmds([]console.CmdMock{
					{Cmd: f.Variant().SetLabel.Tool + " .* an fs /dev/loop0", UseRegexp: true},
					{Cmd: f.Variant().SetLabel.Tool + " .*  /dev/loop0", UseRegexp: true},
				})
				Expect(f.WriteLabel()).To(Succeed())

				_, err := f.ReadLabel()
				Expect(err).To(MatchError(ErrNoReadApplication))

				f.UnsetLabel()
				Expect(f.WriteLabel()).To(Succeed())

				f.SetLabel("root___filesystem")
				Expect(f.WriteLabel()).To(MatchError(ErrBadLabelFormat))
			})
		}

		It("treats writes on non-labeling types as no-ops", func() {
			f := build(Swap, WithExists(true), WithLabel("Houston, we have a problem!"))
			Expect(f.WriteLabel()).To(Succeed())
			f.UnsetLabel()
			Expect(f.WriteLabel()).To(Succeed())
			_, err := f.ReadLabel()
			Expect(err).To(MatchError(ErrNoReadApplication))
		})

		It("reports tool failures as execution errors", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "e2label /dev/loop0 data", Err: errors.New("exit status 1")})
			f := build(Ext4, WithExists(true), WithLabel("data"))
			err := f.WriteLabel()
			Expect(err).To(MatchError(ErrExecution))
			Expect(err).ToNot(MatchError(ErrBadLabelFormat))
		})

		It("fails on unparsable xfs_admin output", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "xfs_admin -l /dev/loop0", Output: "garbage"})
			f := build(Xfs, WithExists(true))
			_, err := f.ReadLabel()
			Expect(err).To(HaveOccurred())
		})
	})

	Context("uuids", func() {
		id := "01234567-1234-1234-1234-012345678911"

		It("rewrites the UUID of an existing filesystem", func() {
			testConsole.AddCmd(console.CmdMock{Cmd: "tune2fs -U " + id + " /dev/loop0"})
			f := build(Ext4, WithExists(true), WithUUID(id))
			Expect(f.WriteUUID()).To(Succeed())
		})

		It("needs a UUID", func() {
			f := build(Ext4, WithExists(true))
			Expect(f.WriteUUID()).To(MatchError(ErrNoUUID))
		})

		It("needs a tool", func() {
			f := build(Fat, WithExists(true), WithUUID("ABCD-EF01"))
			Expect(f.WriteUUID()).To(MatchError(ErrNoUUIDApplication))
		})

		It("writes the UUID after mkfs when mkfs can't", func() {
			console.Reset()
			f := newFS(Jfs, WithDevice(loop), WithFS(fs), WithConsole(console.TestConsole{}),
				WithLabel("data"), WithUUID(id), WithSettleCommand("udevadm settle"))
			Expect(f.Create()).To(Succeed())
			Expect(console.Commands).To(Equal([]string{
				"mkfs.jfs -q -L data /dev/loop0",
				"udevadm settle",
				"jfs_tune -U " + id + " /dev/loop0",
			}))
		})
	})
})
