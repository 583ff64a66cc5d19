package cmd

import (
	"fmt"

	"github.com/google/shlex"
	"github.com/mudler/fsformats/pkg/formats"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func addDeviceFlags(c *cobra.Command) {
	c.Flags().StringP("type", "t", "", "filesystem type")
	c.Flags().StringP("device", "d", "", "block device")
	_ = c.MarkFlagRequired("type")
	_ = c.MarkFlagRequired("device")
}

// filesystem builds the Filesystem described by the command flags.
func filesystem(c *cobra.Command, exists bool) (*formats.Filesystem, error) {
	fsType, _ := c.Flags().GetString("type")
	device, _ := c.Flags().GetString("device")

	opts := []formats.Option{
		formats.WithDevice(device),
		formats.WithExists(exists),
		formats.WithConsole(newConsole()),
		formats.WithFS(hostFS),
		formats.WithLogger(log.StandardLogger()),
	}
	if f := c.Flags().Lookup("label"); f != nil && f.Changed {
		opts = append(opts, formats.WithLabel(f.Value.String()))
	}
	if f := c.Flags().Lookup("uuid"); f != nil && f.Changed {
		opts = append(opts, formats.WithUUID(f.Value.String()))
	}
	if f := c.Flags().Lookup("settle"); f != nil && f.Changed {
		opts = append(opts, formats.WithSettleCommand(f.Value.String()))
	}
	if f := c.Flags().Lookup("mkfs-options"); f != nil && f.Changed {
		mkfsOpts, err := shlex.Split(f.Value.String())
		if err != nil {
			return nil, err
		}
		opts = append(opts, formats.WithMkfsOptions(mkfsOpts...))
	}
	return formats.New(fsType, opts...)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a filesystem on a device",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		f, err := filesystem(cmd, false)
		checkErr(err)
		checkErr(f.Create())
	},
}

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Write or remove the label of an existing filesystem",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		unset, _ := cmd.Flags().GetBool("unset")
		if unset == cmd.Flags().Changed("label") {
			fail("exactly one of --label and --unset is required")
		}
		f, err := filesystem(cmd, true)
		checkErr(err)
		checkErr(f.WriteLabel())
	},
}

var readLabelCmd = &cobra.Command{
	Use:   "read-label",
	Short: "Print the label of an existing filesystem",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		f, err := filesystem(cmd, true)
		checkErr(err)
		l, err := f.ReadLabel()
		checkErr(err)
		fmt.Fprintln(cmd.OutOrStdout(), l)
	},
}

var uuidCmd = &cobra.Command{
	Use:   "uuid",
	Short: "Rewrite the UUID of an existing filesystem",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		f, err := filesystem(cmd, true)
		checkErr(err)
		checkErr(f.WriteUUID())
	},
}

func init() {
	addDeviceFlags(createCmd)
	createCmd.Flags().StringP("label", "l", "", "label to set at creation time")
	createCmd.Flags().StringP("uuid", "u", "", "uuid to set at creation time")
	createCmd.Flags().String("mkfs-options", "", "extra mkfs arguments")
	createCmd.Flags().String("settle", "", "shell command run after mkfs, e.g. 'udevadm settle'")

	addDeviceFlags(labelCmd)
	labelCmd.Flags().StringP("label", "l", "", "label to write")
	labelCmd.Flags().Bool("unset", false, "remove the label")

	addDeviceFlags(readLabelCmd)

	addDeviceFlags(uuidCmd)
	uuidCmd.Flags().StringP("uuid", "u", "", "uuid to write")
	_ = uuidCmd.MarkFlagRequired("uuid")

	rootCmd.AddCommand(createCmd, labelCmd, readLabelCmd, uuidCmd)
}
