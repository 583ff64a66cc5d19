package cmd

import (
	"fmt"

	"github.com/mudler/fsformats/pkg/formats"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func checkLabel(fsType, label string) error {
	if _, ok := formats.Lookup(fsType); !ok {
		return errors.Wrapf(formats.ErrUnknownType, "%q", fsType)
	}
	if !formats.LabelFormatOK(fsType, label) {
		return errors.Wrapf(formats.ErrBadLabelFormat, "%q for %s", label, fsType)
	}
	return nil
}

func checkUUID(fsType, id string) error {
	if _, ok := formats.Lookup(fsType); !ok {
		return errors.Wrapf(formats.ErrUnknownType, "%q", fsType)
	}
	if !formats.UUIDFormatOK(fsType, id) {
		return errors.Wrapf(formats.ErrBadUUIDFormat, "%q for %s", id, fsType)
	}
	return nil
}

var checkLabelCmd = &cobra.Command{
	Use:     "check-label TYPE LABEL",
	Short:   "Check whether a label is valid for a filesystem type",
	Example: "fsformats check-label xfs root",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		checkErr(checkLabel(args[0], args[1]))
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
	},
}

var checkUUIDCmd = &cobra.Command{
	Use:     "check-uuid TYPE UUID",
	Short:   "Check whether a UUID is valid for a filesystem type",
	Example: "fsformats check-uuid vfat 2E24-EC82",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		checkErr(checkUUID(args[0], args[1]))
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
	},
}

func init() {
	rootCmd.AddCommand(checkLabelCmd, checkUUIDCmd)
}
