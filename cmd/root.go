// Copyright © 2020 Ettore Di Giacinto <mudler@gentoo.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/mudler/fsformats/pkg/console"
	"github.com/mudler/fsformats/pkg/executor"
	"github.com/mudler/fsformats/pkg/formats"
	"github.com/mudler/fsformats/pkg/logger"
	"github.com/mudler/fsformats/pkg/schema"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-vfs/v4"
)

func fail(s string) {
	log.Error(s)
	os.Exit(1)
}

func checkErr(err error) {
	if err != nil {
		fail("fatal error: " + err.Error())
	}
}

func init() {
	log.SetLevel(logger.LevelFromEnv())
}

// hostFS and newConsole reach the host; tests replace them.
var (
	hostFS     vfs.FS = vfs.OSFS
	newConsole        = func() formats.Console {
		return console.NewStandardConsole(console.WithLogger(log.StandardLogger()))
	}
)

// values merges the --env-file files and then the --set pairs.
func values(cmd *cobra.Command) (map[string]string, error) {
	res := map[string]string{}
	files, _ := cmd.Flags().GetStringSlice("env-file")
	for _, f := range files {
		content, err := hostFS.ReadFile(f)
		if err != nil {
			return nil, err
		}
		env, err := godotenv.Unmarshal(string(content))
		if err != nil {
			return nil, err
		}
		for k, v := range env {
			res[k] = v
		}
	}
	set, _ := cmd.Flags().GetStringToString("set")
	for k, v := range set {
		res[k] = v
	}
	return res, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fsformats",
	Short: "Create and label filesystems",
	Long: `fsformats loads filesystem layout yamls and applies them to block devices.

For example:

	$> fsformats https://<layout.yaml> <layout-dir> ...
	$> fsformats --env-file site.env <layout.yaml>
	$> cat layout.yaml | fsformats -
`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fail("fsformats needs at least one path or url as argument")
		}
		checkErr(apply(cmd, args))
	},
}

func apply(cmd *cobra.Command, args []string) error {
	vals, err := values(cmd)
	if err != nil {
		return err
	}

	runner := executor.NewExecutor("default", executor.WithLogger(log.StandardLogger()), executor.WithValues(vals))
	c := newConsole()

	// Read yamls from STDIN
	if len(args) == 1 && args[0] == "-" {
		str, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		config, err := schema.LoadFromYaml(str)
		if err != nil {
			return err
		}
		return runner.Apply(*config, hostFS, c)
	}

	return runner.Run(hostFS, c, args...)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	checkErr(err)
}

func init() {
	rootCmd.Flags().StringSlice("env-file", []string{}, "dotenv files with template values")
	rootCmd.Flags().StringToString("set", map[string]string{}, "template values (key=value)")
}
