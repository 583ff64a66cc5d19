// Copyright © 2021 Ettore Di Giacinto <mudler@mocaccino.org>
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, see <http://www.gnu.org/licenses/>.

package console

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mudler/fsformats/pkg/logger"
	"github.com/sirupsen/logrus"
)

type StandardConsole struct {
	logger logger.Interface
}

type StandardConsoleOptions func(*StandardConsole) error

func WithLogger(i logger.Interface) StandardConsoleOptions {
	return func(sc *StandardConsole) error {
		sc.logger = i
		return nil
	}
}

func NewStandardConsole(opts ...StandardConsoleOptions) *StandardConsole {
	c := &StandardConsole{
		logger: logrus.New(),
	}
	for _, o := range opts {
		o(c)
	}
	return c

}

// Run runs a shell line through `sh -c` and returns its combined output.
func (s StandardConsole) Run(cmd string, opts ...func(cmd *exec.Cmd)) (string, error) {
	s.logger.Debugf("running command `%s`", cmd)
	c := exec.Command("sh", "-c", cmd)
	for _, o := range opts {
		o(c)
	}
	out, err := c.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("failed to run %s: %v", cmd, err)
	}

	return string(out), err
}

// Exec runs argv directly, without a shell, so labels containing spaces or
// quotes reach the tool verbatim. Only stdout is returned; stderr is folded
// into the error on failure.
func (s StandardConsole) Exec(args []string, opts ...func(cmd *exec.Cmd)) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("no command given")
	}
	s.logger.Debugf("running command `%s`", strings.Join(args, " "))
	c := exec.Command(args[0], args[1:]...)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	for _, o := range opts {
		o(c)
	}
	out, err := c.Output()
	if err != nil {
		return string(out), fmt.Errorf("failed to run %s: %v: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	if stderr.Len() > 0 {
		s.logger.Debugf("%s stderr: %s", args[0], strings.TrimSpace(stderr.String()))
	}

	return string(out), nil
}
