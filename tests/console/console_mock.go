package consoletests

import (
	"container/list"
	"errors"
	"os/exec"
	"regexp"
	"strings"

	"github.com/apex/log"
	. "github.com/onsi/gomega"
)

// CmdMock is an expected command. Output is returned on a match; Err, when
// set, makes the command fail after matching.
type CmdMock struct {
	Cmd       string
	Output    string
	Err       error
	UseRegexp bool
}

// TestConsoleMock replays a queue of expected commands in order and fails
// the running test on any mismatch.
type TestConsoleMock struct {
	Cmds *list.List
}

func New() *TestConsoleMock {
	return &TestConsoleMock{Cmds: list.New()}
}

func (s TestConsoleMock) AddCmd(cmd CmdMock) {
	s.Cmds.PushBack(&cmd)
}

func (s TestConsoleMock) AddCmds(cmds []CmdMock) {
	for _, cmd := range cmds {
		s.AddCmd(cmd)
	}
}

func (s TestConsoleMock) PopCmd() *CmdMock {
	e := s.Cmds.Front()
	if e == nil {
		return nil
	}
	s.Cmds.Remove(e)
	cmdMock := e.Value.(*CmdMock)
	return cmdMock
}

// Pending returns how many expected commands were not consumed yet.
func (s TestConsoleMock) Pending() int {
	return s.Cmds.Len()
}

func (s TestConsoleMock) match(cmd string) (string, error) {
	cmdMock := s.PopCmd()
	Expect(cmdMock).NotTo(BeNil(), "unexpected command: %s", cmd)
	Expect(cmdMock.Cmd).ToNot(Equal(""))
	Expect(cmd).ToNot(Equal(""))
	if cmdMock.UseRegexp {
		if matched, _ := regexp.MatchString(cmdMock.Cmd, cmd); matched {
			return cmdMock.Output, cmdMock.Err
		}
	} else {
		if cmdMock.Cmd == cmd {
			return cmdMock.Output, cmdMock.Err
		}
	}

	log.Errorf("expected `%s`, got `%s`", cmdMock.Cmd, cmd)
	Expect(cmd).To(Equal(cmdMock.Cmd))
	return "", errors.New("Unexpected command")
}

func (s TestConsoleMock) Run(cmd string, opts ...func(*exec.Cmd)) (string, error) {
	return s.match(cmd)
}

func (s TestConsoleMock) Exec(args []string, opts ...func(*exec.Cmd)) (string, error) {
	return s.match(strings.Join(args, " "))
}
