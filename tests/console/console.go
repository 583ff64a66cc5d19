package consoletests

import (
	"os/exec"
	"strings"
)

// Commands holds every command seen by a TestConsole since the last Reset,
// argv joined by spaces.
var Commands []string

// TestConsole records every command it is given and always succeeds.
type TestConsole struct {
}

func (s TestConsole) Run(cmd string, opts ...func(*exec.Cmd)) (string, error) {
	Commands = append(Commands, cmd)
	return "", nil
}

func (s TestConsole) Exec(args []string, opts ...func(*exec.Cmd)) (string, error) {
	Commands = append(Commands, strings.Join(args, " "))
	return "", nil
}

func Reset() {
	Commands = []string{}
}
