//go:build windows

package supervisor

import (
	"os/exec"
	"strconv"
	"syscall"
)

// DefaultShell interprets task commands when no shell is configured.
const DefaultShell = "cmd.exe"

func shellArgs(command string) []string {
	return []string{"/C", command}
}

// setProcAttr starts the child in a new process group.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// killGroup terminates the process tree rooted at pgid. Windows has no
// graceful group signal, so every signal ends the tree.
func killGroup(pgid int, _ syscall.Signal) error {
	return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pgid)).Run()
}
