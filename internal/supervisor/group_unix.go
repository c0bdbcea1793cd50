//go:build !windows

package supervisor

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultShell interprets task commands when no shell is configured.
const DefaultShell = "/bin/sh"

func shellArgs(command string) []string {
	return []string{"-c", command}
}

// setProcAttr places the child in a new process group led by itself, so a
// signal to the group reaches every descendant.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killGroup signals the whole process group. A group that no longer exists
// is not an error; its exit notification is still pending.
func killGroup(pgid int, sig syscall.Signal) error {
	err := unix.Kill(-pgid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
