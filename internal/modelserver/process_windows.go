//go:build windows

package modelserver

import (
	"os/exec"
	"syscall"
)

func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: 0x00000008} // DETACHED_PROCESS
}

func findServerProcesses() []int { return nil }

func terminatePolite(pids []int) {
	_ = exec.Command("taskkill", "/IM", processName+".exe").Run()
}

func terminateForce(pids []int) {
	_ = exec.Command("taskkill", "/F", "/IM", processName+".exe").Run()
}
