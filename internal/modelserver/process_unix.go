//go:build !windows

package modelserver

import (
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

// findServerProcesses enumerates server processes by command-line match,
// grounded on original_source/app/backend/services/ollama_service.py's
// `pgrep -f "ollama serve"`.
func findServerProcesses() []int {
	out, err := exec.Command("pgrep", "-f", processName+" serve").Output()
	if err != nil {
		return nil
	}
	var pids []int
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		if pid, err := strconv.Atoi(line); err == nil {
			pids = append(pids, pid)
		}
	}
	return pids
}

func terminatePolite(pids []int) {
	for _, pid := range pids {
		_ = syscall.Kill(pid, syscall.SIGTERM)
	}
}

func terminateForce(pids []int) {
	for _, pid := range pids {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
}
