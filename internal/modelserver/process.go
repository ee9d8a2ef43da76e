package modelserver

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

const (
	serverStartTimeout    = 20 * time.Second
	serverStartPollPeriod = 1 * time.Second
	serverStopPolite      = 5 * time.Second
	serverStopForce       = 3 * time.Second
)

// StartServer spawns the server subprocess detached and polls until it
// answers or the 20-second budget is spent (spec §4.7 "Server start").
// Returns (alreadyRunning, error); alreadyRunning distinguishes "nothing to
// do" from a fresh successful start for the caller's log/response message.
func (m *Manager) StartServer(ctx context.Context) (alreadyRunning bool, err error) {
	if _, ok := m.probeServer(ctx); ok {
		return true, nil
	}

	cmd := exec.Command(processName, "serve")
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("modelserver: start: %w", err)
	}

	m.invalidateCache()

	deadline := time.Now().Add(serverStartTimeout)
	for time.Now().Before(deadline) {
		time.Sleep(serverStartPollPeriod)
		if running, _ := m.probeServer(ctx); running {
			return false, nil
		}
	}
	return false, fmt.Errorf("modelserver: server did not become ready within %s", serverStartTimeout)
}

// StopServer polite-terminates the server, escalating to a force-kill, per
// spec §4.7 "Server stop". Returns (alreadyStopped, error).
func (m *Manager) StopServer(ctx context.Context) (alreadyStopped bool, err error) {
	if running, _ := m.probeServer(ctx); !running {
		return true, nil
	}

	defer m.invalidateCache()

	pids := findServerProcesses()
	terminatePolite(pids)
	if waitForStop(ctx, m, serverStopPolite) {
		return false, nil
	}

	terminateForce(pids)
	if waitForStop(ctx, m, serverStopForce) {
		return false, nil
	}
	return false, fmt.Errorf("modelserver: server did not stop within the polite+force budget")
}

func waitForStop(ctx context.Context, m *Manager, budget time.Duration) bool {
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		if running, _ := m.probeServer(ctx); !running {
			return true
		}
		time.Sleep(1 * time.Second)
	}
	running, _ := m.probeServer(ctx)
	return !running
}
