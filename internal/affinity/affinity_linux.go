//go:build linux

package affinity

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"golang.org/x/sys/unix"
)

// Available returns the ids of the cores the process may currently run on,
// in ascending order.
func Available() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("sched_getaffinity: %w", err)
	}

	n := set.Count()
	ids := make([]int, 0, n)
	for cpu := 0; len(ids) < n; cpu++ {
		if set.IsSet(cpu) {
			ids = append(ids, cpu)
		}
	}
	return ids, nil
}

// Pin restricts every thread of the process to core. Threads created
// afterwards inherit the mask from the thread that spawns them.
func Pin(core int) error {
	ids, err := Available()
	if err != nil {
		return err
	}
	if !slices.Contains(ids, core) {
		return fmt.Errorf("%w: %d (available: %v)", ErrCoreNotFound, core, ids)
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(core)

	for _, tid := range threadIDs() {
		if err := unix.SchedSetaffinity(tid, &set); err != nil {
			if errors.Is(err, unix.ESRCH) {
				// thread exited meanwhile
				continue
			}
			return fmt.Errorf("sched_setaffinity(%d): %w", tid, err)
		}
	}
	return nil
}

// threadIDs lists the process's threads. Without /proc only the calling
// thread (tid 0) is returned.
func threadIDs() []int {
	entries, err := os.ReadDir("/proc/self/task")
	if err != nil {
		return []int{0}
	}

	tids := make([]int, 0, len(entries))
	for _, e := range entries {
		if tid, err := strconv.Atoi(e.Name()); err == nil {
			tids = append(tids, tid)
		}
	}
	if len(tids) == 0 {
		return []int{0}
	}
	return tids
}
