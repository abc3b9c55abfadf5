package run

import (
	"sync"

	"github.com/google/uuid"
)

// projectLocks serializes run-number allocation per project within this
// process, the in-process half of the "single-process lock or
// atomic-create-directory loop" requirement from spec.md §5. Cross-process
// contention is out of scope: the engine runs as a single local process.
var (
	projectLocksMu sync.Mutex
	projectLocks   = make(map[string]*sync.Mutex)
)

func projectLock(projectID string) *sync.Mutex {
	projectLocksMu.Lock()
	defer projectLocksMu.Unlock()
	if l, ok := projectLocks[projectID]; ok {
		return l
	}
	l := &sync.Mutex{}
	projectLocks[projectID] = l
	return l
}

// newRunHandle mints an opaque id identifying a single run, stored alongside
// its run number in metadata.yaml. Run numbers are stable, human-facing
// sequence points scoped to a project; the handle is a globally unique
// identity for the run itself, mirroring the teacher's localLock use of
// uuid for lock/resource identity.
func newRunHandle() string {
	return uuid.New().String()
}
