package backend

import "sync"

// ResetShared forgets the process-wide handle.
func ResetShared() {
	sharedOnce = sync.Once{}
	sharedSvc, sharedErr = nil, nil
}
