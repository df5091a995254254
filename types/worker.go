package types

import "strconv"

// VirtualWorkerID identifies the logical simulation role of a worker process.
//
// Virtual worker ids are dense positive integers. They are independent of the
// physical connection a worker uses; a translation layer outside this library maps
// them onto running processes.
type VirtualWorkerID uint32

// InvalidVirtualWorkerID is the sentinel for "no worker" / "not yet assigned".
const InvalidVirtualWorkerID VirtualWorkerID = 0

// FirstVirtualWorkerID is the lowest assignable virtual worker id.
const FirstVirtualWorkerID = InvalidVirtualWorkerID + 1

// IsValid reports whether id is not the invalid sentinel.
func (id VirtualWorkerID) IsValid() bool {
	return id != InvalidVirtualWorkerID
}

// String returns the decimal form of the id, or "invalid" for the sentinel.
func (id VirtualWorkerID) String() string {
	if id == InvalidVirtualWorkerID {
		return "invalid"
	}

	return strconv.FormatUint(uint64(id), 10)
}

// WorkerRange is an inclusive, contiguous range of virtual worker ids.
type WorkerRange struct {
	First VirtualWorkerID `json:"first" yaml:"first"`
	Last  VirtualWorkerID `json:"last" yaml:"last"`
}

// Len returns the number of ids in the range (0 when Last < First).
func (r WorkerRange) Len() uint32 {
	if r.Last < r.First {
		return 0
	}

	return uint32(r.Last-r.First) + 1
}

// Contains reports whether id falls inside the range.
func (r WorkerRange) Contains(id VirtualWorkerID) bool {
	return id >= r.First && id <= r.Last && r.Len() > 0
}

// IDs expands the range into a slice of ids in ascending order.
func (r WorkerRange) IDs() []VirtualWorkerID {
	n := r.Len()
	if n == 0 {
		return nil
	}

	ids := make([]VirtualWorkerID, 0, n)
	for id := r.First; ; id++ {
		ids = append(ids, id)
		if id == r.Last {
			break
		}
	}

	return ids
}
