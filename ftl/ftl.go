// Package ftl defines the variant-dispatch contract that every FTL
// implementation satisfies (mnftl.Engine, ftlpage.Engine, ...), and the
// interfaces those implementations consume: the Device and BlockManager
// that the core mapping engine treats as opaque collaborators.
//
// This is a re-expression of the original FtlParent/Controller/
// Block_manager inheritance-and-friend-class arrangement as plain Go
// interfaces with explicit dependency injection, per the redesign notes:
// no virtual dispatch, no process-wide singleton.
package ftl

import (
	"errors"

	"github.com/Lynxx9/MNFTL/ftlevent"
)

// Sentinel errors returned by Ftl implementations. Use errors.Is to test
// for them; DeviceFailure wraps whatever the Device returned.
var (
	// ErrInvalidLPN is returned when a logical address exceeds the
	// addressable range. This is a driver bug, not a recoverable condition.
	ErrInvalidLPN = errors.New("ftl: logical address exceeds addressable range")

	// ErrOutOfBlocks is returned when the BlockManager cannot produce a
	// free block even after triggering garbage collection.
	ErrOutOfBlocks = errors.New("ftl: block manager reports no free blocks")

	// ErrDeviceFailure is returned when a primitive physical event issued
	// to the Device comes back FAILURE.
	ErrDeviceFailure = errors.New("ftl: device reported failure")
)

// PageState is the state of a single physical page as tracked by the
// Device: never written, holding live data, or superseded.
type PageState int

// Recognized page states.
const (
	PageEmpty PageState = iota
	PageValid
	PageInvalid
)

// String renders the page state for logging.
func (s PageState) String() string {
	switch s {
	case PageEmpty:
		return "EMPTY"
	case PageValid:
		return "VALID"
	case PageInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Block is the minimal view of a physical block the core needs during
// cleanup: its identity, its base physical page number, its page count,
// and the per-page state the Device maintains.
type Block interface {
	ID() uint64
	PhysicalBase() uint64
	Size() int
	State(i int) PageState
}

// Device is the opaque NAND/bus model the core issues primitive events
// against. It owns page and block state; the core only mutates it by
// issuing events.
type Device interface {
	// Issue executes a primitive physical event (READ/WRITE/ERASE) at the
	// event's current Address (and ReplaceAddress, for WRITE). It adds
	// device-side latency to event.TimeTaken and returns a non-nil error
	// if the device reports failure; Ftl implementations wrap that error
	// in ErrDeviceFailure.
	Issue(event *ftlevent.Event) error

	// GetFreePage returns the next free page address within the block
	// named by blockAddr.
	GetFreePage(blockAddr ftlevent.Address) (ftlevent.Address, error)

	// BlockAt returns the Block containing the given address.
	BlockAt(addr ftlevent.Address) Block

	// AllBlocks returns every block the device manages, in block-id order.
	// The BlockManager uses it to seed its free pool and scan for GC
	// victims.
	AllBlocks() []Block
}

// BlockManager is the free-block pool / garbage-collection trigger the
// core asks for fresh write-frontier blocks. It may invoke an Ftl's
// CleanupBlock internally to satisfy a request.
type BlockManager interface {
	// GetFreeBlock returns a free physical block, triggering GC internally
	// if the free pool is empty. Returns ErrOutOfBlocks if none can be
	// freed.
	GetFreeBlock(event *ftlevent.Event) (Block, error)
}

// Ftl is the capability every FTL variant implements. MNFTL is the
// primary variant covered by this repository; ftlpage is a minimal
// second variant that exists to prove this is a real dispatch boundary.
type Ftl interface {
	Read(event *ftlevent.Event) error
	Write(event *ftlevent.Event) error
	Trim(event *ftlevent.Event) error
	CleanupBlock(event *ftlevent.Event, block Block) error
}
