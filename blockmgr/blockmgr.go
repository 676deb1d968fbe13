// Package blockmgr implements the free-block pool and garbage-collection
// trigger named BlockManager in spec.md §6.3, grounded on
// original_source/ssd.h's Block_manager class. Victim selection (lowest
// valid-page count among blocks that are not a current write frontier) is
// re-expressed as a plain linear scan instead of ssd.h's
// boost::multi_index_container cost-ordered index, per spec.md §9's
// redesign note against that container.
package blockmgr

import (
	"github.com/Lynxx9/MNFTL/ftl"
	"github.com/Lynxx9/MNFTL/ftlevent"
)

// FrontierQuery lets the manager ask an Ftl which blocks are currently
// acting as write frontiers, so it never selects one of those as a GC
// victim. mnftl.Engine implements this.
type FrontierQuery interface {
	CurrentBlocks() map[uint64]bool
}

// Manager is the BlockManager: a free-block queue backed by a Device, with
// GC triggered against an explicitly injected Ftl rather than a process-
// wide singleton (spec.md §9 redesign note).
type Manager struct {
	device    ftl.Device
	frontier  FrontierQuery
	ftl       ftl.Ftl
	freeQueue []uint64
	inFlight  map[uint64]bool
}

// New creates a Manager over device, seeding its free pool with every
// block the device reports. Call SetFtl before the first GetFreeBlock that
// needs to trigger cleanup: the Ftl variant is constructed after the
// Manager (it takes the Manager as a constructor argument), so the
// frontier query cannot be supplied here too — SetFtl captures both.
func New(dev ftl.Device) *Manager {
	m := &Manager{
		device:   dev,
		inFlight: make(map[uint64]bool),
	}
	for _, b := range dev.AllBlocks() {
		m.freeQueue = append(m.freeQueue, b.ID())
	}
	return m
}

// SetFtl wires the Ftl variant this manager triggers cleanup against, and
// captures it as the FrontierQuery too (every Ftl variant in this
// repository implements both). This breaks the construction cycle: the
// Ftl needs a BlockManager at construction, and the BlockManager needs the
// Ftl afterwards.
func (m *Manager) SetFtl(impl ftl.Ftl) {
	m.ftl = impl
	if fq, ok := impl.(FrontierQuery); ok {
		m.frontier = fq
	}
}

// GetFreeBlock returns a free block, triggering garbage collection against
// a victim if the pool is empty.
func (m *Manager) GetFreeBlock(event *ftlevent.Event) (ftl.Block, error) {
	if len(m.freeQueue) == 0 {
		if err := m.reclaim(event); err != nil {
			return nil, err
		}
	}
	if len(m.freeQueue) == 0 {
		return nil, ftl.ErrOutOfBlocks
	}

	id := m.freeQueue[0]
	m.freeQueue = m.freeQueue[1:]
	return m.device.BlockAt(ftlevent.BlockAddress(id)), nil
}

// NumFree reports how many blocks are sitting in the free queue, for
// statistics and driver reporting.
func (m *Manager) NumFree() int {
	return len(m.freeQueue)
}

func (m *Manager) reclaim(event *ftlevent.Event) error {
	victim := m.selectVictim()
	if victim == nil {
		return ftl.ErrOutOfBlocks
	}

	m.inFlight[victim.ID()] = true
	defer delete(m.inFlight, victim.ID())

	if err := m.ftl.CleanupBlock(event, victim); err != nil {
		return err
	}

	m.freeQueue = append(m.freeQueue, victim.ID())
	return nil
}

func (m *Manager) selectVictim() ftl.Block {
	var frontier map[uint64]bool
	if m.frontier != nil {
		frontier = m.frontier.CurrentBlocks()
	}

	var best ftl.Block
	bestValid := -1

	for _, b := range m.device.AllBlocks() {
		if frontier[b.ID()] || m.inFlight[b.ID()] {
			continue
		}

		valid := 0
		for i := 0; i < b.Size(); i++ {
			if b.State(i) == ftl.PageValid {
				valid++
			}
		}

		if bestValid == -1 || valid < bestValid {
			bestValid = valid
			best = b
		}
	}

	return best
}
