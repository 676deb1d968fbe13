// Package ftlpage is a minimal page-mapping FTL variant: one flat LPN->PPN
// table, no OOB-resident PMT fragments, no anchor pages. It exists to prove
// ftl.Ftl is a genuine dispatch boundary rather than a façade around a
// single implementation, grounded on original_source/ssd.h's
// FtlImpl_Page, stripped of that class's DFTL-style caching.
package ftlpage

import (
	"fmt"

	"github.com/Lynxx9/MNFTL/config"
	"github.com/Lynxx9/MNFTL/ftl"
	"github.com/Lynxx9/MNFTL/ftlevent"
	"github.com/Lynxx9/MNFTL/stats"
)

var _ ftl.Ftl = (*Engine)(nil)

const unmapped = -1

// Engine holds the entire logical-to-physical map in RAM, as if the
// simulated device's OOB area were never consulted for it.
type Engine struct {
	cfg     config.Config
	device  ftl.Device
	manager ftl.BlockManager
	stats   *stats.Recorder

	maxLPN uint64
	table  map[uint64]int64
	rmap   map[uint64]uint64

	hasCurrent    bool
	currentBlock  ftl.Block
	currentOffset int
	currentBlocks map[uint64]bool
}

// New builds an Engine over device and manager.
func New(cfg config.Config, dev ftl.Device, manager ftl.BlockManager, recorder *stats.Recorder) *Engine {
	if recorder == nil {
		recorder = stats.New()
	}

	return &Engine{
		cfg:     cfg,
		device:  dev,
		manager: manager,
		stats:   recorder,
		maxLPN: uint64(cfg.NumberOfAddressableBlocks) * uint64(cfg.BlockSize) *
			7 / 8,
		table:         make(map[uint64]int64),
		rmap:          make(map[uint64]uint64),
		currentBlocks: make(map[uint64]bool),
	}
}

// CurrentBlocks satisfies blockmgr.FrontierQuery.
func (e *Engine) CurrentBlocks() map[uint64]bool {
	out := make(map[uint64]bool, len(e.currentBlocks))
	for k := range e.currentBlocks {
		out[k] = true
	}
	return out
}

func (e *Engine) issue(event *ftlevent.Event) error {
	if err := e.device.Issue(event); err != nil {
		return fmt.Errorf("%w: %v", ftl.ErrDeviceFailure, err)
	}
	return nil
}

// Read looks up the flat table directly: no OOB fetch cost, unlike mnftl.
func (e *Engine) Read(event *ftlevent.Event) error {
	if event.LogicalAddress >= e.maxLPN {
		return ftl.ErrInvalidLPN
	}
	e.stats.IncrFTLRead()

	ppn, ok := e.table[event.LogicalAddress]
	if !ok || ppn == unmapped {
		event.SetNoop(true)
		event.SetAddress(ftlevent.PageAddress(0))
		return e.issue(event)
	}

	event.SetAddress(ftlevent.PageAddress(uint64(ppn)))
	return e.issue(event)
}

// Write allocates a fresh page from the write frontier and repoints the
// flat table entry at it.
func (e *Engine) Write(event *ftlevent.Event) error {
	if event.LogicalAddress >= e.maxLPN {
		return ftl.ErrInvalidLPN
	}
	e.stats.IncrFTLWrite()

	if !e.hasCurrent || e.currentOffset == e.cfg.BlockSize {
		if err := e.allocateNewCurrentBlock(event); err != nil {
			return err
		}
	}

	addr, err := e.device.GetFreePage(ftlevent.BlockAddress(e.currentBlock.ID()))
	if err != nil {
		return fmt.Errorf("%w: %v", ftl.ErrDeviceFailure, err)
	}
	e.currentOffset++
	newPPN := int64(addr.Linear)

	oldPPN, had := e.table[event.LogicalAddress]
	if had && oldPPN != unmapped {
		event.SetReplaceAddress(ftlevent.PageAddress(uint64(oldPPN)))
		delete(e.rmap, uint64(oldPPN))
	}

	event.SetAddress(addr)
	if err := e.issue(event); err != nil {
		if had {
			e.table[event.LogicalAddress] = oldPPN
		} else {
			delete(e.table, event.LogicalAddress)
		}
		return err
	}

	e.table[event.LogicalAddress] = newPPN
	e.rmap[addr.Linear] = event.LogicalAddress
	return nil
}

// Trim clears the table entry without touching device state.
func (e *Engine) Trim(event *ftlevent.Event) error {
	if event.LogicalAddress >= e.maxLPN {
		return ftl.ErrInvalidLPN
	}
	e.stats.IncrFTLTrim()

	if ppn, ok := e.table[event.LogicalAddress]; ok && ppn != unmapped {
		delete(e.rmap, uint64(ppn))
		e.table[event.LogicalAddress] = unmapped
	}

	event.SetNoop(true)
	event.SetAddress(ftlevent.PageAddress(0))
	return e.issue(event)
}

// CleanupBlock relocates every valid page of block to the frontier and
// rewrites the flat table, then erases block.
func (e *Engine) CleanupBlock(event *ftlevent.Event, block ftl.Block) error {
	if e.hasCurrent && block.ID() == e.currentBlock.ID() {
		panic(fmt.Sprintf(
			"ftlpage: cleanup_block called on the current write frontier (block %d)",
			block.ID()))
	}

	for i := 0; i < block.Size(); i++ {
		if block.State(i) != ftl.PageValid {
			continue
		}
		if err := e.relocatePage(event, block, i); err != nil {
			return err
		}
	}

	eraseEvent := ftlevent.New(ftlevent.Erase, event.LogicalAddress, 1,
		event.StartTime+event.TimeTaken())
	eraseEvent.SetAddress(ftlevent.BlockAddress(block.ID()))
	if err := e.issue(eraseEvent); err != nil {
		return err
	}
	event.IncrTimeTaken(eraseEvent.TimeTaken())

	delete(e.currentBlocks, block.ID())
	e.stats.IncrGCBlocksErased()

	return nil
}

func (e *Engine) relocatePage(event *ftlevent.Event, block ftl.Block, offset int) error {
	oldPPN := block.PhysicalBase() + uint64(offset)

	readEvent := ftlevent.New(ftlevent.Read, event.LogicalAddress, 1,
		event.StartTime+event.TimeTaken())
	readEvent.SetAddress(ftlevent.PageAddress(oldPPN))
	if err := e.issue(readEvent); err != nil {
		return err
	}

	if !e.hasCurrent || e.currentOffset == e.cfg.BlockSize {
		if err := e.allocateNewCurrentBlock(event); err != nil {
			return err
		}
	}

	newAddr, err := e.device.GetFreePage(ftlevent.BlockAddress(e.currentBlock.ID()))
	if err != nil {
		return fmt.Errorf("%w: %v", ftl.ErrDeviceFailure, err)
	}
	e.currentOffset++

	writeEvent := ftlevent.New(ftlevent.Write, event.LogicalAddress, 1,
		event.StartTime+event.TimeTaken()+readEvent.TimeTaken())
	writeEvent.SetAddress(newAddr)
	writeEvent.SetReplaceAddress(ftlevent.PageAddress(oldPPN))
	writeEvent.SetPayload(readEvent.Payload())
	if err := e.issue(writeEvent); err != nil {
		return err
	}

	event.IncrTimeTaken(readEvent.TimeTaken() + writeEvent.TimeTaken())
	e.stats.IncrValidPageCopy()

	if lpn, ok := e.rmap[oldPPN]; ok {
		e.table[lpn] = int64(newAddr.Linear)
		delete(e.rmap, oldPPN)
		e.rmap[newAddr.Linear] = lpn
	}

	return nil
}

func (e *Engine) allocateNewCurrentBlock(event *ftlevent.Event) error {
	block, err := e.manager.GetFreeBlock(event)
	if err != nil {
		return err
	}

	if e.hasCurrent {
		delete(e.currentBlocks, e.currentBlock.ID())
	}

	e.currentBlock = block
	e.currentOffset = 0
	e.hasCurrent = true
	e.currentBlocks[block.ID()] = true

	return nil
}
