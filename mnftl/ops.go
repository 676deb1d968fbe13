package mnftl

import (
	"fmt"

	"github.com/Lynxx9/MNFTL/ftl"
	"github.com/Lynxx9/MNFTL/ftlevent"
)

// Read implements spec.md §4.1.
func (e *Engine) Read(event *ftlevent.Event) error {
	if event.LogicalAddress >= e.maxLPN {
		return ftl.ErrInvalidLPN
	}
	e.stats.IncrFTLRead()

	lbn, pmdIndex, slot := e.decompose(event.LogicalAddress)

	pmd, ok := e.pmd[lbn]
	if !ok {
		return e.noopIssue(event)
	}

	anchor := pmd[pmdIndex]
	if anchor == unmapped {
		return e.noopIssue(event)
	}

	// The defining MNFTL cost: fetching the PMT fragment from the OOB of
	// the anchor page.
	event.IncrTimeTaken(e.cfg.OOBReadDelay)

	ppn := e.pmt[lbn][pmdIndex][slot]
	if ppn == unmapped {
		return e.noopIssue(event)
	}

	event.SetAddress(ftlevent.PageAddress(uint64(ppn)))
	return e.issue(event)
}

// Write implements spec.md §4.2.
func (e *Engine) Write(event *ftlevent.Event) error {
	if event.LogicalAddress >= e.maxLPN {
		return ftl.ErrInvalidLPN
	}
	e.stats.IncrFTLWrite()

	lbn, pmdIndex, slot := e.decompose(event.LogicalAddress)

	if !e.hasCurrent || e.currentOffset == e.cfg.BlockSize {
		if err := e.allocateNewCurrentBlock(event); err != nil {
			return err
		}
	}

	e.ensureRows(lbn)

	prevAnchor := e.pmd[lbn][pmdIndex]
	if prevAnchor != unmapped {
		// The previous PMT snapshot must be read from OOB before the
		// updated copy can be written.
		event.IncrTimeTaken(e.cfg.OOBReadDelay)
	}

	newAddr, err := e.allocPageInCurrentBlock()
	if err != nil {
		return err
	}
	newPPN := int64(newAddr.Linear)
	e.currentOffset++

	oldPPN := e.pmt[lbn][pmdIndex][slot]
	if oldPPN != unmapped {
		event.SetReplaceAddress(ftlevent.PageAddress(uint64(oldPPN)))
		delete(e.rmap, uint64(oldPPN))
	}

	e.pmt[lbn][pmdIndex][slot] = newPPN
	e.pmd[lbn][pmdIndex] = newPPN
	e.rmap[uint64(newPPN)] = rmapEntry{lbn: lbn, pmdIndex: pmdIndex, slot: slot}

	event.SetAddress(newAddr)
	if err := e.issue(event); err != nil {
		e.rollbackWrite(lbn, pmdIndex, slot, oldPPN, newPPN, prevAnchor)
		return err
	}

	return nil
}

// rollbackWrite restores the mapping mutations of a write whose device
// issue failed (spec.md §7). The page allocation itself is not rolled
// back: it is a pure counter advance, and no other write will ever be
// given the same PPN within this block.
func (e *Engine) rollbackWrite(lbn, pmdIndex, slot int, oldPPN, newPPN, prevAnchor int64) {
	e.pmt[lbn][pmdIndex][slot] = oldPPN
	e.pmd[lbn][pmdIndex] = prevAnchor
	delete(e.rmap, uint64(newPPN))
	if oldPPN != unmapped {
		e.rmap[uint64(oldPPN)] = rmapEntry{lbn: lbn, pmdIndex: pmdIndex, slot: slot}
	}
}

// Trim implements spec.md §4.3. It does not invalidate the physical page
// at the device level, only the RAM PMT slot (spec.md §9 Q1): the old PPN
// is orphaned until its block is next GC'd.
func (e *Engine) Trim(event *ftlevent.Event) error {
	if event.LogicalAddress >= e.maxLPN {
		return ftl.ErrInvalidLPN
	}
	e.stats.IncrFTLTrim()

	lbn, pmdIndex, slot := e.decompose(event.LogicalAddress)

	if _, ok := e.pmd[lbn]; ok {
		if oldPPN := e.pmt[lbn][pmdIndex][slot]; oldPPN != unmapped {
			delete(e.rmap, uint64(oldPPN))
			e.pmt[lbn][pmdIndex][slot] = unmapped
		}
	}

	event.SetNoop(true)
	event.SetAddress(ftlevent.PageAddress(0))
	return e.issue(event)
}

// CleanupBlock implements spec.md §4.4: relocates every valid page of
// block, rewriting anchors and PMT slots via the reverse map, then erases
// the block.
func (e *Engine) CleanupBlock(event *ftlevent.Event, block ftl.Block) error {
	if e.hasCurrent && block.ID() == e.currentBlock.ID() {
		panic(fmt.Sprintf(
			"mnftl: cleanup_block called on the current write frontier (block %d)",
			block.ID()))
	}

	numPMD := e.cfg.NumPMD()
	event.IncrTimeTaken(float64(numPMD) * e.cfg.OOBReadDelay)

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

	newAddr, err := e.allocPageInCurrentBlock()
	if err != nil {
		return err
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

	// Anchor-page rewrites are eager: within a victim, the last relocated
	// slot of a fragment becomes its new anchor (spec.md §4.4, §9 Q4).
	if entry, ok := e.rmap[oldPPN]; ok {
		newPPN := int64(newAddr.Linear)
		e.pmt[entry.lbn][entry.pmdIndex][entry.slot] = newPPN
		e.pmd[entry.lbn][entry.pmdIndex] = newPPN
		delete(e.rmap, oldPPN)
		e.rmap[newAddr.Linear] = entry
	}

	return nil
}

func (e *Engine) allocateNewCurrentBlock(event *ftlevent.Event) error {
	block, err := e.manager.GetFreeBlock(event)
	if err != nil {
		return err
	}

	// The block we are replacing as frontier is sealed and safe to GC;
	// only the active frontier needs protection from victim selection.
	if e.hasCurrent {
		delete(e.currentBlocks, e.currentBlock.ID())
	}

	e.currentBlock = block
	e.currentOffset = 0
	e.hasCurrent = true
	e.bml = append(e.bml, block.ID())
	e.currentBlocks[block.ID()] = true

	return nil
}

func (e *Engine) allocPageInCurrentBlock() (ftlevent.Address, error) {
	if !e.hasCurrent || e.currentOffset >= e.cfg.BlockSize {
		panic("mnftl: alloc_page_in_current_block called without a usable frontier")
	}

	addr, err := e.device.GetFreePage(ftlevent.BlockAddress(e.currentBlock.ID()))
	if err != nil {
		return ftlevent.Address{}, fmt.Errorf("%w: %v", ftl.ErrDeviceFailure, err)
	}
	return addr, nil
}
