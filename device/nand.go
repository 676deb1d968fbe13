// Package device implements the NAND package/die/plane/block/page hierarchy
// and bus-channel contention that sits underneath the FTL core. Spec.md §1
// scopes this hierarchy out of the MNFTL *core* — it is consumed only
// through the opaque ftl.Device interface — but a runnable simulator still
// needs a concrete model to drive events against, grounded on
// original_source/ssd.h's Package/Die/Plane/Block/Channel/Bus classes.
package device

import (
	"fmt"

	"github.com/Lynxx9/MNFTL/config"
	"github.com/Lynxx9/MNFTL/ftl"
	"github.com/Lynxx9/MNFTL/ftlevent"
)

// NAND is the concrete Device: Blocks nested into Packages/Dies/Planes per
// original_source/ssd.h's physical hierarchy, each Package wired to one of
// a small number of contended Channels. It implements ftl.Device.
type NAND struct {
	cfg      config.Config
	blocks   []*Block
	channels []*Channel
	packages []*Package
}

// New builds a NAND device sized per cfg: NumberOfAddressableBlocks blocks
// of BlockSize pages each, spread evenly across NumChannels() channels and
// nested into cfg.DieSize dies per package and cfg.PlaneSize planes per die.
func New(cfg config.Config) *NAND {
	n := &NAND{cfg: cfg}

	n.channels = make([]*Channel, cfg.NumChannels())
	for i := range n.channels {
		n.channels[i] = newChannel(cfg.BusCtrlDelay, cfg.BusDataDelay)
	}

	n.blocks = make([]*Block, cfg.NumberOfAddressableBlocks)
	for id := 0; id < cfg.NumberOfAddressableBlocks; id++ {
		base := uint64(id) * uint64(cfg.BlockSize)
		channel := id % len(n.channels)
		n.blocks[id] = newBlock(uint64(id), base, cfg.BlockSize, cfg.PageSize, channel)
	}

	n.packages = buildHierarchy(n.blocks, cfg.NumChannels(), cfg.DieSize, cfg.PlaneSize)

	return n
}

// Packages returns the device's physical package hierarchy, each package
// holding the dies/planes/blocks it contends for its channel with.
func (n *NAND) Packages() []*Package {
	return n.packages
}

// AllBlocks returns every block the device manages, in block-id order. Used
// by the block manager to seed its free pool and to scan for GC victims.
func (n *NAND) AllBlocks() []ftl.Block {
	out := make([]ftl.Block, len(n.blocks))
	for i, b := range n.blocks {
		out[i] = b
	}
	return out
}

// BlockAt returns the Block that contains addr, whether addr is itself
// block-granular or page-granular.
func (n *NAND) BlockAt(addr ftlevent.Address) ftl.Block {
	return n.blockAt(addr)
}

func (n *NAND) blockAt(addr ftlevent.Address) *Block {
	var id uint64
	switch addr.Level {
	case ftlevent.LevelBlock:
		id = addr.Linear
	case ftlevent.LevelPage:
		id = addr.Linear / uint64(n.cfg.BlockSize)
	default:
		panic(fmt.Sprintf("device: cannot resolve a block from address level %d", addr.Level))
	}
	return n.blocks[id]
}

// GetFreePage returns the next free page address within the block named by
// blockAddr, without yet consuming it: the offset is only committed to
// Valid when Issue(WRITE) lands on it.
func (n *NAND) GetFreePage(blockAddr ftlevent.Address) (ftlevent.Address, error) {
	block := n.blockAt(blockAddr)
	offset, ok := block.nextFreeOffset()
	if !ok {
		return ftlevent.Address{}, fmt.Errorf("device: block %d has no free page", block.ID())
	}
	return ftlevent.PageAddress(block.PhysicalBase() + uint64(offset)), nil
}

// Issue executes a primitive physical event, charging simulated latency and
// updating block/page state. Noop events (unmapped reads, trims) only pay a
// RAM-read accounting cost and never touch block state.
func (n *NAND) Issue(event *ftlevent.Event) error {
	if event.Noop() {
		event.IncrTimeTaken(n.cfg.RAMReadDelay)
		return nil
	}

	switch event.Type {
	case ftlevent.Read:
		return n.issueRead(event)
	case ftlevent.Write:
		return n.issueWrite(event)
	case ftlevent.Erase:
		return n.issueErase(event)
	default:
		return fmt.Errorf("device: cannot issue event of type %s", event.Type)
	}
}

func (n *NAND) issueRead(event *ftlevent.Event) error {
	addr := event.Address()
	block := n.blockAt(addr)
	offset := int(addr.Linear - block.PhysicalBase())

	if block.State(offset) != ftl.PageValid {
		return fmt.Errorf("device: read of non-valid page %d in block %d",
			addr.Linear, block.ID())
	}

	wait := n.channels[block.channel].lock(event.StartTime + event.TimeTaken())
	event.IncrBusWaitTime(wait)
	event.IncrTimeTaken(wait + n.cfg.PageReadDelay)

	payload := make([]byte, len(block.data[offset]))
	copy(payload, block.data[offset])
	event.SetPayload(payload)

	return nil
}

func (n *NAND) issueWrite(event *ftlevent.Event) error {
	addr := event.Address()
	block := n.blockAt(addr)
	offset := int(addr.Linear - block.PhysicalBase())

	if block.State(offset) != ftl.PageEmpty {
		panic(fmt.Sprintf(
			"device: write targets non-empty page %d in block %d (state %s)",
			addr.Linear, block.ID(), block.State(offset)))
	}

	wait := n.channels[block.channel].lock(event.StartTime + event.TimeTaken())
	event.IncrBusWaitTime(wait)
	event.IncrTimeTaken(wait + n.cfg.PageWriteDelay)

	block.pages[offset] = ftl.PageValid
	if offset >= block.cursor {
		block.cursor = offset + 1
	}

	if p := event.Payload(); p != nil {
		copy(block.data[offset], p)
	}

	if replace := event.ReplaceAddress(); replace.IsSet() {
		rblock := n.blockAt(replace)
		roffset := int(replace.Linear - rblock.PhysicalBase())
		if rblock.State(roffset) == ftl.PageValid {
			rblock.pages[roffset] = ftl.PageInvalid
		}
	}

	return nil
}

func (n *NAND) issueErase(event *ftlevent.Event) error {
	addr := event.Address()
	block := n.blockAt(addr)

	wait := n.channels[block.channel].lock(event.StartTime + event.TimeTaken())
	event.IncrBusWaitTime(wait)
	event.IncrTimeTaken(wait + n.cfg.BlockEraseDelay)

	block.reset()
	return nil
}
