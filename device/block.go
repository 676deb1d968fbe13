package device

import "github.com/Lynxx9/MNFTL/ftl"

// Block is one physical NAND block: a linear run of pages, each tracked as
// EMPTY, VALID, or INVALID, plus the data bytes a VALID page carries.
// Re-expressed from original_source/ssd.h's Block/Page classes as a plain
// struct owning its own page buffers, per the redesign note against raw
// pointers into a global page-data arena (spec.md §9): the Device is the
// sole owner of on-device bytes.
type Block struct {
	id           uint64
	physicalBase uint64
	channel      int

	pages  []ftl.PageState
	data   [][]byte
	cursor int // next offset Issue(WRITE) is expected to land on
}

func newBlock(id, physicalBase uint64, pageCount, pageSize, channel int) *Block {
	b := &Block{
		id:           id,
		physicalBase: physicalBase,
		channel:      channel,
		pages:        make([]ftl.PageState, pageCount),
		data:         make([][]byte, pageCount),
	}
	for i := range b.data {
		b.data[i] = make([]byte, pageSize)
	}
	return b
}

// ID returns the block's identity (its linear block number).
func (b *Block) ID() uint64 { return b.id }

// PhysicalBase returns the PPN of page 0 of this block.
func (b *Block) PhysicalBase() uint64 { return b.physicalBase }

// Size returns the number of pages in the block.
func (b *Block) Size() int { return len(b.pages) }

// State returns the state of page i within the block.
func (b *Block) State(i int) ftl.PageState { return b.pages[i] }

func (b *Block) nextFreeOffset() (int, bool) {
	for i := b.cursor; i < len(b.pages); i++ {
		if b.pages[i] == ftl.PageEmpty {
			return i, true
		}
	}
	return 0, false
}

func (b *Block) reset() {
	for i := range b.pages {
		b.pages[i] = ftl.PageEmpty
		b.data[i] = make([]byte, len(b.data[i]))
	}
	b.cursor = 0
}
