package device

// Channel models a single shared bus channel. Concurrent Issue calls that
// land on the same channel serialize and accumulate bus_wait_time, the way
// original_source/ssd.h's Channel/Bus classes model DMA contention between
// packages. This is ambient device realism; the FTL core never observes a
// Channel directly (spec.md §6.2 treats the Device as opaque).
type Channel struct {
	ctrlDelay float64
	dataDelay float64
	readyAt   float64
}

func newChannel(ctrlDelay, dataDelay float64) *Channel {
	return &Channel{ctrlDelay: ctrlDelay, dataDelay: dataDelay}
}

// lock reserves the channel starting no earlier than now and returns how
// long the caller had to wait for it to become free.
func (c *Channel) lock(now float64) float64 {
	start := now
	if c.readyAt > start {
		start = c.readyAt
	}
	wait := start - now
	c.readyAt = start + c.ctrlDelay + c.dataDelay
	return wait
}
