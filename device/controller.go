package device

import (
	"fmt"

	"github.com/Lynxx9/MNFTL/ftl"
	"github.com/Lynxx9/MNFTL/ftlevent"
)

// Controller is the external entry point named in spec.md §2's data-flow
// row: it dispatches an arriving logical event to whichever Ftl variant is
// currently installed. Grounded on original_source/ssd.h's Controller
// class, minus its friend-class access to FTL internals (the Go Ftl
// interface already exposes exactly what a controller needs).
type Controller struct {
	Device *NAND
	FTL    ftl.Ftl
}

// NewController wires a Controller to a device and an FTL variant.
func NewController(dev *NAND, impl ftl.Ftl) *Controller {
	return &Controller{Device: dev, FTL: impl}
}

// EventArrive routes a logical event to the installed Ftl's matching
// method.
func (c *Controller) EventArrive(event *ftlevent.Event) error {
	switch event.Type {
	case ftlevent.Read:
		return c.FTL.Read(event)
	case ftlevent.Write:
		return c.FTL.Write(event)
	case ftlevent.Trim:
		return c.FTL.Trim(event)
	default:
		return fmt.Errorf("device: controller cannot dispatch event type %s", event.Type)
	}
}

// SSD is the top-level simulated drive a benchmark driver talks to,
// matching the Ssd.event_arrive -> Controller.event_arrive naming from
// spec.md §2.
type SSD struct {
	*Controller
}

// NewSSD wraps a Controller as the driver-facing SSD.
func NewSSD(ctrl *Controller) *SSD {
	return &SSD{Controller: ctrl}
}

// EventArrive forwards a logical event to the Controller.
func (s *SSD) EventArrive(event *ftlevent.Event) error {
	return s.Controller.EventArrive(event)
}
