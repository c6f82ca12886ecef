// Package controller implements the NES's two standard controller ports:
// an 8-bit parallel-load shift register per port, both driven by a single
// strobe line wired to $4016 bit 0.
package controller

import "github.com/golang/glog"

// Button is a bitmask position within the parallel-load byte, ordered to
// match the physical shift sequence: A, B, Select, Start, Up, Down, Left,
// Right.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Port is a single controller's shift register state (spec.md's
// ControllerPort entity).
type Port struct {
	buttonsLive uint8
	shiftReg    uint8
	strobe      bool
}

// SetButtons replaces the live button mask read from the input mailbox.
// Per spec.md §4.9, this update is eventually consistent with emulation:
// it only takes effect for reads that happen after the next mailbox hop.
func (p *Port) SetButtons(mask uint8) { p.buttonsLive = mask }

// SetStrobe sets the shared strobe line. While high, the shift register
// continuously reloads from buttonsLive so every read returns button A's
// state regardless of how many reads preceded it.
func (p *Port) SetStrobe(high bool) {
	p.strobe = high
	if high {
		p.shiftReg = p.buttonsLive
	}
}

// Read returns (shiftReg&1) in bit 0 with the supplied open-bus byte
// filling bits 5-7 (bits 1-4 are not driven by real hardware either, but
// spec.md models only the documented 0xE0 open-bus mask). If the strobe
// is low, the register shifts right afterward, shifting in a 1 so reads
// past the eighth all return 1.
func (p *Port) Read(openBus uint8) uint8 {
	if p.strobe {
		p.shiftReg = p.buttonsLive
	}
	result := (p.shiftReg & 1) | (openBus & 0xE0)
	if !p.strobe {
		p.shiftReg = p.shiftReg>>1 | 0x80
	}
	return result
}

// Reset restores power-on state: no buttons held, strobe low.
func (p *Port) Reset() {
	p.buttonsLive = 0
	p.shiftReg = 0
	p.strobe = false
}

// Controllers holds both ports and the strobe line they share.
type Controllers struct {
	Port1 Port
	Port2 Port
}

// New constructs a pair of idle controller ports.
func New() *Controllers {
	return &Controllers{}
}

// WriteStrobe handles a CPU write to $4016; bit 0 drives both ports'
// shared strobe line.
func (c *Controllers) WriteStrobe(value uint8) {
	high := value&1 != 0
	if glog.V(3) {
		glog.Infof("controller: strobe <- %v", high)
	}
	c.Port1.SetStrobe(high)
	c.Port2.SetStrobe(high)
}

// ReadPort1 services a CPU read of $4016's controller bits.
func (c *Controllers) ReadPort1(openBus uint8) uint8 { return c.Port1.Read(openBus) }

// ReadPort2 services a CPU read of $4017's controller bits (the frame
// counter register shares this address for writes, but reads are
// controller-only).
func (c *Controllers) ReadPort2(openBus uint8) uint8 { return c.Port2.Read(openBus) }

// Reset restores both ports to power-on state.
func (c *Controllers) Reset() {
	c.Port1.Reset()
	c.Port2.Reset()
}
