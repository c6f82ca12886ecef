package controller

import "rambo/internal/snapshot/codec"

func (p *Port) Marshal(w *codec.Writer) {
	w.U8(p.buttonsLive)
	w.U8(p.shiftReg)
	w.Bool(p.strobe)
}

func (p *Port) Unmarshal(r *codec.Reader) error {
	p.buttonsLive = r.U8()
	p.shiftReg = r.U8()
	p.strobe = r.Bool()
	return r.Err()
}

// Marshal serialises both ports' shift-register state (spec.md §6.3:
// BusState's controller shift registers are a snapshot component).
func (c *Controllers) Marshal(w *codec.Writer) {
	c.Port1.Marshal(w)
	c.Port2.Marshal(w)
}

func (c *Controllers) Unmarshal(r *codec.Reader) error {
	if err := c.Port1.Unmarshal(r); err != nil {
		return err
	}
	return c.Port2.Unmarshal(r)
}
