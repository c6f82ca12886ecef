package apu

import "rambo/internal/snapshot/codec"

func (p *PulseChannel) marshal(w *codec.Writer) {
	w.U8(p.dutyCycle)
	w.Bool(p.envelopeLoop)
	w.Bool(p.envelopeDisable)
	w.U8(p.volume)
	w.Bool(p.sweepEnable)
	w.U8(p.sweepPeriod)
	w.Bool(p.sweepNegate)
	w.U8(p.sweepShift)
	w.Bool(p.sweepReload)
	w.U8(p.sweepCounter)
	w.U16(p.timer)
	w.U16(p.timerCounter)
	w.U8(p.lengthCounter)
	w.Bool(p.lengthHalt)
	w.Bool(p.envelopeStart)
	w.U8(p.envelopeCounter)
	w.U8(p.envelopeDivider)
	w.U8(p.dutyIndex)
	w.U8(p.output)
	w.U8(p.sequencerPos)
}

func (p *PulseChannel) unmarshal(r *codec.Reader) {
	p.dutyCycle = r.U8()
	p.envelopeLoop = r.Bool()
	p.envelopeDisable = r.Bool()
	p.volume = r.U8()
	p.sweepEnable = r.Bool()
	p.sweepPeriod = r.U8()
	p.sweepNegate = r.Bool()
	p.sweepShift = r.U8()
	p.sweepReload = r.Bool()
	p.sweepCounter = r.U8()
	p.timer = r.U16()
	p.timerCounter = r.U16()
	p.lengthCounter = r.U8()
	p.lengthHalt = r.Bool()
	p.envelopeStart = r.Bool()
	p.envelopeCounter = r.U8()
	p.envelopeDivider = r.U8()
	p.dutyIndex = r.U8()
	p.output = r.U8()
	p.sequencerPos = r.U8()
}

func (t *TriangleChannel) marshal(w *codec.Writer) {
	w.Bool(t.lengthCounterHalt)
	w.U8(t.linearCounterLoad)
	w.U16(t.timer)
	w.U16(t.timerCounter)
	w.U8(t.lengthCounter)
	w.U8(t.linearCounter)
	w.Bool(t.linearCounterReload)
	w.U8(t.sequencerPos)
	w.U8(t.output)
}

func (t *TriangleChannel) unmarshal(r *codec.Reader) {
	t.lengthCounterHalt = r.Bool()
	t.linearCounterLoad = r.U8()
	t.timer = r.U16()
	t.timerCounter = r.U16()
	t.lengthCounter = r.U8()
	t.linearCounter = r.U8()
	t.linearCounterReload = r.Bool()
	t.sequencerPos = r.U8()
	t.output = r.U8()
}

func (n *NoiseChannel) marshal(w *codec.Writer) {
	w.Bool(n.envelopeLoop)
	w.Bool(n.envelopeDisable)
	w.U8(n.volume)
	w.Bool(n.mode)
	w.U8(n.periodIndex)
	w.U16(n.timerCounter)
	w.U8(n.lengthCounter)
	w.Bool(n.lengthHalt)
	w.Bool(n.envelopeStart)
	w.U8(n.envelopeCounter)
	w.U8(n.envelopeDivider)
	w.U16(n.shiftRegister)
	w.U8(n.output)
}

func (n *NoiseChannel) unmarshal(r *codec.Reader) {
	n.envelopeLoop = r.Bool()
	n.envelopeDisable = r.Bool()
	n.volume = r.U8()
	n.mode = r.Bool()
	n.periodIndex = r.U8()
	n.timerCounter = r.U16()
	n.lengthCounter = r.U8()
	n.lengthHalt = r.Bool()
	n.envelopeStart = r.Bool()
	n.envelopeCounter = r.U8()
	n.envelopeDivider = r.U8()
	n.shiftRegister = r.U16()
	n.output = r.U8()
}

func (d *DMCChannel) marshal(w *codec.Writer) {
	w.Bool(d.irqEnable)
	w.Bool(d.loop)
	w.U8(d.rateIndex)
	w.U8(d.outputLevel)
	w.U16(d.sampleAddress)
	w.U16(d.sampleLength)
	w.U16(d.timerCounter)
	w.U8(d.sampleBuffer)
	w.U8(d.sampleBufferBits)
	w.Bool(d.sampleBufferEmpty)
	w.U16(d.bytesRemaining)
	w.U16(d.currentAddress)
	w.Bool(d.dmaPending)
	w.Bool(d.irqFlag)
	w.U8(d.output)
}

func (d *DMCChannel) unmarshal(r *codec.Reader) {
	d.irqEnable = r.Bool()
	d.loop = r.Bool()
	d.rateIndex = r.U8()
	d.outputLevel = r.U8()
	d.sampleAddress = r.U16()
	d.sampleLength = r.U16()
	d.timerCounter = r.U16()
	d.sampleBuffer = r.U8()
	d.sampleBufferBits = r.U8()
	d.sampleBufferEmpty = r.Bool()
	d.bytesRemaining = r.U16()
	d.currentAddress = r.U16()
	d.dmaPending = r.Bool()
	d.irqFlag = r.Bool()
	d.output = r.U8()
}

// Marshal serialises every channel's register/timer/envelope state plus
// the frame counter (spec.md §6.3's ApuState). The float32 sample
// buffer is not persisted, matching the spec's "audio buffers are not
// serialised" rule.
func (apu *APU) Marshal(w *codec.Writer) {
	apu.pulse1.marshal(w)
	apu.pulse2.marshal(w)
	apu.triangle.marshal(w)
	apu.noise.marshal(w)
	apu.dmc.marshal(w)

	w.U16(apu.frameCounter)
	w.Bool(apu.frameMode)
	w.Bool(apu.frameIRQEnable)
	w.Bool(apu.frameIRQFlag)

	for _, v := range apu.channelEnable {
		w.Bool(v)
	}

	w.I32(int32(apu.sampleRate))
	w.F64(apu.cpuFrequency)
	w.F64(apu.cycleAccumulator)
	w.U64(apu.cycles)
}

func (apu *APU) Unmarshal(r *codec.Reader) error {
	apu.pulse1.unmarshal(r)
	apu.pulse2.unmarshal(r)
	apu.triangle.unmarshal(r)
	apu.noise.unmarshal(r)
	apu.dmc.unmarshal(r)

	apu.frameCounter = r.U16()
	apu.frameMode = r.Bool()
	apu.frameIRQEnable = r.Bool()
	apu.frameIRQFlag = r.Bool()

	for i := range apu.channelEnable {
		apu.channelEnable[i] = r.Bool()
	}

	apu.sampleRate = int(r.I32())
	apu.cpuFrequency = r.F64()
	apu.cycleAccumulator = r.F64()
	apu.cycles = r.U64()

	apu.sampleBuffer = apu.sampleBuffer[:0]
	return r.Err()
}
