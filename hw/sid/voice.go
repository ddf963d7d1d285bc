package sid

// Control register bits.
const (
	ctrlGate     = 1 << 0
	ctrlSync     = 1 << 1
	ctrlRing     = 1 << 2
	ctrlTest     = 1 << 3
	ctrlTriangle = 1 << 4
	ctrlSaw      = 1 << 5
	ctrlPulse    = 1 << 6
	ctrlNoise    = 1 << 7
)

const (
	accMask   = 0xffffff
	noiseMask = 0x7fffff
	noiseSeed = 0x7ffff8
)

// voice is one of the 3 oscillators, with its envelope generator.
//
//	          +-------------+    +----------+
//	freq ---> | accumulator | -> | waveform | --> * envelope --> out
//	          +-------------+    +----------+
//	                 |  ^             ^
//	          sync --+  +-- sync      +-- ring (source accumulator)
//	        (target)      (source)
type voice struct {
	// registers, copied from the I/O area at each batch.
	freq     uint32
	pulse    uint32
	waveform uint8
	ad, sr   uint8

	acc     uint32 // 24-bit phase accumulator
	lastAcc uint32
	noise   uint32 // 23-bit LFSR
	doSync  bool

	env envelope

	source *voice // sync and ring modulation source
	target *voice // voice this one syncs
}

func newVoice() voice {
	return voice{
		noise: noiseSeed,
		env:   envelope{state: release},
	}
}

// setRegs loads the 7 registers of the voice.
func (v *voice) setRegs(regs [7]uint8) {
	v.freq = uint32(regs[0]) | uint32(regs[1])<<8
	v.pulse = uint32(regs[2]) | uint32(regs[3])<<8
	v.waveform = regs[4]
	v.ad = regs[5]
	v.sr = regs[6]
}

func (v *voice) clock() {
	v.env.clock(v.waveform&ctrlGate != 0, v.ad, v.sr)

	v.lastAcc = v.acc
	v.acc = (v.acc + v.freq) & accMask

	if v.waveform&ctrlTest != 0 {
		v.acc = 0
		v.noise = noiseSeed
	}

	if v.waveform&ctrlNoise != 0 && rising(v.lastAcc, v.acc, 1<<19) {
		step := (v.noise & 0x400000) ^ ((v.noise & 0x20000) << 5)
		v.noise <<= 1
		if step != 0 {
			v.noise |= 1
		}
		v.noise &= noiseMask
	}

	v.doSync = rising(v.lastAcc, v.acc, 1<<23)
}

func rising(prev, cur, bit uint32) bool {
	return prev&bit == 0 && cur&bit != 0
}

// output returns the voice sample, in [-0.5, 0.5).
func (v *voice) output() float32 {
	if v.env.level == 0 {
		return 0
	}

	var wave uint32
	switch v.waveform & 0xf0 {
	case ctrlTriangle:
		wave = v.triangle()
	case ctrlSaw:
		wave = v.saw()
	case ctrlPulse:
		wave = v.pulseWave()
	case ctrlPulse | ctrlTriangle:
		wave = combined(v.pulseWave(), v.triangle())
	case ctrlPulse | ctrlSaw:
		wave = combined(v.pulseWave(), v.saw())
	case ctrlPulse | ctrlSaw | ctrlTriangle:
		wave = combined(v.pulseWave(), v.triangle()&v.saw())
	case ctrlNoise:
		wave = v.noiseWave()
	}

	return float32(int32(wave)-0x8000) * float32(v.env.level) / 16777216
}

func combined(pulse, w uint32) uint32 {
	return min(((pulse&w&(w>>1))&(w<<1))<<1, 0xffff)
}

func (v *voice) triangle() uint32 {
	tmp := v.acc
	if v.waveform&ctrlRing != 0 {
		tmp ^= v.source.acc
	}
	acc := v.acc
	if tmp >= 0x800000 {
		acc ^= accMask
	}
	return (acc >> 7) & 0xffff
}

func (v *voice) saw() uint32 {
	return v.acc >> 8
}

func (v *voice) pulseWave() uint32 {
	if v.acc>>12 >= v.pulse&0xfff {
		return 0xffff
	}
	return 0
}

func (v *voice) noiseWave() uint32 {
	n := v.noise
	return (n&0x100000)>>5 | (n&0x40000)>>4 | (n&0x4000)>>1 | (n&0x800)<<1 |
		(n&0x200)<<2 | (n&0x20)<<5 | (n&0x04)<<7 | (n&0x01)<<8
}
