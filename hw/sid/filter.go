package sid

import "math"

// Filter mode bits, in $D418.
const (
	modeLowPass  = 0x10
	modeBandPass = 0x20
	modeHighPass = 0x40
)

const (
	minCutoff = 0.035
	maxCutoff = 18000.0 / 256
)

// filter is a state variable filter with high, band and low pass outputs.
//
//	in --(+)--> hp --[*cutoff]--(+)--> bp --[*cutoff]--(+)--> lp
//	     ^                      ^ |                   ^ |
//	     |                      +-+                   +-+
//	     +---- bp*resonance + lp
type filter struct {
	lp, bp float32

	mode      uint8
	cutoff    float32
	resonance float32

	ratio float64 // cutoff ratio for the output sample rate
}

func newFilter(sampleRate int) filter {
	return filter{
		ratio:     -2 * math.Pi * maxCutoff / float64(sampleRate),
		cutoff:    minCutoff,
		resonance: 1.41,
	}
}

// setRegs updates the filter parameters from the cutoff ($D416), the
// resonance/routing ($D417) and the mode/volume ($D418) registers.
func (f *filter) setRegs(fc, resfilt, modevol uint8) {
	f.mode = modevol & 0x70
	f.cutoff = max(float32(1-1.463*math.Exp((float64(fc)+0.2)*f.ratio)), minCutoff)
	if resfilt > 0x5f {
		f.resonance = 8 / float32(resfilt>>4)
	} else {
		f.resonance = 1.41
	}
}

// process feeds in to the filter and returns the selected outputs mixed
// into out.
func (f *filter) process(in, out float32) float32 {
	hp := in + f.bp*f.resonance + f.lp
	if f.mode&modeHighPass != 0 {
		out -= hp
	}
	f.bp -= hp * f.cutoff
	if f.mode&modeBandPass != 0 {
		out -= f.bp
	}
	f.lp += f.bp * f.cutoff
	if f.mode&modeLowPass != 0 {
		out += f.lp
	}
	return out
}
