package sid

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// regFile holds the SID registers, other addresses read as 0.
type regFile [NumRegs]uint8

func (r *regFile) ReadIO(addr uint16, _ bool) uint8 {
	if addr < Base || addr >= Base+NumRegs {
		return 0
	}
	return r[addr-Base]
}

func (r *regFile) set(addr uint16, val uint8) {
	r[addr-Base] = val
}

func (r *regFile) setVoice(i int, freq uint16, ctrl, ad, sr uint8) {
	base := uint16(Base + voiceRegs*i)
	r.set(base+0, uint8(freq))
	r.set(base+1, uint8(freq>>8))
	r.set(base+4, ctrl)
	r.set(base+5, ad)
	r.set(base+6, sr)
}

func TestEnvelope(t *testing.T) {
	var env envelope
	env.state = release

	const ad, sr = 0x00, 0xa0

	// Attack at rate 0 increments the level every 9 cycles.
	for range 9 * 255 {
		env.clock(true, ad, sr)
	}
	if env.level != 0xff || env.state != decay {
		t.Fatalf("after attack: level=%02x state=%s, want ff decay", env.level, env.state)
	}

	for range 5000 {
		env.clock(true, ad, sr)
	}
	if env.level != sustainLevels[sr>>4] {
		t.Fatalf("after decay: level=%02x, want %02x", env.level, sustainLevels[sr>>4])
	}

	for range 100000 {
		env.clock(false, ad, sr)
	}
	if env.level != 0 || env.state != release {
		t.Fatalf("after release: level=%02x state=%s, want 00 release", env.level, env.state)
	}

	// Gate set again while in release restarts the attack.
	env.clock(true, ad, sr)
	if env.state != attack {
		t.Errorf("state=%s, want attack", env.state)
	}
}

func TestExpPeriods(t *testing.T) {
	counts := map[uint8]int{}
	for lvl := range 256 {
		counts[expPeriod(uint8(lvl))]++
	}
	want := map[uint8]int{1: 1 + 256 - expLevels, 30: 5, 16: 8, 8: 12, 4: 28, 2: 39}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("period distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestWaveforms(t *testing.T) {
	tests := []struct {
		name     string
		waveform uint8
		acc      uint32
		pulse    uint32
		want     uint32
	}{
		{"triangle rising", ctrlTriangle, 0x400000, 0, 0x8000},
		{"triangle falling", ctrlTriangle, 0xC00000, 0, 0x7fff},
		{"saw", ctrlSaw, 0x123456, 0, 0x1234},
		{"pulse high", ctrlPulse, 0x800000, 0x800, 0xffff},
		{"pulse low", ctrlPulse, 0x7ff000, 0x800, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newVoice()
			v.source = &v
			v.waveform = tt.waveform
			v.acc = tt.acc
			v.pulse = tt.pulse

			var got uint32
			switch tt.waveform {
			case ctrlTriangle:
				got = v.triangle()
			case ctrlSaw:
				got = v.saw()
			case ctrlPulse:
				got = v.pulseWave()
			}
			if got != tt.want {
				t.Errorf("got %04x, want %04x", got, tt.want)
			}
		})
	}
}

func TestRingModulation(t *testing.T) {
	var src, v voice
	v.source = &src
	v.waveform = ctrlTriangle | ctrlRing
	v.acc = 0x400000
	src.acc = 0x800000

	// The source MSB inverts the triangle.
	if got := v.triangle(); got != 0x7fff {
		t.Errorf("triangle = %04x, want 7fff", got)
	}
}

func TestTestBitResetsOscillator(t *testing.T) {
	var regs regFile
	regs.setVoice(0, 0x1234, ctrlNoise|ctrlTest, 0, 0)
	s := New(&regs, Config{})
	s.voices[0].noise = 0x123

	s.BufferSamples(10)

	if v := s.voices[0]; v.acc != 0 || v.noise != noiseSeed {
		t.Errorf("acc=%06x noise=%06x, want 0 and %06x", v.acc, v.noise, noiseSeed)
	}
}

func TestHardSync(t *testing.T) {
	tests := []struct {
		ctrl uint8
		want uint32
	}{
		{ctrl: ctrlSync, want: 7},
		{ctrl: 0, want: 136},
	}
	for _, tt := range tests {
		var regs regFile
		regs.setVoice(0, 0xffff, 0, 0, 0)
		regs.setVoice(1, 0x0001, tt.ctrl, 0, 0)
		s := New(&regs, Config{})

		// Voice 0 bit 23 rises on cycle 129.
		s.BufferSamples(126)
		s.BufferSamples(10)

		if got := s.voices[1].acc; got != tt.want {
			t.Errorf("ctrl=%02x: voice 1 acc=%d, want %d", tt.ctrl, got, tt.want)
		}
	}
}

func TestBufferSamples(t *testing.T) {
	var regs regFile
	s := New(&regs, Config{SampleRate: 44100})

	s.BufferSamples(0)
	if n := s.Queue().Len(); n != 0 {
		t.Fatalf("queued %d samples for 0 cycles", n)
	}

	// Short bursts don't use the multiplier: 126 cycles at 22.29
	// cycles/sample.
	s.BufferSamples(126)
	if n := s.Queue().Len(); n != 5 {
		t.Fatalf("queued %d samples, want 5", n)
	}

	// A whole frame with an empty queue runs faster to fill it up.
	s.Queue().Drain(make([]float32, 5), 1)
	s.BufferSamples(63 * 312)
	if n := s.Queue().Len(); n <= 882 {
		t.Errorf("queued %d samples, want more than a frame worth", n)
	}
}

func TestSilenceAndGate(t *testing.T) {
	var regs regFile
	regs.set(regModeVol, 0x0f)
	regs.setVoice(0, 0x1000, ctrlSaw, 0x00, 0xf0)
	s := New(&regs, Config{})

	for range 20 {
		s.BufferSamples(100)
	}
	buf := make([]float32, s.Queue().Len())
	s.Queue().Drain(buf, 1)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %f without gate, want 0", i, v)
		}
	}

	regs.setVoice(0, 0x1000, ctrlSaw|ctrlGate, 0x00, 0xf0)
	for range 40 {
		s.BufferSamples(100)
	}
	buf = make([]float32, s.Queue().Len())
	s.Queue().Drain(buf, 1)
	nonzero := 0
	for _, v := range buf {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Errorf("all %d samples are 0 with gate set", len(buf))
	}
	if !s.Gate(0) || s.Gate(1) {
		t.Errorf("gate bits = %t %t, want true false", s.Gate(0), s.Gate(1))
	}
}

func TestFilterBounded(t *testing.T) {
	worst := float32(0)
	for fc := range 256 {
		for res := range 16 {
			for _, mode := range []uint8{modeLowPass, modeBandPass, modeHighPass, 0x70} {
				f := newFilter(DefaultSampleRate)
				f.setRegs(uint8(fc), uint8(res<<4), mode)

				for n := range 2000 {
					in := float32(-0.5)
					if (n/20)%2 == 1 {
						in = 0.5
					}
					out := f.process(in, 0)
					if math.IsNaN(float64(out)) {
						t.Fatalf("fc=%d res=%d mode=%02x: NaN at sample %d", fc, res, mode, n)
					}
					worst = max(worst, abs(out), abs(f.lp), abs(f.bp))
				}
			}
		}
	}
	if worst > 8 {
		t.Errorf("filter output reached %f", worst)
	}
}

func abs(f float32) float32 {
	return float32(math.Abs(float64(f)))
}

func TestFilterParams(t *testing.T) {
	f := newFilter(DefaultSampleRate)

	f.setRegs(0, 0x00, 0)
	if f.cutoff != minCutoff || f.resonance != 1.41 {
		t.Errorf("cutoff=%f resonance=%f, want %f 1.41", f.cutoff, f.resonance, minCutoff)
	}

	f.setRegs(0xff, 0xf0, 0x1f)
	if f.cutoff < 0.8 || f.cutoff > 0.95 {
		t.Errorf("cutoff=%f, want about 0.886", f.cutoff)
	}
	if f.resonance != 8.0/15 {
		t.Errorf("resonance=%f, want %f", f.resonance, 8.0/15)
	}
	if f.mode != modeLowPass {
		t.Errorf("mode=%02x, want %02x", f.mode, modeLowPass)
	}
}

func TestSampleQueue(t *testing.T) {
	var q SampleQueue
	var recorded []float32
	q.SetRecorder(func(s []float32) { recorded = append(recorded, s...) })

	q.Push([]float32{1, 2, 3})
	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}

	dst := make([]float32, 4)
	if q.Drain(dst, 2) {
		t.Errorf("unexpected underrun")
	}
	if diff := cmp.Diff([]float32{1, 1, 2, 2}, dst); diff != "" {
		t.Errorf("first drain mismatch (-want +got):\n%s", diff)
	}

	dst = make([]float32, 6)
	if !q.Drain(dst, 2) {
		t.Errorf("underrun not reported")
	}
	if diff := cmp.Diff([]float32{3, 3, 3, 3, 3, 3}, dst); diff != "" {
		t.Errorf("second drain mismatch (-want +got):\n%s", diff)
	}

	if n := q.Underruns(); n != 1 {
		t.Errorf("Underruns = %d, want 1", n)
	}
	if n := q.Underruns(); n != 0 {
		t.Errorf("Underruns after reset = %d, want 0", n)
	}
	if diff := cmp.Diff([]float32{1, 2, 3}, recorded); diff != "" {
		t.Errorf("recorded mismatch (-want +got):\n%s", diff)
	}
}
