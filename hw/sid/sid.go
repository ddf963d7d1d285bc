// Package sid emulates the sound chip: 3 voices with ADSR envelopes, mixed
// through a multimode filter, sampled at the host output rate.
package sid

import (
	"sixtyfour/emu/log"
)

const (
	Base       = 0xD400 // First register.
	NumRegs    = 0x19
	voiceRegs  = 7
	regFC      = Base + 0x16
	regResFilt = Base + 0x17
	regModeVol = Base + 0x18
)

// Machine timing, used to convert CPU cycles to samples.
const (
	cyclesPerFrame = 63 * 312
	framesPerSec   = 50
)

const DefaultSampleRate = 44100

// Registers gives access to the I/O area holding the SID registers.
type Registers interface {
	ReadIO(addr uint16, intercept bool) uint8
}

type Config struct {
	SampleRate int `toml:"sample_rate"`
}

type SID struct {
	regs Registers

	voices [3]voice
	filt   filter

	sampleRate      int
	cyclesPerSample float64
	cycleAcc        float64
	targetQueued    int // two frames

	queue SampleQueue
	batch []float32
}

func New(regs Registers, cfg Config) *SID {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}

	s := &SID{
		regs:            regs,
		filt:            newFilter(cfg.SampleRate),
		sampleRate:      cfg.SampleRate,
		cyclesPerSample: float64(cyclesPerFrame*framesPerSec) / float64(cfg.SampleRate),
		targetQueued:    2 * cfg.SampleRate / framesPerSec,
	}
	for i := range s.voices {
		s.voices[i] = newVoice()
	}
	for i := range s.voices {
		s.voices[i].source = &s.voices[(i+2)%3]
		s.voices[i].target = &s.voices[(i+1)%3]
	}
	s.batch = make([]float32, 0, 2*s.targetQueued)

	log.ModSound.InfoZ("SID created").
		Int("rate", cfg.SampleRate).
		Float64("cycles/sample", s.cyclesPerSample).
		End()
	return s
}

// Queue returns the queue receiving the produced samples.
func (s *SID) Queue() *SampleQueue {
	return &s.queue
}

func (s *SID) SampleRate() int {
	return s.sampleRate
}

func (s *SID) readRegs() {
	for i := range s.voices {
		var regs [voiceRegs]uint8
		base := uint16(Base + voiceRegs*i)
		for j := range regs {
			regs[j] = s.regs.ReadIO(base+uint16(j), false)
		}
		s.voices[i].setRegs(regs)
	}
	s.filt.setRegs(s.regs.ReadIO(regFC, false), s.regs.ReadIO(regResFilt, false), s.regs.ReadIO(regModeVol, false))
}

// multiplier returns the number of emulated cycles to run for each elapsed
// cycle, so that the queue stays around its target length.
func (s *SID) multiplier(cycles int) float64 {
	if cycles <= 2*63 {
		return 1
	}
	m := 1 + float64(s.targetQueued-s.queue.Len())/8192
	return max(m, 0)
}

// BufferSamples runs the SID for the given number of CPU cycles, with the
// registers as currently stored in the I/O area, and queues the produced
// samples.
func (s *SID) BufferSamples(cycles int) {
	if cycles <= 0 {
		return
	}

	n := int(float64(cycles) * s.multiplier(cycles))
	s.readRegs()

	resfilt := s.regs.ReadIO(regResFilt, false)
	volume := float32(s.regs.ReadIO(regModeVol, false)&0x0f) / 22.5

	s.batch = s.batch[:0]
	for range n {
		for i := range s.voices {
			s.voices[i].clock()
		}
		for i := range s.voices {
			v := &s.voices[i]
			if v.doSync && v.target.waveform&ctrlSync != 0 {
				v.target.acc = 0
			}
		}

		s.cycleAcc++
		if s.cycleAcc < s.cyclesPerSample {
			continue
		}
		s.cycleAcc -= s.cyclesPerSample

		var out, filtIn float32
		for i := range s.voices {
			if resfilt&(1<<i) != 0 {
				filtIn += s.voices[i].output()
			} else {
				out += s.voices[i].output()
			}
		}
		out = s.filt.process(filtIn, out)
		s.batch = append(s.batch, out*volume)
	}

	s.queue.Push(s.batch)
}

// Gate reports whether the gate bit of voice i is set, as of the last batch.
func (s *SID) Gate(i int) bool {
	return s.voices[i].waveform&ctrlGate != 0
}
