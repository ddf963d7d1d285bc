package emu

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"sixtyfour/emu/log"
)

const (
	wavBitDepth = 16
	wavPCM      = 1 // WAVE_FORMAT_PCM
)

// wavRecorder writes the SID output to a mono 16-bit WAV file.
type wavRecorder struct {
	f   *os.File
	enc *wav.Encoder
	buf audio.IntBuffer
	err error
}

func newWAVRecorder(path string, sampleRate int) (*wavRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	return &wavRecorder{
		f:   f,
		enc: wav.NewEncoder(f, sampleRate, wavBitDepth, 1, wavPCM),
		buf: audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

// Record encodes a batch of samples. After an error, batches are dropped and
// the error is reported by Close.
func (r *wavRecorder) Record(samples []float32) {
	if r.err != nil {
		return
	}

	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples {
		s = max(-1, min(1, s))
		r.buf.Data = append(r.buf.Data, int(s*32767))
	}
	if err := r.enc.Write(&r.buf); err != nil {
		r.err = fmt.Errorf("wav: %w", err)
		log.ModSound.WarnZ("wav recording stopped").Error("err", err).End()
	}
}

// Close finalizes the WAV header and closes the file.
func (r *wavRecorder) Close() error {
	err := r.enc.Close()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	if r.err != nil {
		return r.err
	}
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
