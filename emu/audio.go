package emu

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"

	"sixtyfour/emu/log"
	"sixtyfour/hw/sid"
)

const audioChannels = 2

// audioPlayer plays the SID output. The oto player goroutine pulls samples
// from the queue through Read.
type audioPlayer struct {
	ctx    *oto.Context
	player *oto.Player
	queue  *sid.SampleQueue

	buf []float32
}

func newAudioPlayer(queue *sid.SampleQueue, sampleRate int) (*audioPlayer, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: audioChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   40 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	ap := &audioPlayer{ctx: ctx, queue: queue}
	ap.player = ctx.NewPlayer(ap)
	ap.player.Play()

	log.ModSound.InfoZ("audio enabled").
		Int("rate", sampleRate).
		Int("channels", audioChannels).
		End()
	return ap, nil
}

// Read implements io.Reader for the oto player. It never blocks: on
// underrun the queue repeats its last sample.
func (ap *audioPlayer) Read(p []byte) (int, error) {
	n := len(p) / 4
	if cap(ap.buf) < n {
		ap.buf = make([]float32, n)
	}
	buf := ap.buf[:n]
	ap.queue.Drain(buf, audioChannels)
	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(s))
	}
	return n * 4, nil
}

func (ap *audioPlayer) Close() error {
	return ap.player.Close()
}
