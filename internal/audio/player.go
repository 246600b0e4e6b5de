// Package audio plays looping background music whose playback rate can be
// changed while it plays.
package audio

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/meyendtris/internal/core"
)

const (
	resampleQuality = 4
	// Rate changes smaller than this are not forwarded to the resampler.
	rateEpsilon = 0.01
)

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func initSpeaker(sr beep.SampleRate) (beep.SampleRate, error) {
	speakerOnce.Do(func() {
		speakerRate = sr
		speakerErr = speaker.Init(sr, sr.N(time.Second/10))
	})
	return speakerRate, speakerErr
}

// Player loops one MP3 file through the speaker.
type Player struct {
	mu        sync.Mutex
	streamer  beep.StreamSeekCloser
	resampler *beep.Resampler
	ctrl      *beep.Ctrl
	limits    core.Range
	rate      float64
}

// Open decodes path and starts looping it at normal speed. Rates passed to
// SetRate are clamped to limits.
func Open(path string, limits core.Range) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", path, err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audio: decode %s: %w", path, err)
	}

	sr, err := initSpeaker(format.SampleRate)
	if err != nil {
		streamer.Close()
		return nil, fmt.Errorf("audio: init speaker: %w", err)
	}

	var src beep.Streamer = beep.Loop(-1, streamer)
	if format.SampleRate != sr {
		src = beep.Resample(resampleQuality, format.SampleRate, sr, src)
	}

	p := &Player{
		streamer:  streamer,
		resampler: beep.ResampleRatio(resampleQuality, 1, src),
		limits:    limits,
		rate:      1,
	}
	p.ctrl = &beep.Ctrl{Streamer: p.resampler}
	speaker.Play(p.ctrl)
	return p, nil
}

// SetRate changes the playback rate. Tiny changes are ignored so a slowly
// drifting signal does not retune the resampler every frame.
func (p *Player) SetRate(rate float64) {
	rate = ClampRate(rate, p.limits)

	p.mu.Lock()
	defer p.mu.Unlock()

	if math.Abs(rate-p.rate) < rateEpsilon {
		return
	}
	p.rate = rate

	speaker.Lock()
	p.resampler.SetRatio(rate)
	speaker.Unlock()
}

// Rate returns the current playback rate.
func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// Close stops playback and releases the decoder.
func (p *Player) Close() error {
	speaker.Lock()
	p.ctrl.Paused = true
	p.ctrl.Streamer = nil
	speaker.Unlock()
	return p.streamer.Close()
}

// ClampRate limits a playback rate to the configured range. A degenerate
// or non-positive range only enforces a positive rate.
func ClampRate(rate float64, limits core.Range) float64 {
	if math.IsNaN(rate) {
		return 1
	}
	if limits.Min() > 0 {
		rate = core.ClampF(rate, limits.Min(), limits.Max())
	}
	if rate <= 0 {
		return rateEpsilon
	}
	return rate
}
