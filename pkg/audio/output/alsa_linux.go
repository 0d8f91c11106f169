// ABOUTME: ALSA output implementation for Linux
// ABOUTME: Opens a PCM playback device directly and writes frames with blocking I/O
package output

import (
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/keepalive-go/pkg/audio"
	"github.com/yobert/alsa"
	"go.uber.org/zap"
)

// alsaPeriodFrames is the requested period; the device buffer holds two
const alsaPeriodFrames = 1024

// ALSA output implementation talking to the kernel PCM interface
type ALSA struct {
	logger     *zap.Logger
	cards      []*alsa.Card
	device     *alsa.Device
	frameSize  int
	periodSize int
	ready      bool
	mu         sync.Mutex
}

// NewALSA creates a new ALSA output
func NewALSA(logger *zap.Logger) Output {
	return &ALSA{logger: logger}
}

// Open finds the first playback PCM device and negotiates format exactly
func (a *ALSA) Open(format audio.Format) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.device != nil {
		return unavailable("device already open", nil)
	}

	cards, err := alsa.OpenCards()
	if err != nil {
		return unavailable("unable to open sound cards", err)
	}

	device, err := firstPlaybackDevice(cards)
	if err != nil {
		alsa.CloseCards(cards)
		return err
	}

	if err := device.Open(); err != nil {
		alsa.CloseCards(cards)
		return unavailable(fmt.Sprintf("unable to open %s", device), err)
	}

	periodSize, err := negotiate(device, format)
	if err != nil {
		device.Close()
		alsa.CloseCards(cards)
		return err
	}

	a.cards = cards
	a.device = device
	a.frameSize = format.FrameSize()
	a.periodSize = periodSize

	a.logger.Info("audio output initialized",
		zap.Stringer("device", device),
		zap.Int("sample_rate", format.SampleRate),
		zap.Int("channels", format.Channels),
		zap.Int("period_frames", periodSize))

	return nil
}

func firstPlaybackDevice(cards []*alsa.Card) (*alsa.Device, error) {
	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			continue
		}
		for _, dev := range devices {
			if dev.Type == alsa.PCM && dev.Play {
				return dev, nil
			}
		}
	}
	return nil, unavailable("no ALSA playback device found", nil)
}

// negotiate applies format to device and fails unless every parameter is
// accepted as requested
func negotiate(device *alsa.Device, format audio.Format) (int, error) {
	channels, err := device.NegotiateChannels(format.Channels)
	if err != nil {
		return 0, unavailable("channel negotiation failed", err)
	}
	if channels != format.Channels {
		return 0, unavailable(fmt.Sprintf("device wants %d channels, need %d", channels, format.Channels), nil)
	}

	rate, err := device.NegotiateRate(format.SampleRate)
	if err != nil {
		return 0, unavailable("rate negotiation failed", err)
	}
	if rate != format.SampleRate {
		return 0, unavailable(fmt.Sprintf("device wants %dHz, need %dHz", rate, format.SampleRate), nil)
	}

	if _, err := device.NegotiateFormat(alsa.S16_LE); err != nil {
		return 0, unavailable("device does not accept S16_LE", err)
	}

	periodSize, err := device.NegotiatePeriodSize(alsaPeriodFrames)
	if err != nil {
		return 0, unavailable("period negotiation failed", err)
	}

	if _, err := device.NegotiateBufferSize(periodSize * 2); err != nil {
		return 0, unavailable("buffer negotiation failed", err)
	}

	if err := device.Prepare(); err != nil {
		return 0, unavailable("device prepare failed", err)
	}

	return periodSize, nil
}

// Start marks the device writable; ALSA starts playback on the first write
func (a *ALSA) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.device == nil {
		return unavailable("output not opened", nil)
	}
	a.ready = true
	return nil
}

// Write blocks in the kernel until the device has room for frame
func (a *ALSA) Write(frame []byte) error {
	a.mu.Lock()
	device, frameSize, ready := a.device, a.frameSize, a.ready
	a.mu.Unlock()

	if !ready {
		return broken("output not started", nil)
	}
	if len(frame)%frameSize != 0 {
		return broken(fmt.Sprintf("frame of %d bytes is not a whole number of %d-byte frames", len(frame), frameSize), nil)
	}

	if err := device.Write(frame, len(frame)/frameSize); err != nil {
		return broken("pcm write failed", err)
	}
	return nil
}

// Close releases the device and the card handles
func (a *ALSA) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.device != nil {
		a.device.Close()
		a.device = nil
	}
	if a.cards != nil {
		alsa.CloseCards(a.cards)
		a.cards = nil
	}
	a.ready = false
	return nil
}
