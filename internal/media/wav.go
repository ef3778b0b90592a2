package media

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	targetSampleRate = 16000
	targetBitDepth   = 16
	pcmFormat        = 1
)

// DecodeSamples validates the WAV header against the required layout
// (mono, integer PCM, 16 kHz, 16-bit) and returns samples rescaled to
// float32 in [-1.0, 1.0].
func DecodeSamples(wavPath string) ([]float32, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("read wav header: %w", err)
	}

	if dec.NumChans != 1 {
		return nil, &FormatError{Detail: fmt.Sprintf("expected mono audio, got %d channels", dec.NumChans)}
	}
	if dec.WavAudioFormat != pcmFormat {
		return nil, &FormatError{Detail: fmt.Sprintf("expected integer PCM samples, got format %d", dec.WavAudioFormat)}
	}
	if dec.SampleRate != targetSampleRate {
		return nil, &FormatError{Detail: fmt.Sprintf("expected %d Hz sample rate, got %d", targetSampleRate, dec.SampleRate)}
	}
	if dec.BitDepth != targetBitDepth {
		return nil, &FormatError{Detail: fmt.Sprintf("expected %d bits per sample, got %d", targetBitDepth, dec.BitDepth)}
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav samples: %w", err)
	}

	samples := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float32(s) / 32768.0
	}
	return samples, nil
}

// EncodeSamples writes float32 samples back out as a mono 16 kHz 16-bit
// PCM WAV, clamping to the int16 range.
func EncodeSamples(wavPath string, samples []float32) error {
	f, err := os.Create(wavPath)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	enc := wav.NewEncoder(f, targetSampleRate, targetBitDepth, 1, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: targetSampleRate},
		SourceBitDepth: targetBitDepth,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		v := int(s * 32768.0)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		buf.Data[i] = v
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize wav: %w", err)
	}
	return f.Close()
}
