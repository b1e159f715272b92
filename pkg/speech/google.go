package speech

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"
	texttospeech "google.golang.org/api/texttospeech/v1"

	"github.com/voicedesk/voicedesk/pkg/errs"
)

// Telephony audio arrives as linear PCM at 16kHz mono.
const (
	recognitionEncoding   = "LINEAR16"
	recognitionSampleRate = 16000
	synthesisEncoding     = "MP3"
)

// Google implements Provider on the Cloud Speech-to-Text and
// Text-to-Speech REST APIs.
type Google struct {
	cfg *Config
	stt *speechapi.Service
	tts *texttospeech.Service
}

// NewGoogle creates a Google speech provider. Credentials come from the
// configured key file, or ambient application-default credentials when
// no file is set.
func NewGoogle(ctx context.Context, opts ...Option) (*Google, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	stt, err := speechapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errs.Speech("create speech-to-text service", err)
	}
	tts, err := texttospeech.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errs.Speech("create text-to-speech service", err)
	}

	return &Google{cfg: cfg, stt: stt, tts: tts}, nil
}

// Recognize transcribes the audio, returning the top alternative of the
// first result or "" when the service recognized nothing.
func (g *Google) Recognize(ctx context.Context, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req := &speechapi.RecognizeRequest{
		Audio: &speechapi.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio),
		},
		Config: &speechapi.RecognitionConfig{
			Encoding:        recognitionEncoding,
			SampleRateHertz: recognitionSampleRate,
			LanguageCode:    g.cfg.Language,
		},
	}

	resp, err := g.stt.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", errs.Speech("recognize audio", err)
	}

	if len(resp.Results) == 0 || len(resp.Results[0].Alternatives) == 0 {
		return "", nil
	}

	transcript := resp.Results[0].Alternatives[0].Transcript
	g.cfg.Logger.Debug("recognized speech",
		"bytes", len(audio),
		"chars", len(transcript),
	)
	return transcript, nil
}

// Synthesize renders text as MP3 with the configured voice.
func (g *Google) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: g.cfg.Language,
			Name:         g.cfg.Voice,
			SsmlGender:   "NEUTRAL",
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: synthesisEncoding,
		},
	}

	resp, err := g.tts.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, errs.Speech("synthesize speech", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, errs.Speech("decode synthesized audio", fmt.Errorf("base64: %w", err))
	}

	g.cfg.Logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"voice", g.cfg.Voice,
	)
	return audio, nil
}

// Close releases resources. The REST services hold no connections that
// outlive their requests.
func (g *Google) Close() error {
	return nil
}

// Verify Google implements Provider at compile time.
var _ Provider = (*Google)(nil)
