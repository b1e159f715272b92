package speech_test

import (
	"context"
	"errors"
	"testing"

	"github.com/voicedesk/voicedesk/pkg/speech"
)

func TestMockProvider(t *testing.T) {
	mock := speech.NewMock()
	ctx := context.Background()

	t.Run("Recognize returns transcript", func(t *testing.T) {
		text, err := mock.Recognize(ctx, []byte{1, 2, 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text == "" {
			t.Error("expected a transcript")
		}
	})

	t.Run("Recognize on empty audio returns empty string", func(t *testing.T) {
		text, err := mock.Recognize(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "" {
			t.Errorf("expected empty transcript, got %q", text)
		}
	})

	t.Run("Synthesize returns audio", func(t *testing.T) {
		audio, err := mock.Synthesize(ctx, "Hello world")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(audio) == 0 {
			t.Error("expected audio bytes")
		}
	})

	t.Run("Calls are tracked", func(t *testing.T) {
		if mock.CallCount("Recognize") != 2 {
			t.Errorf("expected 2 Recognize calls, got %d", mock.CallCount("Recognize"))
		}
		if mock.CallCount("Synthesize") != 1 {
			t.Errorf("expected 1 Synthesize call, got %d", mock.CallCount("Synthesize"))
		}
	})
}

func TestMockCustomBehavior(t *testing.T) {
	wantErr := errors.New("recognizer down")
	mock := &speech.Mock{
		RecognizeFunc: func(ctx context.Context, audio []byte) (string, error) {
			return "", wantErr
		},
	}

	_, err := mock.Recognize(context.Background(), []byte{1})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected custom error, got %v", err)
	}
}
