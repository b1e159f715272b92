// Package webhook serves the telephony provider's voice webhooks and
// stitches speech, intent analysis, and call bookkeeping into one
// conversation loop per call.
//
// The loop over a call: Greeting -> Listening -> Processing -> Speaking
// -> Listening ... -> Hangup. The provider collects caller speech with a
// Gather directive and posts the transcript back to /process_speech.
package webhook

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/voicedesk/voicedesk/pkg/convstore"
	"github.com/voicedesk/voicedesk/pkg/errs"
	"github.com/voicedesk/voicedesk/pkg/intent"
	"github.com/voicedesk/voicedesk/pkg/metrics"
	"github.com/voicedesk/voicedesk/pkg/redact"
	"github.com/voicedesk/voicedesk/pkg/speech"
)

// Spoken lines for the scripted parts of the call.
const (
	lineGreeting = "Hello, I'm your AI customer support agent. How can I help you today?"
	lineFollowUp = "Is there anything else I can help you with?"
	lineReprompt = "I didn't catch that. Could you please repeat?"
	lineGoodbye  = "Thank you for calling. Goodbye!"
	lineApology  = "I'm sorry, I'm having trouble with that right now. Could you try again?"
	lineTimeUp   = "We've reached the maximum call length. Thank you for calling. Goodbye!"
)

const processSpeechAction = "/process_speech"

// Options configures the webhook service.
type Options struct {
	// SpeechTimeout is the provider-side speech detection window.
	SpeechTimeout time.Duration

	// MaxCallDuration ends calls that run past this limit. Zero
	// disables the check.
	MaxCallDuration time.Duration

	// PublicBaseURL is the externally reachable base of this service,
	// used for synthesized audio links.
	PublicBaseURL string

	// Speech synthesizes replies for Play verbs. When nil, replies are
	// spoken by the provider via Say.
	Speech speech.Provider

	// Conversations receives each call's transcript at hangup.
	Conversations *convstore.Store

	// Calls receives per-call measurements.
	Calls *metrics.CallMetrics

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Service owns the webhook endpoints and per-call sessions.
type Service struct {
	opts     Options
	sessions *Sessions
	logger   *slog.Logger

	// Synthesized reply audio, served once via /audio/:id.
	audioMu sync.Mutex
	audio   map[string][]byte
}

// NewService creates the webhook service. chat is the model client used
// by every per-call agent.
func NewService(chat intent.ChatClient, opts Options) *Service {
	if opts.SpeechTimeout <= 0 {
		opts.SpeechTimeout = 3 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		opts:     opts,
		sessions: NewSessions(chat),
		logger:   opts.Logger.With("component", "webhook"),
		audio:    make(map[string][]byte),
	}
}

// RegisterRoutes attaches the webhook endpoints to app.
func (s *Service) RegisterRoutes(app *fiber.App) {
	app.Post("/incoming_call", s.handleIncomingCall)
	app.Post("/process_speech", s.handleProcessSpeech)
	app.Post("/hangup", s.handleHangup)
	app.Post("/transfer/:target", s.handleTransfer)
	app.Get("/audio/:id", s.handleAudio)
	app.Get("/health", s.handleHealth)
	app.Get("/stats", s.handleStats)
}

// Sessions exposes the session manager, mainly for tests and stats.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// handleIncomingCall greets the caller and arms the first gather.
func (s *Service) handleIncomingCall(c *fiber.Ctx) error {
	sess := s.sessions.GetOrCreate(c.FormValue("CallSid"), c.FormValue("From"), c.FormValue("To"))
	sess.SetState(StateListening)

	s.logger.Info("incoming call",
		"call_id", sess.ID,
		"from", redact.Mask(sess.From),
	)

	return s.twiml(c, twimlResponse{
		Gather: s.gather(&twimlSay{Text: lineGreeting}),
	})
}

// handleProcessSpeech runs one conversation turn from a gather result.
func (s *Service) handleProcessSpeech(c *fiber.Ctx) error {
	sess := s.sessions.GetOrCreate(c.FormValue("CallSid"), c.FormValue("From"), c.FormValue("To"))
	logger := s.logger.With("call_id", sess.ID)

	if s.opts.MaxCallDuration > 0 && sess.Age() > s.opts.MaxCallDuration {
		logger.Info("max call duration reached", "age", sess.Age())
		s.finish(sess)
		return s.twiml(c, twimlResponse{
			Say:    &twimlSay{Text: lineTimeUp},
			Hangup: &twimlHangup{},
		})
	}

	utterance := redact.Sanitize(c.FormValue("SpeechResult"))
	if utterance == "" {
		sess.SetState(StateListening)
		return s.twiml(c, twimlResponse{
			Say:    &twimlSay{Text: lineReprompt},
			Gather: s.gather(nil),
		})
	}

	sess.SetState(StateProcessing)
	logger.Info("processing speech", "utterance", redact.Mask(utterance))

	start := time.Now()
	reply, err := s.runTurn(c.Context(), sess, utterance)
	if err != nil {
		logger.Error("turn failed", "error", err, "kind", errs.KindOf(err))
		s.recordError(sess.ID, string(errs.KindOf(err)))
		sess.SetState(StateListening)
		return s.twiml(c, twimlResponse{
			Say:    &twimlSay{Text: lineApology},
			Gather: s.gather(nil),
		})
	}
	s.recordProcessingTime(sess.ID, time.Since(start))

	sess.SetState(StateSpeaking)
	resp := s.spokenReply(c.Context(), sess.ID, reply)
	resp.Gather = s.gather(&twimlSay{Text: lineFollowUp})
	sess.SetState(StateListening)

	return s.twiml(c, resp)
}

// handleHangup speaks the closing line and finalizes the session.
func (s *Service) handleHangup(c *fiber.Ctx) error {
	if sess, ok := s.sessions.Get(c.FormValue("CallSid")); ok {
		s.finish(sess)
	}

	return s.twiml(c, twimlResponse{
		Say:    &twimlSay{Text: lineGoodbye},
		Hangup: &twimlHangup{},
	})
}

// handleTransfer hands a redirected call off to a human agent. The
// session is finalized first so the transcript up to the handoff is kept.
func (s *Service) handleTransfer(c *fiber.Ctx) error {
	target := c.Params("target")

	if sess, ok := s.sessions.Get(c.FormValue("CallSid")); ok {
		s.logger.Info("transferring call", "call_id", sess.ID, "target", redact.Mask(target))
		s.finish(sess)
	}

	return s.twiml(c, twimlResponse{
		Say:  &twimlSay{Text: "Transferring you now. Please hold."},
		Dial: &twimlDial{Number: target},
	})
}

// handleAudio serves synthesized reply audio exactly once.
func (s *Service) handleAudio(c *fiber.Ctx) error {
	id := c.Params("id")

	s.audioMu.Lock()
	data, ok := s.audio[id]
	delete(s.audio, id)
	s.audioMu.Unlock()

	if !ok {
		return fiber.ErrNotFound
	}
	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(data)
}

func (s *Service) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "ok",
		"active_calls": s.sessions.Count(),
	})
}

func (s *Service) handleStats(c *fiber.Ctx) error {
	if s.opts.Calls == nil {
		return c.JSON(fiber.Map{"active_calls": s.sessions.Count()})
	}

	stats, err := s.opts.Calls.CallStatistics(0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errs.Response(err))
	}
	rate, err := s.opts.Calls.ErrorRate(0)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errs.Response(err))
	}

	return c.JSON(fiber.Map{
		"active_calls": s.sessions.Count(),
		"calls":        stats,
		"error_rate":   rate,
	})
}

// runTurn performs the two model calls for one caller utterance.
func (s *Service) runTurn(ctx context.Context, sess *Session, utterance string) (string, error) {
	in, err := sess.Agent().AnalyzeIntent(ctx, utterance)
	if err != nil {
		return "", err
	}
	s.logger.Debug("intent analyzed",
		"call_id", sess.ID,
		"category", in.Category,
		"confidence", in.Confidence,
	)
	return sess.Agent().GenerateResponse(ctx, in)
}

// spokenReply renders the reply as a Play of synthesized audio when a
// speech provider is configured, falling back to provider-side Say.
func (s *Service) spokenReply(ctx context.Context, callID, reply string) twimlResponse {
	if s.opts.Speech == nil {
		return twimlResponse{Say: &twimlSay{Text: reply}}
	}

	audio, err := s.opts.Speech.Synthesize(ctx, reply)
	if err != nil {
		s.logger.Warn("synthesis failed, falling back to Say",
			"call_id", callID, "error", err)
		s.recordError(callID, string(errs.KindSpeech))
		return twimlResponse{Say: &twimlSay{Text: reply}}
	}

	id := uuid.New().String()
	s.audioMu.Lock()
	s.audio[id] = audio
	s.audioMu.Unlock()

	return twimlResponse{Play: &twimlPlay{URL: s.opts.PublicBaseURL + "/audio/" + id}}
}

// finish flushes the session transcript and duration, then drops it.
// Storage failures are logged and do not affect the call.
func (s *Service) finish(sess *Session) {
	ended, ok := s.sessions.End(sess.ID)
	if !ok {
		return
	}
	ended.SetState(StateHangup)

	if s.opts.Conversations != nil {
		if err := s.opts.Conversations.Save(ended.ID, ended.Agent().History()); err != nil {
			s.logger.Error("save conversation failed", "call_id", ended.ID, "error", err)
		}
	}
	if s.opts.Calls != nil {
		if err := s.opts.Calls.RecordCallDuration(ended.ID, ended.Age().Seconds()); err != nil {
			s.logger.Error("record call duration failed", "call_id", ended.ID, "error", err)
		}
	}

	s.logger.Info("call finished",
		"call_id", ended.ID,
		"duration", ended.Age().Round(time.Second),
		"turns", len(ended.Agent().History()),
	)
}

func (s *Service) recordError(callID, errorType string) {
	if s.opts.Calls == nil {
		return
	}
	if err := s.opts.Calls.RecordError(callID, errorType); err != nil {
		s.logger.Error("record error metric failed", "call_id", callID, "error", err)
	}
}

func (s *Service) recordProcessingTime(callID string, d time.Duration) {
	if s.opts.Calls == nil {
		return
	}
	if err := s.opts.Calls.RecordProcessingTime(callID, d.Seconds()); err != nil {
		s.logger.Error("record processing time failed", "call_id", callID, "error", err)
	}
}

// gather builds the speech gather directive, optionally with a prompt.
func (s *Service) gather(say *twimlSay) *twimlGather {
	return &twimlGather{
		Input:   "speech",
		Action:  processSpeechAction,
		Timeout: int(s.opts.SpeechTimeout.Seconds()),
		Say:     say,
	}
}

// twiml writes a TwiML response body.
func (s *Service) twiml(c *fiber.Ctx, resp twimlResponse) error {
	body, err := render(resp)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errs.Response(errs.General("render response", err)))
	}
	c.Set(fiber.HeaderContentType, "text/xml; charset=utf-8")
	return c.Send(body)
}
