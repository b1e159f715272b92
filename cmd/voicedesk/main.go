// voicedesk: AI customer support agent for inbound voice calls.
// Answers telephony webhooks, transcribes caller speech, classifies
// intent with a language model, and speaks generated replies back.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/voicedesk/voicedesk/internal/config"
	"github.com/voicedesk/voicedesk/internal/log"
	"github.com/voicedesk/voicedesk/pkg/convstore"
	"github.com/voicedesk/voicedesk/pkg/intent"
	"github.com/voicedesk/voicedesk/pkg/metrics"
	"github.com/voicedesk/voicedesk/pkg/speech"
	"github.com/voicedesk/voicedesk/pkg/telephony"
	"github.com/voicedesk/voicedesk/pkg/webhook"
)

var (
	version = "1.0.0"
	port    = flag.Int("port", 0, "HTTP server port (overrides PORT)")
	debug   = flag.Bool("debug", false, "Enable debug logging and request logs")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Port = *port
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	log.Init(cfg.LogLevel)

	log.Info("starting voicedesk", "version", version, "port", cfg.Port)

	ctx := context.Background()

	// Speech is optional: without Google credentials, replies are
	// spoken provider-side instead of synthesized.
	var synth speech.Provider
	if cfg.HasSpeech() {
		g, err := speech.NewGoogle(ctx,
			speech.WithCredentialsFile(cfg.GoogleCredentials),
			speech.WithLanguage(cfg.Language),
			speech.WithLogger(log.L()),
		)
		if err != nil {
			log.Error("speech provider init failed", "error", err)
			os.Exit(1)
		}
		defer g.Close()
		synth = g
	} else {
		log.Warn("no speech credentials, replies use provider voice")
	}

	chat := intent.NewClient(
		intent.WithAPIKey(cfg.OpenAIAPIKey),
		intent.WithBaseURL(cfg.OpenAIBaseURL),
		intent.WithModel(cfg.OpenAIModel),
		intent.WithLogger(log.L()),
	)

	conversations, err := convstore.New(cfg.ConversationDir)
	if err != nil {
		log.Error("conversation store init failed", "error", err)
		os.Exit(1)
	}
	metricStore, err := metrics.New(cfg.MetricsDir)
	if err != nil {
		log.Error("metrics store init failed", "error", err)
		os.Exit(1)
	}
	calls := metrics.NewCallMetrics(metricStore)

	app := fiber.New(fiber.Config{
		AppName:               "voicedesk",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if *debug {
		app.Use(logger.New())
	}

	svc := webhook.NewService(chat, webhook.Options{
		SpeechTimeout:   cfg.SpeechTimeout,
		MaxCallDuration: cfg.MaxCallDuration,
		PublicBaseURL:   cfg.PublicBaseURL,
		Speech:          synth,
		Conversations:   conversations,
		Calls:           calls,
		Logger:          log.L(),
	})
	svc.RegisterRoutes(app)

	// Outbound call management needs provider credentials.
	if cfg.HasTelephony() {
		ctrl := telephony.NewController(
			telephony.NewClient(cfg.AccountSID, cfg.AuthToken, ""),
			cfg.PublicBaseURL,
			log.L(),
		)
		registerCallAPI(app.Group("/api"), ctrl, cfg.PhoneNumber)
	} else {
		log.Warn("no telephony credentials, outbound call API disabled")
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("listening", "addr", addr, "webhook", cfg.PublicBaseURL+"/incoming_call")
		if err := app.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

// registerCallAPI exposes outbound call control on /api/calls.
func registerCallAPI(api fiber.Router, ctrl *telephony.Controller, from string) {
	api.Post("/calls", func(c *fiber.Ctx) error {
		var req struct {
			To   string `json:"to"`
			From string `json:"from"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
		if req.From == "" {
			req.From = from
		}
		id, err := ctrl.StartCall(c.Context(), req.To, req.From)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call_id": id})
	})

	api.Get("/calls/:id", func(c *fiber.Ctx) error {
		status, err := ctrl.Status(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(status)
	})

	api.Delete("/calls/:id", func(c *fiber.Ctx) error {
		if err := ctrl.EndCall(c.Context(), c.Params("id")); err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "completed"})
	})

	api.Post("/calls/:id/record", func(c *fiber.Ctx) error {
		sid, err := ctrl.Record(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"recording_sid": sid})
	})

	api.Post("/calls/:id/transfer", func(c *fiber.Ctx) error {
		var req struct {
			Target string `json:"target"`
		}
		if err := c.BodyParser(&req); err != nil || req.Target == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "target required"})
		}
		if err := ctrl.Transfer(c.Context(), c.Params("id"), req.Target); err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "transferring"})
	})
}
