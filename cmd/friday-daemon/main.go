package main

import (
	"context"
	"net/http"
	"os"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"friday/internal/assistant"
	"friday/internal/audio"
	"friday/internal/config"
	"friday/internal/console"
	"friday/internal/handlers"
	"friday/internal/ipc"
	"friday/internal/knowledge"
	"friday/internal/llm"
	"friday/internal/mood"
	"friday/internal/nlu"
	"friday/internal/notify"
	"friday/internal/proxy"
	"friday/internal/reminder"
	"friday/internal/session"
	"friday/internal/tts"
	"friday/internal/weather"
	"friday/pkg/audioconv"
	"friday/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	neuralVoice := cli.BoolP("neural-voice", "n", false, "Use the API speech voice instead of espeak")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	log.Debug("Loaded config")

	var httpClient *http.Client
	if cfg.ProxyAddr != "" {
		httpClient, err = proxy.NewSocksClient(cfg.ProxyAddr)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", cfg.ProxyAddr, "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded proxy")
	}

	chat := llm.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.ChatModel, httpClient)

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Debug("Loaded recorder")

	whisper, err := stt.NewTranscriber(cfg.WhisperModel)
	if err != nil {
		log.Error("Failed to init whisper", "model", cfg.WhisperModel, "err", err)
		os.Exit(1)
	}
	defer whisper.Close()

	log.Debug("Loaded whisper")

	var kb *knowledge.Base
	if cfg.EmbeddingsURL != "" {
		embed := knowledge.NewEmbeddingClient(cfg.EmbeddingsURL, cfg.EmbeddingsModel)
		kb, err = knowledge.Open(cfg.KnowledgeDir, "friday", embed.Func())
		if err != nil {
			log.Error("Failed to open knowledge base", "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded knowledge base", "documents", kb.Count())
	}

	tagger, err := nlu.NewProseTagger()
	if err != nil {
		log.Error("Failed to init tagger", "err", err)
		os.Exit(1)
	}

	moodEngine := mood.NewEngine(mood.VaderAnalyzer{}, nil)
	sess := session.New(moodEngine, reminder.NewStore(), kb)
	mirror := console.NewServer()
	dialog := assistant.NewDialog()

	var weatherClient *weather.Client
	if cfg.WeatherKey != "" {
		weatherClient = weather.New(cfg.WeatherKey)
	}

	registry := handlers.NewRegistry(handlers.Services{
		Tagger:  tagger,
		Weather: weatherClient,
		Wiki:    handlers.GoWiki{},
		Search:  handlers.NewSearchClient(openBrowser),
		Fun:     handlers.NewFunClient(nil),
		Chat:    chat,
		Runner:  handlers.ExecRunner{},
		Dialog:  dialog,
		Transcribe: func(ctx context.Context, path string) (string, error) {
			pcm, err := audioconv.FileToPCM16k(path, 0)
			if err != nil {
				return "", err
			}
			res, err := whisper.TranscribePCM(ctx, pcm, stt.Options{Language: "en"})
			if err != nil {
				return "", err
			}
			return res.Text, nil
		},
		DefaultCity: cfg.DefaultCity,
	})

	var speak assistant.Speaker = tts.Espeak{}
	if *neuralVoice {
		speak = tts.NewNeural(cfg.OpenAIBaseURL, cfg.OpenAIKey, "", httpClient)
	}

	asst := assistant.New(
		assistant.NewMicListener(rec, whisper),
		speak,
		nlu.NewKeywordClassifier(nlu.DefaultTable(), tagger),
		registry,
		sess,
		assistant.Options{
			Console:  mirror,
			Ducker:   audio.NewDucker([]string{"friday"}, 20),
			Earcon:   func() { _ = notify.Earcon(cfg.EarconPath) },
			WakeWord: cfg.WakeWord,
		},
	)
	dialog.Bind(asst)

	mirror.Start(cfg.ConsoleAddr)
	log.Debug("Console mirror listening", "addr", cfg.ConsoleAddr)

	if err := ipc.StartServer(cfg.SocketPath, func(msg ipc.ControlMessage) string {
		switch msg.Cmd {
		case "trigger":
			asst.ForceWake()
			return "ok"
		case "say":
			dialog.Say(msg.Text)
			return "ok"
		case "status":
			return "mood " + string(sess.Mood.State())
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
			return ""
		}
	}); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	log.Info("Boot up - successful")

	if err := asst.Run(context.Background()); err != nil && err != context.Canceled {
		log.Error("Assistant stopped", "err", err)
		os.Exit(1)
	}
	log.Info("Goodbye")
}

func openBrowser(url string) error {
	return handlers.ExecRunner{}.Start("xdg-open", url)
}
