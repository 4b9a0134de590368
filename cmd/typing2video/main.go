package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/typing2video/internal/config"
	"github.com/ivlev/typing2video/internal/engine"
	"github.com/ivlev/typing2video/internal/renderer"
	"github.com/ivlev/typing2video/internal/system"
	"github.com/ivlev/typing2video/internal/tui"
	"github.com/ivlev/typing2video/internal/video"
)

var buildVersion = "dev"

const settingsDir = "input/settings"

func main() {
	settingsPtr := flag.String("settings", "", "YAML с настройками анимации (по умолчанию: самый свежий файл в input/settings/)")
	outputPtr := flag.String("output", "", "Путь к видео; расширение выбирает контейнер (по умолчанию: output/typing-simulation.<ext>)")
	widthPtr := flag.Int("width", 1024, "Ширина")
	heightPtr := flag.Int("height", 1024, "Высота")
	presetPtr := flag.String("preset", "", "Пресет формата: 1:1, 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	fpsPtr := flag.Int("fps", 30, "FPS")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	encoderPtr := flag.String("encoder", "", "Предпочтительный энкодер ffmpeg (остальные используются как запасные)")
	seedPtr := flag.Int64("seed", 0, "Seed для случайной задержки набора (0 - от времени)")
	safetyPtr := flag.Float64("safety", 2, "Лимит реального времени экспорта, в оценках длительности")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности и дописать benchmark.log")
	timelinePtr := flag.String("timeline", "", "Сохранить таймлайн переходов в YAML")
	previewPtr := flag.Bool("preview", false, "Живой предпросмотр в терминале вместо экспорта")
	autoplayPtr := flag.Bool("autoplay", true, "Запускать анимацию сразу при открытии предпросмотра")
	noAltScreenPtr := flag.Bool("no-alt-screen", false, "Не использовать альтернативный экран терминала")
	saveDefaultsPtr := flag.String("save-defaults", "", "Записать настройки по умолчанию в файл и выйти")
	verbosePtr := flag.Bool("v", false, "Подробный лог")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbosePtr {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *saveDefaultsPtr != "" {
		s := config.DefaultSettings()
		if err := config.Save(*saveDefaultsPtr, &s); err != nil {
			log.Fatal().Err(err).Msg("не удалось сохранить настройки")
		}
		log.Info().Str("path", *saveDefaultsPtr).Msg("настройки по умолчанию сохранены")
		return
	}

	// Создаем нужные директории, если их нет
	for _, d := range []string{settingsDir, "output"} {
		os.MkdirAll(d, 0755)
	}

	settings := loadSettings(*settingsPtr)
	if err := settings.Validate(); err != nil {
		log.Fatal().Err(err).Msg("некорректные настройки")
	}

	width, height := *widthPtr, *heightPtr
	if *presetPtr != "" {
		w, h, ok := presetSize(*presetPtr)
		if !ok {
			log.Fatal().Str("preset", *presetPtr).Msg("неизвестный пресет формата (1:1, 16:9, 9:16, 4:5)")
		}
		width, height = w, h
	}

	seed := *seedPtr
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cfg := config.DefaultConfig()
	if *outputPtr != "" {
		cfg.OutputVideo = *outputPtr
	}
	cfg.Width, cfg.Height = width, height
	cfg.FPS = *fpsPtr
	cfg.Quality = *qualityPtr
	cfg.VideoEncoder = *encoderPtr
	cfg.Seed = seed
	cfg.SafetyFactor = *safetyPtr
	cfg.ShowStats = *statsPtr
	cfg.BuildVersion = buildVersion
	cfg.TimelinePath = *timelinePtr
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("некорректные параметры экспорта")
	}

	export := func(ctx context.Context, progress engine.ProgressFunc) (*engine.Result, error) {
		ve := video.NewFFmpegEncoder(cfg.Quality)
		ve.Codecs = video.Prefer(ve.Codecs, cfg.VideoEncoder)
		drawer := renderer.NewDrawer()
		defer drawer.Close()
		return engine.NewProject(cfg, *settings, ve, drawer).Run(ctx, progress)
	}

	if *previewPtr {
		opts := []tea.ProgramOption{}
		if !*noAltScreenPtr {
			opts = append(opts, tea.WithAltScreen())
		}
		// The preview owns the terminal; the log goes to a file.
		logFile, err := os.OpenFile("preview.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatal().Err(err).Msg("не удалось открыть preview.log")
		}
		defer logFile.Close()
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, NoColor: true, TimeFormat: time.RFC3339})

		program := tea.NewProgram(tui.New(tui.Config{
			Settings: *settings,
			Seed:     seed,
			Autoplay: *autoplayPtr,
			Export:   export,
		}), opts...)
		if _, err := program.Run(); err != nil {
			fmt.Println("program error:", err)
			logFile.Close()
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := export(ctx, logProgress())
	if err != nil {
		log.Fatal().Err(err).Msg("ошибка экспорта")
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", res.Path)
}

// presetSize maps a -preset value onto a resolution.
func presetSize(name string) (width, height int, ok bool) {
	switch name {
	case "1:1":
		return 1024, 1024, true
	case "16:9":
		return 1280, 720, true
	case "9:16":
		return 720, 1280, true
	case "4:5":
		return 1080, 1350, true
	}
	return 0, 0, false
}

func loadSettings(path string) *config.Settings {
	if path == "" {
		latest, err := system.FindLatestFile(settingsDir, ".yaml", ".yml")
		if err != nil {
			log.Info().Msg("файл настроек не найден, используются значения по умолчанию")
			s := config.DefaultSettings()
			return &s
		}
		path = latest
		log.Info().Str("path", path).Msg("выбран файл настроек")
	}
	s, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("ошибка чтения настроек")
	}
	return s
}

// logProgress reports every tenth of the estimate.
func logProgress() engine.ProgressFunc {
	last := -1
	return func(rendered, total int) {
		step := int(engine.Percent(rendered, total) * 10)
		if step == last {
			return
		}
		last = step
		log.Info().Int("frames", rendered).Int("estimate", total).Msgf("[>] %d%%", step*10)
	}
}
