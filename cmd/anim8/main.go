package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/anim8/internal/canvas"
	"github.com/ivlev/anim8/internal/config"
	"github.com/ivlev/anim8/internal/export"
	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/playback"
	"github.com/ivlev/anim8/internal/raster"
	"github.com/ivlev/anim8/internal/renderer"
	"github.com/ivlev/anim8/internal/script"
	"github.com/ivlev/anim8/internal/source"
	"github.com/ivlev/anim8/internal/studio"
	"github.com/ivlev/anim8/internal/system"
	"github.com/ivlev/anim8/internal/thumbnail"
	"github.com/ivlev/anim8/internal/video"
)

var buildVersion = "dev"

func main() {
	configPtr := flag.String("config", "", "YAML-файл конфигурации (флаги имеют приоритет)")
	widthPtr := flag.Int("width", model.DefaultWidth, "Ширина")
	heightPtr := flag.Int("height", model.DefaultHeight, "Высота")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram), 4:3")
	fpsPtr := flag.Int("fps", model.DefaultFPS, "FPS воспроизведения (1-60)")
	namePtr := flag.String("name", model.DefaultName, "Название анимации")
	inputPtr := flag.String("input", "", "PDF или папка с изображениями для импорта кадров (\"latest\": самый свежий PDF в input/pdf/)")
	dpiPtr := flag.Int("dpi", 150, "DPI страниц PDF")
	scriptPtr := flag.String("script", "", "YAML-сценарий шагов редактирования")
	loadPtr := flag.String("load", "", "Архив проекта для открытия")
	outPtr := flag.String("out", "output", "Папка результатов")
	pngPtr := flag.Bool("png", false, "Экспорт последовательности PNG в zip")
	projectPtr := flag.Bool("project", false, "Сохранить архив проекта")
	videoPtr := flag.Bool("video", false, "Рендер mp4 через ffmpeg")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	viewPtr := flag.String("view", "", "Сохранить текущий вид (с калькой) в PNG")
	playPtr := flag.Duration("play", 0, "Проиграть анимацию заданное время и показать число кадров")
	workersPtr := flag.Int("workers", 0, "Потоки импорта и экспорта (0 - все ядра)")
	statsPtr := flag.Bool("stats", false, "Показать статистику памяти в конце")
	verbosePtr := flag.Bool("v", false, "Подробный лог")
	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка конфигурации: %v", err)
		}
		cfg = loaded
		fmt.Printf("[*] Конфигурация: %s\n", *configPtr)
	}

	// Флаги переопределяют только явно заданные значения
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "preset":
			cfg.Preset = *presetPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "name":
			cfg.Name = *namePtr
		case "input":
			cfg.InputPath = *inputPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "script":
			cfg.ScriptPath = *scriptPtr
		case "load":
			cfg.ProjectPath = *loadPtr
		case "out":
			cfg.OutputDir = *outPtr
		case "png":
			cfg.ExportPNG = *pngPtr
		case "project":
			cfg.ExportProject = *projectPtr
		case "video":
			cfg.ExportVideo = *videoPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "workers":
			if *workersPtr > 0 {
				cfg.Workers = *workersPtr
			}
		case "stats":
			cfg.ShowStats = *statsPtr
		case "v":
			cfg.Verbose = *verbosePtr
		}
	})
	cfg.BuildVersion = buildVersion

	if err := cfg.ApplyPreset(); err != nil {
		log.Fatalf("[-] %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	if cfg.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		studio.SetLogger(logger)
		export.SetLogger(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *viewPtr, *playPtr); err != nil {
		log.Fatalf("[-] %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, viewPath string, play time.Duration) error {
	// Инициализируем документ и миниатюры
	store := studio.New(cfg.Width, cfg.Height)
	thumbs := thumbnail.New(thumbnail.DefaultWidth, thumbnail.DefaultHeight)
	detach := thumbs.Attach(store)
	defer detach()

	if cfg.ProjectPath != "" {
		st, images, err := export.OpenProject(cfg.ProjectPath)
		if err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		store.Load(st, images)
		fmt.Printf("[*] Открыт проект %s: кадров %d, %dx%d\n", cfg.ProjectPath, len(st.Animation.Frames), st.Animation.Width, st.Animation.Height)
	} else {
		store.Dispatch(studio.RenameAnimation{Name: cfg.Name})
		store.Dispatch(studio.SetFPS{FPS: cfg.FPS})
		store.Dispatch(studio.SetBrushColor{Color: cfg.BrushColor})
		store.Dispatch(studio.SetBrushSize{Size: cfg.BrushSize})
		store.Dispatch(studio.SetOnionSkinning{Enabled: cfg.OnionSkinning})
	}

	if cfg.InputPath != "" {
		if err := importPages(ctx, store, cfg); err != nil {
			return err
		}
	}

	if cfg.ScriptPath != "" {
		sc, err := script.ReadScript(cfg.ScriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		r := &script.Runner{Store: store, Canvas: canvas.New(store, thumbs)}
		if err := r.Run(ctx, sc); err != nil {
			return fmt.Errorf("script: %w", err)
		}
		fmt.Printf("[*] Сценарий применён: шагов %d\n", len(sc.Steps))
	}

	if err := store.Check(); err != nil {
		return err
	}

	if play > 0 {
		shown := runPlayback(ctx, store, play)
		fmt.Printf("[*] Воспроизведение: %d смен кадра за %s при %d fps\n", shown, play, store.State().FPS)
	}

	st, reg := store.Snapshot()
	fmt.Printf("[*] %q: кадров %d, слоёв %d, миниатюр %d\n",
		st.Animation.Name, len(st.Animation.Frames), reg.Len(), thumbs.Len())

	if viewPath != "" {
		if err := writeView(viewPath, st, reg); err != nil {
			return err
		}
		fmt.Printf("[+] Вид: %s\n", viewPath)
	}

	opts := export.Options{Workers: cfg.Workers, Build: cfg.BuildVersion}
	if cfg.ExportPNG {
		path, err := export.SequenceFile(ctx, cfg.OutputDir, st, reg, opts)
		if err != nil {
			return fmt.Errorf("export sequence: %w", err)
		}
		fmt.Printf("[+] Последовательность: %s\n", path)
	}
	if cfg.ExportProject {
		path, err := export.ProjectFile(cfg.OutputDir, st, reg, opts)
		if err != nil {
			return fmt.Errorf("save project: %w", err)
		}
		fmt.Printf("[+] Проект: %s\n", path)
	}
	if cfg.ExportVideo {
		if err := renderVideo(ctx, cfg, st, reg); err != nil {
			return err
		}
	}

	if cfg.ShowStats {
		report, err := system.ReadMemory(reg.Len(), reg.Bytes())
		if err != nil {
			log.Printf("[!] Не удалось получить статистику памяти: %v", err)
		} else {
			fmt.Print(report)
		}
	}

	fmt.Println("[+++] Успех!")
	return nil
}

func importPages(ctx context.Context, store *studio.Store, cfg config.Config) error {
	path := cfg.InputPath
	if path == "latest" {
		latest, err := system.FindLatest(filepath.Join("input", "pdf"), ".pdf")
		if err != nil {
			return fmt.Errorf("%w. Положите PDF в input/pdf/", err)
		}
		path = latest
		fmt.Printf("[*] Выбран файл: %s\n", path)
	}

	src, err := source.Open(path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	start := time.Now()
	ids, err := source.Import(ctx, store, src, cfg.DPI, cfg.Workers)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Printf("[*] Импортировано страниц: %d за %s\n", len(ids), time.Since(start).Round(time.Millisecond))
	return nil
}

func runPlayback(ctx context.Context, store *studio.Store, d time.Duration) int64 {
	ctrl := playback.New(ctx, store)
	defer ctrl.Close()

	if !store.State().Playing {
		store.Dispatch(studio.TogglePlaying{})
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
	store.Dispatch(studio.TogglePlaying{})
	return ctrl.Advanced()
}

func writeView(path string, st model.State, reg *raster.Registry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, renderer.View(st, reg))
}

func renderVideo(ctx context.Context, cfg config.Config, st model.State, reg *raster.Registry) error {
	encoder := cfg.VideoEncoder
	if encoder == "" {
		encoder = system.BestH264Encoder()
	}
	if encoder != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoder)
	}

	clean := strings.ReplaceAll(strings.TrimSuffix(export.ArchiveName(st.Animation.Name), ".zip"), " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s.mp4", clean, timestamp))
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}

	params := video.Params{
		Width:   st.Animation.Width,
		Height:  st.Animation.Height,
		FPS:     config.ClampFPS(st.FPS),
		Encoder: encoder,
		Quality: cfg.Quality,
	}
	ve := &video.FFmpegEncoder{}
	if err := ve.Encode(ctx, export.Frames(st, reg), path, params); err != nil {
		return fmt.Errorf("video: %w", err)
	}
	fmt.Printf("[+] Видео: %s\n", path)
	return nil
}
