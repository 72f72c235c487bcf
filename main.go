package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/decker502/shooter/pkg/config"
	"github.com/decker502/shooter/pkg/game"
	"github.com/decker502/shooter/pkg/logger"
	"github.com/decker502/shooter/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
	"github.com/rs/zerolog"
)

const (
	screenWidth  = 1024
	screenHeight = 768
	rangeStage   = "range"
)

var (
	configPath  = flag.String("config", "data/shooter.yaml", "射击配置文件")
	journalPath = flag.String("journal", "", "战斗日志输出路径（.jsonl.zst），为空时不记录")
	watch       = flag.Bool("watch", true, "监听配置文件变化并热重载")
	logLevel    = flag.String("log-level", "", "日志级别（覆盖 SHOOTER_LOG_LEVEL）")
)

// Game 实现 ebiten.Game：读取输入、驱动关卡、处理热重载与退出保存
type Game struct {
	stages   *game.StageManager
	scene    *scenes.ShooterScene
	watcher  *config.Watcher
	settings *game.SettingsManager
	log      zerolog.Logger

	lastCursorX, lastCursorY int
	cursorReady              bool
}

// Update 每个 tick 调用一次（默认 60 TPS）
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.shutdown()
		return ebiten.Termination
	}

	g.pollConfig()
	g.scene.SetInput(g.readInput())
	g.stages.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

// Draw 绘制当前关卡
func (g *Game) Draw(screen *ebiten.Image) {
	g.stages.Draw(screen)
}

// Layout 返回逻辑屏幕尺寸
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func (g *Game) readInput() scenes.Input {
	var in scenes.Input

	axis := func(neg, pos ebiten.Key) float64 {
		v := 0.0
		if ebiten.IsKeyPressed(neg) {
			v--
		}
		if ebiten.IsKeyPressed(pos) {
			v++
		}
		return v
	}
	in.MoveForward = axis(ebiten.KeyS, ebiten.KeyW)
	in.MoveRight = axis(ebiten.KeyA, ebiten.KeyD)
	in.TurnRate = axis(ebiten.KeyArrowLeft, ebiten.KeyArrowRight)
	in.LookUpRate = axis(ebiten.KeyArrowDown, ebiten.KeyArrowUp)
	in.Jump = inpututil.IsKeyJustPressed(ebiten.KeySpace)

	x, y := ebiten.CursorPosition()
	if g.cursorReady {
		in.MouseDX = float64(x-g.lastCursorX) * 0.2
		in.MouseDY = -float64(y-g.lastCursorY) * 0.2
	}
	g.lastCursorX, g.lastCursorY, g.cursorReady = x, y, true

	in.FirePressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	in.FireReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	in.AimPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	in.AimReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight)
	in.ReloadPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
	in.SelectPressed = inpututil.IsKeyJustPressed(ebiten.KeyE)
	in.SelectReleased = inpututil.IsKeyJustReleased(ebiten.KeyE)
	in.DropPressed = inpututil.IsKeyJustPressed(ebiten.KeyQ)
	return in
}

// pollConfig 非阻塞地处理配置变化；新配置无效时保留旧配置
func (g *Game) pollConfig() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if filepath.Clean(path) != filepath.Clean(*configPath) {
				continue
			}
			cfg, err := config.LoadShooterConfig(path)
			if err != nil {
				g.log.Error().Err(err).Str("path", path).Msg("config reload failed, keeping previous config")
				continue
			}
			if err := g.scene.ApplyConfig(cfg); err != nil {
				g.log.Error().Err(err).Msg("failed to apply reloaded config")
			}
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn().Err(err).Msg("config watcher error")
			}
		default:
			return
		}
	}
}

func (g *Game) shutdown() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if !g.stages.SaveOnExit() {
		g.log.Warn().Msg("stage did not save cleanly")
	}
}

func main() {
	flag.Parse()

	level := logger.LevelFromEnv(zerolog.InfoLevel)
	if *logLevel != "" {
		level = logger.ParseLevel(*logLevel, level)
	}
	logger.NewConsole(os.Stderr, level)
	log := logger.For("main")

	cfg, err := config.LoadShooterConfig(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", *configPath).Msg("config file not found, using embedded defaults")
		if cfg, err = embeddedConfig(); err != nil {
			log.Warn().Err(err).Msg("embedded config invalid, using built-in defaults")
			err = nil
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load shooter config")
	}

	// 玩家设置持久化；gdata 不可用时降级为仅内存设置
	var gdataManager *gdata.Manager
	if m, err := gdata.Open(gdata.Config{AppName: "shooter"}); err != nil {
		log.Warn().Err(err).Msg("gdata unavailable, settings will not persist")
	} else {
		gdataManager = m
	}
	settings, err := game.NewSettingsManager(gdataManager)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load settings, using defaults")
	}

	var journal *game.CombatJournal
	if *journalPath != "" {
		journal, err = game.OpenCombatJournal(*journalPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open combat journal")
		}
	}

	g := &Game{
		stages:   game.NewStageManager(),
		settings: settings,
		log:      log,
	}
	g.stages.SetStageFactory(func(name string) (game.Stage, error) {
		scene, err := scenes.NewShooterScene(scenes.Options{
			Config:   cfg,
			Settings: settings,
			Journal:  journal,
		})
		if err != nil {
			return nil, err
		}
		g.scene = scene
		return scene, nil
	})
	if err := g.stages.Load(rangeStage); err != nil {
		log.Fatal().Err(err).Msg("failed to create shooter range")
	}

	if *watch {
		if w, err := config.NewWatcher(filepath.Dir(*configPath)); err != nil {
			log.Warn().Err(err).Msg("config watcher disabled")
		} else {
			g.watcher = w
		}
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Shooter Range")
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal().Err(err).Msg("game loop exited with error")
	}
}
