// Package app 提供波次调度演示应用的核心包装器
//
// 该包把 ECS 世界、波次调度器与演示用协作者组装在一起，
// 桌面端通过 main.go 调用 NewApp() 并交给 ebiten 驱动，
// 无界面模式通过 RunHeadless() 以固定步长驱动。
package app

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/decker502/wavesched/pkg/components"
	"github.com/decker502/wavesched/pkg/config"
	"github.com/decker502/wavesched/pkg/ecs"
	"github.com/decker502/wavesched/pkg/entities"
	"github.com/decker502/wavesched/pkg/game"
	"github.com/decker502/wavesched/pkg/systems"
	"github.com/decker502/wavesched/pkg/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 逻辑屏幕尺寸
const (
	ScreenWidth  = 800
	ScreenHeight = 480
)

// clickDamage 每次点击对单位造成的伤害
const clickDamage = 1

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Difficulty 难度参数，为 nil 时使用默认值
	Difficulty *config.DifficultyConfig
	// Records 跨会话记录，为 nil 时不记录
	Records *game.RecordStore
	// Seed 变体随机选择的种子
	Seed int64
	// MaxUnits 场上单位上限，0 表示不限制
	MaxUnits int
}

// App 是演示应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	entityManager *ecs.EntityManager
	difficulty    *config.DifficultyConfig
	alive         *systems.AliveCounter
	scheduler     *systems.WaveScheduler
	factory       *entities.EnemyFactory
	lifetime      *systems.LifetimeSystem
	cleanup       *systems.UnitCleanupSystem
	records       *game.RecordStore
	progress      *waveProgress

	elapsed float64
	verbose bool
}

// waveProgress 统计本会话完成的波次（HUD 与无界面模式的汇总使用）
type waveProgress struct {
	started   int
	completed int
	lastEnded int
}

func (p *waveProgress) OnWaveStarted(waveIndex int) {
	p.started++
}

func (p *waveProgress) OnWaveEnded(waveIndex int) {
	p.completed++
	p.lastEnded = waveIndex
}

// NewApp 创建并初始化应用
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	difficulty := cfg.Difficulty
	if difficulty == nil {
		difficulty = config.DefaultDifficultyConfig()
	}

	em := ecs.NewEntityManager()

	// 存活计数器先于工厂和调度器创建，两者共享同一个实例
	alive := systems.NewAliveCounter()

	factory := entities.NewEnemyFactory(em, difficulty, alive.Decrement, cfg.Seed)
	factory.SetMaxUnits(cfg.MaxUnits)

	scheduler, err := systems.NewWaveScheduler(em, difficulty, factory, alive)
	if err != nil {
		return nil, fmt.Errorf("波次调度器创建失败: %w", err)
	}
	scheduler.SetVerbose(cfg.Verbose)

	cleanup := systems.NewUnitCleanupSystem(em)
	cleanup.SetVerbose(cfg.Verbose)

	progress := &waveProgress{}
	scheduler.AddObserver(progress)
	if cfg.Records != nil {
		cfg.Records.BeginSession()
		scheduler.AddObserver(cfg.Records)
	}

	log.Printf("[App] Initialized: baseEnemies=%d, baseSpawnRate=%.2f, intermission=%.1fs",
		difficulty.BaseEnemies, difficulty.BaseSpawnRate, difficulty.IntermissionSeconds)

	return &App{
		entityManager: em,
		difficulty:    difficulty,
		alive:         alive,
		scheduler:     scheduler,
		factory:       factory,
		lifetime:      systems.NewLifetimeSystem(em),
		cleanup:       cleanup,
		records:       cfg.Records,
		progress:      progress,
		verbose:       cfg.Verbose,
	}, nil
}

// Step 推进一个逻辑帧
//
// 顺序：调度器 → 生命周期 → 清理 → 删除标记实体
// 销毁回调在同一帧内到达，下一帧的完成检测即可看到
func (a *App) Step(deltaTime float64) {
	if deltaTime > 0 && !a.scheduler.Snapshot().IsPaused {
		a.elapsed += deltaTime
	}

	a.scheduler.Advance(deltaTime)

	if a.scheduler.Snapshot().IsPaused {
		return
	}

	a.lifetime.Update(deltaTime)
	a.cleanup.Update()
	a.entityManager.RemoveMarkedEntities()
}

// Update 更新游戏逻辑
// 每个 tick 调用一次
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// 空格切换暂停
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.TogglePause()
	}

	// R 重新开始会话
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.Restart()
	}

	// 点击单位造成伤害
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		cursorX, cursorY := ebiten.CursorPosition()
		if handle, ok := a.UnitAt(float64(cursorX), float64(cursorY)); ok {
			a.factory.Damage(handle, clickDamage)
		}
	}

	a.Step(1.0 / float64(ebiten.TPS()))
	return nil
}

// TogglePause 切换暂停状态
func (a *App) TogglePause() {
	if a.scheduler.Snapshot().IsPaused {
		a.scheduler.Resume()
	} else {
		a.scheduler.Pause()
	}
}

// Restart 清空场上单位并从第 1 波重新开始
func (a *App) Restart() {
	removed := a.factory.Clear()
	a.entityManager.RemoveMarkedEntities()
	a.scheduler.Reset()
	a.elapsed = 0
	*a.progress = waveProgress{}
	log.Printf("[App] Session restarted, removed %d unit(s)", removed)
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 24, G: 28, B: 36, A: 255})

	// 路径
	spawn := a.difficulty.SpawnPoint
	vector.StrokeLine(screen, float32(spawn.X), float32(spawn.Y), float32(pathEndX), float32(spawn.Y), 2, color.RGBA{R: 80, G: 90, B: 110, A: 255}, true)

	for _, marker := range a.unitMarkers() {
		clr := color.RGBA{R: 120, G: 200, B: 90, A: 255}
		if marker.kind == types.UnitBoss {
			clr = color.RGBA{R: 220, G: 70, B: 60, A: 255}
		}
		vector.DrawFilledRect(screen, float32(marker.x), float32(marker.y), float32(marker.size), float32(marker.size), clr, true)

		// 血条
		if marker.healthRatio < 1 {
			vector.DrawFilledRect(screen, float32(marker.x), float32(marker.y-4), float32(marker.size*marker.healthRatio), 2, color.White, false)
		}
	}

	ebitenutil.DebugPrint(screen, a.HUDText())
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// HUDText 返回 HUD 文本
func (a *App) HUDText() string {
	snap := a.scheduler.Snapshot()

	status := snap.State.String()
	if snap.IsPaused {
		status += " (paused)"
	}
	if snap.IsStopped {
		status += " (stopped)"
	}

	text := fmt.Sprintf("Wave: %d  State: %s\nAlive: %d  To spawn: %d  Bosses in flight: %d\nInterval: %.2fs  Completed: %d",
		snap.WaveIndex, status,
		snap.EnemiesAlive, snap.EnemiesRemainingToSpawn, snap.BossesInFlight,
		snap.SpawnIntervalSeconds, a.progress.completed)

	if snap.State == types.WaveIntermission {
		text += fmt.Sprintf("\nNext wave in %.1fs", snap.IntermissionRemaining)
	}
	if a.records != nil {
		text += fmt.Sprintf("\nBest wave: %d", a.records.Record().BestWave)
	}
	return text + "\n[Space] pause  [R] restart  [Click] damage"
}

// Shutdown 结束会话：停止调度器并保存记录
func (a *App) Shutdown() error {
	a.scheduler.Stop()
	if a.records == nil {
		return nil
	}
	if err := a.records.Save(); err != nil {
		return fmt.Errorf("记录保存失败: %w", err)
	}
	return nil
}

// Scheduler 返回波次调度器
func (a *App) Scheduler() *systems.WaveScheduler {
	return a.scheduler
}

// Factory 返回敌人工厂
func (a *App) Factory() *entities.EnemyFactory {
	return a.factory
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

// IsTermination 判断 RunGame 返回的错误是否为正常退出
func IsTermination(err error) bool {
	return errors.Is(err, ebiten.Termination)
}

// enemyHealthRatio 返回单位剩余生命比例
func enemyHealthRatio(enemy *components.EnemyComponent) float64 {
	if enemy.MaxHealth <= 0 {
		return 1
	}
	return float64(enemy.Health) / float64(enemy.MaxHealth)
}
