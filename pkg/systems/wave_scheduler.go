package systems

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/decker502/wavesched/pkg/components"
	"github.com/decker502/wavesched/pkg/config"
	"github.com/decker502/wavesched/pkg/ecs"
	"github.com/decker502/wavesched/pkg/types"
)

// SpawnSink 单位生成接口
// 由世界侧（工厂）实现，调度器只负责在正确的时机发出请求
//
// 返回 types.InvalidUnitHandle 表示未能放置单位，此时调度器不计入存活数
type SpawnSink interface {
	SpawnUnit(kind types.UnitKind, at types.Position) types.UnitHandle
}

// WaveObserver 波次生命周期观察者（UI、计分、记录等）
type WaveObserver interface {
	OnWaveStarted(waveIndex int)
	OnWaveEnded(waveIndex int)
}

// WaveSnapshot 波次状态快照（只读副本，供 HUD 与调试使用）
type WaveSnapshot struct {
	State                   types.WaveState
	WaveIndex               int
	EnemiesRemainingToSpawn int
	BossesRemainingToSpawn  int // 本波尚未移交的首领数量
	BossesInFlight          int // 进行中的首领子计划尚未生成的数量
	ActiveBossSchedules     int
	EnemiesAlive            int
	SpawnIntervalSeconds    float64
	IntermissionRemaining   float64
	IsPaused                bool
	IsStopped               bool
}

// bossSchedule 首领子计划
// 独立于主生成计时器，拥有自己的剩余数量与计时，不阻塞波次推进
type bossSchedule struct {
	waveIndex int
	remaining int
	elapsed   float64
}

// WaveScheduler 波次调度系统
//
// 职责：
//   - 间歇 → 生成 的定时切换
//   - 生成阶段按冻结的间隔逐个请求普通敌人
//   - 根据存活数与剩余数检测波次结束（边沿触发，每波只结束一次）
//   - 偶数波结束时启动首领子计划，与下一波并行
//
// 架构说明：
//   - 使用 WaveContextComponent 存储状态（挂在调度器创建的实体上）
//   - 存活数由共享的 AliveCounter 维护，销毁信号可来自任意 goroutine
//   - 其余状态只由 tick 驱动方调用 Advance 修改，不需要加锁
type WaveScheduler struct {
	entityManager *ecs.EntityManager
	config        *config.DifficultyConfig
	curve         *DifficultyCurve
	sink          SpawnSink
	alive         *AliveCounter
	observers     []WaveObserver

	// bossSchedules 进行中的首领子计划，可能来自多个已结束的波次
	bossSchedules []*bossSchedule

	// contextEntityID 波次上下文组件所在的实体ID
	contextEntityID ecs.EntityID

	totalSpawned       int
	totalBossesSpawned int
	rejectedSpawns     int

	// verbose 是否输出详细日志
	verbose bool
}

// NewWaveScheduler 创建波次调度系统
//
// 参数：
//   - em: 实体管理器
//   - cfg: 难度参数（构造时校验，不合法返回 *config.ConfigurationError）
//   - sink: 单位生成接口
//   - alive: 共享存活计数器，为 nil 时内部创建
//
// 返回：
//   - *WaveScheduler: 调度器实例，初始状态为第 1 波的间歇阶段
//   - error: 参数非法时返回
func NewWaveScheduler(em *ecs.EntityManager, cfg *config.DifficultyConfig, sink SpawnSink, alive *AliveCounter) (*WaveScheduler, error) {
	if em == nil {
		return nil, errors.New("entity manager is nil")
	}
	if cfg == nil {
		return nil, &config.ConfigurationError{Field: "config", Reason: "cannot be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid difficulty config: %w", err)
	}
	if sink == nil {
		return nil, errors.New("spawn sink is nil")
	}
	if alive == nil {
		alive = NewAliveCounter()
	}

	s := &WaveScheduler{
		entityManager: em,
		config:        cfg,
		curve:         NewDifficultyCurve(cfg),
		sink:          sink,
		alive:         alive,
	}

	s.createContextEntity()

	return s, nil
}

// createContextEntity 创建波次上下文实体
func (s *WaveScheduler) createContextEntity() {
	entityID := s.entityManager.CreateEntity()
	s.contextEntityID = entityID

	ecs.AddComponent(s.entityManager, entityID, &components.WaveContextComponent{
		State:     types.WaveIntermission,
		WaveIndex: 1,
	})

	log.Printf("[WaveScheduler] Created wave context entity (ID: %d), intermission %.2fs before wave 1",
		entityID, s.config.IntermissionSeconds)
}

// AddObserver 注册波次生命周期观察者
func (s *WaveScheduler) AddObserver(o WaveObserver) {
	if o == nil {
		return
	}
	s.observers = append(s.observers, o)
}

// Advance 推进调度器
//
// 执行流程：
//  1. 推进所有进行中的首领子计划
//  2. 间歇阶段：累积时间，到期后开始新一波
//  3. 生成阶段：推进计时器，到期且有剩余时生成一个普通敌人
//  4. 生成阶段：存活数为 0 且无剩余时结束本波
//
// 参数：
//   - deltaSeconds: 自上一次调用以来经过的时间（秒），负数与 NaN 视为 0
func (s *WaveScheduler) Advance(deltaSeconds float64) {
	ctx := s.getContext()
	if ctx == nil {
		return
	}

	if ctx.IsStopped || ctx.IsPaused {
		return
	}

	if !(deltaSeconds > 0) || math.IsInf(deltaSeconds, 1) {
		deltaSeconds = 0
	}

	s.advanceBossSchedules(deltaSeconds)

	switch ctx.State {
	case types.WaveIntermission:
		ctx.IntermissionElapsed += deltaSeconds
		if ctx.IntermissionElapsed >= s.config.IntermissionSeconds {
			s.startWave(ctx)
		}

	case types.WaveSpawning:
		ctx.SpawnTimer.Advance(deltaSeconds)

		if ctx.SpawnTimer.IsDue(ctx.CurrentSpawnIntervalSeconds) && ctx.EnemiesRemainingToSpawn > 0 {
			s.spawn(types.UnitStandard)
			ctx.EnemiesRemainingToSpawn--
			ctx.SpawnTimer.Reset()

			if s.verbose {
				log.Printf("[WaveScheduler] Wave %d: spawned standard unit, %d remaining, %d alive",
					ctx.WaveIndex, ctx.EnemiesRemainingToSpawn, s.alive.Count())
			}
		}

		// 离开 Spawning 状态后不会再次进入此分支，保证每波只结束一次
		if s.alive.IsZero() && ctx.EnemiesRemainingToSpawn == 0 {
			s.endWave(ctx)
		}
	}
}

// startWave 进入生成阶段
func (s *WaveScheduler) startWave(ctx *components.WaveContextComponent) {
	waveIndex := ctx.WaveIndex

	enemies, err := s.curve.EnemyCountForWave(waveIndex)
	if err != nil {
		log.Printf("[WaveScheduler] ERROR: enemy count for wave %d: %v", waveIndex, err)
		enemies = 0
	}

	interval, err := s.curve.SpawnIntervalForWave(waveIndex)
	if err != nil {
		log.Printf("[WaveScheduler] ERROR: spawn interval for wave %d: %v", waveIndex, err)
		interval = math.Inf(1)
	}

	bosses := 0
	if waveIndex%2 == 0 {
		if bosses, err = s.curve.BossCountForWave(waveIndex); err != nil {
			log.Printf("[WaveScheduler] ERROR: boss count for wave %d: %v", waveIndex, err)
			bosses = 0
		}
	}

	ctx.State = types.WaveSpawning
	ctx.EnemiesRemainingToSpawn = enemies
	ctx.BossesRemainingToSpawn = bosses
	ctx.CurrentSpawnIntervalSeconds = interval
	ctx.IntermissionElapsed = 0
	ctx.SpawnTimer.Reset()

	log.Printf("[WaveScheduler] Wave %d started: enemies=%d, bosses=%d, interval=%.3fs",
		waveIndex, enemies, bosses, interval)

	for _, o := range s.observers {
		o.OnWaveStarted(waveIndex)
	}
}

// endWave 结束当前波次并回到间歇阶段
func (s *WaveScheduler) endWave(ctx *components.WaveContextComponent) {
	waveIndex := ctx.WaveIndex

	// 首领子计划与下一波并行，不等待其完成
	if waveIndex%2 == 0 && ctx.BossesRemainingToSpawn > 0 {
		s.launchBossSchedule(waveIndex, ctx.BossesRemainingToSpawn)
		ctx.BossesRemainingToSpawn = 0
	}

	log.Printf("[WaveScheduler] Wave %d ended", waveIndex)

	for _, o := range s.observers {
		o.OnWaveEnded(waveIndex)
	}

	ctx.WaveIndex++
	ctx.State = types.WaveIntermission
	ctx.IntermissionElapsed = 0
	ctx.SpawnTimer.Reset()
}

// launchBossSchedule 启动首领子计划
// 启动时立即生成第一个首领，之后每隔 bossSpawnDelaySeconds 生成一个
func (s *WaveScheduler) launchBossSchedule(waveIndex, count int) {
	schedule := &bossSchedule{waveIndex: waveIndex, remaining: count}

	log.Printf("[WaveScheduler] Boss schedule launched for wave %d: %d bosses every %.2fs",
		waveIndex, count, s.config.BossSpawnDelaySeconds)

	s.spawnBoss(schedule)
	if schedule.remaining > 0 {
		s.bossSchedules = append(s.bossSchedules, schedule)
	}
}

// advanceBossSchedules 推进所有首领子计划，移除已完成的
func (s *WaveScheduler) advanceBossSchedules(deltaSeconds float64) {
	if len(s.bossSchedules) == 0 {
		return
	}

	active := s.bossSchedules[:0]
	for _, schedule := range s.bossSchedules {
		schedule.elapsed += deltaSeconds
		if schedule.elapsed >= s.config.BossSpawnDelaySeconds {
			s.spawnBoss(schedule)
			schedule.elapsed = 0
		}

		if schedule.remaining > 0 {
			active = append(active, schedule)
		} else {
			log.Printf("[WaveScheduler] Boss schedule for wave %d finished", schedule.waveIndex)
		}
	}

	// 清除尾部残留指针
	for i := len(active); i < len(s.bossSchedules); i++ {
		s.bossSchedules[i] = nil
	}
	s.bossSchedules = active
}

// spawnBoss 通过子计划生成一个首领
func (s *WaveScheduler) spawnBoss(schedule *bossSchedule) {
	if schedule.remaining <= 0 {
		return
	}
	if s.spawn(types.UnitBoss) {
		s.totalBossesSpawned++
	}
	schedule.remaining--

	if s.verbose {
		log.Printf("[WaveScheduler] Wave %d boss spawned, %d remaining in schedule", schedule.waveIndex, schedule.remaining)
	}
}

// spawn 向 SpawnSink 请求一个单位
// 只有被接受的生成才计入存活数
//
// 返回：
//   - bool: 单位是否被放置
func (s *WaveScheduler) spawn(kind types.UnitKind) bool {
	handle := s.sink.SpawnUnit(kind, s.config.SpawnPoint)
	if handle == types.InvalidUnitHandle {
		s.rejectedSpawns++
		log.Printf("[WaveScheduler] WARNING: spawn sink rejected %s unit", kind)
		return false
	}

	s.alive.Increment()
	s.totalSpawned++
	return true
}

// NotifyUnitDestroyed 单位销毁信号（每个单位恰好一次，与死因无关）
// 可从任意 goroutine 调用
func (s *WaveScheduler) NotifyUnitDestroyed() {
	s.alive.Decrement()
}

// Pause 暂停调度器（所有计时冻结，包括首领子计划）
func (s *WaveScheduler) Pause() {
	ctx := s.getContext()
	if ctx == nil {
		return
	}
	ctx.IsPaused = true
	log.Printf("[WaveScheduler] Paused at wave %d (%s)", ctx.WaveIndex, ctx.State)
}

// Resume 恢复调度器
func (s *WaveScheduler) Resume() {
	ctx := s.getContext()
	if ctx == nil {
		return
	}
	ctx.IsPaused = false
	log.Printf("[WaveScheduler] Resumed at wave %d (%s)", ctx.WaveIndex, ctx.State)
}

// Stop 停止调度器（会话结束）
// 取消所有进行中的首领子计划，避免会话结束后仍有单位生成
func (s *WaveScheduler) Stop() {
	ctx := s.getContext()
	if ctx == nil {
		return
	}
	if ctx.IsStopped {
		return
	}

	cancelled := len(s.bossSchedules)
	s.bossSchedules = nil
	ctx.IsStopped = true

	log.Printf("[WaveScheduler] Stopped at wave %d, cancelled %d boss schedule(s)", ctx.WaveIndex, cancelled)
}

// Reset 会话重启：回到第 1 波的间歇阶段，清空计数与子计划
func (s *WaveScheduler) Reset() {
	ctx := s.getContext()
	if ctx == nil {
		return
	}

	*ctx = components.WaveContextComponent{
		State:     types.WaveIntermission,
		WaveIndex: 1,
	}
	s.bossSchedules = nil
	s.alive.Reset()
	s.totalSpawned = 0
	s.totalBossesSpawned = 0
	s.rejectedSpawns = 0

	log.Printf("[WaveScheduler] Session reset")
}

// Snapshot 返回当前状态的只读副本
func (s *WaveScheduler) Snapshot() WaveSnapshot {
	ctx := s.getContext()
	if ctx == nil {
		return WaveSnapshot{}
	}

	inFlight := 0
	for _, schedule := range s.bossSchedules {
		inFlight += schedule.remaining
	}

	remaining := 0.0
	if ctx.State == types.WaveIntermission {
		remaining = math.Max(0, s.config.IntermissionSeconds-ctx.IntermissionElapsed)
	}

	return WaveSnapshot{
		State:                   ctx.State,
		WaveIndex:               ctx.WaveIndex,
		EnemiesRemainingToSpawn: ctx.EnemiesRemainingToSpawn,
		BossesRemainingToSpawn:  ctx.BossesRemainingToSpawn,
		BossesInFlight:          inFlight,
		ActiveBossSchedules:     len(s.bossSchedules),
		EnemiesAlive:            s.alive.Count(),
		SpawnIntervalSeconds:    ctx.CurrentSpawnIntervalSeconds,
		IntermissionRemaining:   remaining,
		IsPaused:                ctx.IsPaused,
		IsStopped:               ctx.IsStopped,
	}
}

// Curve 返回调度器使用的难度曲线
func (s *WaveScheduler) Curve() *DifficultyCurve {
	return s.curve
}

// AliveCounter 返回共享存活计数器
func (s *WaveScheduler) AliveCounter() *AliveCounter {
	return s.alive
}

// TotalSpawned 本会话被接受的生成总数（含首领）
func (s *WaveScheduler) TotalSpawned() int {
	return s.totalSpawned
}

// TotalBossesSpawned 本会话生成的首领总数
func (s *WaveScheduler) TotalBossesSpawned() int {
	return s.totalBossesSpawned
}

// RejectedSpawns 被 SpawnSink 拒绝的生成请求数
func (s *WaveScheduler) RejectedSpawns() int {
	return s.rejectedSpawns
}

// SetVerbose 设置是否输出详细日志
func (s *WaveScheduler) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// getContext 获取波次上下文组件
func (s *WaveScheduler) getContext() *components.WaveContextComponent {
	ctx, ok := ecs.GetComponent[*components.WaveContextComponent](s.entityManager, s.contextEntityID)
	if !ok {
		return nil
	}
	return ctx
}

// GetContextEntityID 获取上下文实体ID（用于测试）
func (s *WaveScheduler) GetContextEntityID() ecs.EntityID {
	return s.contextEntityID
}
