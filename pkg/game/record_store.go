package game

import (
	"fmt"
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// SessionRecord 跨会话的最佳记录
type SessionRecord struct {
	BestWave        int       `yaml:"bestWave"`        // 完成过的最高波次
	WavesCompleted  int       `yaml:"wavesCompleted"`  // 累计完成的波次数
	SessionsStarted int       `yaml:"sessionsStarted"` // 累计开始的会话数
	UpdatedAt       time.Time `yaml:"updatedAt"`       // 最近一次更新时间
}

// 存储路径常量
const (
	recordObject   = "records"
	recordProperty = "waves"
)

// RecordStore 记录存储
// 作为波次观察者挂到 WaveScheduler 上，每波结束时更新并持久化记录
type RecordStore struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式，仅内存记录）
	record       SessionRecord
	now          func() time.Time
}

// NewRecordStore 创建记录存储
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式）
//
// 返回：
//   - *RecordStore: 记录存储实例（加载失败时使用空记录，不影响创建）
func NewRecordStore(gdataManager *gdata.Manager) *RecordStore {
	rs := &RecordStore{
		gdataManager: gdataManager,
		now:          time.Now,
	}

	if err := rs.Load(); err != nil {
		// 加载失败不是致命错误，使用空记录
		log.Printf("[RecordStore] Warning: Failed to load records: %v (starting fresh)", err)
	}

	return rs
}

// Load 从 gdata 加载记录
func (rs *RecordStore) Load() error {
	if rs.gdataManager == nil {
		return nil
	}

	if !rs.gdataManager.ObjectPropExists(recordObject, recordProperty) {
		return nil
	}

	data, err := rs.gdataManager.LoadObjectProp(recordObject, recordProperty)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	var loaded SessionRecord
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal records: %w", err)
	}

	rs.record = loaded
	log.Printf("[RecordStore] Records loaded: best wave %d", loaded.BestWave)
	return nil
}

// Save 保存记录到 gdata
// gdataManager 为 nil 时返回 nil（降级模式，不报错）
func (rs *RecordStore) Save() error {
	if rs.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(rs.record)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	if err := rs.gdataManager.SaveObjectProp(recordObject, recordProperty, data); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}

	return nil
}

// BeginSession 记录一次新会话
func (rs *RecordStore) BeginSession() {
	rs.record.SessionsStarted++
	rs.touch()
}

// OnWaveStarted 实现 WaveObserver（无需处理）
func (rs *RecordStore) OnWaveStarted(waveIndex int) {}

// OnWaveEnded 实现 WaveObserver：更新最佳波次并保存
func (rs *RecordStore) OnWaveEnded(waveIndex int) {
	rs.record.WavesCompleted++
	if waveIndex > rs.record.BestWave {
		rs.record.BestWave = waveIndex
		log.Printf("[RecordStore] New best wave: %d", waveIndex)
	}
	rs.touch()
}

// touch 更新时间戳并保存，保存失败只记录日志
func (rs *RecordStore) touch() {
	rs.record.UpdatedAt = rs.now()
	if err := rs.Save(); err != nil {
		log.Printf("[RecordStore] Warning: %v", err)
	}
}

// Record 返回当前记录
func (rs *RecordStore) Record() SessionRecord {
	return rs.record
}
