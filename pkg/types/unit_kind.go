// Package types 定义共享的基础类型
package types

import "fmt"

// UnitKind 定义生成单位的类别
type UnitKind int

const (
	// UnitStandard 普通敌人（主计时器按节奏生成）
	UnitStandard UnitKind = iota

	// UnitBoss 首领（由首领子计划按固定间隔生成）
	UnitBoss
)

// String 返回单位类别名称（日志与配置使用）
func (k UnitKind) String() string {
	switch k {
	case UnitStandard:
		return "standard"
	case UnitBoss:
		return "boss"
	default:
		return fmt.Sprintf("UnitKind(%d)", int(k))
	}
}

// ParseUnitKind 将配置中的字符串解析为 UnitKind
//
// 返回：
//   - UnitKind: 解析结果
//   - bool: 是否为已知类别
func ParseUnitKind(s string) (UnitKind, bool) {
	switch s {
	case "standard":
		return UnitStandard, true
	case "boss":
		return UnitBoss, true
	default:
		return UnitStandard, false
	}
}

// Position 世界坐标
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// UnitHandle 生成单位的不透明句柄
// 调度器不解释其含义，仅由世界侧（工厂）使用
type UnitHandle uint64

// InvalidUnitHandle 表示未能放置单位
const InvalidUnitHandle UnitHandle = 0
