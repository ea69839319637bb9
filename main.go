package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/wavesched/pkg/app"
	"github.com/decker502/wavesched/pkg/config"
	"github.com/decker502/wavesched/pkg/embedded"
	"github.com/decker502/wavesched/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"
)

const defaultDifficultyPath = "data/difficulty.yaml"

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "难度配置文件路径（为空时使用内置配置）")
	headless   = flag.Bool("headless", false, "无界面模式，按固定步长模拟后输出汇总")
	duration   = flag.Float64("duration", 120, "无界面模式的模拟时长（秒）")
	step       = flag.Float64("step", 1.0/60.0, "无界面模式的帧时长（秒）")
	seed       = flag.Int64("seed", 1, "单位变体随机种子")
	maxUnits   = flag.Int("max-units", 0, "场上单位上限（0 表示不限制）")
	noRecords  = flag.Bool("no-records", false, "不读写跨会话记录")
)

func main() {
	flag.Parse()

	// 初始化嵌入数据
	embedded.Init(dataFS)

	difficulty, err := loadDifficulty(*configPath)
	if err != nil {
		log.Fatalf("难度配置加载失败: %v", err)
	}

	var records *game.RecordStore
	if !*noRecords {
		records = game.NewRecordStore(openStorage())
	}

	application, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		Difficulty: difficulty,
		Records:    records,
		Seed:       *seed,
		MaxUnits:   *maxUnits,
	})
	if err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}

	if *headless {
		summary, err := application.RunHeadless(*step, *duration)
		if err != nil {
			log.Fatalf("无界面运行失败: %v", err)
		}
		if err := application.Shutdown(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		fmt.Println(summary)
		return
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Wave Scheduler")

	runErr := ebiten.RunGame(application)
	if err := application.Shutdown(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if runErr != nil && !app.IsTermination(runErr) {
		log.Fatal(runErr)
	}
}

// loadDifficulty 加载难度配置
// 指定了路径时从文件读取，否则使用内置配置
func loadDifficulty(path string) (*config.DifficultyConfig, error) {
	if path != "" {
		return config.LoadDifficultyConfig(path)
	}

	data, err := embedded.ReadFile(defaultDifficultyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded difficulty config: %w", err)
	}
	return config.ParseDifficultyConfig(data)
}

// openStorage 打开跨平台存储
// 失败时返回 nil，记录只保存在内存中
func openStorage() *gdata.Manager {
	manager, err := gdata.Open(gdata.Config{AppName: "wavesched"})
	if err != nil {
		log.Printf("[Main] Warning: Failed to open gdata storage: %v", err)
		return nil
	}
	return manager
}
