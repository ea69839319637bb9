package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decker502/wavesched/pkg/types"
)

func TestDefaultDifficultyConfig(t *testing.T) {
	cfg := DefaultDifficultyConfig()

	if cfg.BaseEnemies != 8 {
		t.Errorf("expected baseEnemies = 8, got %d", cfg.BaseEnemies)
	}
	if cfg.BaseBosses != 1 {
		t.Errorf("expected baseBosses = 1, got %d", cfg.BaseBosses)
	}
	if cfg.BaseSpawnRate != 0.5 {
		t.Errorf("expected baseSpawnRate = 0.5, got %v", cfg.BaseSpawnRate)
	}
	if cfg.SpawnRateCap != 15 {
		t.Errorf("expected spawnRateCap = 15, got %v", cfg.SpawnRateCap)
	}
	if cfg.IntermissionSeconds != 5 {
		t.Errorf("expected intermissionSeconds = 5, got %v", cfg.IntermissionSeconds)
	}
	if cfg.BossSpawnDelaySeconds != 2 {
		t.Errorf("expected bossSpawnDelaySeconds = 2, got %v", cfg.BossSpawnDelaySeconds)
	}

	// 默认配置必须能通过校验
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}

func TestLoadDifficultyConfig(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *DifficultyConfig)
	}{
		{
			name: "valid config",
			yamlContent: `
baseEnemies: 10
baseBosses: 2
baseSpawnRate: 1.5
spawnRateCap: 20
enemyExponent: 0.8
bossExponent: 1.2
intermissionSeconds: 3
bossSpawnDelaySeconds: 1.5
spawnPoint:
  x: 12
  y: 34
variants:
  - name: grunt
    kind: standard
    health: 2
    travelSeconds: 4
  - name: ogre
    kind: boss
    health: 30
    travelSeconds: 10
`,
			validate: func(t *testing.T, cfg *DifficultyConfig) {
				if cfg.BaseEnemies != 10 {
					t.Errorf("expected baseEnemies = 10, got %d", cfg.BaseEnemies)
				}
				if cfg.BaseSpawnRate != 1.5 {
					t.Errorf("expected baseSpawnRate = 1.5, got %v", cfg.BaseSpawnRate)
				}
				if cfg.SpawnPoint != (types.Position{X: 12, Y: 34}) {
					t.Errorf("expected spawn point (12, 34), got %+v", cfg.SpawnPoint)
				}
				if len(cfg.Variants) != 2 {
					t.Fatalf("expected 2 variants, got %d", len(cfg.Variants))
				}
				if cfg.Variants[1].Name != "ogre" {
					t.Errorf("expected second variant ogre, got %s", cfg.Variants[1].Name)
				}
			},
		},
		{
			name: "partial config keeps defaults",
			yamlContent: `
baseEnemies: 4
`,
			validate: func(t *testing.T, cfg *DifficultyConfig) {
				if cfg.BaseEnemies != 4 {
					t.Errorf("expected baseEnemies = 4, got %d", cfg.BaseEnemies)
				}
				if cfg.EnemyExponent != 0.75 {
					t.Errorf("expected default enemyExponent = 0.75, got %v", cfg.EnemyExponent)
				}
			},
		},
		{
			name:        "zero base enemies is allowed",
			yamlContent: "baseEnemies: 0\n",
			validate: func(t *testing.T, cfg *DifficultyConfig) {
				if cfg.BaseEnemies != 0 {
					t.Errorf("expected baseEnemies = 0, got %d", cfg.BaseEnemies)
				}
			},
		},
		{
			name:        "negative base enemies",
			yamlContent: "baseEnemies: -1\n",
			wantErr:     true,
			errContains: "baseEnemies must be >= 0",
		},
		{
			name:        "zero spawn rate",
			yamlContent: "baseSpawnRate: 0\n",
			wantErr:     true,
			errContains: "baseSpawnRate must be a finite value > 0",
		},
		{
			name:        "negative spawn cap",
			yamlContent: "spawnRateCap: -3\n",
			wantErr:     true,
			errContains: "spawnRateCap must be a finite value > 0",
		},
		{
			name:        "zero intermission",
			yamlContent: "intermissionSeconds: 0\n",
			wantErr:     true,
			errContains: "intermissionSeconds must be a finite value > 0",
		},
		{
			name:        "negative exponent",
			yamlContent: "enemyExponent: -0.5\n",
			wantErr:     true,
			errContains: "enemyExponent must be a finite value >= 0",
		},
		{
			name: "unknown variant kind",
			yamlContent: `
variants:
  - name: ghost
    kind: phantom
    travelSeconds: 3
`,
			wantErr:     true,
			errContains: "variants[0].kind must be standard or boss",
		},
		{
			name: "variant without travel time",
			yamlContent: `
variants:
  - name: ghost
    kind: standard
`,
			wantErr:     true,
			errContains: "variants[0].travelSeconds must be > 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 创建临时 YAML 文件
			tmpDir := t.TempDir()
			tmpFile := filepath.Join(tmpDir, "difficulty.yaml")
			if err := os.WriteFile(tmpFile, []byte(tt.yamlContent), 0644); err != nil {
				t.Fatalf("failed to create temp file: %v", err)
			}

			cfg, err := LoadDifficultyConfig(tmpFile)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
				var cfgErr *ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected *ConfigurationError in chain, got %T", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadDifficultyConfig_FileNotFound(t *testing.T) {
	_, err := LoadDifficultyConfig("/nonexistent/difficulty.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "failed to read difficulty config file") {
		t.Errorf("expected error about reading file, got: %v", err)
	}
}

func TestParseDifficultyConfig_InvalidYAML(t *testing.T) {
	_, err := ParseDifficultyConfig([]byte("invalid: yaml: content:"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse difficulty config YAML") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestValidate_RejectsNaN(t *testing.T) {
	cfg := DefaultDifficultyConfig()
	cfg.BossSpawnDelaySeconds = math.NaN()

	err := cfg.Validate()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Field != "bossSpawnDelaySeconds" {
		t.Errorf("expected field bossSpawnDelaySeconds, got %s", cfgErr.Field)
	}
}

func TestVariantsOf(t *testing.T) {
	cfg := DefaultDifficultyConfig()

	standard := cfg.VariantsOf(types.UnitStandard)
	if len(standard) != 2 {
		t.Errorf("expected 2 standard variants, got %d", len(standard))
	}

	bosses := cfg.VariantsOf(types.UnitBoss)
	if len(bosses) != 1 || bosses[0].Name != "brute" {
		t.Errorf("expected single boss variant brute, got %+v", bosses)
	}

	cfg.Variants = nil
	if got := cfg.VariantsOf(types.UnitBoss); len(got) != 0 {
		t.Errorf("expected no variants, got %d", len(got))
	}
}
