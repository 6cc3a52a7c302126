// Package tuning holds the earthquake tunables. The record is immutable after
// Load returns; every Min/Max pair has been clamped by Normalize.
package tuning

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/mathx"
)

const (
	MagnitudeFloor = 1
	MagnitudeCeil  = 9
)

type Config struct {
	EnableScheduledEvents bool `yaml:"enable_scheduled_events"`
	EventsPerYear         int  `yaml:"events_per_year"`
	EventNearPlayerRadius int  `yaml:"event_near_player_radius"`
	QuakesPerEventMin     int  `yaml:"quakes_per_event_min"`
	QuakesPerEventMax     int  `yaml:"quakes_per_event_max"`
	MagnitudeMin          int  `yaml:"magnitude_min"`
	MagnitudeMax          int  `yaml:"magnitude_max"`
	GoodiesPerEventMin    int  `yaml:"goodies_per_event_min"`
	StonesPerEventMin     int  `yaml:"stones_per_event_min"`
	DepthClampBelowMag    int  `yaml:"depth_clamp_below_mag"`
	DepthClampToSeaOffset int  `yaml:"depth_clamp_to_sea_offset"`

	TickSeconds float64 `yaml:"tick_seconds"`

	ShardLoweringEnabled bool `yaml:"shard_lowering_enabled"`
	ShardPatchCount      int  `yaml:"shard_patch_count"`
	ShardPatchRadiusMin  int  `yaml:"shard_patch_radius_min"`
	ShardPatchRadiusMax  int  `yaml:"shard_patch_radius_max"`
	ShardLowerMin        int  `yaml:"shard_lower_min"`
	ShardLowerMax        int  `yaml:"shard_lower_max"`

	SoundsEnabled      bool `yaml:"sounds_enabled"`
	InteriorScanHeight int  `yaml:"interior_scan_height"`
	WarningDaysBefore  int  `yaml:"warning_days_before"`

	ForeshockSteps           int     `yaml:"foreshock_steps"`
	ForeshockIntervalSeconds float64 `yaml:"foreshock_interval_seconds"`
	PollIntervalSeconds      float64 `yaml:"poll_interval_seconds"`

	UserSchedule []UserScheduledEvent `yaml:"user_schedule,omitempty"`

	Floaters FloaterRules `yaml:"floater_rules"`
	Trees    TreeRules    `yaml:"tree_rules"`
}

// UserScheduledEvent is a hand-authored schedule entry. It is copied verbatim
// into the year's schedule; it is not checked against calendar month lengths.
type UserScheduledEvent struct {
	Month      int   `yaml:"month"`
	Day        int   `yaml:"day"`
	Hour       int   `yaml:"hour"`
	Magnitudes []int `yaml:"magnitudes"`
}

// FloaterRules decide which unsupported blocks are deleted during cleanup.
// A floating block is removed when its material is listed in either set or
// its code contains one of the name fragments.
type FloaterRules struct {
	VegetationMaterials []string `yaml:"vegetation_materials"`
	VegetationNames     []string `yaml:"vegetation_names"`
	SolidMaterials      []string `yaml:"solid_materials"`
}

// TreeRules decide what counts as a tree during collapse.
type TreeRules struct {
	TrunkNames      []string `yaml:"trunk_names"`
	CanopyMaterials []string `yaml:"canopy_materials"`
	MaxHeight       int      `yaml:"max_height"`
	ScanUp          int      `yaml:"scan_up"`
	SurfaceSearchDY int      `yaml:"surface_search_dy"`
}

func Defaults() Config {
	return Config{
		EnableScheduledEvents: false,
		EventsPerYear:         3,
		EventNearPlayerRadius: 600,
		QuakesPerEventMin:     1,
		QuakesPerEventMax:     5,
		MagnitudeMin:          1,
		MagnitudeMax:          9,
		GoodiesPerEventMin:    30,
		StonesPerEventMin:     300,
		DepthClampBelowMag:    7,
		DepthClampToSeaOffset: 20,
		TickSeconds:           0.25,
		ShardLoweringEnabled:  true,
		ShardPatchCount:       8,
		ShardPatchRadiusMin:   5,
		ShardPatchRadiusMax:   16,
		ShardLowerMin:         1,
		ShardLowerMax:         8,
		SoundsEnabled:         true,
		InteriorScanHeight:    5,
		WarningDaysBefore:     3,

		ForeshockSteps:           12,
		ForeshockIntervalSeconds: 5,
		PollIntervalSeconds:      1,

		Floaters: FloaterRules{
			VegetationMaterials: []string{"plant", "leaves", "liquid"},
			VegetationNames:     []string{"grass", "plant", "flower", "bush", "reed", "wood", "log"},
			SolidMaterials:      []string{"stone", "soil", "sand", "gravel", "snow"},
		},
		Trees: TreeRules{
			TrunkNames:      []string{"log", "wood"},
			CanopyMaterials: []string{"leaves"},
			MaxHeight:       40,
			ScanUp:          30,
			SurfaceSearchDY: 20,
		},
	}
}

// Load reads a YAML config on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	cfg.Normalize()
	return cfg, nil
}

// LoadOrCreate is Load, except that a missing file is created from the defaults.
func LoadOrCreate(path string) (Config, error) {
	cfg, err := Load(path)
	if err == nil || !os.IsNotExist(err) {
		return cfg, err
	}
	cfg = Defaults()
	cfg.Normalize()
	return cfg, Save(path, cfg)
}

func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.EventsPerYear = mathx.ClampInt(c.EventsPerYear, 1, 3)
	c.QuakesPerEventMax = mathx.ClampInt(c.QuakesPerEventMax, 1, 4)
	c.QuakesPerEventMin = mathx.ClampInt(c.QuakesPerEventMin, 1, c.QuakesPerEventMax)
	c.WarningDaysBefore = mathx.ClampInt(c.WarningDaysBefore, 1, 4)

	c.MagnitudeMin = ClampMagnitude(c.MagnitudeMin)
	c.MagnitudeMax = ClampMagnitude(c.MagnitudeMax)
	c.MagnitudeMin, c.MagnitudeMax = mathx.MinMax(c.MagnitudeMin, c.MagnitudeMax)
	c.DepthClampBelowMag = ClampMagnitude(c.DepthClampBelowMag)

	if len(c.UserSchedule) > 0 {
		events := make([]UserScheduledEvent, len(c.UserSchedule))
		for i, ev := range c.UserSchedule {
			ev.Magnitudes = ClampMagnitudes(ev.Magnitudes)
			events[i] = ev
		}
		c.UserSchedule = events
	}

	c.ShardPatchRadiusMin = max(1, c.ShardPatchRadiusMin)
	c.ShardPatchRadiusMax = max(1, c.ShardPatchRadiusMax)
	c.ShardPatchRadiusMin, c.ShardPatchRadiusMax = mathx.MinMax(c.ShardPatchRadiusMin, c.ShardPatchRadiusMax)
	c.ShardLowerMin = max(0, c.ShardLowerMin)
	c.ShardLowerMax = max(0, c.ShardLowerMax)
	c.ShardLowerMin, c.ShardLowerMax = mathx.MinMax(c.ShardLowerMin, c.ShardLowerMax)
	c.ShardPatchCount = max(0, c.ShardPatchCount)

	c.GoodiesPerEventMin = max(0, c.GoodiesPerEventMin)
	c.EventNearPlayerRadius = max(0, c.EventNearPlayerRadius)
	c.InteriorScanHeight = max(1, c.InteriorScanHeight)

	if c.TickSeconds <= 0 {
		c.TickSeconds = 0.25
	}
	if c.ForeshockSteps <= 0 {
		c.ForeshockSteps = 12
	}
	if c.ForeshockIntervalSeconds <= 0 {
		c.ForeshockIntervalSeconds = 5
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 1
	}
	if c.Trees.MaxHeight <= 0 {
		c.Trees.MaxHeight = 40
	}
	if c.Trees.ScanUp <= 0 {
		c.Trees.ScanUp = 30
	}
	if c.Trees.SurfaceSearchDY <= 0 {
		c.Trees.SurfaceSearchDY = 20
	}
}

func (c Config) Validate() error {
	errb := oops.Code(protocol.ErrBadRequest).In("tuning")
	for i, ev := range c.UserSchedule {
		if len(ev.Magnitudes) == 0 {
			return errb.With("entry", i).Errorf("user_schedule[%d]: magnitudes must not be empty", i)
		}
		if ev.Month < 1 || ev.Day < 1 || ev.Hour < 0 {
			return errb.With("entry", i).Errorf("user_schedule[%d]: month/day must be >= 1 and hour >= 0", i)
		}
	}
	if c.TickSeconds < 0 {
		return errb.With("tick_seconds", c.TickSeconds).Errorf("tick_seconds must be > 0")
	}
	return nil
}

// ClampMagnitude pins m into [1,9].
func ClampMagnitude(m int) int {
	return mathx.ClampInt(m, MagnitudeFloor, MagnitudeCeil)
}

// ClampMagnitudes returns a copy of ms with every entry pinned into [1,9].
func ClampMagnitudes(ms []int) []int {
	if ms == nil {
		return nil
	}
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = ClampMagnitude(m)
	}
	return out
}

func (c Config) Tick() time.Duration {
	return time.Duration(c.TickSeconds * float64(time.Second))
}

func (c Config) ForeshockInterval() time.Duration {
	return time.Duration(c.ForeshockIntervalSeconds * float64(time.Second))
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds * float64(time.Second))
}

// UsesUserSchedule reports whether generation copies the hand-authored schedule.
func (c Config) UsesUserSchedule() bool {
	return c.EnableScheduledEvents && len(c.UserSchedule) > 0
}
