package arena

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every physics validation failure.
var ErrInvalidConfig = errors.New("invalid arena config")

// Config holds the physics and playfield constants of a run.
// It is read-only once an Arena has been created from it.
type Config struct {
	Width         float64       `ini:"width"`
	Height        float64       `ini:"height"`
	Gravity       float64       `ini:"gravity"`
	JumpVelocity  float64       `ini:"jump_velocity"` // Velocity set by a jump; negative is upward.
	ObstacleSpeed float64       `ini:"obstacle_speed"`
	ObstacleWidth float64       `ini:"obstacle_width"`
	GapSize       float64       `ini:"gap_size"`   // Full height of the opening in an obstacle.
	GapMargin     int           `ini:"gap_margin"` // Minimum distance of a gap center from the top and bottom edges.
	SpawnInterval time.Duration `ini:"spawn_interval"`
	TickRate      int           `ini:"tick_rate"` // Simulated ticks per second.
	AgentX        float64       `ini:"agent_x"`
	AgentSize     float64       `ini:"agent_size"`
	MaxTicks      int           `ini:"max_ticks"` // 0 means no limit.
}

// DefaultConfig returns the classic playfield: 400x600, 60 ticks per second,
// a new obstacle every 1.5 seconds.
func DefaultConfig() Config {
	return Config{
		Width:         400,
		Height:        600,
		Gravity:       0.5,
		JumpVelocity:  -8,
		ObstacleSpeed: 3,
		ObstacleWidth: 60,
		GapSize:       130,
		GapMargin:     100,
		SpawnInterval: 1500 * time.Millisecond,
		TickRate:      60,
		AgentX:        50,
		AgentSize:     20,
		MaxTicks:      0,
	}
}

// TickDuration is the simulated time covered by a single tick.
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Validate checks the physics constants for values no run could use.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: playfield must have positive size, got %gx%g", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.ObstacleSpeed <= 0 {
		return fmt.Errorf("%w: obstacle_speed must be positive", ErrInvalidConfig)
	}
	if c.ObstacleWidth <= 0 {
		return fmt.Errorf("%w: obstacle_width must be positive", ErrInvalidConfig)
	}
	if c.GapSize <= 0 || c.GapSize >= c.Height {
		return fmt.Errorf("%w: gap_size must be in (0, height)", ErrInvalidConfig)
	}
	if c.GapMargin < 0 || float64(2*c.GapMargin) > c.Height {
		return fmt.Errorf("%w: gap_margin must be in [0, height/2]", ErrInvalidConfig)
	}
	if c.SpawnInterval <= 0 {
		return fmt.Errorf("%w: spawn_interval must be positive", ErrInvalidConfig)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalidConfig)
	}
	if c.AgentSize <= 0 {
		return fmt.Errorf("%w: agent_size must be positive", ErrInvalidConfig)
	}
	if c.AgentX < 0 || c.AgentX >= c.Width {
		return fmt.Errorf("%w: agent_x must be inside the playfield", ErrInvalidConfig)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("%w: max_ticks cannot be negative", ErrInvalidConfig)
	}
	return nil
}
