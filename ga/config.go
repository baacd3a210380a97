package ga

import (
	"errors"
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/baldhumanity/flappy-ga/ga/arena"
	"github.com/baldhumanity/flappy-ga/ga/nn"
)

// ErrConfig is wrapped by every configuration validation failure.
var ErrConfig = errors.New("config error")

// Config stores every parameter of a training run. It is built once at startup and
// passed explicitly; nothing in this module keeps configuration in globals.
type Config struct {
	Population PopulationConfig
	Network    NetworkConfig
	Evolution  EvolutionConfig
	Physics    arena.Config
}

// PopulationConfig holds the size of the run.
type PopulationConfig struct {
	PopSize     int   `ini:"pop_size"`
	Generations int   `ini:"generations"`
	Seed        int64 `ini:"seed"` // 0 picks a time-based seed
}

// NetworkConfig holds the controller layer sizes.
type NetworkConfig struct {
	InputSize  int `ini:"input_size"`
	HiddenSize int `ini:"hidden_size"`
	OutputSize int `ini:"output_size"`
}

// Shape converts the layer sizes into a controller shape.
func (n NetworkConfig) Shape() nn.Shape {
	return nn.Shape{Inputs: n.InputSize, Hidden: n.HiddenSize, Outputs: n.OutputSize}
}

// EvolutionConfig holds the parameters of the reproduction step.
type EvolutionConfig struct {
	EliteSize        int     `ini:"elite_size"`
	MutationRate     float64 `ini:"mutation_rate"`     // Per-parameter mutation probability.
	MutationStrength float64 `ini:"mutation_strength"` // Half-width of the uniform perturbation.
}

// DefaultConfig returns the parameters the trainer was tuned with:
// 70 birds, 1000 generations, a 5-6-1 network and 5 elites.
func DefaultConfig() *Config {
	return &Config{
		Population: PopulationConfig{
			PopSize:     70,
			Generations: 1000,
		},
		Network: NetworkConfig{
			InputSize:  arena.SensorCount,
			HiddenSize: 6,
			OutputSize: 1,
		},
		Evolution: EvolutionConfig{
			EliteSize:        5,
			MutationRate:     0.1,
			MutationStrength: 0.5,
		},
		Physics: arena.DefaultConfig(),
	}
}

// LoadConfig loads configuration parameters from an INI file. Keys missing from the
// file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	config, err := loadConfig(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return config, nil
}

// ParseConfig parses INI data held in memory. See LoadConfig.
func ParseConfig(data []byte) (*Config, error) {
	return loadConfig(data)
}

func loadConfig(source interface{}) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{}, source)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()

	// Map sections to structs. StrictMapTo reports malformed values instead of
	// silently keeping the defaults.
	if err := cfg.Section("Population").StrictMapTo(&config.Population); err != nil {
		return nil, fmt.Errorf("failed to map [Population] section: %w", err)
	}
	if err := cfg.Section("Network").StrictMapTo(&config.Network); err != nil {
		return nil, fmt.Errorf("failed to map [Network] section: %w", err)
	}
	if err := cfg.Section("Evolution").StrictMapTo(&config.Evolution); err != nil {
		return nil, fmt.Errorf("failed to map [Evolution] section: %w", err)
	}
	if err := cfg.Section("Physics").StrictMapTo(&config.Physics); err != nil {
		return nil, fmt.Errorf("failed to map [Physics] section: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the whole configuration. All failures wrap ErrConfig.
func (c *Config) Validate() error {
	if c.Population.PopSize <= 0 {
		return fmt.Errorf("%w: pop_size must be positive", ErrConfig)
	}
	if c.Population.Generations <= 0 {
		return fmt.Errorf("%w: generations must be positive", ErrConfig)
	}

	if err := c.Network.Shape().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if c.Network.InputSize != arena.SensorCount {
		return fmt.Errorf("%w: input_size must be %d to match the sensor vector, got %d", ErrConfig, arena.SensorCount, c.Network.InputSize)
	}

	if c.Evolution.EliteSize < 0 {
		return fmt.Errorf("%w: elite_size cannot be negative", ErrConfig)
	}
	if c.Evolution.EliteSize > c.Population.PopSize {
		return fmt.Errorf("%w: elite_size (%d) exceeds pop_size (%d)", ErrConfig, c.Evolution.EliteSize, c.Population.PopSize)
	}
	if c.Evolution.MutationRate < 0 || c.Evolution.MutationRate > 1 {
		return fmt.Errorf("%w: mutation_rate must be between 0 and 1", ErrConfig)
	}
	if c.Evolution.MutationStrength < 0 {
		return fmt.Errorf("%w: mutation_strength cannot be negative", ErrConfig)
	}

	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}
