package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"

	"fleet-route-optimizer/internal/solver"
)

// Config is the process configuration, populated from the environment.
// All knobs have working defaults; only external backends (ORS, Redis,
// Postgres) are opt-in via their connection settings.
type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	MetricsAddr string `env:"METRICS_ADDR"`

	Engine struct {
		Algorithm          string        `env:"ALGORITHM" envDefault:"genetic"`
		MaxComputationTime time.Duration `env:"MAX_COMPUTATION_TIME" envDefault:"60s"`
		PopulationSize     int           `env:"POPULATION_SIZE" envDefault:"100"`
		Generations        int           `env:"GENERATIONS" envDefault:"500"`
		MutationRate       float64       `env:"MUTATION_RATE" envDefault:"0.01"`
		CrossoverRate      float64       `env:"CROSSOVER_RATE" envDefault:"0.85"`
		ElitismRate        float64       `env:"ELITISM_RATE" envDefault:"0.1"`
		RandomSeed         int64         `env:"RANDOM_SEED" envDefault:"0"`

		PrioritizeTimeWindows bool `env:"PRIORITIZE_TIME_WINDOWS" envDefault:"true"`
		PrioritizeCost        bool `env:"PRIORITIZE_COST" envDefault:"false"`
		BalanceRoutes         bool `env:"BALANCE_ROUTES" envDefault:"true"`
		MinimizeVehicles      bool `env:"MINIMIZE_VEHICLES" envDefault:"false"`
		GreenRouting          bool `env:"GREEN_ROUTING" envDefault:"false"`
		AllowViolations       bool `env:"ALLOW_VIOLATIONS" envDefault:"false"`
		ConsiderTraffic       bool `env:"CONSIDER_TRAFFIC" envDefault:"false"`
		ConsiderWeather       bool `env:"CONSIDER_WEATHER" envDefault:"false"`
	} `envPrefix:"ENGINE_"`

	ORS struct {
		APIKey            string  `env:"API_KEY"`
		RequestsPerSecond float64 `env:"REQUESTS_PER_SECOND" envDefault:"2"`
	} `envPrefix:"ORS_"`

	Redis struct {
		Addr     string        `env:"ADDR"`
		Password string        `env:"PASSWORD"`
		DB       int           `env:"DB" envDefault:"0"`
		CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	} `envPrefix:"REDIS_"`

	Database struct {
		URL string `env:"URL"`
	} `envPrefix:"DATABASE_"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// The first error is enough; the rest usually repeat it.
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// EngineOptions maps the engine section onto solver options.
func (c *Config) EngineOptions() solver.Options {
	return solver.Options{
		Algorithm:             solver.Algorithm(c.Engine.Algorithm),
		MaxComputationTime:    c.Engine.MaxComputationTime,
		PopulationSize:        c.Engine.PopulationSize,
		Generations:           c.Engine.Generations,
		MutationRate:          c.Engine.MutationRate,
		CrossoverRate:         c.Engine.CrossoverRate,
		ElitismRate:           c.Engine.ElitismRate,
		RandomSeed:            c.Engine.RandomSeed,
		PrioritizeTimeWindows: c.Engine.PrioritizeTimeWindows,
		PrioritizeCost:        c.Engine.PrioritizeCost,
		BalanceRoutes:         c.Engine.BalanceRoutes,
		MinimizeVehicles:      c.Engine.MinimizeVehicles,
		GreenRouting:          c.Engine.GreenRouting,
		AllowViolations:       c.Engine.AllowViolations,
		ConsiderTraffic:       c.Engine.ConsiderTraffic,
		ConsiderWeather:       c.Engine.ConsiderWeather,
	}
}
