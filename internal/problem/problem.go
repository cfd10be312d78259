// Package problem reads optimization problems from disk: the locations to
// serve, the fleet, the drivers and optional engine overrides, as one JSON
// or YAML document.
package problem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/solver"
)

type File struct {
	Locations []LocationSpec `json:"locations" yaml:"locations" validate:"min=1,dive"`
	Vehicles  []VehicleSpec  `json:"vehicles" yaml:"vehicles" validate:"min=1,dive"`
	Drivers   []DriverSpec   `json:"drivers" yaml:"drivers" validate:"min=1,dive"`
	Options   *OptionsSpec   `json:"options,omitempty" yaml:"options,omitempty"`
}

type LocationSpec struct {
	ID             string      `json:"id" yaml:"id" validate:"required"`
	Name           string      `json:"name,omitempty" yaml:"name,omitempty"`
	Lat            float64     `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon            float64     `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
	Demand         float64     `json:"demand,omitempty" yaml:"demand,omitempty" validate:"gte=0"`
	ServiceMinutes float64     `json:"service_minutes,omitempty" yaml:"service_minutes,omitempty" validate:"gte=0"`
	Priority       string      `json:"priority,omitempty" yaml:"priority,omitempty" validate:"omitempty,oneof=urgent high normal low"`
	Requirements   []string    `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Window         *WindowSpec `json:"time_window,omitempty" yaml:"time_window,omitempty"`
}

type WindowSpec struct {
	Start time.Time `json:"start" yaml:"start" validate:"required"`
	End   time.Time `json:"end" yaml:"end" validate:"required,gtfield=Start"`
}

type DepotSpec struct {
	ID   string  `json:"id" yaml:"id" validate:"required"`
	Name string  `json:"name,omitempty" yaml:"name,omitempty"`
	Lat  float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
}

type VehicleSpec struct {
	ID               string     `json:"id" yaml:"id" validate:"required"`
	Capacity         float64    `json:"capacity" yaml:"capacity" validate:"gt=0"`
	MaxVolume        float64    `json:"max_volume,omitempty" yaml:"max_volume,omitempty" validate:"gte=0"`
	MaxWeight        float64    `json:"max_weight,omitempty" yaml:"max_weight,omitempty" validate:"gte=0"`
	FixedCost        float64    `json:"fixed_cost,omitempty" yaml:"fixed_cost,omitempty" validate:"gte=0"`
	CostPerKm        float64    `json:"cost_per_km,omitempty" yaml:"cost_per_km,omitempty" validate:"gte=0"`
	CostPerHour      float64    `json:"cost_per_hour,omitempty" yaml:"cost_per_hour,omitempty" validate:"gte=0"`
	FuelPerHundredKm float64    `json:"fuel_per_hundred_km,omitempty" yaml:"fuel_per_hundred_km,omitempty" validate:"gte=0"`
	SpeedKmh         float64    `json:"speed_kmh,omitempty" yaml:"speed_kmh,omitempty" validate:"gte=0"`
	AvailableFrom    time.Time  `json:"available_from" yaml:"available_from" validate:"required"`
	AvailableUntil   time.Time  `json:"available_until,omitempty" yaml:"available_until,omitempty"`
	Start            DepotSpec  `json:"start" yaml:"start" validate:"required"`
	End              *DepotSpec `json:"end,omitempty" yaml:"end,omitempty"`
	Capabilities     []string   `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

type DriverSpec struct {
	ID              string  `json:"id" yaml:"id" validate:"required"`
	MaxShiftHours   float64 `json:"max_shift_hours" yaml:"max_shift_hours" validate:"gt=0"`
	BreakAfterHours float64 `json:"break_after_hours,omitempty" yaml:"break_after_hours,omitempty" validate:"gte=0"`
	BreakMinutes    float64 `json:"break_minutes,omitempty" yaml:"break_minutes,omitempty" validate:"gte=0"`
	AllowOvertime   bool    `json:"allow_overtime,omitempty" yaml:"allow_overtime,omitempty"`
}

// OptionsSpec holds per-file engine overrides. Every field is a pointer so
// that absent keys keep the value configured through the environment.
type OptionsSpec struct {
	Algorithm             *string  `json:"algorithm,omitempty" yaml:"algorithm,omitempty" validate:"omitempty,oneof=genetic nearest_neighbor savings sweep hybrid"`
	MaxComputationSeconds *float64 `json:"max_computation_seconds,omitempty" yaml:"max_computation_seconds,omitempty" validate:"omitempty,gt=0"`
	PopulationSize        *int     `json:"population_size,omitempty" yaml:"population_size,omitempty" validate:"omitempty,gt=0"`
	Generations           *int     `json:"generations,omitempty" yaml:"generations,omitempty" validate:"omitempty,gt=0"`
	MutationRate          *float64 `json:"mutation_rate,omitempty" yaml:"mutation_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	CrossoverRate         *float64 `json:"crossover_rate,omitempty" yaml:"crossover_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	ElitismRate           *float64 `json:"elitism_rate,omitempty" yaml:"elitism_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
	RandomSeed            *int64   `json:"random_seed,omitempty" yaml:"random_seed,omitempty"`
	PrioritizeTimeWindows *bool    `json:"prioritize_time_windows,omitempty" yaml:"prioritize_time_windows,omitempty"`
	PrioritizeCost        *bool    `json:"prioritize_cost,omitempty" yaml:"prioritize_cost,omitempty"`
	BalanceRoutes         *bool    `json:"balance_routes,omitempty" yaml:"balance_routes,omitempty"`
	MinimizeVehicles      *bool    `json:"minimize_vehicles,omitempty" yaml:"minimize_vehicles,omitempty"`
	GreenRouting          *bool    `json:"green_routing,omitempty" yaml:"green_routing,omitempty"`
	AllowViolations       *bool    `json:"allow_violations,omitempty" yaml:"allow_violations,omitempty"`
	ConsiderTraffic       *bool    `json:"consider_traffic,omitempty" yaml:"consider_traffic,omitempty"`
	ConsiderWeather       *bool    `json:"consider_weather,omitempty" yaml:"consider_weather,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates a problem file, picking the decoder from the
// file extension. Anything that is not .yaml or .yml is parsed as JSON.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Parse(raw, false)
	default:
		return Parse(raw, true)
	}
}

func Parse(raw []byte, asJSON bool) (*File, error) {
	var f File

	if asJSON {
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("decode problem json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("decode problem yaml: %w", err)
		}
	}

	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid problem: %w", err)
	}

	return &f, nil
}

// Inputs converts the file into the engine's domain inputs.
func (f *File) Inputs() ([]domain.Location, []domain.Vehicle, []domain.Driver) {
	locations := make([]domain.Location, 0, len(f.Locations))
	for _, s := range f.Locations {
		locations = append(locations, s.toDomain())
	}

	vehicles := make([]domain.Vehicle, 0, len(f.Vehicles))
	for _, s := range f.Vehicles {
		vehicles = append(vehicles, s.toDomain())
	}

	drivers := make([]domain.Driver, 0, len(f.Drivers))
	for _, s := range f.Drivers {
		drivers = append(drivers, domain.Driver{
			DriverID:        s.ID,
			MaxShiftHours:   s.MaxShiftHours,
			BreakAfterHours: s.BreakAfterHours,
			BreakMinutes:    s.BreakMinutes,
			AllowOvertime:   s.AllowOvertime,
		})
	}

	return locations, vehicles, drivers
}

func (s LocationSpec) toDomain() domain.Location {
	loc := domain.Location{
		LocationID:     s.ID,
		Name:           s.Name,
		Coordinates:    domain.Coordinates{Lat: s.Lat, Lon: s.Lon},
		ServiceMinutes: s.ServiceMinutes,
		Demand:         s.Demand,
		Priority:       domain.Priority(s.Priority),
		Requirements:   s.Requirements,
	}
	if s.Window != nil {
		loc.Window = &domain.TimeWindow{Start: s.Window.Start, End: s.Window.End}
	}
	return loc
}

func (s VehicleSpec) toDomain() domain.Vehicle {
	v := domain.Vehicle{
		VehicleID:        s.ID,
		Capacity:         s.Capacity,
		MaxVolume:        s.MaxVolume,
		MaxWeight:        s.MaxWeight,
		FixedCost:        s.FixedCost,
		CostPerKm:        s.CostPerKm,
		CostPerHour:      s.CostPerHour,
		FuelPerHundredKm: s.FuelPerHundredKm,
		SpeedKmh:         s.SpeedKmh,
		AvailableFrom:    s.AvailableFrom,
		AvailableUntil:   s.AvailableUntil,
		StartLocation:    s.Start.toDomain(),
		Capabilities:     s.Capabilities,
	}
	if s.End != nil {
		end := s.End.toDomain()
		v.EndLocation = &end
	}
	return v
}

func (s DepotSpec) toDomain() domain.Location {
	return domain.Location{
		LocationID:  s.ID,
		Name:        s.Name,
		Coordinates: domain.Coordinates{Lat: s.Lat, Lon: s.Lon},
	}
}

// EngineOptions layers the file's overrides on top of base. Only keys
// present in the file replace base values.
func (f *File) EngineOptions(base solver.Options) solver.Options {
	if f.Options == nil {
		return base
	}

	o := f.Options
	if o.Algorithm != nil {
		base.Algorithm = solver.Algorithm(*o.Algorithm)
	}
	if o.MaxComputationSeconds != nil {
		base.MaxComputationTime = time.Duration(*o.MaxComputationSeconds * float64(time.Second))
	}
	if o.PopulationSize != nil {
		base.PopulationSize = *o.PopulationSize
	}
	if o.Generations != nil {
		base.Generations = *o.Generations
	}
	if o.MutationRate != nil {
		base.MutationRate = *o.MutationRate
	}
	if o.CrossoverRate != nil {
		base.CrossoverRate = *o.CrossoverRate
	}
	if o.ElitismRate != nil {
		base.ElitismRate = *o.ElitismRate
	}
	if o.RandomSeed != nil {
		base.RandomSeed = *o.RandomSeed
	}
	if o.PrioritizeTimeWindows != nil {
		base.PrioritizeTimeWindows = *o.PrioritizeTimeWindows
	}
	if o.PrioritizeCost != nil {
		base.PrioritizeCost = *o.PrioritizeCost
	}
	if o.BalanceRoutes != nil {
		base.BalanceRoutes = *o.BalanceRoutes
	}
	if o.MinimizeVehicles != nil {
		base.MinimizeVehicles = *o.MinimizeVehicles
	}
	if o.GreenRouting != nil {
		base.GreenRouting = *o.GreenRouting
	}
	if o.AllowViolations != nil {
		base.AllowViolations = *o.AllowViolations
	}
	if o.ConsiderTraffic != nil {
		base.ConsiderTraffic = *o.ConsiderTraffic
	}
	if o.ConsiderWeather != nil {
		base.ConsiderWeather = *o.ConsiderWeather
	}

	return base
}
