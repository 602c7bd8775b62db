package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/ridepass/pkg/core/calendar"
	"github.com/jakechorley/ridepass/pkg/core/dates"
	"github.com/jakechorley/ridepass/pkg/core/model"
)

// Calendar source kinds
const (
	SourceGenerated = "generated"
	SourceFile      = "file"
)

// Holiday marks a single day with no rides
type Holiday struct {
	Date   string `yaml:"date" validate:"required"` // dd-mm-yyyy
	Remark string `yaml:"remark" validate:"required"`
}

// ServiceGap marks a recurring day with no rides
type ServiceGap struct {
	RRule  string `yaml:"rrule" validate:"required"`
	Remark string `yaml:"remark,omitempty"`
}

// CalendarConfig configures where shift calendars come from
type CalendarConfig struct {
	Source             string       `yaml:"source,omitempty" validate:"omitempty,oneof=generated file"`
	Dir                string       `yaml:"dir,omitempty" validate:"required_if=Source file"`
	HorizonDays        int          `yaml:"horizonDays,omitempty" validate:"omitempty,min=1,max=366"`
	MaxStartOffsetDays int          `yaml:"maxStartOffsetDays,omitempty" validate:"omitempty,min=0"`
	LatencyMillis      int          `yaml:"latencyMillis,omitempty" validate:"min=0"`
	Holidays           []Holiday    `yaml:"holidays,omitempty" validate:"dive"`
	ServiceGaps        []ServiceGap `yaml:"serviceGaps,omitempty" validate:"dive"`
}

// PlanConfig defines a subscription plan on offer
type PlanConfig struct {
	Slug               string `yaml:"slug" validate:"required"`
	Name               string `yaml:"name" validate:"required"`
	TotalRides         int    `yaml:"totalRides" validate:"required,min=1"`
	IsRoundTrip        bool   `yaml:"isRoundTrip"`
	MinimumDaysPerWeek int    `yaml:"minimumDaysPerWeek,omitempty" validate:"omitempty,min=1,max=5"`
	PreferenceDays     string `yaml:"preferenceDays,omitempty"` // e.g. "M,W,F"
}

// StopConfig defines a pickup or drop-off point
type StopConfig struct {
	ID            int64  `yaml:"id" validate:"required,min=1"`
	Name          string `yaml:"name" validate:"required"`
	TimeOfDay     string `yaml:"timeOfDay" validate:"required,oneof=morning evening"`
	DepartureTime string `yaml:"departureTime,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string         `yaml:"databaseURL,omitempty"`
	Calendar    CalendarConfig `yaml:"calendar"`
	Plans       []PlanConfig   `yaml:"plans" validate:"required,min=1,dive"`
	Stops       []StopConfig   `yaml:"stops" validate:"required,min=2,dive"`
}

const (
	defaultHorizonDays        = 60
	defaultMaxStartOffsetDays = 14
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from ridepass_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="test" will look for "ridepass_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Validate validates the configuration struct, rrule syntax, dates and references
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, gap := range cfg.Calendar.ServiceGaps {
		if _, err := rrule.StrToRRule(gap.RRule); err != nil {
			return fmt.Errorf("invalid rrule in calendar.serviceGaps[%d]: %w", i, err)
		}
	}

	for i, holiday := range cfg.Calendar.Holidays {
		if _, err := dates.Parse(holiday.Date); err != nil {
			return fmt.Errorf("invalid date in calendar.holidays[%d]: %w", i, err)
		}
	}

	slugs := make(map[string]bool)
	for i, plan := range cfg.Plans {
		if slugs[plan.Slug] {
			return fmt.Errorf("duplicate plan slug %q in plans[%d]", plan.Slug, i)
		}
		slugs[plan.Slug] = true
		if _, err := calendar.ParseWeekdays(plan.PreferenceDays); err != nil {
			return fmt.Errorf("invalid preferenceDays in plans[%d]: %w", i, err)
		}
	}

	ids := make(map[int64]bool)
	for i, stop := range cfg.Stops {
		if ids[stop.ID] {
			return fmt.Errorf("duplicate stop id %d in stops[%d]", stop.ID, i)
		}
		ids[stop.ID] = true
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Calendar.Source == "" {
		c.Calendar.Source = SourceGenerated
	}
	if c.Calendar.HorizonDays == 0 {
		c.Calendar.HorizonDays = defaultHorizonDays
	}
	if c.Calendar.MaxStartOffsetDays == 0 {
		c.Calendar.MaxStartOffsetDays = defaultMaxStartOffsetDays
	}
}

// ModelPlans returns the configured plans in file order
func (c *Config) ModelPlans() []model.Plan {
	plans := make([]model.Plan, 0, len(c.Plans))
	for _, p := range c.Plans {
		plans = append(plans, p.toModel())
	}
	return plans
}

// Plan looks up a plan by slug
func (c *Config) Plan(slug string) (model.Plan, bool) {
	for _, p := range c.Plans {
		if p.Slug == slug {
			return p.toModel(), true
		}
	}
	return model.Plan{}, false
}

func (p PlanConfig) toModel() model.Plan {
	// validated on load
	weekdays, _ := calendar.ParseWeekdays(p.PreferenceDays)
	return model.Plan{
		Slug:               p.Slug,
		Name:               p.Name,
		TotalRides:         p.TotalRides,
		IsRoundTrip:        p.IsRoundTrip,
		MinimumDaysPerWeek: p.MinimumDaysPerWeek,
		PreferenceDays:     weekdays.Sorted(),
	}
}

// StopsFor returns the stops served by a shift
func (c *Config) StopsFor(tod model.TimeOfDay) []model.Stop {
	var stops []model.Stop
	for _, s := range c.Stops {
		if s.TimeOfDay == string(tod) {
			stops = append(stops, s.toModel())
		}
	}
	return stops
}

// Stop looks up a stop by id
func (c *Config) Stop(id int64) (model.Stop, bool) {
	for _, s := range c.Stops {
		if s.ID == id {
			return s.toModel(), true
		}
	}
	return model.Stop{}, false
}

func (s StopConfig) toModel() model.Stop {
	return model.Stop{ID: s.ID, Name: s.Name, DepartureTime: s.DepartureTime}
}

// findConfigFile searches for ridepass_config.yaml in current directory and home directory
// If env is provided, it adds it as an extension (e.g., "ridepass_config.test.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := "ridepass_config.yaml"
	if env != "" {
		configFileName = "ridepass_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
