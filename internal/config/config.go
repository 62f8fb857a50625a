package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/clubtools/rotation-planner/internal/planner"
)

// Config carries the service configuration, loaded from environment
// variables (ROTATION_ prefix) with an optional yaml file on top.
type Config struct {
	Env       string `mapstructure:"env"`
	Port      string `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	RedisURL  string `mapstructure:"redis_url"`
	StorePath string `mapstructure:"store_path"`

	// Planner tunables. Empirically tuned constants; treat the defaults as
	// authoritative and confirm with the product owner before retuning.
	ShadowDiscount       float64 `mapstructure:"shadow_discount"`
	KeyPlayerCAThreshold float64 `mapstructure:"key_player_ca_threshold"`
	BigM                 float64 `mapstructure:"big_m"`
	TrainingIntensity    string  `mapstructure:"training_intensity"`
	RestFatigueRatio     float64 `mapstructure:"rest_fatigue_ratio"`
	RestConditionFloor   float64 `mapstructure:"rest_condition_floor"`
	SafetyCondition      float64 `mapstructure:"safety_condition"`
	UseProxyShadow       bool    `mapstructure:"use_proxy_shadow"`

	InertiaWeight    float64 `mapstructure:"inertia_weight"`
	BaseSwitchCost   float64 `mapstructure:"base_switch_cost"`
	ContinuityBonus  float64 `mapstructure:"continuity_bonus"`
	AnchorMultiplier float64 `mapstructure:"anchor_multiplier"`
	AnchorThreshold  int     `mapstructure:"anchor_threshold"`
}

// LoadConfig reads configuration from the environment and an optional
// config.yaml in the working directory.
func LoadConfig() (*Config, error) {
	v := viper.New()

	defaults := planner.DefaultPlanConfig()
	v.SetDefault("env", "development")
	v.SetDefault("port", "8084")
	v.SetDefault("log_level", "info")
	v.SetDefault("redis_url", "")
	v.SetDefault("store_path", "confirmed_lineups.json")
	v.SetDefault("shadow_discount", defaults.ShadowDiscount)
	v.SetDefault("key_player_ca_threshold", defaults.KeyPlayerCAThreshold)
	v.SetDefault("big_m", defaults.BigM)
	v.SetDefault("training_intensity", defaults.TrainingIntensity)
	v.SetDefault("rest_fatigue_ratio", defaults.RestFatigueRatio)
	v.SetDefault("rest_condition_floor", defaults.RestConditionFloor)
	v.SetDefault("safety_condition", defaults.SafetyCondition)
	v.SetDefault("use_proxy_shadow", defaults.UseProxyShadow)
	v.SetDefault("inertia_weight", defaults.Stability.InertiaWeight)
	v.SetDefault("base_switch_cost", defaults.Stability.BaseSwitchCost)
	v.SetDefault("continuity_bonus", defaults.Stability.ContinuityBonus)
	v.SetDefault("anchor_multiplier", defaults.Stability.AnchorMultiplier)
	v.SetDefault("anchor_threshold", defaults.Stability.AnchorThreshold)

	v.SetEnvPrefix("ROTATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// PlanConfig converts the service configuration into the planner's run
// configuration.
func (c *Config) PlanConfig() planner.PlanConfig {
	return planner.PlanConfig{
		Stability: planner.StabilityParams{
			InertiaWeight:    c.InertiaWeight,
			BaseSwitchCost:   c.BaseSwitchCost,
			ContinuityBonus:  c.ContinuityBonus,
			AnchorMultiplier: c.AnchorMultiplier,
			AnchorThreshold:  c.AnchorThreshold,
		},
		ShadowDiscount:       c.ShadowDiscount,
		KeyPlayerCAThreshold: c.KeyPlayerCAThreshold,
		BigM:                 c.BigM,
		TrainingIntensity:    c.TrainingIntensity,
		RestFatigueRatio:     c.RestFatigueRatio,
		RestConditionFloor:   c.RestConditionFloor,
		SafetyCondition:      c.SafetyCondition,
		UseProxyShadow:       c.UseProxyShadow,
	}
}
