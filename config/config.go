package config

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Density models
const (
	DensityConstant = "CONSTANT"
	DensityLinear   = "LINEAR"
)

// Viscosity models
const (
	ViscosityConstant   = "CONSTANT"
	ViscositySutherland = "SUTHERLAND"
)

// Partition strategies
const (
	StrategyBlock      = "BLOCK"
	StrategyRoundRobin = "ROUNDROBIN"
)

// Config holds the fluid model and freestream reference values shared by every
// point update, plus the settings for how points are evaluated
type Config struct {
	NDim int

	// Freestream reference state
	DensityInf   float64
	ViscosityInf float64
	PressureInf  float64
	VelocityInf  []float64 // Length NDim

	// Equation of state
	DensityModel    string
	Compressibility float64 // dρ/dp for LINEAR
	PressureRef     float64 // Pressure at which ρ = DensityInf for LINEAR

	// Laminar viscosity law
	ViscosityModel     string
	Temperature        float64 // Isothermal operating temperature
	TemperatureRef     float64 // Sutherland reference temperature
	SutherlandConstant float64

	// Point evaluation
	PartitionSize     int
	PartitionStrategy string
	DeviceProps       string // OCCA device properties, empty runs on the CPU only

	LogLevel string
}

// Default returns a 2D constant-property water-like configuration
func Default() *Config {
	return &Config{
		NDim:               2,
		DensityInf:         998.2,
		ViscosityInf:       1.002e-3,
		PressureInf:        0.0,
		VelocityInf:        []float64{1.0, 0.0},
		DensityModel:       DensityConstant,
		Compressibility:    0.0,
		PressureRef:        0.0,
		ViscosityModel:     ViscosityConstant,
		Temperature:        288.15,
		TemperatureRef:     273.15,
		SutherlandConstant: 110.4,
		PartitionSize:      4096,
		PartitionStrategy:  StrategyBlock,
		LogLevel:           "info",
	}
}

// Load reads an INI file, any key missing from the file keeps its default
func Load(path string) (cfg *Config, err error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg = loadCfg(file)
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func loadCfg(file *ini.File) *Config {
	def := Default()
	flow := file.Section("flow")
	fluid := file.Section("fluid")
	run := file.Section("run")

	cfg := &Config{
		NDim:               flow.Key("NDim").MustInt(def.NDim),
		DensityInf:         flow.Key("DensityInf").MustFloat64(def.DensityInf),
		ViscosityInf:       flow.Key("ViscosityInf").MustFloat64(def.ViscosityInf),
		PressureInf:        flow.Key("PressureInf").MustFloat64(def.PressureInf),
		DensityModel:       strings.ToUpper(fluid.Key("DensityModel").MustString(def.DensityModel)),
		Compressibility:    fluid.Key("Compressibility").MustFloat64(def.Compressibility),
		PressureRef:        fluid.Key("PressureRef").MustFloat64(def.PressureRef),
		ViscosityModel:     strings.ToUpper(fluid.Key("ViscosityModel").MustString(def.ViscosityModel)),
		Temperature:        fluid.Key("Temperature").MustFloat64(def.Temperature),
		TemperatureRef:     fluid.Key("TemperatureRef").MustFloat64(def.TemperatureRef),
		SutherlandConstant: fluid.Key("SutherlandConstant").MustFloat64(def.SutherlandConstant),
		PartitionSize:      run.Key("PartitionSize").MustInt(def.PartitionSize),
		PartitionStrategy:  strings.ToUpper(run.Key("PartitionStrategy").MustString(def.PartitionStrategy)),
		DeviceProps:        run.Key("DeviceProps").MustString(def.DeviceProps),
		LogLevel:           run.Key("LogLevel").MustString(def.LogLevel),
	}

	cfg.VelocityInf = flow.Key("VelocityInf").Float64s(",")
	if len(cfg.VelocityInf) == 0 {
		cfg.VelocityInf = make([]float64, cfg.NDim)
		copy(cfg.VelocityInf, def.VelocityInf)
	}
	return cfg
}

// Validate checks the configuration for values no point update can work with
func (c *Config) Validate() error {
	if c.NDim != 2 && c.NDim != 3 {
		return fmt.Errorf("NDim must be 2 or 3, got %d", c.NDim)
	}
	if len(c.VelocityInf) != c.NDim {
		return fmt.Errorf("VelocityInf has %d components, NDim is %d",
			len(c.VelocityInf), c.NDim)
	}
	if c.DensityInf <= 0 {
		return fmt.Errorf("DensityInf must be positive, got %g", c.DensityInf)
	}
	if c.ViscosityInf < 0 {
		return fmt.Errorf("ViscosityInf must not be negative, got %g", c.ViscosityInf)
	}
	switch c.DensityModel {
	case DensityConstant, DensityLinear:
	default:
		return fmt.Errorf("unknown DensityModel %q", c.DensityModel)
	}
	switch c.ViscosityModel {
	case ViscosityConstant:
	case ViscositySutherland:
		if c.Temperature <= 0 || c.TemperatureRef <= 0 {
			return fmt.Errorf("SUTHERLAND needs positive Temperature and TemperatureRef")
		}
	default:
		return fmt.Errorf("unknown ViscosityModel %q", c.ViscosityModel)
	}
	switch c.PartitionStrategy {
	case StrategyBlock, StrategyRoundRobin:
	default:
		return fmt.Errorf("unknown PartitionStrategy %q", c.PartitionStrategy)
	}
	if c.PartitionSize < 1 {
		return fmt.Errorf("PartitionSize must be at least 1, got %d", c.PartitionSize)
	}
	return nil
}

// SetupLogging applies LogLevel to the standard logrus logger
func (c *Config) SetupLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("bad LogLevel: %w", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

// String returns a one-line summary suitable for a log header
func (c *Config) String() string {
	vel := make([]string, len(c.VelocityInf))
	for i, v := range c.VelocityInf {
		vel[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf("NDim=%d rho=%g mu=%g U=[%s] density=%s viscosity=%s partition=%s/%d",
		c.NDim, c.DensityInf, c.ViscosityInf, strings.Join(vel, ","),
		c.DensityModel, c.ViscosityModel, c.PartitionStrategy, c.PartitionSize)
}
