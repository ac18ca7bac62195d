package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tablescope/internal/rank"
	"github.com/KaramelBytes/tablescope/internal/tabular"
	"github.com/KaramelBytes/tablescope/internal/utils"
)

// DateFormat is the layout of date_min and date_max.
const DateFormat = "2006-01-02"

// Global configuration structure.
type Global struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// Bundled datasets, resolved against DataDir when relative.
	DataDir       string `mapstructure:"data_dir" yaml:"data_dir"`
	SubwayFile    string `mapstructure:"subway_file" yaml:"subway_file"`
	AlcoholFile   string `mapstructure:"alcohol_file" yaml:"alcohol_file"`
	CountriesFile string `mapstructure:"countries_file" yaml:"countries_file"`

	// Parsing
	Encodings   []string `mapstructure:"encodings" yaml:"encodings"`
	DateLayouts []string `mapstructure:"date_layouts" yaml:"date_layouts"`

	// Ranking and colours
	PinnedKey    string `mapstructure:"pinned_key" yaml:"pinned_key"`
	PinnedColor  string `mapstructure:"pinned_color" yaml:"pinned_color"`
	GradientFrom string `mapstructure:"gradient_from" yaml:"gradient_from"`
	GradientTo   string `mapstructure:"gradient_to" yaml:"gradient_to"`
	TopN         int    `mapstructure:"top_n" yaml:"top_n"`

	// Subway screen
	SubwayTopN int    `mapstructure:"subway_top_n" yaml:"subway_top_n"`
	DateMin    string `mapstructure:"date_min" yaml:"date_min"`
	DateMax    string `mapstructure:"date_max" yaml:"date_max"`

	// Server
	CacheSize   int `mapstructure:"cache_size" yaml:"cache_size"`
	MaxUploadMB int `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Global {
	return &Global{
		Addr:          ":8501",
		LogLevel:      "info",
		DataDir:       ".",
		SubwayFile:    "subway.csv",
		AlcoholFile:   "dri.csv",
		CountriesFile: "countriesMBTI_16types.csv",
		Encodings:     append([]string(nil), tabular.DefaultEncodings...),
		DateLayouts:   append([]string(nil), tabular.DefaultDateLayouts...),
		PinnedKey:     "South Korea",
		PinnedColor:   "#ff0000",
		GradientFrom:  "#ff0000",
		GradientTo:    "#0000ff",
		TopN:          10,
		SubwayTopN:    20,
		DateMin:       "2025-01-01",
		DateMax:       "2025-12-31",
		CacheSize:     16,
		MaxUploadMB:   200,
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tablescope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (TABLESCOPE_*, optionally from ./.env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TABLESCOPE")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("subway_file", d.SubwayFile)
	v.SetDefault("alcohol_file", d.AlcoholFile)
	v.SetDefault("countries_file", d.CountriesFile)
	v.SetDefault("encodings", d.Encodings)
	v.SetDefault("date_layouts", d.DateLayouts)
	v.SetDefault("pinned_key", d.PinnedKey)
	v.SetDefault("pinned_color", d.PinnedColor)
	v.SetDefault("gradient_from", d.GradientFrom)
	v.SetDefault("gradient_to", d.GradientTo)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("subway_top_n", d.SubwayTopN)
	v.SetDefault("date_min", d.DateMin)
	v.SetDefault("date_max", d.DateMax)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// The default config file is optional; an explicit --config must exist.
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); cfgFile != "" || !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that would otherwise fail later at request time.
func (c *Global) Validate() error {
	if _, err := tabular.ValidateEncodings(c.Encodings); err != nil {
		return fmt.Errorf("encodings: %w", err)
	}
	for key, val := range map[string]string{"pinned_color": c.PinnedColor, "gradient_from": c.GradientFrom, "gradient_to": c.GradientTo} {
		if _, err := rank.ParseHex(val); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	lo, hi, err := c.DateWindow()
	if err != nil {
		return err
	}
	if hi.Before(lo) {
		return fmt.Errorf("date_max %s is before date_min %s", c.DateMax, c.DateMin)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	return nil
}

// Path resolves a dataset file name against DataDir.
func (c *Global) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Gradient returns the configured rank gradient.
func (c *Global) Gradient() rank.Gradient {
	from, err := rank.ParseHex(c.GradientFrom)
	if err != nil {
		from = rank.DefaultGradient.From
	}
	to, err := rank.ParseHex(c.GradientTo)
	if err != nil {
		to = rank.DefaultGradient.To
	}
	return rank.Gradient{From: from, To: to}
}

// Pinned returns the reserved colour for the pinned row.
func (c *Global) Pinned() rank.RGB {
	p, err := rank.ParseHex(c.PinnedColor)
	if err != nil {
		return rank.Red
	}
	return p
}

// DateWindow parses date_min and date_max.
func (c *Global) DateWindow() (time.Time, time.Time, error) {
	lo, err := time.Parse(DateFormat, c.DateMin)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_min: %w", err)
	}
	hi, err := time.Parse(DateFormat, c.DateMax)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date_max: %w", err)
	}
	return lo, hi, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tablescope"), nil
}
