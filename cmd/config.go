package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cfgpkg "github.com/KaramelBytes/tablescope/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tablescope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := yaml.Marshal(currentConfig())
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := *currentConfig()
		if err := setConfigValue(&c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		if err := cfgpkg.Save(&c, cfgFile); err != nil {
			return err
		}
		cfg = &c
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	str := map[string]*string{
		"addr":           &c.Addr,
		"log_level":      &c.LogLevel,
		"data_dir":       &c.DataDir,
		"subway_file":    &c.SubwayFile,
		"alcohol_file":   &c.AlcoholFile,
		"countries_file": &c.CountriesFile,
		"pinned_key":     &c.PinnedKey,
		"pinned_color":   &c.PinnedColor,
		"gradient_from":  &c.GradientFrom,
		"gradient_to":    &c.GradientTo,
		"date_min":       &c.DateMin,
		"date_max":       &c.DateMax,
	}
	ints := map[string]*int{
		"top_n":         &c.TopN,
		"subway_top_n":  &c.SubwayTopN,
		"cache_size":    &c.CacheSize,
		"max_upload_mb": &c.MaxUploadMB,
	}
	lists := map[string]*[]string{
		"encodings":    &c.Encodings,
		"date_layouts": &c.DateLayouts,
	}
	if p, ok := str[key]; ok {
		*p = val
		return nil
	}
	if p, ok := ints[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*p = i
		return nil
	}
	if p, ok := lists[key]; ok {
		var out []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) == 0 {
			return fmt.Errorf("%s needs at least one value", key)
		}
		*p = out
		return nil
	}
	return fmt.Errorf("unknown key: %s", key)
}
