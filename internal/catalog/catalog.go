// Package catalog holds the static data behind the lookup screens.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var raw []byte

// Item is a recommended book or movie. By is the author for books and the
// original title and year for movies.
type Item struct {
	Title  string `yaml:"title"`
	By     string `yaml:"by"`
	Reason string `yaml:"reason"`
}

// Media groups the recommendations for one type.
type Media struct {
	Books  []Item `yaml:"books"`
	Movies []Item `yaml:"movies"`
}

// Spot is a tourist attraction with its coordinates.
type Spot struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
	Desc string  `yaml:"desc"`
}

// Catalog is the decoded embedded data set.
type Catalog struct {
	Greeting struct {
		Foods []string `yaml:"foods"`
	} `yaml:"greeting"`
	CareerMap map[string][]string `yaml:"careers"`
	MediaMap  map[string]Media    `yaml:"media"`
	Spots     []Spot              `yaml:"spots"`
}

var types = []string{
	"ISTJ", "ISFJ", "INFJ", "INTJ",
	"ISTP", "ISFP", "INFP", "INTP",
	"ESTP", "ESFP", "ENFP", "ENTP",
	"ESTJ", "ESFJ", "ENFJ", "ENTJ",
}

// MBTITypes returns the sixteen types in display order.
func MBTITypes() []string {
	return append([]string(nil), types...)
}

// Normalize upper-cases and trims t. ok is false when t is not one of the sixteen types.
func Normalize(t string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(t))
	for _, k := range types {
		if k == v {
			return v, true
		}
	}
	return v, false
}

var (
	once   sync.Once
	loaded *Catalog
	errLd  error
)

// Load decodes the embedded catalog once and returns the shared copy.
func Load() (*Catalog, error) {
	once.Do(func() {
		loaded, errLd = Parse(raw)
	})
	return loaded, errLd
}

// Parse decodes a catalog document and checks that every career entry is a known type.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for k := range c.CareerMap {
		if _, ok := Normalize(k); !ok {
			return nil, fmt.Errorf("catalog: unknown type %q in careers", k)
		}
	}
	return &c, nil
}

// Careers returns the suggestions for t.
func (c *Catalog) Careers(t string) ([]string, bool) {
	k, _ := Normalize(t)
	jobs, ok := c.CareerMap[k]
	return jobs, ok && len(jobs) > 0
}

// Media returns the recommendations for t. ok is false for types that have
// no entry yet.
func (c *Catalog) Media(t string) (Media, bool) {
	k, _ := Normalize(t)
	m, ok := c.MediaMap[k]
	return m, ok
}

// Foods lists the greeting screen's choices.
func (c *Catalog) Foods() []string {
	return c.Greeting.Foods
}
