// Package copygen is the deterministic copy engine. It turns a Brief into a
// hook, body and call-to-action by looking up canned content keyed on the
// brief's psychological trigger and awareness level, and adapts the result
// to the layout of the target channel.
//
// All content lives in the embedded catalog.yaml; the engine itself never
// fails and falls back to neutral defaults for unknown keys.
package copygen

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Trigger is one of the seven psychological triggers ("pecados capitais")
// a copy can be built around.
type Trigger struct {
	Key         string   `yaml:"key" json:"key"`
	Name        string   `yaml:"name" json:"name"`
	Driver      string   `yaml:"driver" json:"driver"`
	Application string   `yaml:"application" json:"application"`
	Phrases     []string `yaml:"phrases" json:"phrases"`

	Premise    string `yaml:"premise" json:"-"`
	Hook       string `yaml:"hook" json:"-"`
	Transition string `yaml:"transition" json:"-"`
	CTA        string `yaml:"cta" json:"-"`
}

// Awareness is a stage of the audience's awareness of its problem and of the
// offered solution.
type Awareness struct {
	Key         string `yaml:"key" json:"key"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Approach    string `yaml:"approach" json:"approach"`
}

// Methodology is a named copywriting framework.
type Methodology struct {
	Key       string `yaml:"key" json:"key"`
	Name      string `yaml:"name" json:"name"`
	Author    string `yaml:"author" json:"author"`
	Structure string `yaml:"structure" json:"structure"`
}

// Platform is an ad channel the engine can lay copy out for.
type Platform struct {
	Key  string `yaml:"key" json:"key"`
	Name string `yaml:"name" json:"name"`
}

type cannedDefaults struct {
	Premise    string `yaml:"premise"`
	Hook       string `yaml:"hook"`
	Transition string `yaml:"transition"`
	CTA        string `yaml:"cta"`
}

type painPoints struct {
	Parent  string `yaml:"parent"`
	Pain    string `yaml:"pain"`
	Default string `yaml:"default"`
}

// Catalog is the full set of content the engine draws from.
type Catalog struct {
	SpeechWPM     int            `yaml:"speech_wpm" json:"speech_wpm"`
	Triggers      []Trigger      `yaml:"triggers" json:"triggers"`
	Awareness     []Awareness    `yaml:"awareness" json:"awareness"`
	Methodologies []Methodology  `yaml:"methodologies" json:"methodologies"`
	Platforms     []Platform     `yaml:"platforms" json:"platforms"`
	Defaults      cannedDefaults `yaml:"defaults" json:"-"`
	PainPoints    painPoints     `yaml:"pain_points" json:"-"`
}

var catalog = mustParseCatalog(catalogYAML)

func mustParseCatalog(data []byte) *Catalog {
	c, err := parseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

func parseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing copy catalog: %w", err)
	}
	if c.SpeechWPM <= 0 {
		return nil, fmt.Errorf("parsing copy catalog: speech_wpm must be positive, got %d", c.SpeechWPM)
	}
	if len(c.Triggers) == 0 {
		return nil, fmt.Errorf("parsing copy catalog: no triggers defined")
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	return catalog
}

// Trigger looks up a trigger by key.
func (c *Catalog) Trigger(key string) (*Trigger, bool) {
	for i := range c.Triggers {
		if c.Triggers[i].Key == key {
			return &c.Triggers[i], true
		}
	}
	return nil, false
}

// AwarenessLevel looks up an awareness level by key.
func (c *Catalog) AwarenessLevel(key string) (*Awareness, bool) {
	for i := range c.Awareness {
		if c.Awareness[i].Key == key {
			return &c.Awareness[i], true
		}
	}
	return nil, false
}

// Methodology looks up a methodology by key.
func (c *Catalog) Methodology(key string) (*Methodology, bool) {
	for i := range c.Methodologies {
		if c.Methodologies[i].Key == key {
			return &c.Methodologies[i], true
		}
	}
	return nil, false
}
