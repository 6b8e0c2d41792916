// Package suites holds the Learnify case catalogue and its loader.
package suites

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/padaiyal/learnify-e2e/harness"
	"gopkg.in/yaml.v3"
)

//go:embed learnify.yaml
var learnifyYAML []byte

// Catalogue is the full set of suites, in run order.
type Catalogue struct {
	Name   string              `yaml:"name"`
	Suites []harness.SuiteSpec `yaml:"suites"`
}

// Default returns the embedded Learnify catalogue.
func Default() (*Catalogue, error) {
	return Parse(learnifyYAML)
}

// Load reads a catalogue file.
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalogue. Unknown keys are rejected.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalogue) Validate() error {
	if len(c.Suites) == 0 {
		return errors.New("catalogue has no suites")
	}
	seen := make(map[string]bool, len(c.Suites))
	for _, s := range c.Suites {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate suite %s", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func (c *Catalogue) Suite(name string) (harness.SuiteSpec, error) {
	for _, s := range c.Suites {
		if s.Name == name {
			return s, nil
		}
	}
	return harness.SuiteSpec{}, fmt.Errorf("unknown suite %q", name)
}

// Select returns the named suites in catalogue order, or all of them when
// names is empty.
func (c *Catalogue) Select(names ...string) ([]harness.SuiteSpec, error) {
	if len(names) == 0 {
		return c.Suites, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := c.Suite(n); err != nil {
			return nil, err
		}
		wanted[n] = true
	}
	var selected []harness.SuiteSpec
	for _, s := range c.Suites {
		if wanted[s.Name] {
			selected = append(selected, s)
		}
	}
	return selected, nil
}

// Case finds a case by "suite/case" or by a bare case name.
func (c *Catalogue) Case(ref string) (harness.CaseSpec, error) {
	for _, s := range c.Suites {
		for _, cs := range s.Cases {
			if ref == cs.Name || ref == s.Name+"/"+cs.Name {
				return cs, nil
			}
		}
	}
	return harness.CaseSpec{}, fmt.Errorf("unknown case %q", ref)
}
