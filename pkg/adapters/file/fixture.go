// Package file loads pipeline fixtures from YAML documents.
//
// A fixture describes one project:
//
//	project: demo
//	warehouses:
//	  - metadata: {name: main}
//	stages:
//	  - metadata: {name: dev}
//	    spec:
//	      subscriptions: {warehouse: main}
//	freight:
//	  - metadata: {name: 4f1c2d9e}
//	    warehouse: main
//	promotions: []
//
// Fixtures seed a memory.Source so the viewer can run without a cluster.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/pipeview/pkg/adapters/memory"
	"github.com/aretw0/pipeview/pkg/domain"
)

// ErrNoProject is returned for a fixture without a project name.
var ErrNoProject = errors.New("fixture has no project")

// Fixture is the content of one fixture document.
type Fixture struct {
	Project    string             `mapstructure:"project"`
	Warehouses []domain.Warehouse `mapstructure:"warehouses"`
	Stages     []domain.Stage     `mapstructure:"stages"`
	Freight    []domain.Freight   `mapstructure:"freight"`
	Promotions []domain.Promotion `mapstructure:"promotions"`
}

// Parse decodes a fixture document.
func Parse(data []byte) (*Fixture, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	var fx Fixture
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeHookFunc(time.RFC3339),
		ErrorUnused: true,
		Result:      &fx,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	if fx.Project == "" {
		return nil, ErrNoProject
	}
	return &fx, nil
}

// Load reads a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	fx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fx, nil
}

// LoadDir reads every .yaml and .yml file in dir, sorted by name.
func LoadDir(dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	fixtures := make([]*Fixture, 0, len(names))
	for _, name := range names {
		fx, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fx)
	}
	return fixtures, nil
}

// LoadPath loads a single file or a directory of fixtures.
func LoadPath(path string) ([]*Fixture, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat fixtures: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	fx, err := Load(path)
	if err != nil {
		return nil, err
	}
	return []*Fixture{fx}, nil
}

// Seed writes the fixture into src, warehouses first.
func (fx *Fixture) Seed(src *memory.Source) {
	for _, w := range fx.Warehouses {
		src.PutWarehouse(fx.Project, w)
	}
	for _, st := range fx.Stages {
		src.PutStage(fx.Project, st)
	}
	for _, f := range fx.Freight {
		src.PutFreight(fx.Project, f)
	}
	for _, p := range fx.Promotions {
		src.PutPromotion(fx.Project, p)
	}
}
