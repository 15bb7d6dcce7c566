package config

import "sort"

var Presets = map[string]map[string]*Config{
	"exponential": {
		"growth": {
			Model: "exponential", Steps: 30,
			Params: map[string]float64{"r": 1.1}, InitState: 1.0,
		},
		"decay": {
			Model: "exponential", Steps: 30,
			Params: map[string]float64{"r": 0.9}, InitState: 100.0,
		},
		"neutral": {
			Model: "exponential", Steps: 30,
			Params: map[string]float64{"r": 1.0}, InitState: 10.0,
		},
	},
	"logistic": {
		"stable": {
			Model: "logistic", Steps: 50,
			Params: map[string]float64{"r": 2.5}, InitState: 0.5,
		},
		"period2": {
			Model: "logistic", Steps: 60,
			Params: map[string]float64{"r": 3.2}, InitState: 0.5,
		},
		"period4": {
			Model: "logistic", Steps: 80,
			Params: map[string]float64{"r": 3.5}, InitState: 0.5,
		},
		"chaos": {
			Model: "logistic", Steps: 100,
			Params: map[string]float64{"r": 3.9}, InitState: 0.5,
		},
	},
	"moran": {
		"stable": {
			Model: "moran", Steps: 50,
			Params: map[string]float64{"r": 1.5}, InitState: 0.5,
		},
		"cycle": {
			Model: "moran", Steps: 60,
			Params: map[string]float64{"r": 2.3}, InitState: 0.5,
		},
		"chaos": {
			Model: "moran", Steps: 100,
			Params: map[string]float64{"r": 3.0}, InitState: 0.5,
		},
	},
	"host_parasite": {
		"classic": {
			Model: "host_parasite", Steps: 50,
			Params: map[string]float64{"b": 2, "a": 0.1, "c": 1}, InitState: []any{10.0, 1.0},
		},
		"collapse": {
			Model: "host_parasite", Steps: 50,
			Params: map[string]float64{"b": 0.8, "a": 0.1, "c": 1}, InitState: []any{10.0, 1.0},
		},
		"outbreak": {
			Model: "host_parasite", Steps: 40,
			Params: map[string]float64{"b": 1.5, "a": 0.05, "c": 3}, InitState: []any{25.0, 2.0},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
