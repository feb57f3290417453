// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package target describes the hardware platforms the tool can flash.
package target

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/ghodss/yaml"
)

// A Target identifies a hardware platform. The zero value is not valid;
// obtain targets from Lookup or LoadFile.
type Target struct {
	Name      string `json:"name"`      // platform name, e.g. nrf52dk
	Arch      string `json:"arch"`      // CPU architecture, e.g. cortex-m4
	Triple    string `json:"triple"`    // instruction-set target triple
	Device    string `json:"device"`    // device part number for the probe
	Interface string `json:"interface"` // debug interface kind: swd or jtag
	Speed     int    `json:"speed"`     // debug link speed in kHz
	Region    string `json:"region"`    // name of the apps region
}

const (
	DefaultInterface = "swd"
	DefaultSpeed     = 1200
	DefaultRegion    = ".apps"
)

var builtin = map[string]Target{
	"nrf52dk": {
		Name:   "nrf52dk",
		Arch:   "cortex-m4",
		Triple: "thumbv7em-none-eabi",
		Device: "nrf52",
	},
	"nrf52840dk": {
		Name:   "nrf52840dk",
		Arch:   "cortex-m4",
		Triple: "thumbv7em-none-eabi",
		Device: "nrf52840_xxaa",
	},
	"hail": {
		Name:   "hail",
		Arch:   "cortex-m4",
		Triple: "thumbv7em-none-eabi",
		Device: "ATSAM4LC8C",
	},
	"imix": {
		Name:   "imix",
		Arch:   "cortex-m4",
		Triple: "thumbv7em-none-eabi",
		Device: "ATSAM4LC8C",
	},
}

var registry = maps.Clone(builtin)

// Lookup returns the target registered under the given platform name with
// the unset optional fields filled with defaults.
func Lookup(name string) (Target, bool) {
	t, ok := registry[name]
	if !ok {
		return Target{}, false
	}
	return withDefaults(t), true
}

// List returns all registered targets sorted by name.
func List() []Target {
	ts := make([]Target, 0, len(registry))
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		ts = append(ts, withDefaults(registry[name]))
	}
	return ts
}

func withDefaults(t Target) Target {
	if t.Interface == "" {
		t.Interface = DefaultInterface
	}
	if t.Speed == 0 {
		t.Speed = DefaultSpeed
	}
	if t.Region == "" {
		t.Region = DefaultRegion
	}
	return t
}

type targetsFile struct {
	Targets []Target `json:"targets"`
}

// LoadFile merges the targets described in a YAML file into the registry.
// File entries take precedence over the builtin table.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var tf targetsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, t := range tf.Targets {
		if t.Name == "" {
			return fmt.Errorf("%s: target with no name", path)
		}
		if t.Device == "" {
			return fmt.Errorf("%s: target %s: no device part number", path, t.Name)
		}
		registry[t.Name] = t
	}
	return nil
}
