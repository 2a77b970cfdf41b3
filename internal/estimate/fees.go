/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package estimate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AirportFees are the per-visit charges at one destination.
type AirportFees struct {
	Navigation float64 `yaml:"navigation"`
	Landing    float64 `yaml:"landing"`
	Takeoff    float64 `yaml:"takeoff"`
	Parking    float64 `yaml:"parking"`
	Terminal   float64 `yaml:"terminal"`
}

// Total sums all fee components.
func (f AirportFees) Total() float64 {
	return f.Navigation + f.Landing + f.Takeoff + f.Parking + f.Terminal
}

// FeeLookup resolves the fee schedule for an airport. External billing
// systems implement this; FeeTable is the in-process implementation.
type FeeLookup interface {
	Fees(icao string) (AirportFees, error)
}

// FeeTable is a static ICAO to fee-schedule map.
type FeeTable map[string]AirportFees

// Fees implements FeeLookup.
func (t FeeTable) Fees(icao string) (AirportFees, error) {
	f, ok := t[icao]
	if !ok {
		return AirportFees{}, fmt.Errorf("airport %s not in fee table", icao)
	}
	return f, nil
}

// DefaultFeeTable holds the standing fee schedule, in BRL.
func DefaultFeeTable() FeeTable {
	return FeeTable{
		"SBSP": {Navigation: 180, Landing: 420, Takeoff: 260, Parking: 310, Terminal: 190},
		"SBGR": {Navigation: 210, Landing: 510, Takeoff: 320, Parking: 380, Terminal: 240},
		"SBMT": {Navigation: 120, Landing: 260, Takeoff: 170, Parking: 190, Terminal: 110},
		"SBRJ": {Navigation: 190, Landing: 450, Takeoff: 280, Parking: 330, Terminal: 210},
		"SBJR": {Navigation: 130, Landing: 280, Takeoff: 180, Parking: 200, Terminal: 120},
		"SBBH": {Navigation: 140, Landing: 300, Takeoff: 190, Parking: 220, Terminal: 130},
		"SBCF": {Navigation: 170, Landing: 400, Takeoff: 250, Parking: 290, Terminal: 180},
		"SBKP": {Navigation: 160, Landing: 370, Takeoff: 230, Parking: 270, Terminal: 170},
		"SBJD": {Navigation: 100, Landing: 210, Takeoff: 140, Parking: 150, Terminal: 90},
		"SBCB": {Navigation: 110, Landing: 240, Takeoff: 150, Parking: 170, Terminal: 100},
	}
}

// LoadFeeTable reads fee overrides from a YAML file and merges them over
// the defaults.
func LoadFeeTable(path string) (FeeTable, error) {
	table := DefaultFeeTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fee table: %w", err)
	}

	overrides := FeeTable{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse fee table: %w", err)
	}

	for icao, f := range overrides {
		table[icao] = f
	}
	return table, nil
}
