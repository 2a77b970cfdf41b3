/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package estimate

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Coord is an airport reference point in decimal degrees.
type Coord struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// CoordinateSource resolves an airport code to coordinates. External
// lookups (geocoding services) implement this; the compiled-in table is
// the documented fallback when they are unavailable.
type CoordinateSource interface {
	Coordinates(icao string) (Coord, error)
}

// AirportTable is a static ICAO to coordinate map.
type AirportTable map[string]Coord

// Coordinates implements CoordinateSource.
func (t AirportTable) Coordinates(icao string) (Coord, error) {
	c, ok := t[icao]
	if !ok {
		return Coord{}, fmt.Errorf("airport %s not in coordinate table", icao)
	}
	return c, nil
}

// DefaultAirportTable covers the airports the shared fleet operates from.
func DefaultAirportTable() AirportTable {
	return AirportTable{
		"SBSP": {Lat: -23.6261, Lon: -46.6564}, // São Paulo / Congonhas
		"SBGR": {Lat: -23.4356, Lon: -46.4731}, // Guarulhos
		"SBMT": {Lat: -23.5091, Lon: -46.6378}, // Campo de Marte
		"SBRJ": {Lat: -22.9105, Lon: -43.1631}, // Rio / Santos Dumont
		"SBJR": {Lat: -22.9874, Lon: -43.3700}, // Jacarepaguá
		"SBBH": {Lat: -19.8512, Lon: -43.9506}, // Belo Horizonte / Pampulha
		"SBCF": {Lat: -19.6244, Lon: -43.9719}, // Confins
		"SBKP": {Lat: -23.0074, Lon: -47.1345}, // Campinas / Viracopos
		"SBJD": {Lat: -23.1808, Lon: -46.9444}, // Jundiaí
		"SBCB": {Lat: -22.9217, Lon: -42.0743}, // Cabo Frio
		"SBBS": {Lat: -22.9292, Lon: -47.1145}, // Campinas / Amarais
		"SBCT": {Lat: -25.5285, Lon: -49.1758}, // Curitiba
		"SBFL": {Lat: -27.6703, Lon: -48.5525}, // Florianópolis
		"SBPA": {Lat: -29.9939, Lon: -51.1711}, // Porto Alegre
		"SBBR": {Lat: -15.8697, Lon: -47.9208}, // Brasília
		"SBSV": {Lat: -12.9086, Lon: -38.3225}, // Salvador
		"SBRP": {Lat: -21.1363, Lon: -47.7766}, // Ribeirão Preto
		"SBUL": {Lat: -18.8828, Lon: -48.2256}, // Uberlândia
	}
}

// LoadAirportTable reads coordinate overrides from a YAML file and merges
// them over the defaults.
func LoadAirportTable(path string) (AirportTable, error) {
	table := DefaultAirportTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read airport table: %w", err)
	}

	overrides := AirportTable{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse airport table: %w", err)
	}

	for icao, c := range overrides {
		table[icao] = c
	}
	return table, nil
}

const earthRadiusNM = 3440.065

// DistanceNM is the great-circle distance between two coordinates in
// nautical miles (haversine).
func DistanceNM(a, b Coord) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusNM * math.Asin(math.Sqrt(h))
}

// DefaultCruiseSpeeds maps aircraft models to cruise speed in knots.
// Aircraft records usually carry their own speed; this table backs models
// imported without one.
func DefaultCruiseSpeeds() map[string]float64 {
	return map[string]float64{
		"Cessna 172":         122,
		"Cessna 182":         145,
		"Cessna 206":         142,
		"Cirrus SR22":        183,
		"Beechcraft Bonanza": 174,
		"Baron 58":           200,
		"King Air C90":       226,
		"King Air 350":       312,
		"Pilatus PC-12":      285,
		"Phenom 100":         390,
		"Phenom 300":         453,
	}
}
