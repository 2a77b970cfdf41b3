/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agendoai/aviao-sub000/internal/db"
	"github.com/agendoai/aviao-sub000/internal/models"
)

var seedDays int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo fleet",
	Long: `Create a small demo fleet with open availability windows, for local
development and API exploration. Safe to run repeatedly: existing
registrations are skipped.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedDays, "days", 30, "Number of days of open availability to create")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	fleet := []models.Aircraft{
		{
			ID:            uuid.NewString(),
			Registration:  "PT-SKA",
			Model:         "King Air C90",
			BaseICAO:      "SBSP",
			Seats:         6,
			CruiseKnots:   226,
			HourlyRate:    2800,
			OvernightRate: 1500,
		},
		{
			ID:            uuid.NewString(),
			Registration:  "PT-CNA",
			Model:         "Cessna 172",
			BaseICAO:      "SBMT",
			Seats:         3,
			CruiseKnots:   122,
			HourlyRate:    900,
			OvernightRate: 400,
		},
		{
			ID:            uuid.NewString(),
			Registration:  "PT-PHX",
			Model:         "Phenom 300",
			BaseICAO:      "SBGR",
			Seats:         8,
			CruiseKnots:   453,
			HourlyRate:    7200,
			OvernightRate: 3200,
		},
	}

	today := time.Now().Truncate(24 * time.Hour)

	for _, aircraft := range fleet {
		var existing int64
		err := database.Model(&models.Aircraft{}).
			Where("registration = ?", aircraft.Registration).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("check registration %s: %w", aircraft.Registration, err)
		}
		if existing > 0 {
			logger.Info().Str("registration", aircraft.Registration).Msg("already seeded, skipping")
			continue
		}

		if err := database.Create(&aircraft).Error; err != nil {
			return fmt.Errorf("create aircraft %s: %w", aircraft.Registration, err)
		}

		window := models.AdminAvailabilityWindow{
			ID:         uuid.NewString(),
			AircraftID: aircraft.ID,
			Start:      today,
			End:        today.AddDate(0, 0, seedDays),
			Status:     models.WindowOpen,
			Note:       "seeded availability",
		}
		if err := database.Create(&window).Error; err != nil {
			return fmt.Errorf("create window for %s: %w", aircraft.Registration, err)
		}

		logger.Info().
			Str("registration", aircraft.Registration).
			Str("aircraft_id", aircraft.ID).
			Int("days", seedDays).
			Msg("aircraft seeded")
	}

	return nil
}
