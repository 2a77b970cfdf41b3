/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"github.com/agendoai/aviao-sub000/internal/models"
	"gorm.io/gorm"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.Aircraft{},
		&models.Mission{},
		&models.AdminAvailabilityWindow{},
	)
}
