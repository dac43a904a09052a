package db

import (
	"fmt"
	"strconv"

	"eve-atlas/internal/config"
)

// LoadConfig reads settings from SQLite. If empty, returns defaults.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM settings")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}

	if len(m) == 0 {
		return cfg
	}

	if v, ok := m["default_preference"]; ok {
		cfg.DefaultPreference = v
	}
	if v, ok := m["use_ansiblex"]; ok {
		cfg.UseAnsiblex, _ = strconv.ParseBool(v)
	}
	if v, ok := m["avoid_hazards"]; ok {
		cfg.AvoidHazards, _ = strconv.ParseBool(v)
	}
	if v, ok := m["security_penalty"]; ok {
		cfg.SecurityPenalty, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["shortcut_weight"]; ok {
		cfg.ShortcutWeight, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["canvas_width"]; ok {
		cfg.CanvasWidth, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["canvas_height"]; ok {
		cfg.CanvasHeight, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["canvas_padding"]; ok {
		cfg.CanvasPadding, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["enable_kill_feed"]; ok {
		cfg.EnableKillFeed, _ = strconv.ParseBool(v)
	}
	if v, ok := m["kill_window_minutes"]; ok {
		cfg.KillWindowMinutes, _ = strconv.Atoi(v)
	}
	if v, ok := m["kill_threshold"]; ok {
		cfg.KillThreshold, _ = strconv.Atoi(v)
	}

	return cfg
}

// SaveConfig writes settings to SQLite (upsert all fields).
func (d *DB) SaveConfig(cfg *config.Config) error {
	pairs := map[string]string{
		"default_preference":  cfg.DefaultPreference,
		"use_ansiblex":        strconv.FormatBool(cfg.UseAnsiblex),
		"avoid_hazards":       strconv.FormatBool(cfg.AvoidHazards),
		"security_penalty":    fmt.Sprintf("%g", cfg.SecurityPenalty),
		"shortcut_weight":     fmt.Sprintf("%g", cfg.ShortcutWeight),
		"canvas_width":        fmt.Sprintf("%g", cfg.CanvasWidth),
		"canvas_height":       fmt.Sprintf("%g", cfg.CanvasHeight),
		"canvas_padding":      fmt.Sprintf("%g", cfg.CanvasPadding),
		"enable_kill_feed":    strconv.FormatBool(cfg.EnableKillFeed),
		"kill_window_minutes": strconv.Itoa(cfg.KillWindowMinutes),
		"kill_threshold":      strconv.Itoa(cfg.KillThreshold),
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for k, v := range pairs {
		if _, err := stmt.Exec(k, v); err != nil {
			tx.Rollback()
			return fmt.Errorf("save setting %s: %w", k, err)
		}
	}
	return tx.Commit()
}
