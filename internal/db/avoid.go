package db

import (
	"fmt"
	"time"
)

// AvoidedSystem is a system the user excluded from routing.
type AvoidedSystem struct {
	SystemID int32  `json:"system_id"`
	Name     string `json:"name"`
	AddedAt  string `json:"added_at"`
}

// AvoidList returns all avoided systems, oldest first.
func (d *DB) AvoidList() ([]AvoidedSystem, error) {
	rows, err := d.sql.Query("SELECT system_id, name, added_at FROM avoid_systems ORDER BY added_at, system_id")
	if err != nil {
		return nil, fmt.Errorf("query avoid list: %w", err)
	}
	defer rows.Close()

	var out []AvoidedSystem
	for rows.Next() {
		var a AvoidedSystem
		if err := rows.Scan(&a.SystemID, &a.Name, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("scan avoided system: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AvoidIDs returns just the IDs of avoided systems.
func (d *DB) AvoidIDs() ([]int32, error) {
	rows, err := d.sql.Query("SELECT system_id FROM avoid_systems ORDER BY system_id")
	if err != nil {
		return nil, fmt.Errorf("query avoid ids: %w", err)
	}
	defer rows.Close()

	var out []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan avoid id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// AddAvoid marks a system as avoided. Re-adding an existing system is a no-op
// apart from refreshing its timestamp.
func (d *DB) AddAvoid(systemID int32, name string) error {
	_, err := d.sql.Exec(
		"INSERT OR REPLACE INTO avoid_systems (system_id, name, added_at) VALUES (?, ?, ?)",
		systemID, name, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("add avoided system %d: %w", systemID, err)
	}
	return nil
}

// RemoveAvoid removes a system from the avoid list. Removing a system that is
// not listed is not an error.
func (d *DB) RemoveAvoid(systemID int32) error {
	_, err := d.sql.Exec("DELETE FROM avoid_systems WHERE system_id = ?", systemID)
	if err != nil {
		return fmt.Errorf("remove avoided system %d: %w", systemID, err)
	}
	return nil
}
