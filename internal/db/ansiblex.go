package db

import (
	"fmt"
	"time"
)

// AnsiblexEdge is a user-registered jump gate connection between two systems.
type AnsiblexEdge struct {
	ID      int64  `json:"id"`
	FromID  int32  `json:"from_id"`
	ToID    int32  `json:"to_id"`
	AddedAt string `json:"added_at"`
}

// AnsiblexList returns all registered Ansiblex edges, oldest first.
func (d *DB) AnsiblexList() ([]AnsiblexEdge, error) {
	rows, err := d.sql.Query("SELECT id, from_id, to_id, added_at FROM ansiblex_edges ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query ansiblex edges: %w", err)
	}
	defer rows.Close()

	var out []AnsiblexEdge
	for rows.Next() {
		var e AnsiblexEdge
		if err := rows.Scan(&e.ID, &e.FromID, &e.ToID, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan ansiblex edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddAnsiblex registers a jump gate between two systems and returns its row id.
// The pair is stored lowest-id-first so A-B and B-A dedupe to one edge.
func (d *DB) AddAnsiblex(fromID, toID int32) (int64, error) {
	if fromID == toID {
		return 0, fmt.Errorf("ansiblex edge cannot connect system %d to itself", fromID)
	}
	if fromID > toID {
		fromID, toID = toID, fromID
	}
	res, err := d.sql.Exec(
		"INSERT OR REPLACE INTO ansiblex_edges (from_id, to_id, added_at) VALUES (?, ?, ?)",
		fromID, toID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("add ansiblex edge %d-%d: %w", fromID, toID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ansiblex edge id: %w", err)
	}
	return id, nil
}

// RemoveAnsiblex deletes an edge by row id. Unknown ids are not an error.
func (d *DB) RemoveAnsiblex(id int64) error {
	_, err := d.sql.Exec("DELETE FROM ansiblex_edges WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("remove ansiblex edge %d: %w", id, err)
	}
	return nil
}
