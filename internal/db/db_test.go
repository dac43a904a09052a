package db

import (
	"database/sql"
	"testing"

	"eve-atlas/internal/config"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestDB_ConfigRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	cfg := &config.Config{
		DefaultPreference: "safer",
		UseAnsiblex:       true,
		AvoidHazards:      true,
		SecurityPenalty:   750,
		ShortcutWeight:    0.25,
		CanvasWidth:       1024,
		CanvasHeight:      768,
		CanvasPadding:     32,
		EnableKillFeed:    true,
		KillWindowMinutes: 30,
		KillThreshold:     3,
	}
	if err := d.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got := d.LoadConfig()
	if got.DefaultPreference != "safer" {
		t.Errorf("DefaultPreference = %q, want safer", got.DefaultPreference)
	}
	if !got.UseAnsiblex || !got.AvoidHazards {
		t.Errorf("UseAnsiblex/AvoidHazards = %v/%v, want true/true", got.UseAnsiblex, got.AvoidHazards)
	}
	if got.SecurityPenalty != 750 || got.ShortcutWeight != 0.25 {
		t.Errorf("SecurityPenalty/ShortcutWeight = %v/%v", got.SecurityPenalty, got.ShortcutWeight)
	}
	if got.CanvasWidth != 1024 || got.CanvasHeight != 768 || got.CanvasPadding != 32 {
		t.Errorf("canvas = %vx%v pad %v", got.CanvasWidth, got.CanvasHeight, got.CanvasPadding)
	}
	if !got.EnableKillFeed || got.KillWindowMinutes != 30 || got.KillThreshold != 3 {
		t.Errorf("kill feed = %v window %d threshold %d", got.EnableKillFeed, got.KillWindowMinutes, got.KillThreshold)
	}
}

func TestDB_LoadConfig_EmptyReturnsDefaults(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	got := d.LoadConfig()
	want := config.Default()
	if got.DefaultPreference != want.DefaultPreference {
		t.Errorf("DefaultPreference = %q, want %q", got.DefaultPreference, want.DefaultPreference)
	}
	if got.SecurityPenalty != want.SecurityPenalty || got.ShortcutWeight != want.ShortcutWeight {
		t.Errorf("penalty/shortcut = %v/%v, want %v/%v",
			got.SecurityPenalty, got.ShortcutWeight, want.SecurityPenalty, want.ShortcutWeight)
	}
}

func TestDB_AvoidRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.AddAvoid(30002813, "Tama"); err != nil {
		t.Fatalf("AddAvoid: %v", err)
	}
	if err := d.AddAvoid(30000142, "Jita"); err != nil {
		t.Fatalf("AddAvoid: %v", err)
	}

	list, err := d.AvoidList()
	if err != nil {
		t.Fatalf("AvoidList: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("AvoidList len = %d, want 2", len(list))
	}
	for _, a := range list {
		if a.AddedAt == "" {
			t.Errorf("AddedAt empty for system %d", a.SystemID)
		}
	}

	ids, err := d.AvoidIDs()
	if err != nil {
		t.Fatalf("AvoidIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 30000142 || ids[1] != 30002813 {
		t.Errorf("AvoidIDs = %v, want [30000142 30002813]", ids)
	}

	// Re-adding is an upsert, not a duplicate.
	if err := d.AddAvoid(30000142, "Jita"); err != nil {
		t.Fatalf("AddAvoid again: %v", err)
	}
	ids, _ = d.AvoidIDs()
	if len(ids) != 2 {
		t.Errorf("after re-add AvoidIDs len = %d, want 2", len(ids))
	}

	if err := d.RemoveAvoid(30000142); err != nil {
		t.Fatalf("RemoveAvoid: %v", err)
	}
	ids, _ = d.AvoidIDs()
	if len(ids) != 1 || ids[0] != 30002813 {
		t.Errorf("after remove AvoidIDs = %v, want [30002813]", ids)
	}

	// Removing a system that is not listed is not an error.
	if err := d.RemoveAvoid(99999); err != nil {
		t.Errorf("RemoveAvoid(99999) = %v, want nil", err)
	}
}

func TestDB_AnsiblexRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	id, err := d.AddAnsiblex(30000200, 30000100)
	if err != nil {
		t.Fatalf("AddAnsiblex: %v", err)
	}
	if id <= 0 {
		t.Fatalf("AddAnsiblex id = %d, want > 0", id)
	}

	list, err := d.AnsiblexList()
	if err != nil {
		t.Fatalf("AnsiblexList: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("AnsiblexList len = %d, want 1", len(list))
	}
	// Stored lowest-id-first regardless of insert order.
	if list[0].FromID != 30000100 || list[0].ToID != 30000200 {
		t.Errorf("edge = %d-%d, want 30000100-30000200", list[0].FromID, list[0].ToID)
	}
	if list[0].AddedAt == "" {
		t.Error("AddedAt empty")
	}

	// The reversed pair dedupes onto the same edge.
	if _, err := d.AddAnsiblex(30000100, 30000200); err != nil {
		t.Fatalf("AddAnsiblex reversed: %v", err)
	}
	list, _ = d.AnsiblexList()
	if len(list) != 1 {
		t.Errorf("after reversed add len = %d, want 1", len(list))
	}

	if err := d.RemoveAnsiblex(list[0].ID); err != nil {
		t.Fatalf("RemoveAnsiblex: %v", err)
	}
	list, _ = d.AnsiblexList()
	if len(list) != 0 {
		t.Errorf("after remove len = %d, want 0", len(list))
	}

	if err := d.RemoveAnsiblex(424242); err != nil {
		t.Errorf("RemoveAnsiblex(424242) = %v, want nil", err)
	}
}

func TestDB_AddAnsiblex_SelfLoopRejected(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if _, err := d.AddAnsiblex(30000142, 30000142); err == nil {
		t.Error("AddAnsiblex(x, x) should fail")
	}
	list, _ := d.AnsiblexList()
	if len(list) != 0 {
		t.Errorf("self-loop inserted anyway, len = %d", len(list))
	}
}
