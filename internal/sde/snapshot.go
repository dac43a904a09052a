package sde

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"eve-atlas/internal/starmap"
)

const (
	snapshotVersion = 1
	snapshotFile    = "universe.snap"
)

// snapshot is the binary cache of a parsed universe. Parsing the JSONL SDE
// takes a few seconds; restoring the snapshot is near-instant.
type snapshot struct {
	Version int          `msgpack:"version"`
	Regions []snapRegion `msgpack:"regions"`
	Systems []snapSystem `msgpack:"systems"`
	Gates   [][2]int32   `msgpack:"gates"` // undirected pairs, low id first
}

type snapRegion struct {
	ID   int32  `msgpack:"id"`
	Name string `msgpack:"name"`
}

type snapSystem struct {
	ID       int32   `msgpack:"id"`
	Name     string  `msgpack:"name"`
	RegionID int32   `msgpack:"region_id"`
	Security float64 `msgpack:"security"`
	X        float64 `msgpack:"x"`
	Y        float64 `msgpack:"y"`
}

func snapshotPath(dataDir string) string {
	return filepath.Join(dataDir, snapshotFile)
}

func loadSnapshot(dataDir string) (*Data, error) {
	raw, err := os.ReadFile(snapshotPath(dataDir))
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, snapshotVersion)
	}

	data := newData()
	for _, r := range snap.Regions {
		data.Regions[r.ID] = &Region{ID: r.ID, Name: r.Name}
		data.RegionByName[strings.ToLower(r.Name)] = r.ID
	}
	for _, s := range snap.Systems {
		data.Systems[s.ID] = &SolarSystem{
			ID: s.ID, Name: s.Name, RegionID: s.RegionID, Security: s.Security,
			World: starmap.Point{X: s.X, Y: s.Y},
		}
		data.SystemByName[strings.ToLower(s.Name)] = s.ID
		data.SystemNames = append(data.SystemNames, s.Name)
		data.Universe.SetRegion(s.ID, s.RegionID)
		data.Universe.SetSecurity(s.ID, s.Security)
	}
	for _, g := range snap.Gates {
		data.Universe.AddGate(g[0], g[1])
	}
	sort.Strings(data.SystemNames)
	return data, nil
}

func saveSnapshot(dataDir string, d *Data) error {
	snap := snapshot{Version: snapshotVersion}

	snap.Regions = make([]snapRegion, 0, len(d.Regions))
	for _, r := range d.Regions {
		snap.Regions = append(snap.Regions, snapRegion{ID: r.ID, Name: r.Name})
	}
	sort.Slice(snap.Regions, func(i, j int) bool { return snap.Regions[i].ID < snap.Regions[j].ID })

	snap.Systems = make([]snapSystem, 0, len(d.Systems))
	for _, s := range d.Systems {
		snap.Systems = append(snap.Systems, snapSystem{
			ID: s.ID, Name: s.Name, RegionID: s.RegionID, Security: s.Security,
			X: s.World.X, Y: s.World.Y,
		})
	}
	sort.Slice(snap.Systems, func(i, j int) bool { return snap.Systems[i].ID < snap.Systems[j].ID })

	for from, neighbors := range d.Universe.Adj {
		for _, to := range neighbors {
			if from < to {
				snap.Gates = append(snap.Gates, [2]int32{from, to})
			}
		}
	}
	sort.Slice(snap.Gates, func(i, j int) bool {
		if snap.Gates[i][0] != snap.Gates[j][0] {
			return snap.Gates[i][0] < snap.Gates[j][0]
		}
		return snap.Gates[i][1] < snap.Gates[j][1]
	})

	raw, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	// Write to a temp file first so a crash never leaves a torn snapshot.
	os.MkdirAll(dataDir, 0755)
	tmp := snapshotPath(dataDir) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, snapshotPath(dataDir))
}
