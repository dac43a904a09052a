package sde

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"eve-atlas/internal/graph"
	"eve-atlas/internal/logger"
	"eve-atlas/internal/starmap"
)

const sdeURL = "https://developers.eveonline.com/static-data/eve-online-static-data-latest-jsonl.zip"

// Data holds all parsed SDE data.
type Data struct {
	Systems      map[int32]*SolarSystem // systemID -> system
	SystemByName map[string]int32       // lowercase name -> systemID
	SystemNames  []string               // all system names for autocomplete, sorted
	Regions      map[int32]*Region      // regionID -> region
	RegionByName map[string]int32       // lowercase name -> regionID
	Universe     *graph.Universe
}

// Region represents an EVE region from the SDE.
type Region struct {
	ID   int32
	Name string
}

// SolarSystem represents an EVE solar system from the SDE.
type SolarSystem struct {
	ID       int32
	Name     string
	RegionID int32
	Security float64       // raw security status, -1.0 to 1.0
	World    starmap.Point // map position on the x/z plane, meters
}

func newData() *Data {
	return &Data{
		Systems:      make(map[int32]*SolarSystem),
		SystemByName: make(map[string]int32),
		Regions:      make(map[int32]*Region),
		RegionByName: make(map[string]int32),
		Universe:     graph.NewUniverse(),
	}
}

// Load returns the parsed universe. A previously parsed universe is restored
// from the binary snapshot under dataDir; otherwise the SDE is downloaded (if
// needed), parsed from JSONL, and snapshotted for next startup.
func Load(dataDir string) (*Data, error) {
	if data, err := loadSnapshot(dataDir); err == nil {
		logger.Success("SDE", "Restored universe from snapshot")
		data.logStats()
		return data, nil
	}

	zipPath := filepath.Join(dataDir, "sde.zip")
	extractDir := filepath.Join(dataDir, "sde")

	if _, err := os.Stat(extractDir); os.IsNotExist(err) {
		logger.Info("SDE", "Downloading data...")
		if err := downloadFile(zipPath, sdeURL); err != nil {
			return nil, fmt.Errorf("download SDE: %w", err)
		}
		logger.Info("SDE", "Extracting data...")
		if err := extractZip(zipPath, extractDir); err != nil {
			return nil, fmt.Errorf("extract SDE: %w", err)
		}
	}

	data := newData()

	logger.Info("SDE", "Loading regions...")
	if err := data.loadRegions(extractDir); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading solar systems...")
	if err := data.loadSystems(extractDir); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading stargates...")
	if err := data.loadStargates(extractDir); err != nil {
		return nil, err
	}

	sort.Strings(data.SystemNames)

	if err := saveSnapshot(dataDir, data); err != nil {
		logger.Warn("SDE", fmt.Sprintf("Snapshot not saved: %v", err))
	}

	data.logStats()
	return data, nil
}

func (d *Data) logStats() {
	logger.Section("SDE Statistics")
	logger.Stats("Regions", len(d.Regions))
	logger.Stats("Systems", len(d.Systems))
	logger.Stats("Stargates", d.Universe.GateCount())
}

func (d *Data) loadRegions(dir string) error {
	return readJSONL(dir, "mapRegions", func(raw json.RawMessage) error {
		var r struct {
			Key  int32             `json:"_key"`
			Name map[string]string `json:"name"`
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		name := r.Name["en"]
		if name == "" {
			return nil
		}
		d.Regions[r.Key] = &Region{
			ID:   r.Key,
			Name: name,
		}
		d.RegionByName[strings.ToLower(name)] = r.Key
		return nil
	})
}

func (d *Data) loadSystems(dir string) error {
	return readJSONL(dir, "mapSolarSystems", func(raw json.RawMessage) error {
		var s struct {
			Key            int32             `json:"_key"`
			Name           map[string]string `json:"name"`
			RegionID       int32             `json:"regionID"`
			Security       float64           `json:"security"`
			SecurityStatus float64           `json:"securityStatus"` // alternate SDE field name
			Center         json.RawMessage   `json:"center"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		name := s.Name["en"]
		if name == "" {
			return nil
		}
		sec := s.Security
		if sec == 0 && s.SecurityStatus != 0 {
			sec = s.SecurityStatus
		}
		x, z := parseCenter(s.Center)
		d.Systems[s.Key] = &SolarSystem{
			ID: s.Key, Name: name, RegionID: s.RegionID, Security: sec,
			World: starmap.Point{X: x, Y: z},
		}
		d.SystemByName[strings.ToLower(name)] = s.Key
		d.SystemNames = append(d.SystemNames, name)
		d.Universe.SetRegion(s.Key, s.RegionID)
		d.Universe.SetSecurity(s.Key, sec)
		return nil
	})
}

// parseCenter decodes a system center that appears either as an [x, y, z]
// array or as an {x, y, z} object depending on SDE vintage. The map is drawn
// on the x/z plane; the out-of-plane y is discarded.
func parseCenter(raw json.RawMessage) (x, z float64) {
	if len(raw) == 0 {
		return 0, 0
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) >= 3 {
		return arr[0], arr[2]
	}
	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.X, obj.Z
	}
	return 0, 0
}

func (d *Data) loadStargates(dir string) error {
	return readJSONL(dir, "mapStargates", func(raw json.RawMessage) error {
		var g struct {
			SolarSystemID int32 `json:"solarSystemID"`
			Destination   struct {
				SolarSystemID int32 `json:"solarSystemID"`
			} `json:"destination"`
		}
		if err := json.Unmarshal(raw, &g); err != nil {
			return err
		}
		if g.SolarSystemID != 0 && g.Destination.SolarSystemID != 0 {
			d.Universe.AddGate(g.SolarSystemID, g.Destination.SolarSystemID)
		}
		return nil
	})
}

// readJSONL finds and reads a .jsonl file by base name from the extracted SDE directory.
func readJSONL(dir, baseName string, fn func(json.RawMessage) error) error {
	// Search for the file recursively
	var filePath string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		name := strings.TrimSuffix(info.Name(), ".jsonl")
		if strings.EqualFold(name, baseName) {
			filePath = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return err
	}
	if filePath == "" {
		logger.Warn("SDE", fmt.Sprintf("File %s.jsonl not found, skipping", baseName))
		return nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(json.RawMessage(line)); err != nil {
			continue // skip malformed lines
		}
	}
	return scanner.Err()
}

func downloadFile(dst, url string) error {
	os.MkdirAll(filepath.Dir(dst), 0755)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func extractZip(src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	// Resolve destination to an absolute path for zip slip prevention
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolve extract dir: %w", err)
	}

	for _, f := range r.File {
		fpath := filepath.Join(dstAbs, f.Name)

		// Zip slip guard: ensure the resolved path stays within dst
		if rel, err := filepath.Rel(dstAbs, fpath); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("illegal zip entry path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, 0755)
			continue
		}
		os.MkdirAll(filepath.Dir(fpath), 0755)
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(fpath)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
