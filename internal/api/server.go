package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"eve-atlas/internal/config"
	"eve-atlas/internal/db"
	"eve-atlas/internal/engine"
	"eve-atlas/internal/esi"
	"eve-atlas/internal/graph"
	"eve-atlas/internal/sde"
	"eve-atlas/internal/starmap"
)

// Server is the HTTP API server that connects the route planner, ESI client, and database.
type Server struct {
	cfg     *config.Config
	esi     *esi.Client
	db      *db.DB
	planner *engine.Planner
	version string

	mu        sync.RWMutex
	sdeData   *sde.Data
	ready     bool
	startTime time.Time
}

// NewServer creates a Server with the given config, ESI client, database and planner.
func NewServer(cfg *config.Config, esiClient *esi.Client, database *db.DB, planner *engine.Planner, version string) *Server {
	return &Server{
		cfg:       cfg,
		esi:       esiClient,
		db:        database,
		planner:   planner,
		version:   version,
		startTime: time.Now(),
	}
}

// SetSDE is called when SDE data finishes loading. It projects the map and
// hands the universe to the planner.
func (s *Server) SetSDE(data *sde.Data) {
	s.mu.RLock()
	viewport := starmap.Size{Width: s.cfg.CanvasWidth, Height: s.cfg.CanvasHeight}
	padding := s.cfg.CanvasPadding
	s.mu.RUnlock()

	s.planner.SetData(data, viewport, padding)

	s.mu.Lock()
	s.sdeData = data
	s.ready = true
	s.mu.Unlock()
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("GET /api/systems/autocomplete", s.handleAutocomplete)
	mux.HandleFunc("GET /api/systems/{id}", s.handleSystem)
	mux.HandleFunc("POST /api/route", s.handleRoute)
	mux.HandleFunc("GET /api/map/nearest", s.handleNearest)
	mux.HandleFunc("POST /api/map/pick", s.handlePick)
	mux.HandleFunc("GET /api/regions", s.handleRegions)
	mux.HandleFunc("GET /api/regions/{id}/center", s.handleRegionCenter)
	mux.HandleFunc("GET /api/avoid", s.handleGetAvoid)
	mux.HandleFunc("POST /api/avoid", s.handleAddAvoid)
	mux.HandleFunc("DELETE /api/avoid/{id}", s.handleRemoveAvoid)
	mux.HandleFunc("GET /api/ansiblex", s.handleGetAnsiblex)
	mux.HandleFunc("POST /api/ansiblex", s.handleAddAnsiblex)
	mux.HandleFunc("DELETE /api/ansiblex/{id}", s.handleRemoveAnsiblex)
	mux.HandleFunc("GET /api/hazards", s.handleHazards)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// resolveSystem turns a system reference (name or numeric id) into an id.
func resolveSystem(data *sde.Data, ref string) (int32, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("empty system reference")
	}
	if id, err := strconv.ParseInt(ref, 10, 32); err == nil {
		if _, ok := data.Systems[int32(id)]; ok {
			return int32(id), nil
		}
		return 0, fmt.Errorf("unknown system id %s", ref)
	}
	if id, ok := data.SystemByName[strings.ToLower(ref)]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("unknown system %q", ref)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	sdeLoaded := s.ready
	var systemCount, regionCount, gateCount int
	if s.sdeData != nil {
		systemCount = len(s.sdeData.Systems)
		regionCount = len(s.sdeData.Regions)
		gateCount = s.sdeData.Universe.GateCount()
	}
	start := s.startTime
	s.mu.RUnlock()

	esiOK := s.esi.HealthCheck()

	writeJSON(w, map[string]interface{}{
		"version":     s.version,
		"sde_loaded":  sdeLoaded,
		"sde_systems": systemCount,
		"sde_regions": regionCount,
		"sde_gates":   gateCount,
		"esi_ok":      esiOK,
		"uptime_sec":  int(time.Since(start).Seconds()),
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	cfg := *s.cfg
	s.mu.RUnlock()
	writeJSON(w, cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	s.mu.Lock()
	if v, ok := patch["default_preference"]; ok {
		var pref string
		json.Unmarshal(v, &pref)
		if _, err := graph.ParsePreference(pref); err == nil {
			s.cfg.DefaultPreference = pref
		}
	}
	if v, ok := patch["use_ansiblex"]; ok {
		json.Unmarshal(v, &s.cfg.UseAnsiblex)
	}
	if v, ok := patch["avoid_hazards"]; ok {
		json.Unmarshal(v, &s.cfg.AvoidHazards)
	}
	if v, ok := patch["security_penalty"]; ok {
		json.Unmarshal(v, &s.cfg.SecurityPenalty)
	}
	if v, ok := patch["shortcut_weight"]; ok {
		json.Unmarshal(v, &s.cfg.ShortcutWeight)
	}
	canvasChanged := false
	if v, ok := patch["canvas_width"]; ok {
		json.Unmarshal(v, &s.cfg.CanvasWidth)
		canvasChanged = true
	}
	if v, ok := patch["canvas_height"]; ok {
		json.Unmarshal(v, &s.cfg.CanvasHeight)
		canvasChanged = true
	}
	if v, ok := patch["canvas_padding"]; ok {
		json.Unmarshal(v, &s.cfg.CanvasPadding)
		canvasChanged = true
	}
	if v, ok := patch["enable_kill_feed"]; ok {
		json.Unmarshal(v, &s.cfg.EnableKillFeed)
	}
	if v, ok := patch["kill_window_minutes"]; ok {
		json.Unmarshal(v, &s.cfg.KillWindowMinutes)
	}
	if v, ok := patch["kill_threshold"]; ok {
		json.Unmarshal(v, &s.cfg.KillThreshold)
	}

	// Validate bounds
	if s.cfg.SecurityPenalty < 1 {
		s.cfg.SecurityPenalty = 1
	}
	if s.cfg.ShortcutWeight < 0 {
		s.cfg.ShortcutWeight = 0
	} else if s.cfg.ShortcutWeight > 1 {
		// A shortcut costing more than a gate jump would never be taken.
		s.cfg.ShortcutWeight = 1
	}
	if s.cfg.CanvasWidth < 256 {
		s.cfg.CanvasWidth = 256
	} else if s.cfg.CanvasWidth > 16384 {
		s.cfg.CanvasWidth = 16384
	}
	if s.cfg.CanvasHeight < 256 {
		s.cfg.CanvasHeight = 256
	} else if s.cfg.CanvasHeight > 16384 {
		s.cfg.CanvasHeight = 16384
	}
	if s.cfg.CanvasPadding < 0 {
		s.cfg.CanvasPadding = 0
	} else if s.cfg.CanvasPadding > 256 {
		s.cfg.CanvasPadding = 256
	}
	if s.cfg.KillWindowMinutes < 1 {
		s.cfg.KillWindowMinutes = 1
	} else if s.cfg.KillWindowMinutes > 1440 {
		s.cfg.KillWindowMinutes = 1440
	}
	if s.cfg.KillThreshold < 1 {
		s.cfg.KillThreshold = 1
	}

	cfg := *s.cfg
	data := s.sdeData
	ready := s.ready
	s.mu.Unlock()

	s.planner.SetWeights(graph.Weights{
		SecurityPenalty: cfg.SecurityPenalty,
		Shortcut:        cfg.ShortcutWeight,
	})
	if canvasChanged && ready {
		viewport := starmap.Size{Width: cfg.CanvasWidth, Height: cfg.CanvasHeight}
		s.planner.SetData(data, viewport, cfg.CanvasPadding)
	}

	if s.db != nil {
		s.db.SaveConfig(&cfg)
	}
	writeJSON(w, cfg)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if q == "" || !s.isReady() {
		writeJSON(w, map[string][]string{"systems": {}})
		return
	}

	s.mu.RLock()
	names := s.sdeData.SystemNames
	s.mu.RUnlock()

	var prefix, contains []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.HasPrefix(lower, q) {
			prefix = append(prefix, name)
		} else if strings.Contains(lower, q) {
			contains = append(contains, name)
		}
	}

	result := append(prefix, contains...)
	if len(result) > 15 {
		result = result[:15]
	}

	writeJSON(w, map[string][]string{"systems": result})
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 32)
	if err != nil {
		writeError(w, 400, "invalid system id")
		return
	}
	info, ok := s.planner.System(int32(id))
	if !ok {
		writeError(w, 404, "unknown system")
		return
	}
	writeJSON(w, info)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Origin       string  `json:"origin"`
		Destination  string  `json:"destination"`
		Preference   string  `json:"preference"`
		Avoid        []int32 `json:"avoid"`
		UseAnsiblex  *bool   `json:"use_ansiblex"`
		AvoidHazards *bool   `json:"avoid_hazards"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}

	s.mu.RLock()
	data := s.sdeData
	prefStr := s.cfg.DefaultPreference
	useAnsiblex := s.cfg.UseAnsiblex
	avoidHazards := s.cfg.AvoidHazards
	s.mu.RUnlock()

	if req.Preference != "" {
		prefStr = req.Preference
	}
	pref, err := graph.ParsePreference(prefStr)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	if req.UseAnsiblex != nil {
		useAnsiblex = *req.UseAnsiblex
	}
	if req.AvoidHazards != nil {
		avoidHazards = *req.AvoidHazards
	}

	origin, err := resolveSystem(data, req.Origin)
	if err != nil {
		writeError(w, 404, err.Error())
		return
	}
	dest, err := resolveSystem(data, req.Destination)
	if err != nil {
		writeError(w, 404, err.Error())
		return
	}

	avoid := req.Avoid
	if s.db != nil {
		if stored, err := s.db.AvoidIDs(); err == nil {
			avoid = append(avoid, stored...)
		}
	}
	var shortcuts []graph.Shortcut
	if useAnsiblex && s.db != nil {
		if edges, err := s.db.AnsiblexList(); err == nil {
			for _, e := range edges {
				shortcuts = append(shortcuts, graph.Shortcut{From: e.FromID, To: e.ToID})
			}
		}
	}

	start := time.Now()
	plan, err := s.planner.PlanRoute(engine.RouteRequest{
		Origin:       origin,
		Destination:  dest,
		Preference:   pref,
		Avoid:        avoid,
		Shortcuts:    shortcuts,
		AvoidHazards: avoidHazards,
	})
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	if plan == nil {
		log.Printf("[API] Route %s -> %s (%s): unreachable", req.Origin, req.Destination, pref)
		writeJSON(w, map[string]interface{}{"found": false})
		return
	}
	log.Printf("[API] Route %s -> %s (%s): %d jumps, %d shortcuts in %dms",
		req.Origin, req.Destination, pref, plan.JumpCount, plan.ShortcutCount,
		time.Since(start).Milliseconds())
	writeJSON(w, map[string]interface{}{"found": true, "route": plan})
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, 400, "x and y are required")
		return
	}
	radius := 50.0
	if v := q.Get("radius"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			radius = parsed
		}
	}

	info, ok := s.planner.Nearest(starmap.Point{X: x, Y: y}, radius)
	if !ok {
		writeJSON(w, map[string]interface{}{"found": false})
		return
	}
	writeJSON(w, map[string]interface{}{"found": true, "system": info})
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Screen starmap.Point  `json:"screen"`
		Camera starmap.Camera `json:"camera"`
		Radius float64        `json:"radius"` // hit tolerance in screen pixels
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	if req.Camera.Zoom <= 0 {
		req.Camera.Zoom = 1
	}
	if req.Radius <= 0 {
		req.Radius = 12
	}

	s.mu.RLock()
	viewport := starmap.Size{Width: s.cfg.CanvasWidth, Height: s.cfg.CanvasHeight}
	s.mu.RUnlock()

	// Screen-pixel tolerance shrinks in canvas units as the camera zooms in.
	canvas := starmap.ScreenToCanvas(req.Screen, req.Camera, viewport)
	info, ok := s.planner.Nearest(canvas, req.Radius/req.Camera.Zoom)
	if !ok {
		writeJSON(w, map[string]interface{}{"found": false, "canvas": canvas})
		return
	}
	writeJSON(w, map[string]interface{}{"found": true, "canvas": canvas, "system": info})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	s.mu.RLock()
	data := s.sdeData
	s.mu.RUnlock()

	type regionOut struct {
		ID     int32          `json:"id"`
		Name   string         `json:"name"`
		Center *starmap.Point `json:"center,omitempty"`
	}
	out := make([]regionOut, 0, len(data.Regions))
	for id, reg := range data.Regions {
		ro := regionOut{ID: id, Name: reg.Name}
		if c, ok := s.planner.RegionCenter(id); ok {
			ro.Center = &c
		}
		out = append(out, ro)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, map[string]interface{}{"regions": out})
}

func (s *Server) handleRegionCenter(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 32)
	if err != nil {
		writeError(w, 400, "invalid region id")
		return
	}
	center, ok := s.planner.RegionCenter(int32(id))
	if !ok {
		writeError(w, 404, "unknown region")
		return
	}
	writeJSON(w, map[string]interface{}{"region_id": id, "center": center})
}

// --- Avoid list ---

func (s *Server) handleGetAvoid(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, map[string]interface{}{"systems": []db.AvoidedSystem{}})
		return
	}
	list, err := s.db.AvoidList()
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if list == nil {
		list = []db.AvoidedSystem{}
	}
	writeJSON(w, map[string]interface{}{"systems": list})
}

func (s *Server) handleAddAvoid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		System string `json:"system"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	if s.db == nil {
		writeError(w, 503, "database unavailable")
		return
	}

	s.mu.RLock()
	data := s.sdeData
	s.mu.RUnlock()

	id, err := resolveSystem(data, req.System)
	if err != nil {
		writeError(w, 404, err.Error())
		return
	}
	name := data.Systems[id].Name
	if err := s.db.AddAvoid(id, name); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	log.Printf("[API] Avoid added: %s (%d)", name, id)
	writeJSON(w, map[string]interface{}{"system_id": id, "name": name})
}

func (s *Server) handleRemoveAvoid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 32)
	if err != nil {
		writeError(w, 400, "invalid system id")
		return
	}
	if s.db == nil {
		writeError(w, 503, "database unavailable")
		return
	}
	if err := s.db.RemoveAvoid(int32(id)); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "removed"})
}

// --- Ansiblex jump gates ---

func (s *Server) handleGetAnsiblex(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, map[string]interface{}{"edges": []db.AnsiblexEdge{}})
		return
	}
	list, err := s.db.AnsiblexList()
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if list == nil {
		list = []db.AnsiblexEdge{}
	}
	writeJSON(w, map[string]interface{}{"edges": list})
}

func (s *Server) handleAddAnsiblex(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	if s.db == nil {
		writeError(w, 503, "database unavailable")
		return
	}

	s.mu.RLock()
	data := s.sdeData
	s.mu.RUnlock()

	fromID, err := resolveSystem(data, req.From)
	if err != nil {
		writeError(w, 404, err.Error())
		return
	}
	toID, err := resolveSystem(data, req.To)
	if err != nil {
		writeError(w, 404, err.Error())
		return
	}
	if fromID == toID {
		writeError(w, 400, "from and to must differ")
		return
	}
	rowID, err := s.db.AddAnsiblex(fromID, toID)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	log.Printf("[API] Ansiblex added: %d-%d", fromID, toID)
	writeJSON(w, map[string]interface{}{"id": rowID, "from_id": fromID, "to_id": toID})
}

func (s *Server) handleRemoveAnsiblex(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, 400, "invalid edge id")
		return
	}
	if s.db == nil {
		writeError(w, 503, "database unavailable")
		return
	}
	if err := s.db.RemoveAnsiblex(id); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "removed"})
}

// --- Hazards ---

func (s *Server) handleHazards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{"sources": s.planner.Hazards()})
}
