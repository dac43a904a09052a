package zkillboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"eve-atlas/internal/logger"
)

const (
	streamURL = "wss://zkillboard.com/websocket/"

	// Reconnect backoff bounds.
	minBackoff = time.Second
	maxBackoff = 2 * time.Minute
)

// killMessage is the subset of a killstream frame we care about.
type killMessage struct {
	KillmailID    int64 `json:"killmail_id"`
	SolarSystemID int32 `json:"solar_system_id"`
}

// Killstream subscribes to the zKillboard live killmail feed and keeps a
// rolling window of kill counts per solar system. Systems with at least
// threshold kills inside the window are reported as hazards.
type Killstream struct {
	mu        sync.Mutex
	window    time.Duration
	threshold int
	kills     map[int32][]time.Time
	now       func() time.Time // injectable for tests
}

// NewKillstream creates a killstream with the given rolling window and
// per-system kill threshold. Nothing is received until Run.
func NewKillstream(window time.Duration, threshold int) *Killstream {
	return &Killstream{
		window:    window,
		threshold: threshold,
		kills:     make(map[int32][]time.Time),
		now:       time.Now,
	}
}

// Run connects to the killstream and reads killmails until stop closes.
// Dropped connections are retried with exponential backoff.
func (k *Killstream) Run(stop <-chan struct{}) {
	backoff := minBackoff
	for {
		select {
		case <-stop:
			return
		default:
		}

		err := k.stream(stop)
		select {
		case <-stop:
			return
		default:
		}
		logger.Warn("Killstream", fmt.Sprintf("Disconnected: %v, retrying in %s", err, backoff))

		select {
		case <-time.After(backoff):
		case <-stop:
			return
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// stream runs one websocket session until the connection drops or stop closes.
func (k *Killstream) stream(stop <-chan struct{}) error {
	header := http.Header{"User-Agent": []string{"eve-atlas/1.0 (github.com)"}}
	conn, _, err := websocket.DefaultDialer.Dial(streamURL, header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	sub := map[string]string{"action": "sub", "channel": "killstream"}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	logger.Info("Killstream", "Subscribed to live killmails")

	// Close the connection when stop fires so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-stop:
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg killMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.SolarSystemID == 0 {
			continue
		}
		k.record(msg.SolarSystemID)
	}
}

func (k *Killstream) record(systemID int32) {
	now := k.now()
	k.mu.Lock()
	k.kills[systemID] = append(k.kills[systemID], now)
	k.mu.Unlock()
}

// prune drops kills that fell out of the window. Caller must hold mu.
func (k *Killstream) prune(now time.Time) {
	cutoff := now.Add(-k.window)
	for id, times := range k.kills {
		keep := times[:0]
		for _, t := range times {
			if t.After(cutoff) {
				keep = append(keep, t)
			}
		}
		if len(keep) == 0 {
			delete(k.kills, id)
		} else {
			k.kills[id] = keep
		}
	}
}

// Name identifies this hazard source.
func (k *Killstream) Name() string { return "killstream" }

// HazardSystems returns systems with at least threshold kills inside the
// rolling window, sorted by id.
func (k *Killstream) HazardSystems() []int32 {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.prune(k.now())
	var out []int32
	for id, times := range k.kills {
		if len(times) >= k.threshold {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
