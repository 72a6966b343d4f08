package view

import (
	"sync"
	"time"

	"github.com/zappabad/marketrush/internal/alert"
)

// AlertView maintains a bounded ring buffer of alerts.
type AlertView struct {
	mu    sync.RWMutex
	buf   []alert.Alert
	size  int
	start int
	count int
}

// NewAlertView creates a new AlertView with the given capacity.
func NewAlertView(capacity int) *AlertView {
	if capacity <= 0 {
		capacity = 100
	}
	return &AlertView{
		buf:  make([]alert.Alert, capacity),
		size: capacity,
	}
}

// Apply adds an alert to the view.
func (v *AlertView) Apply(a alert.Alert) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.count < v.size {
		v.buf[(v.start+v.count)%v.size] = a
		v.count++
		return
	}
	// overwrite oldest
	v.buf[v.start] = a
	v.start = (v.start + 1) % v.size
}

// Latest returns the last n alerts, oldest first.
func (v *AlertView) Latest(n int) []alert.Alert {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if n <= 0 || v.count == 0 {
		return nil
	}
	if n > v.count {
		n = v.count
	}

	out := make([]alert.Alert, n)
	first := (v.start + (v.count - n)) % v.size
	for i := 0; i < n; i++ {
		out[i] = v.buf[(first+i)%v.size]
	}
	return out
}

// Active returns alerts that are neither dismissed nor older than ttl, oldest first.
func (v *AlertView) Active(now time.Time, ttl time.Duration) []alert.Alert {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var out []alert.Alert
	for i := 0; i < v.count; i++ {
		a := v.buf[(v.start+i)%v.size]
		if a.Dismissed || now.Sub(a.Time) > ttl {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Dismiss hides the alert with the given id. It reports whether it was found.
func (v *AlertView) Dismiss(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := 0; i < v.count; i++ {
		idx := (v.start + i) % v.size
		if v.buf[idx].ID == id {
			v.buf[idx].Dismissed = true
			return true
		}
	}
	return false
}

// Count returns the number of alerts in the view.
func (v *AlertView) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.count
}
