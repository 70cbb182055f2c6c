package geo

import (
	"math"
	"sync"
	"time"

	"github.com/example/ride-hailing/internal/models"
)

// Index is the captain-presence geo store queried during ride fan-out.
type Index interface {
	Upsert(c models.Captain)
	Remove(captainID string)
	// Nearby returns up to limit online captains within radiusMeters of the
	// point, closest first.
	Nearby(lat, lng, radiusMeters float64, limit int) []models.Captain
}

// MemoryIndex is a plain in-process index. Candidate sets are small enough
// that a scan plus partial sort beats maintaining a spatial structure.
type MemoryIndex struct {
	mu       sync.RWMutex
	captains map[string]models.Captain
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{captains: make(map[string]models.Captain)}
}

func (g *MemoryIndex) Upsert(c models.Captain) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.Updated = time.Now()
	g.captains[c.ID] = c
}

func (g *MemoryIndex) Remove(captainID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.captains, captainID)
}

func (g *MemoryIndex) Nearby(lat, lng, radiusMeters float64, limit int) []models.Captain {
	g.mu.RLock()
	defer g.mu.RUnlock()
	type pair struct {
		c    models.Captain
		dist float64
	}
	arr := make([]pair, 0, len(g.captains))
	for _, c := range g.captains {
		if !c.Online {
			continue
		}
		dist := Haversine(lat, lng, c.Loc.Lat, c.Loc.Lng)
		if dist > radiusMeters {
			continue
		}
		arr = append(arr, pair{c, dist})
	}
	n := limit
	if n > len(arr) {
		n = len(arr)
	}
	// partial selection sort for the closest n
	for i := 0; i < n; i++ {
		minIdx := i
		for j := i + 1; j < len(arr); j++ {
			if arr[j].dist < arr[minIdx].dist {
				minIdx = j
			}
		}
		arr[i], arr[minIdx] = arr[minIdx], arr[i]
	}
	out := make([]models.Captain, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, arr[i].c)
	}
	return out
}

// Haversine distance in meters
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
