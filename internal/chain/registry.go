// Package chain names EVM chains by ID and converts token amounts between
// human units and on-chain base units.
package chain

import (
	"fmt"
	"sort"
	"sync"
)

// Chain IDs the bridge supports.
const (
	IDEthereum  uint64 = 1
	IDOptimism  uint64 = 10
	IDCronos    uint64 = 25
	IDBinance   uint64 = 56
	IDPolygon   uint64 = 137
	IDFantom    uint64 = 250
	IDBoba      uint64 = 288
	IDMetis     uint64 = 1088
	IDMoonbeam  uint64 = 1284
	IDMoonriver uint64 = 1285
	IDArbitrum  uint64 = 42161
	IDAvalanche uint64 = 43114
	IDAurora    uint64 = 1313161554
	IDHarmony   uint64 = 1666600000
)

// Registry is a thread-safe chain ID to display name table.
type Registry struct {
	mu   sync.RWMutex
	byID map[uint64]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint64]string)}
}

// DefaultRegistry returns a registry with every chain the bridge serves.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for id, name := range map[uint64]string{
		IDEthereum:  "Ethereum",
		IDOptimism:  "Optimism",
		IDCronos:    "Cronos",
		IDBinance:   "Binance",
		IDPolygon:   "Polygon",
		IDFantom:    "Fantom",
		IDBoba:      "Boba",
		IDMetis:     "Metis",
		IDMoonbeam:  "Moonbeam",
		IDMoonriver: "Moonriver",
		IDArbitrum:  "Arbitrum",
		IDAvalanche: "Avalanche",
		IDAurora:    "Aurora",
		IDHarmony:   "Harmony",
	} {
		r.Register(id, name)
	}
	return r
}

// Register adds or replaces a chain name.
func (r *Registry) Register(id uint64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = name
}

// Lookup returns the registered name for id.
func (r *Registry) Lookup(id uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byID[id]
	return name, ok
}

// Name returns the display name, or "Chain <id>" for unknown IDs.
func (r *Registry) Name(id uint64) string {
	if name, ok := r.Lookup(id); ok {
		return name
	}
	return fmt.Sprintf("Chain %d", id)
}

// IDs returns the registered IDs in ascending order.
func (r *Registry) IDs() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
