package coordinator

import (
	"context"
	"strings"
	"sync"

	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
)

// nativeETHAliases are addresses the clearing network may use to denote
// the native asset; all normalize to the "ETH" symbol.
var nativeETHAliases = map[string]bool{
	"0x0000000000000000000000000000000000000000": true,
	"native":                                      true,
	"eth":                                         true,
}

// AssetMap is the process-wide cached mapping from token address to
// symbol, populated once from list_assets at coordinator init (spec §5:
// "the only writer runs before concurrent readers begin"); reads take the
// read lock.
type AssetMap struct {
	mu      sync.RWMutex
	chainID int64
	bySym   map[string]string
}

// NewAssetMap constructs an empty map scoped to a chain id.
func NewAssetMap(chainID int64) *AssetMap {
	return &AssetMap{chainID: chainID, bySym: make(map[string]string)}
}

// LoadAssetMap populates m from list_assets, filtered to m's configured
// chain, normalizing native-ETH aliases to "ETH" (spec §4.4 step 2). Fatal
// if the resulting map is empty (spec §7: "Fatal — empty asset map after
// init"). Populates an existing map rather than returning a new one so
// the matcher and settlement worker can share one injected pointer across
// the load that happens after the coordinator's connection comes up.
func (c *Coordinator) LoadAssetMap(ctx context.Context, m *AssetMap) error {
	assets, err := c.ListAssets(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	for _, a := range assets {
		if a.ChainID != m.chainID {
			continue
		}
		token := a.Token
		if nativeETHAliases[strings.ToLower(token)] {
			token = "ETH"
		}
		m.bySym[token] = a.Symbol
	}
	count := len(m.bySym)
	m.mu.Unlock()

	if count == 0 {
		return derrors.New(derrors.Fatal, "asset map is empty after init")
	}
	return nil
}

// Symbol resolves a token address to its trading symbol.
func (m *AssetMap) Symbol(token string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	norm := token
	if nativeETHAliases[strings.ToLower(token)] {
		norm = "ETH"
	}
	sym, ok := m.bySym[norm]
	return sym, ok
}
