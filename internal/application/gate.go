// File: internal/application/gate.go

// Package application routes incoming chat commands to handlers behind an
// authorization gate.
package application

// Gate decides whether a caller may issue commands. An empty allow-list
// denies everyone; the bot must be configured before it is useful.
type Gate struct {
	allowed map[int64]struct{}
}

func NewGate(ids []int64) *Gate {
	g := &Gate{allowed: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		g.allowed[id] = struct{}{}
	}
	return g
}

func (g *Gate) Allowed(callerID int64) bool {
	if len(g.allowed) == 0 {
		return false
	}
	_, ok := g.allowed[callerID]
	return ok
}
