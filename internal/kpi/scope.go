package kpi

import (
	"fmt"
	"kvk-dashboard/internal/domain"
)

// Scope selects which phase transitions feed kpIncrease.
type Scope string

const (
	ScopePass4      Scope = "pass4"
	ScopePass7      Scope = "pass7"
	ScopeKingland   Scope = "kingland"
	ScopeCumulative Scope = "cumulative"
)

// Scopes lists every view in display order.
var Scopes = []Scope{ScopePass4, ScopePass7, ScopeKingland, ScopeCumulative}

type Edge struct {
	From domain.Phase
	To   domain.Phase
}

var (
	edgePass4    = edgeInto(domain.PhasePass4)
	edgePass7    = edgeInto(domain.PhasePass7)
	edgeKingland = edgeInto(domain.PhaseKingland)
)

// edgeInto is the transition from the predecessor of to.
func edgeInto(to domain.Phase) Edge {
	from, ok := to.Previous()
	if !ok {
		panic(fmt.Sprintf("kpi: phase %s has no predecessor", to))
	}
	return Edge{From: from, To: to}
}

func ParseScope(s string) (Scope, error) {
	switch sc := Scope(s); sc {
	case ScopePass4, ScopePass7, ScopeKingland, ScopeCumulative:
		return sc, nil
	case "results":
		return ScopeCumulative, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidScope, s)
}

func (s Scope) Edges() []Edge {
	switch s {
	case ScopePass4:
		return []Edge{edgePass4}
	case ScopePass7:
		return []Edge{edgePass7}
	case ScopeKingland:
		return []Edge{edgeKingland}
	case ScopeCumulative:
		return []Edge{edgePass4, edgePass7, edgeKingland}
	}
	return nil
}

// Terminal is the phase whose record supplies totalDeads and display name.
func (s Scope) Terminal() domain.Phase {
	edges := s.Edges()
	if len(edges) == 0 {
		return ""
	}
	return edges[len(edges)-1].To
}

// Phases returns every phase the scope reads, dataStart included.
func (s Scope) Phases() []domain.Phase {
	phases := []domain.Phase{domain.PhaseStart}
	for _, e := range s.Edges() {
		for _, p := range []domain.Phase{e.From, e.To} {
			if !containsPhase(phases, p) {
				phases = append(phases, p)
			}
		}
	}
	return phases
}

func containsPhase(phases []domain.Phase, p domain.Phase) bool {
	for _, q := range phases {
		if q == p {
			return true
		}
	}
	return false
}
