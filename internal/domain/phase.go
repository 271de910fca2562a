package domain

import "fmt"

type Phase string

const (
	PhaseStart    Phase = "dataStart"
	PhasePass4    Phase = "dataPass4"
	PhasePass7    Phase = "dataPass7"
	PhaseKingland Phase = "dataKingland"
)

// Phases lists the fixed phase graph in order.
var Phases = []Phase{PhaseStart, PhasePass4, PhasePass7, PhaseKingland}

func ParsePhase(s string) (Phase, error) {
	for _, p := range Phases {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPhase, s)
}

// Previous returns the predecessor in the phase graph, or false for PhaseStart.
func (p Phase) Previous() (Phase, bool) {
	for i, q := range Phases {
		if q == p && i > 0 {
			return Phases[i-1], true
		}
	}
	return "", false
}

// StatusFlag names a single boolean column of the status registry.
type StatusFlag string

const (
	FlagOnLeave     StatusFlag = "onLeave"
	FlagZeroed      StatusFlag = "zeroed"
	FlagFarmAccount StatusFlag = "farmAccount"
	FlagBlacklisted StatusFlag = "blacklisted"
)

func ParseStatusFlag(s string) (StatusFlag, error) {
	switch f := StatusFlag(s); f {
	case FlagOnLeave, FlagZeroed, FlagFarmAccount, FlagBlacklisted:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown status flag %q", ErrValidation, s)
}

// Has reports whether the record carries the flag.
func (s StatusRecord) Has(flag StatusFlag) bool {
	switch flag {
	case FlagOnLeave:
		return s.OnLeave
	case FlagZeroed:
		return s.Zeroed
	case FlagFarmAccount:
		return s.FarmAccount
	case FlagBlacklisted:
		return s.Blacklisted
	}
	return false
}
