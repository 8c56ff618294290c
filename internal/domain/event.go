package domain

import "time"

// EventInfo identifies one scheduled contest. It is created once per contest
// by the caller and never mutated afterwards.
type EventInfo struct {
	ID          string
	HomeTeam    string
	AwayTeam    string
	StartTime   time.Time
	SeasonPhase string // e.g. "2026-regular", "2026-playoffs"
}

// HasParticipant reports whether name is one of the event's two participants.
func (e EventInfo) HasParticipant(name string) bool {
	return name != "" && (e.HomeTeam == name || e.AwayTeam == name)
}

// SharesParticipant reports whether two events have at least one participant
// in common.
func (e EventInfo) SharesParticipant(other EventInfo) bool {
	return e.HasParticipant(other.HomeTeam) || e.HasParticipant(other.AwayTeam)
}
