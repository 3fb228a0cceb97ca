package models

import "time"

const (
	MatchStatusScheduled = "scheduled"
	MatchStatusFinished  = "finished"
)

type Match struct {
	ID        int        `json:"id"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	League    string     `json:"league"`
	KickoffAt time.Time  `json:"kickoff_at"`
	Status    string     `json:"status"`
	HomeScore *int       `json:"home_score,omitempty"`
	AwayScore *int       `json:"away_score,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
