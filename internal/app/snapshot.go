package app

import (
	"time"

	"github.com/oddslab/bookengine/internal/domain"
)

// snapshot is the JSON shape of one decision snapshot file: a batch of
// predictions and quotes plus the event metadata they refer to.
type snapshot struct {
	Events      []snapshotEvent      `json:"events"`
	Predictions []snapshotPrediction `json:"predictions"`
	Quotes      []snapshotQuote      `json:"quotes"`
}

type snapshotEvent struct {
	ID          string    `json:"id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	StartTime   time.Time `json:"start_time"`
	SeasonPhase string    `json:"season_phase"`
}

type snapshotPrediction struct {
	EventID      string    `json:"event_id"`
	Market       string    `json:"market"`
	Line         float64   `json:"line"`
	Probability  float64   `json:"probability"`
	Confidence   float64   `json:"confidence"`
	ModelVersion string    `json:"model_version"`
	GeneratedAt  time.Time `json:"generated_at"`
}

type snapshotQuote struct {
	EventID    string    `json:"event_id"`
	Bookmaker  string    `json:"bookmaker"`
	Market     string    `json:"market"`
	Line       float64   `json:"line"`
	American   int       `json:"american_price"`
	CapturedAt time.Time `json:"captured_at"`
}

// toDomain converts the wire shapes into domain records.
func (s snapshot) toDomain() ([]domain.Prediction, []domain.PriceQuote, map[string]domain.EventInfo) {
	events := make(map[string]domain.EventInfo, len(s.Events))
	for _, e := range s.Events {
		events[e.ID] = domain.EventInfo{
			ID:          e.ID,
			HomeTeam:    e.HomeTeam,
			AwayTeam:    e.AwayTeam,
			StartTime:   e.StartTime,
			SeasonPhase: e.SeasonPhase,
		}
	}

	predictions := make([]domain.Prediction, 0, len(s.Predictions))
	for _, p := range s.Predictions {
		predictions = append(predictions, domain.Prediction{
			EventID:      p.EventID,
			Market:       domain.MarketType(p.Market),
			Line:         p.Line,
			Probability:  p.Probability,
			Confidence:   p.Confidence,
			ModelVersion: p.ModelVersion,
			GeneratedAt:  p.GeneratedAt,
		})
	}

	quotes := make([]domain.PriceQuote, 0, len(s.Quotes))
	for _, q := range s.Quotes {
		quotes = append(quotes, domain.PriceQuote{
			EventID:    q.EventID,
			Bookmaker:  q.Bookmaker,
			Market:     domain.MarketType(q.Market),
			Line:       q.Line,
			American:   q.American,
			CapturedAt: q.CapturedAt,
		})
	}

	return predictions, quotes, events
}
