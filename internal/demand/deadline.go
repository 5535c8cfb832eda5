package demand

import (
	"sort"
	"time"
)

// DeadlineClass classifica a situação de prazo de uma demanda.
type DeadlineClass string

const (
	DeadlineNone     DeadlineClass = "NONE"
	DeadlineDelayed  DeadlineClass = "DELAYED"
	DeadlineUpcoming DeadlineClass = "UPCOMING"

	// UpcomingWindow é a janela de antecedência considerada "próxima do prazo".
	UpcomingWindow = 3 * 24 * time.Hour

	// FeedLimit limita cada lista do feed de notificações.
	FeedLimit = 5
)

// Feed é o modelo de leitura consultado por polling pela interface.
type Feed struct {
	Delayed  []Demand `json:"delayed"`
	Upcoming []Demand `json:"upcoming"`
}

// ClassifyDeadline deriva a classe de prazo no instante informado. Demandas
// encerradas nunca atrasam, e a classificação é recomputada a cada consulta
// em vez de persistida.
func ClassifyDeadline(now time.Time, d *Demand) DeadlineClass {
	if IsTerminal(d.Status) || d.Prazo == nil {
		return DeadlineNone
	}
	if d.Prazo.Before(now) {
		return DeadlineDelayed
	}
	if !d.Prazo.After(now.Add(UpcomingWindow)) {
		return DeadlineUpcoming
	}
	return DeadlineNone
}

// BuildFeed separa demandas atrasadas e próximas do prazo, ordenadas por
// prazo ascendente (a mais atrasada primeiro) e limitadas a FeedLimit cada.
func BuildFeed(now time.Time, demands []Demand) Feed {
	feed := Feed{Delayed: []Demand{}, Upcoming: []Demand{}}

	for i := range demands {
		switch ClassifyDeadline(now, &demands[i]) {
		case DeadlineDelayed:
			feed.Delayed = append(feed.Delayed, demands[i])
		case DeadlineUpcoming:
			feed.Upcoming = append(feed.Upcoming, demands[i])
		}
	}

	byPrazo := func(list []Demand) func(i, j int) bool {
		return func(i, j int) bool {
			return list[i].Prazo.Before(*list[j].Prazo)
		}
	}
	sort.SliceStable(feed.Delayed, byPrazo(feed.Delayed))
	sort.SliceStable(feed.Upcoming, byPrazo(feed.Upcoming))

	if len(feed.Delayed) > FeedLimit {
		feed.Delayed = feed.Delayed[:FeedLimit]
	}
	if len(feed.Upcoming) > FeedLimit {
		feed.Upcoming = feed.Upcoming[:FeedLimit]
	}

	return feed
}
