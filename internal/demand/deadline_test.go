package demand

import (
	"testing"
	"time"
)

func prazoIn(now time.Time, offset time.Duration) *time.Time {
	ts := now.Add(offset)
	return &ts
}

func TestClassifyDeadline(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		status string
		prazo  *time.Time
		want   DeadlineClass
	}{
		{"sem prazo", StatusAberta, nil, DeadlineNone},
		{"prazo no passado", StatusAberta, prazoIn(now, -time.Hour), DeadlineDelayed},
		{"prazo exatamente agora", StatusEmAndamento, prazoIn(now, 0), DeadlineUpcoming},
		{"prazo dentro da janela", StatusEmAndamento, prazoIn(now, 48*time.Hour), DeadlineUpcoming},
		{"prazo no limite da janela", StatusAberta, prazoIn(now, UpcomingWindow), DeadlineUpcoming},
		{"prazo além da janela", StatusAberta, prazoIn(now, UpcomingWindow+time.Minute), DeadlineNone},
		{"concluída nunca atrasa", StatusConcluida, prazoIn(now, -time.Hour), DeadlineNone},
		{"cancelada nunca atrasa", StatusCancelada, prazoIn(now, -time.Hour), DeadlineNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := &Demand{Status: tc.status, Prazo: tc.prazo}
			if got := ClassifyDeadline(now, d); got != tc.want {
				t.Fatalf("ClassifyDeadline = %s, esperado %s", got, tc.want)
			}
		})
	}
}

func TestBuildFeedOrdersAndCaps(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	var demands []Demand
	// Sete atrasadas, da mais recente para a mais antiga.
	for i := 1; i <= 7; i++ {
		demands = append(demands, Demand{
			ID:     int64(i),
			Status: StatusAberta,
			Prazo:  prazoIn(now, -time.Duration(i)*time.Hour),
		})
	}
	// Seis próximas do prazo, fora de ordem.
	for i := 6; i >= 1; i-- {
		demands = append(demands, Demand{
			ID:     int64(100 + i),
			Status: StatusEmAndamento,
			Prazo:  prazoIn(now, time.Duration(i)*time.Hour),
		})
	}

	feed := BuildFeed(now, demands)

	if len(feed.Delayed) != FeedLimit {
		t.Fatalf("atrasadas = %d, esperado %d", len(feed.Delayed), FeedLimit)
	}
	if len(feed.Upcoming) != FeedLimit {
		t.Fatalf("próximas = %d, esperado %d", len(feed.Upcoming), FeedLimit)
	}

	// A mais atrasada (prazo mais antigo) primeiro.
	if feed.Delayed[0].ID != 7 {
		t.Fatalf("primeira atrasada = %d, esperado 7", feed.Delayed[0].ID)
	}
	for i := 1; i < len(feed.Delayed); i++ {
		if feed.Delayed[i].Prazo.Before(*feed.Delayed[i-1].Prazo) {
			t.Fatal("atrasadas fora de ordem ascendente de prazo")
		}
	}
	if feed.Upcoming[0].ID != 101 {
		t.Fatalf("primeira próxima = %d, esperado 101", feed.Upcoming[0].ID)
	}
	for i := 1; i < len(feed.Upcoming); i++ {
		if feed.Upcoming[i].Prazo.Before(*feed.Upcoming[i-1].Prazo) {
			t.Fatal("próximas fora de ordem ascendente de prazo")
		}
	}
}

func TestBuildFeedEmpty(t *testing.T) {
	feed := BuildFeed(time.Now(), nil)
	if feed.Delayed == nil || feed.Upcoming == nil {
		t.Fatal("listas do feed devem ser vazias, não nulas")
	}
	if len(feed.Delayed) != 0 || len(feed.Upcoming) != 0 {
		t.Fatal("feed de entrada vazia deveria ser vazio")
	}
}
