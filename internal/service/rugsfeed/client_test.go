package rugsfeed

import (
	"encoding/json"
	"testing"

	"RugPull/internal/domain/models"
)

func TestTranslateTick(t *testing.T) {
	raw := []byte(`{"type":"tick","gameId":"g1","tickCount":42,"price":1.87,"peakPrice":2.1}`)
	var f feedFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	ev := translate(&f)
	if ev == nil {
		t.Fatalf("tick frame dropped")
	}
	if ev.Type != models.EventTick || ev.RoundID != "g1" || ev.Tick != 42 || ev.Price != 1.87 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestTranslateRoundBoundaries(t *testing.T) {
	start := translate(&feedFrame{Type: "gameStateUpdate", GameID: "g2", Active: true})
	if start == nil || start.Type != models.EventRoundStart {
		t.Fatalf("active state should map to round start, got %+v", start)
	}

	end := translate(&feedFrame{Type: "gameStateUpdate", GameID: "g2", Rugged: true, TickCount: 180, Price: 0.012})
	if end == nil || end.Type != models.EventRoundEnd {
		t.Fatalf("rugged state should map to round end, got %+v", end)
	}
	if end.FinalTick != 180 || end.FinalPrice != 0.012 {
		t.Fatalf("terminal fields lost: %+v", end)
	}
}

func TestTranslateDropsNoise(t *testing.T) {
	frames := []feedFrame{
		{Type: "tick"},                       // no game id
		{Type: "playerUpdate", GameID: "g3"}, // unknown type
		{Type: "gameStateUpdate", GameID: "g3", Active: true, TickCount: 7}, // mid-round state echo
	}
	for i, f := range frames {
		if ev := translate(&f); ev != nil {
			t.Fatalf("frame %d should be dropped, got %+v", i, ev)
		}
	}
}
