package grpcserver

import (
	"testing"
	"time"

	"github.com/d-okonkwo/slotly/services/directory-service/internal/storage"
)

func ts(h, m int) time.Time {
	return time.Date(2026, 4, 6, h, m, 0, 0, time.UTC)
}

func TestSubtractBlocksNoBlocks(t *testing.T) {
	out := subtractBlocks(ts(9, 0), ts(17, 0), nil)
	if len(out) != 1 || !out[0].Start.Equal(ts(9, 0)) || !out[0].End.Equal(ts(17, 0)) {
		t.Fatalf("expected full window back, got %+v", out)
	}
}

func TestSubtractBlocksSplitsWindow(t *testing.T) {
	blocks := []storage.TimeOff{
		{StartTime: ts(12, 0), EndTime: ts(13, 0)},
	}
	out := subtractBlocks(ts(9, 0), ts(17, 0), blocks)
	if len(out) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(out))
	}
	if !out[0].End.Equal(ts(12, 0)) || !out[1].Start.Equal(ts(13, 0)) {
		t.Fatalf("unexpected split: %+v", out)
	}
}

func TestSubtractBlocksMergesOverlapping(t *testing.T) {
	blocks := []storage.TimeOff{
		{StartTime: ts(10, 0), EndTime: ts(11, 0)},
		{StartTime: ts(10, 30), EndTime: ts(12, 0)},
	}
	out := subtractBlocks(ts(9, 0), ts(17, 0), blocks)
	if len(out) != 2 {
		t.Fatalf("expected 2 windows, got %+v", out)
	}
	if !out[0].End.Equal(ts(10, 0)) || !out[1].Start.Equal(ts(12, 0)) {
		t.Fatalf("overlapping blocks should merge: %+v", out)
	}
}

func TestSubtractBlocksFullCover(t *testing.T) {
	blocks := []storage.TimeOff{
		{StartTime: ts(8, 0), EndTime: ts(18, 0)},
	}
	out := subtractBlocks(ts(9, 0), ts(17, 0), blocks)
	if len(out) != 0 {
		t.Fatalf("fully blocked day should yield no windows, got %+v", out)
	}
}

func TestSubtractBlocksClipsToBase(t *testing.T) {
	blocks := []storage.TimeOff{
		{StartTime: ts(7, 0), EndTime: ts(10, 0)},
	}
	out := subtractBlocks(ts(9, 0), ts(17, 0), blocks)
	if len(out) != 1 || !out[0].Start.Equal(ts(10, 0)) {
		t.Fatalf("block should clip to window start, got %+v", out)
	}
}

func TestMaterializeDropsInvalid(t *testing.T) {
	date := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	out := materialize(date, []storage.ScheduleWindow{
		{Weekday: 1, StartMinute: 540, EndMinute: 720},
		{Weekday: 1, StartMinute: 720, EndMinute: 720},
	})
	if len(out) != 1 {
		t.Fatalf("zero-length window must be dropped, got %+v", out)
	}
	if !out[0].Start.Equal(ts(9, 0)) || !out[0].End.Equal(ts(12, 0)) {
		t.Fatalf("unexpected window: %+v", out)
	}
}

func TestSubtractAllAppliesToEveryWindow(t *testing.T) {
	windows := []interval{
		{Start: ts(9, 0), End: ts(12, 0)},
		{Start: ts(14, 0), End: ts(17, 0)},
	}
	blocks := []storage.TimeOff{
		{StartTime: ts(11, 0), EndTime: ts(15, 0)},
	}
	out := subtractAll(windows, blocks)
	if len(out) != 2 {
		t.Fatalf("expected 2 remaining spans, got %+v", out)
	}
	if !out[0].End.Equal(ts(11, 0)) || !out[1].Start.Equal(ts(15, 0)) {
		t.Fatalf("unexpected spans: %+v", out)
	}
}
