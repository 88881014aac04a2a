package core

import "testing"

func TestProgressCounters(t *testing.T) {
	p := NewProgress(10)

	p.IncEnqueued()
	p.IncEnqueued()
	p.IncChecked()
	p.IncFound()

	enq, chk, fnd, elapsed := p.Snapshot()
	if enq != 2 {
		t.Fatalf("enqueued = %d, want 2", enq)
	}
	if chk != 1 {
		t.Fatalf("checked = %d, want 1", chk)
	}
	if fnd != 1 {
		t.Fatalf("found = %d, want 1", fnd)
	}
	if elapsed <= 0 {
		t.Fatalf("elapsed should be positive, got %v", elapsed)
	}
	if p.TotalPlanned() != 10 {
		t.Fatalf("total planned = %d, want 10", p.TotalPlanned())
	}
}

func TestProgressSetInitial(t *testing.T) {
	p := NewProgress(0)
	p.SetInitial(5, 4, 1, 100)

	enq, chk, fnd, _ := p.Snapshot()
	if enq != 5 || chk != 4 || fnd != 1 {
		t.Fatalf("unexpected snapshot after SetInitial: enq=%d chk=%d fnd=%d", enq, chk, fnd)
	}
	if p.TotalPlanned() != 100 {
		t.Fatalf("total planned = %d, want 100", p.TotalPlanned())
	}
}

func TestProgressSetInitialClampsNegativeTotal(t *testing.T) {
	p := NewProgress(0)
	p.SetInitial(0, 0, 0, -5)
	if p.TotalPlanned() != 0 {
		t.Fatalf("total planned = %d, want 0", p.TotalPlanned())
	}
}

func TestNewProgressIgnoresNonPositiveTotal(t *testing.T) {
	p := NewProgress(-1)
	if p.TotalPlanned() != 0 {
		t.Fatalf("total planned = %d, want 0", p.TotalPlanned())
	}
}
