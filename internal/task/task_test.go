package task

import (
	"math"
	"testing"
)

func TestEstimate_WeightedAverage(t *testing.T) {
	cases := []struct {
		o, m, p float64
		want    float64
	}{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{2, 3, 6, 10.0 / 3},
		{1, 4, 7, 4},
		{0.5, 1.25, 3, (0.5 + 5 + 3) / 6},
	}
	for _, c := range cases {
		got := Estimate(c.o, c.m, c.p)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Estimate(%v,%v,%v) = %v, want %v", c.o, c.m, c.p, got, c.want)
		}
		if got < c.o-1e-12 || got > c.p+1e-12 {
			t.Errorf("Estimate(%v,%v,%v) = %v outside [o, p]", c.o, c.m, c.p, got)
		}
	}
}

func TestEstimate_BoundedByOptimisticAndPessimistic(t *testing.T) {
	for o := 0.0; o <= 4; o++ {
		for m := o; m <= 8; m++ {
			for p := m; p <= 12; p++ {
				got := Estimate(o, m, p)
				if got < o || got > p {
					t.Fatalf("Estimate(%v,%v,%v) = %v outside [o, p]", o, m, p, got)
				}
			}
		}
	}
}

func TestNew_DerivesExpectedAndCopiesPredecessors(t *testing.T) {
	preds := []string{"a", "b"}
	tk := New("c", 1, 2, 9, preds...)
	preds[0] = "mutated"

	if tk.Expected() != 3 {
		t.Errorf("expected duration 3, got %v", tk.Expected())
	}
	got := tk.Predecessors()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected predecessors [a b], got %v", got)
	}

	got[1] = "changed"
	if tk.Predecessors()[1] != "b" {
		t.Error("Predecessors should return a copy")
	}
}

func TestStdDevAndVariance(t *testing.T) {
	tk := New("x", 2, 4, 14)
	if tk.StdDev() != 2 {
		t.Errorf("expected std dev 2, got %v", tk.StdDev())
	}
	if tk.Variance() != 4 {
		t.Errorf("expected variance 4, got %v", tk.Variance())
	}
}

func TestRecord_EmptyPredecessorsSerialiseAsEmptySlice(t *testing.T) {
	r := New("solo", 1, 1, 1).Record()
	if r.Predecessors == nil {
		t.Fatal("expected non-nil predecessor slice")
	}
	if r.Expected != 1 {
		t.Errorf("expected duration 1, got %v", r.Expected)
	}
}

func TestDurations(t *testing.T) {
	d := Durations([]Task{New("a", 1, 1, 1), New("b", 0, 3, 6)})
	if d["a"] != 1 || d["b"] != 3 {
		t.Errorf("unexpected durations %v", d)
	}
}
