package domain

import (
	"testing"
)

func TestCalculateGraphStatistics(t *testing.T) {
	in := &Initializer{
		VertexNum: 5,
		WeightedEdges: [][3]int64{
			{0, 1, 2},
			{1, 2, 0},
			{2, 3, 6},
		},
		VirtualVertices: []int{3},
	}

	stats := CalculateGraphStatistics(in)

	if stats.VertexNum != 5 {
		t.Errorf("VertexNum = %d, want 5", stats.VertexNum)
	}
	if stats.EdgeCount != 3 {
		t.Errorf("EdgeCount = %d, want 3", stats.EdgeCount)
	}
	if stats.VirtualCount != 1 {
		t.Errorf("VirtualCount = %d, want 1", stats.VirtualCount)
	}
	if stats.ZeroWeightEdges != 1 {
		t.Errorf("ZeroWeightEdges = %d, want 1", stats.ZeroWeightEdges)
	}
	if stats.MinWeight != 0 || stats.MaxWeight != 6 {
		t.Errorf("weights = [%d, %d], want [0, 6]", stats.MinWeight, stats.MaxWeight)
	}
	if stats.MaxDegree != 2 || stats.MinDegree != 0 {
		t.Errorf("degree = [%d, %d], want [0, 2]", stats.MinDegree, stats.MaxDegree)
	}
	if stats.AverageDegree != 6.0/5.0 {
		t.Errorf("AverageDegree = %v, want 1.2", stats.AverageDegree)
	}
	if stats.Components != 2 {
		t.Errorf("Components = %d, want 2", stats.Components)
	}
	if stats.IsConnected {
		t.Error("IsConnected should be false: vertex 4 is isolated")
	}
}

func TestCalculateGraphStatistics_Empty(t *testing.T) {
	stats := CalculateGraphStatistics(&Initializer{})

	if stats.VertexNum != 0 || stats.Components != 0 {
		t.Errorf("unexpected stats for empty graph: %+v", stats)
	}
}

func TestConnectedComponents(t *testing.T) {
	in := &Initializer{
		VertexNum: 6,
		WeightedEdges: [][3]int64{
			{4, 0, 1},
			{0, 2, 1},
			{3, 5, 1},
		},
	}

	got := ConnectedComponents(in)
	want := [][]int{{0, 2, 4}, {1}, {3, 5}}

	if len(got) != len(want) {
		t.Fatalf("components = %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("component %d = %v, want %v", i, got[i], want[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("component %d = %v, want %v", i, got[i], want[i])
			}
		}
	}
}

func TestReachable(t *testing.T) {
	in := &Initializer{
		VertexNum:     4,
		WeightedEdges: [][3]int64{{0, 1, 1}, {1, 2, 1}},
	}

	r := Reachable(in, 0)
	if !r[0] || !r[1] || !r[2] || r[3] {
		t.Errorf("Reachable(0) = %v", r)
	}
	if len(Reachable(in, 9)) != 0 {
		t.Error("out-of-range source should reach nothing")
	}
}
