package domain

import (
	"fmt"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/closure"
)

// Initializer входные данные для построения скелетного графа
type Initializer struct {
	// VertexNum количество вершин
	VertexNum int `json:"vertex_num"`
	// WeightedEdges рёбра в виде троек (a, b, weight)
	WeightedEdges [][3]int64 `json:"weighted_edges"`
	// VirtualVertices индексы виртуальных (граничных) вершин
	VirtualVertices []int `json:"virtual_vertices"`
}

// Validate проверяет индексы и веса
func (in *Initializer) Validate() error {
	if in == nil {
		return apperror.ErrNilGraph
	}
	if in.VertexNum < 0 {
		return apperror.NewWithField(apperror.CodeInvalidIndex, "vertex count must be non-negative", "vertex_num")
	}
	if in.VertexNum == 0 {
		return apperror.ErrEmptyGraph
	}

	ve := apperror.NewValidationErrors()
	for i, e := range in.WeightedEdges {
		for _, v := range e[:2] {
			if v < 0 || v >= int64(in.VertexNum) {
				ve.AddErrorWithField(apperror.CodeInvalidIndex,
					fmt.Sprintf("edge %d references vertex %d outside [0, %d)", i, v, in.VertexNum),
					"weighted_edges")
			}
		}
		if e[2] < 0 {
			ve.AddErrorWithField(apperror.CodeNegativeWeight,
				fmt.Sprintf("edge %d has negative weight %d", i, e[2]), "weighted_edges")
		}
	}
	for _, v := range in.VirtualVertices {
		if v < 0 || v >= in.VertexNum {
			ve.AddErrorWithField(apperror.CodeInvalidIndex,
				fmt.Sprintf("virtual vertex %d outside [0, %d)", v, in.VertexNum), "virtual_vertices")
		}
	}
	return ve.First()
}

// Edges конвертирует тройки в рёбра движка
func (in *Initializer) Edges() []closure.WeightedEdge {
	edges := make([]closure.WeightedEdge, len(in.WeightedEdges))
	for i, e := range in.WeightedEdges {
		edges[i] = closure.WeightedEdge{A: int(e[0]), B: int(e[1]), Weight: e[2]}
	}
	return edges
}

// Build строит движок кратчайших путей
func (in *Initializer) Build(opts ...closure.Option) (*closure.CompleteGraph, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return closure.New(in.VertexNum, in.Edges(), opts...)
}

// IsVirtual проверяет, является ли вершина виртуальной
func (in *Initializer) IsVirtual(v int) bool {
	for _, u := range in.VirtualVertices {
		if u == v {
			return true
		}
	}
	return false
}
