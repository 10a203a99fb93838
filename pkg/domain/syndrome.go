package domain

import (
	"sort"
)

// Position координаты вершины для визуализации и отчётов
type Position struct {
	I float64 `json:"i"`
	J float64 `json:"j"`
	T float64 `json:"t"`
}

// SyndromePattern один сценарий ошибок
type SyndromePattern struct {
	// SyndromeVertices вершины с ненулевым синдромом
	SyndromeVertices []int `json:"syndrome_vertices"`
	// Erasures индексы стёртых рёбер
	Erasures []int `json:"erasures"`
}

// NewSyndromePattern создаёт сценарий с отсортированными индексами
func NewSyndromePattern(syndromes, erasures []int) SyndromePattern {
	s := append([]int(nil), syndromes...)
	e := append([]int(nil), erasures...)
	sort.Ints(s)
	sort.Ints(e)
	if s == nil {
		s = []int{}
	}
	if e == nil {
		e = []int{}
	}
	return SyndromePattern{SyndromeVertices: s, Erasures: e}
}

// Empty проверяет отсутствие синдромов и стираний
func (p SyndromePattern) Empty() bool {
	return len(p.SyndromeVertices) == 0 && len(p.Erasures) == 0
}

// Pairs возвращает все пары (a, b), a < b, синдромных вершин
func (p SyndromePattern) Pairs() [][2]int {
	n := len(p.SyndromeVertices)
	if n < 2 {
		return nil
	}
	out := make([][2]int, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, [2]int{p.SyndromeVertices[i], p.SyndromeVertices[j]})
		}
	}
	return out
}
