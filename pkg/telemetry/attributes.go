package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"qecgraph/pkg/apperror"
)

// Стандартные ключи атрибутов
const (
	// Граф
	AttrGraphVertices = "graph.vertices"
	AttrGraphEdges    = "graph.edges"
	AttrGraphVirtual  = "graph.virtual_vertices"
	AttrGraphHash     = "graph.hash"

	// Код
	AttrCodeFamily   = "code.family"
	AttrCodeDistance = "code.d"
	AttrCodeP        = "code.p"

	// Раунд
	AttrRound        = "round.index"
	AttrSyndromeNum  = "round.syndrome_vertices"
	AttrPathsQueried = "round.paths"

	// Замыкание
	AttrClosureSource    = "closure.source"
	AttrClosureFinalized = "closure.finalized"

	// Ошибки
	AttrErrorCode = "error.code"
)

// GraphAttributes возвращает атрибуты графа
func GraphAttributes(vertices, edges, virtual int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphVertices, vertices),
		attribute.Int(AttrGraphEdges, edges),
		attribute.Int(AttrGraphVirtual, virtual),
	}
}

// CodeAttributes возвращает атрибуты кода
func CodeAttributes(family string, d int, p float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCodeFamily, family),
		attribute.Int(AttrCodeDistance, d),
		attribute.Float64(AttrCodeP, p),
	}
}

// RoundAttributes возвращает атрибуты раунда
func RoundAttributes(round, syndromeNum, paths int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrRound, round),
		attribute.Int(AttrSyndromeNum, syndromeNum),
		attribute.Int(AttrPathsQueried, paths),
	}
}

// ErrorAttributes возвращает код ошибки; не-apperror ошибки дают INTERNAL_ERROR
func ErrorAttributes(err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{attribute.String(AttrErrorCode, string(apperror.Code(err)))}
}
