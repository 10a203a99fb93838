package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"

	"qecgraph/pkg/domain"
)

// GraphHash вычисляет хеш графа для использования как ключ кэша.
// Учитываются только число вершин и итоговые веса рёбер: при повторе
// ребра побеждает последнее, порядок и направление не важны.
// Виртуальные вершины на расстояния не влияют и в хеш не входят.
func GraphHash(in *domain.Initializer) string {
	if in == nil {
		return ""
	}

	data := graphToCanonical(in)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// graphToCanonical строит детерминированное представление графа
func graphToCanonical(in *domain.Initializer) []byte {
	weights := make(map[[2]int64]int64, len(in.WeightedEdges))
	for _, e := range in.WeightedEdges {
		a, b := e[0], e[1]
		if a > b {
			a, b = b, a
		}
		weights[[2]int64{a, b}] = e[2]
	}

	keys := make([][2]int64, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(x, y [2]int64) int {
		if x[0] != y[0] {
			return int(x[0] - y[0])
		}
		return int(x[1] - y[1])
	})

	buf := make([]byte, 0, 16+len(keys)*24)
	buf = append(buf, "v:"...)
	buf = strconv.AppendInt(buf, int64(in.VertexNum), 10)
	buf = append(buf, ';')
	for _, k := range keys {
		buf = append(buf, "e:"...)
		buf = strconv.AppendInt(buf, k[0], 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, k[1], 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, weights[k], 10)
		buf = append(buf, ';')
	}
	return buf
}

// BuildPathKey строит ключ кэша для пути a -> b
func BuildPathKey(graphHash string, a, b int) string {
	return fmt.Sprintf("path:%s:%d:%d", graphHash, a, b)
}

// BuildGraphPattern строит шаблон всех путей графа
func BuildGraphPattern(graphHash string) string {
	return "path:" + graphHash + ":*"
}
