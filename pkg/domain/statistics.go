package domain

import "sort"

// GraphStatistics статистика скелетного графа
type GraphStatistics struct {
	VertexNum       int     `json:"vertex_num"`
	EdgeCount       int     `json:"edge_count"`
	VirtualCount    int     `json:"virtual_count"`
	ZeroWeightEdges int     `json:"zero_weight_edges"`
	MinWeight       int64   `json:"min_weight"`
	MaxWeight       int64   `json:"max_weight"`
	AverageDegree   float64 `json:"average_degree"`
	MaxDegree       int     `json:"max_degree"`
	MinDegree       int     `json:"min_degree"`
	Components      int     `json:"components"`
	IsConnected     bool    `json:"is_connected"`
}

// CalculateGraphStatistics вычисляет статистику графа.
// Ожидает валидный Initializer.
func CalculateGraphStatistics(in *Initializer) *GraphStatistics {
	stats := &GraphStatistics{
		VertexNum:    in.VertexNum,
		EdgeCount:    len(in.WeightedEdges),
		VirtualCount: len(in.VirtualVertices),
	}
	if in.VertexNum == 0 {
		return stats
	}

	degree := make([]int, in.VertexNum)
	for i, e := range in.WeightedEdges {
		degree[e[0]]++
		degree[e[1]]++
		if e[2] == 0 {
			stats.ZeroWeightEdges++
		}
		if i == 0 || e[2] < stats.MinWeight {
			stats.MinWeight = e[2]
		}
		if e[2] > stats.MaxWeight {
			stats.MaxWeight = e[2]
		}
	}

	// Статистика степеней
	stats.MinDegree = degree[0]
	total := 0
	for _, d := range degree {
		total += d
		if d > stats.MaxDegree {
			stats.MaxDegree = d
		}
		if d < stats.MinDegree {
			stats.MinDegree = d
		}
	}
	stats.AverageDegree = float64(total) / float64(in.VertexNum)

	stats.Components = len(ConnectedComponents(in))
	stats.IsConnected = stats.Components == 1
	return stats
}

// adjacency строит списки смежности
func adjacency(in *Initializer) [][]int {
	adj := make([][]int, in.VertexNum)
	for _, e := range in.WeightedEdges {
		a, b := int(e[0]), int(e[1])
		adj[a] = append(adj[a], b)
		if a != b {
			adj[b] = append(adj[b], a)
		}
	}
	return adj
}

// ConnectedComponents находит компоненты связности обходом в ширину.
// Вершины в каждой компоненте и сами компоненты упорядочены по возрастанию.
func ConnectedComponents(in *Initializer) [][]int {
	adj := adjacency(in)
	seen := make([]bool, in.VertexNum)
	var components [][]int

	for start := 0; start < in.VertexNum; start++ {
		if seen[start] {
			continue
		}
		seen[start] = true
		queue := []int{start}
		component := []int{}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			component = append(component, v)
			for _, u := range adj[v] {
				if !seen[u] {
					seen[u] = true
					queue = append(queue, u)
				}
			}
		}
		sort.Ints(component)
		components = append(components, component)
	}
	return components
}

// Reachable возвращает вершины, достижимые из source
func Reachable(in *Initializer, source int) map[int]bool {
	reachable := make(map[int]bool)
	if source < 0 || source >= in.VertexNum {
		return reachable
	}
	adj := adjacency(in)
	reachable[source] = true
	queue := []int{source}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, u := range adj[v] {
			if !reachable[u] {
				reachable[u] = true
				queue = append(queue, u)
			}
		}
	}
	return reachable
}
