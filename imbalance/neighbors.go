package imbalance

import (
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/core/parallel"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// 並列化する最小クエリ数
const neighborsParallelThreshold = 64

// nearestNeighbors returns, for every row of X, the positions of its k
// nearest other rows by Euclidean distance, closest first.
func nearestNeighbors(X *mat.Dense, k int) ([][]int, error) {
	n, _ := X.Dims()
	return neighborsOf(X, lo.Range(n), k)
}

// neighborsOf returns the k nearest rows of X for each query row of X,
// excluding the query row itself. Ties are broken by row position so the
// result is deterministic.
func neighborsOf(X *mat.Dense, queries []int, k int) ([][]int, error) {
	n, _ := X.Dims()
	if k < 1 || k >= n {
		return nil, errors.NewValueErrorf("NearestNeighbors",
			"expected n_neighbors <= n_samples_fit, but n_neighbors = %d, n_samples_fit = %d", k+1, n)
	}

	out := make([][]int, len(queries))
	parallel.ParallelizeWithThreshold(len(queries), neighborsParallelThreshold, func(start, end int) {
		dist := make([]float64, n)
		order := make([]int, n)
		for q := start; q < end; q++ {
			self := queries[q]
			query := X.RawRowView(self)
			for j := 0; j < n; j++ {
				dist[j] = floats.Distance(query, X.RawRowView(j), 2)
				order[j] = j
			}
			sort.SliceStable(order, func(a, b int) bool {
				return dist[order[a]] < dist[order[b]]
			})

			nn := make([]int, 0, k)
			for _, j := range order {
				if j == self {
					continue
				}
				nn = append(nn, j)
				if len(nn) == k {
					break
				}
			}
			out[q] = nn
		}
	})
	return out, nil
}
