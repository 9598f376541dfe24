package correlation

import (
	"hash/fnv"
	"math"
)

// clusterNoise labels points that belong to no cluster; they survive
// post-processing untouched.
const clusterNoise = -1

// featureVector positions a match in cluster space: confidence plus the
// normalized hashes of its type and counterpart alert ID.
func featureVector(m match) [3]float64 {
	return [3]float64{
		m.confidence,
		normHash(string(m.corrType)),
		normHash(m.alertID),
	}
}

// normHash maps a string into [0,1] via FNV-1a
func normHash(s string) float64 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return float64(h.Sum32()) / float64(math.MaxUint32)
}

// dbscan runs density-based clustering over the matches and returns one
// cluster label per match; clusterNoise marks unclustered points.
func dbscan(matches []match, eps float64, minPoints int) []int {
	n := len(matches)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = clusterNoise
	}

	points := make([][3]float64, n)
	for i, m := range matches {
		points[i] = featureVector(m)
	}

	visited := make([]bool, n)
	cluster := 0

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPoints {
			continue
		}

		labels[i] = cluster
		for k := 0; k < len(neighbors); k++ {
			j := neighbors[k]
			if !visited[j] {
				visited[j] = true
				next := regionQuery(points, j, eps)
				if len(next) >= minPoints {
					neighbors = append(neighbors, next...)
				}
			}
			if labels[j] == clusterNoise {
				labels[j] = cluster
			}
		}
		cluster++
	}

	return labels
}

// regionQuery returns the indices of all points within eps of point i,
// including i itself.
func regionQuery(points [][3]float64, i int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if euclidean(points[i], points[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

func euclidean(a, b [3]float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// reduceClusters keeps the highest-confidence match per cluster and every
// noise point as-is.
func reduceClusters(matches []match, labels []int) []match {
	best := make(map[int]int) // cluster label -> index of best match
	var out []match

	for i, m := range matches {
		label := labels[i]
		if label == clusterNoise {
			out = append(out, m)
			continue
		}
		if prev, ok := best[label]; !ok || m.confidence > matches[prev].confidence {
			best[label] = i
		}
	}

	for _, i := range sortedValues(best) {
		out = append(out, matches[i])
	}
	return out
}

// sortedValues returns map values ordered by key for deterministic output
func sortedValues(m map[int]int) []int {
	max := -1
	for k := range m {
		if k > max {
			max = k
		}
	}
	var out []int
	for k := 0; k <= max; k++ {
		if v, ok := m[k]; ok {
			out = append(out, v)
		}
	}
	return out
}
