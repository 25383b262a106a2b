package vectorspace

// Vector is a sparse vector with strictly increasing column indices.
type Vector struct {
	Indices []int
	Values  []float64
}

// NNZ returns the number of stored entries.
func (v Vector) NNZ() int {
	return len(v.Indices)
}

// Dot returns the inner product of v and o. For L2-normalized vectors this is
// their cosine similarity.
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

type cell struct {
	row    int
	weight float64
}

// Matrix is a read-only row collection with a column-major lookup, so one
// vector can be scored against every row without touching empty columns.
type Matrix struct {
	rows    []Vector
	columns map[int][]cell
}

// NewMatrix indexes rows. The slice is retained, not copied.
func NewMatrix(rows []Vector) *Matrix {
	m := &Matrix{rows: rows, columns: make(map[int][]cell)}
	for r, row := range rows {
		for k, col := range row.Indices {
			m.columns[col] = append(m.columns[col], cell{row: r, weight: row.Values[k]})
		}
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	return len(m.rows)
}

// Row returns row r.
func (m *Matrix) Row(r int) Vector {
	return m.rows[r]
}

// Similarities writes the dot product of v with every row into dst and returns
// it. dst is reallocated when shorter than the row count. Accumulation order
// depends only on v and the matrix, so results are reproducible.
func (m *Matrix) Similarities(v Vector, dst []float64) []float64 {
	if cap(dst) < len(m.rows) {
		dst = make([]float64, len(m.rows))
	}
	dst = dst[:len(m.rows)]
	for i := range dst {
		dst[i] = 0
	}
	for k, col := range v.Indices {
		w := v.Values[k]
		for _, c := range m.columns[col] {
			dst[c.row] += w * c.weight
		}
	}
	return dst
}
