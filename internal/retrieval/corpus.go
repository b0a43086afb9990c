package retrieval

import "fmt"

type fragmentRef struct {
	resumeID string
	chunkID  int
}

// Corpus is the ordered fragment sequence with its aligned embedding matrix.
// Row i of the matrix is the embedding of fragment i. A Corpus is immutable
// once built; retrievers keep a pointer to it and never copy it.
type Corpus struct {
	fragments []Fragment
	vectors   [][]float32
	dim       int
	byRef     map[fragmentRef]int
	byResume  map[string][]int
}

// NewCorpus validates that vectors align with fragments and builds lookup indexes.
// Vectors may be nil for a lexical-only corpus.
func NewCorpus(fragments []Fragment, vectors [][]float32) (*Corpus, error) {
	dim, err := checkMatrix(len(fragments), vectors)
	if err != nil {
		return nil, err
	}

	c := &Corpus{
		fragments: fragments,
		vectors:   vectors,
		dim:       dim,
		byRef:     make(map[fragmentRef]int, len(fragments)),
		byResume:  make(map[string][]int),
	}
	for i, f := range fragments {
		ref := fragmentRef{resumeID: f.ResumeID, chunkID: f.ChunkID}
		if _, seen := c.byRef[ref]; !seen {
			c.byRef[ref] = i
		}
		c.byResume[f.ResumeID] = append(c.byResume[f.ResumeID], i)
	}
	return c, nil
}

// checkMatrix returns the row width when the matrix has exactly rows rows of
// equal length. A nil matrix is accepted and has width 0.
func checkMatrix(rows int, vectors [][]float32) (int, error) {
	if vectors == nil {
		return 0, nil
	}
	if len(vectors) != rows {
		return 0, fmt.Errorf("%w: %d vectors for %d fragments", ErrDimensionMismatch, len(vectors), rows)
	}
	if rows == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: empty embedding rows", ErrDimensionMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return dim, nil
}

// Len returns the number of fragments.
func (c *Corpus) Len() int { return len(c.fragments) }

// Dim returns the embedding width, or 0 when the corpus has no vectors.
func (c *Corpus) Dim() int { return c.dim }

// Fragment returns the fragment at corpus position i.
func (c *Corpus) Fragment(i int) Fragment { return c.fragments[i] }

// Fragments returns the fragment sequence. Callers must not modify it.
func (c *Corpus) Fragments() []Fragment { return c.fragments }

// Vectors returns the embedding matrix. Callers must not modify it.
func (c *Corpus) Vectors() [][]float32 { return c.vectors }

// HasVectors reports whether the corpus carries an embedding matrix.
func (c *Corpus) HasVectors() bool { return c.vectors != nil }

// Lookup finds the first fragment with the given resume and chunk ids.
func (c *Corpus) Lookup(resumeID string, chunkID int) (Fragment, bool) {
	i, ok := c.byRef[fragmentRef{resumeID: resumeID, chunkID: chunkID}]
	if !ok {
		return Fragment{}, false
	}
	return c.fragments[i], true
}

// ResumeFragments returns every fragment of a resume in corpus order.
func (c *Corpus) ResumeFragments(resumeID string) []Fragment {
	idx := c.byResume[resumeID]
	out := make([]Fragment, len(idx))
	for j, i := range idx {
		out[j] = c.fragments[i]
	}
	return out
}

// ResumeIDs returns the distinct resume ids in first-seen corpus order.
func (c *Corpus) ResumeIDs() []string {
	seen := make(map[string]struct{}, len(c.byResume))
	ids := make([]string, 0, len(c.byResume))
	for _, f := range c.fragments {
		if _, ok := seen[f.ResumeID]; ok {
			continue
		}
		seen[f.ResumeID] = struct{}{}
		ids = append(ids, f.ResumeID)
	}
	return ids
}
