package domain

// IntentSignals is the structured reading of a free-text query. Derived
// once per request and never mutated afterwards.
type IntentSignals struct {
	Category Category
	MaxPrice *float64
	Tags     []string
}

// Empty reports whether no hint was extracted at all; the graph resolver
// is only consulted when at least one hint is present.
func (s IntentSignals) Empty() bool {
	return s.Category == CategoryNone && s.MaxPrice == nil && len(s.Tags) == 0
}

// ProductPayload is the denormalized product snapshot stored alongside
// each vector point.
type ProductPayload struct {
	Title       string
	Category    string
	Price       *float64
	Description string
	ImageURL    string
	ProductURL  string
	ChunkText   string
}

// VectorHit is one scored match from the vector store. HasProduct is
// false when the point payload carried no product id; the aggregator
// skips such hits.
type VectorHit struct {
	ProductID  int64
	HasProduct bool
	Score      float64
	Payload    ProductPayload
}

// GraphSignal is the outcome of the best-effort knowledge-graph lookup.
// A degraded lookup behaves exactly like an empty one, but the branch is
// explicit so callers can observe and test it.
type GraphSignal struct {
	Candidates map[int64]struct{}
	Degraded   bool
}

func (s GraphSignal) Empty() bool { return len(s.Candidates) == 0 }

func (s GraphSignal) Contains(id int64) bool {
	_, ok := s.Candidates[id]
	return ok
}

// RankedResult is one entry of the final response. Score is the
// post-rerank final score (vector base score plus mention bonus).
type RankedResult struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	ProductURL  string   `json:"product_url"`
	Score       float64  `json:"score"`
}

// SearchStats captures per-request pipeline observations for metrics.
type SearchStats struct {
	VectorHits         int
	Candidates         int
	GraphCandidates    int
	GraphFilterApplied bool
	GraphDegraded      bool
	AnswerDegraded     bool
}

type SearchResponse struct {
	Answer  string         `json:"answer"`
	Results []RankedResult `json:"results"`

	Stats SearchStats `json:"-"`
}
