package analyzer

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"crack-go/internal/models"
)

// StubRecommendation is the advice every stub result carries.
const StubRecommendation = "Based on the analysis, this crack requires monitoring. Consider professional inspection if it grows."

// StubAnalyzer fabricates measurements without looking at the image.
// It stands in until a real detector is plugged in.
type StubAnalyzer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStubAnalyzer uses rng, or a time-seeded generator when rng is nil.
func NewStubAnalyzer(rng *rand.Rand) *StubAnalyzer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &StubAnalyzer{rng: rng}
}

// Analyze returns length in [10,110), width in [0.5,5.5), depth in [2,22)
// millimetres, a uniformly chosen severity and confidence in [0.7,1.0).
func (a *StubAnalyzer) Analyze(ctx context.Context, image []byte, contentType string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return &Result{
		LengthMM:       a.rng.Float64()*100 + 10,
		WidthMM:        a.rng.Float64()*5 + 0.5,
		DepthMM:        a.rng.Float64()*20 + 2,
		Severity:       models.Severities[a.rng.IntN(len(models.Severities))],
		Recommendation: StubRecommendation,
		Confidence:     a.rng.Float64()*0.3 + 0.7,
	}, nil
}
