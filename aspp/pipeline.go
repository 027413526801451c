package aspp

import (
	"fmt"
	"strings"

	"github.com/lucasjlepore/unevenness-grade/signal"
)

// RawLabel names the empty operation chain inside a canonical id.
const RawLabel = "raw"

// Pipeline is an ordered chain of operations followed by one aggregation.
type Pipeline struct {
	operationIDs []string
	operations   []signal.Operation
	aggregation  signal.Aggregation
	id           string
}

// New parses the operation ids ("avg-5", "bnd-10/40", ...) and the
// aggregation name. Unknown kinds, names and bad parameters fail here.
func New(operationIDs []string, aggregationID string) (*Pipeline, error) {
	agg, err := signal.ParseAggregation(aggregationID)
	if err != nil {
		return nil, err
	}
	ops := make([]signal.Operation, 0, len(operationIDs))
	for _, id := range operationIDs {
		op, err := signal.ParseOperation(id)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	p := &Pipeline{
		operationIDs: append([]string(nil), operationIDs...),
		operations:   ops,
		aggregation:  agg,
	}
	p.id = canonicalID(ops, agg)
	return p, nil
}

// MustNew is New for configurations known to be valid.
func MustNew(operationIDs []string, aggregationID string) *Pipeline {
	p, err := New(operationIDs, aggregationID)
	if err != nil {
		panic(err)
	}
	return p
}

func canonicalID(ops []signal.Operation, agg signal.Aggregation) string {
	var b strings.Builder
	for _, op := range ops {
		b.WriteString(op.String())
	}
	if b.Len() == 0 {
		b.WriteString(RawLabel)
	}
	b.WriteByte('-')
	b.WriteString(agg.String())
	return b.String()
}

// CanonicalID is the order-sensitive feature name, e.g. "avg3bnd10/40-RMS"
// or "raw-STD".
func (p *Pipeline) CanonicalID() string { return p.id }

func (p *Pipeline) String() string { return p.id }

// OperationIDs returns the operation identifiers the pipeline was built from.
func (p *Pipeline) OperationIDs() []string { return append([]string(nil), p.operationIDs...) }

// Operations returns the parsed chain.
func (p *Pipeline) Operations() []signal.Operation {
	return append([]signal.Operation(nil), p.operations...)
}

// Aggregation returns the final reducer.
func (p *Pipeline) Aggregation() signal.Aggregation { return p.aggregation }

// Complexity is the number of chained operations.
func (p *Pipeline) Complexity() int { return len(p.operations) }

// Evaluate runs the chain on one trace and reduces the result.
func (p *Pipeline) Evaluate(s signal.Signal) float64 {
	for _, op := range p.operations {
		s = op.Apply(s)
	}
	return p.aggregation.Apply(s)
}

// EvaluateSignals evaluates already decoded traces in order.
func (p *Pipeline) EvaluateSignals(signals []signal.Signal) []float64 {
	out := make([]float64, len(signals))
	for i, s := range signals {
		out[i] = p.Evaluate(s)
	}
	return out
}

// EvaluateRows decodes and evaluates nullable raw trace cells in order.
// Missing cells use the zero fallback; malformed cells abort.
func (p *Pipeline) EvaluateRows(raw []*string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, cell := range raw {
		s, err := signal.DecodeOptional(cell)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s row %d: %w", p.id, i, err)
		}
		out[i] = p.Evaluate(s)
	}
	return out, nil
}
