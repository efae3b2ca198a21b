package sampler

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/synthfin/synthfin/schema"
)

// ErrBadDistribution marks a draw request with invalid or missing
// distribution parameters. It is fatal: the run aborts before any row is
// emitted with a value from a misconfigured distribution.
var ErrBadDistribution = errors.New("bad distribution")

// Sample is one raw per-column draw. Clipped tells the constraint enforcer
// that the value was clamped into [min, max] rather than drawn inside it,
// so heavy-tailed outliers are never silently swallowed.
type Sample struct {
	Value   float64
	Clipped bool
}

type drawFunc func(spec schema.ColumnSpec, rng *rand.Rand) (float64, error)

// Closed dispatch table; extending the sampler means adding a variant here.
var distributions = map[string]drawFunc{
	"uniform":        drawUniform,
	"gamma":          drawGamma,
	"discrete_range": drawDiscreteRange,
}

// Numeric draws one value for a numerical or datetime column from its
// declared distribution, reflects negative draws for positive_only columns,
// rounds discrete columns and clamps the result into [min, max].
func Numeric(spec schema.ColumnSpec, rng *rand.Rand) (Sample, error) {
	name := spec.Constraints.Distribution
	if name == "" {
		name = "uniform"
	}
	draw, ok := distributions[name]
	if !ok {
		return Sample{}, fmt.Errorf("%w: column %q: unknown distribution %q", ErrBadDistribution, spec.Name, name)
	}

	v, err := draw(spec, rng)
	if err != nil {
		return Sample{}, err
	}

	// Reflection instead of rejection: heavy-tailed distributions (gamma
	// with shape < 1) would stall a resample loop near zero.
	if spec.Constraints.PositiveOnly && v < 0 {
		v = -v
	}
	if spec.Constraints.Discrete {
		v = math.Round(v)
	}
	return clamp(spec, v), nil
}

// Categorical draws uniformly from the column's declared category set.
func Categorical(spec schema.ColumnSpec, rng *rand.Rand) (string, error) {
	cats := spec.Constraints.Categories
	if len(cats) == 0 {
		return "", fmt.Errorf("%w: column %q: categorical column has no categories", ErrBadDistribution, spec.Name)
	}
	return cats[rng.Intn(len(cats))], nil
}

func clamp(spec schema.ColumnSpec, v float64) Sample {
	s := Sample{Value: v}
	if min := spec.Constraints.Min; min != nil && s.Value < *min {
		s.Value = *min
		s.Clipped = true
	}
	if max := spec.Constraints.Max; max != nil && s.Value > *max {
		s.Value = *max
		s.Clipped = true
	}
	return s
}

func drawUniform(spec schema.ColumnSpec, rng *rand.Rand) (float64, error) {
	c := spec.Constraints
	if c.Min == nil || c.Max == nil {
		return 0, fmt.Errorf("%w: column %q: uniform requires min and max", ErrBadDistribution, spec.Name)
	}
	if *c.Min > *c.Max {
		return 0, fmt.Errorf("%w: column %q: min %v greater than max %v", ErrBadDistribution, spec.Name, *c.Min, *c.Max)
	}
	return *c.Min + rng.Float64()*(*c.Max-*c.Min), nil
}

func drawDiscreteRange(spec schema.ColumnSpec, rng *rand.Rand) (float64, error) {
	c := spec.Constraints
	if c.Min == nil || c.Max == nil {
		return 0, fmt.Errorf("%w: column %q: discrete_range requires min and max", ErrBadDistribution, spec.Name)
	}
	lo, hi := int64(math.Ceil(*c.Min)), int64(math.Floor(*c.Max))
	if lo > hi {
		return 0, fmt.Errorf("%w: column %q: empty discrete range [%v, %v]", ErrBadDistribution, spec.Name, *c.Min, *c.Max)
	}
	return float64(lo + rng.Int63n(hi-lo+1)), nil
}

func drawGamma(spec schema.ColumnSpec, rng *rand.Rand) (float64, error) {
	params := spec.Constraints.DistributionParameters
	shape, hasShape := params["shape"]
	scale, hasScale := params["scale"]
	if !hasShape || !hasScale {
		return 0, fmt.Errorf("%w: column %q: gamma requires shape and scale parameters", ErrBadDistribution, spec.Name)
	}
	if shape <= 0 || scale <= 0 {
		return 0, fmt.Errorf("%w: column %q: gamma shape and scale must be positive (shape=%v scale=%v)",
			ErrBadDistribution, spec.Name, shape, scale)
	}
	return gammaVariate(shape, scale, rng), nil
}

// gammaVariate draws from Gamma(shape, scale) using the Marsaglia-Tsang
// squeeze method. For shape < 1 the draw is boosted through
// Gamma(shape+1) * U^(1/shape), which keeps the heavy mass near zero
// without a rejection loop.
func gammaVariate(shape, scale float64, rng *rand.Rand) float64 {
	if shape < 1 {
		u := rng.Float64()
		return gammaVariate(shape+1, scale, rng) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}
