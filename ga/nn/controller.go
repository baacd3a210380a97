package nn

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch is returned when a controller is fed the wrong number of inputs,
// or when two controllers with different layer sizes are combined.
var ErrShapeMismatch = errors.New("shape mismatch")

// Shape describes the layer sizes of a single-hidden-layer network.
type Shape struct {
	Inputs  int
	Hidden  int
	Outputs int
}

// Validate reports an error if any layer size is not positive.
func (s Shape) Validate() error {
	if s.Inputs <= 0 {
		return fmt.Errorf("input size must be positive, got %d", s.Inputs)
	}
	if s.Hidden <= 0 {
		return fmt.Errorf("hidden size must be positive, got %d", s.Hidden)
	}
	if s.Outputs <= 0 {
		return fmt.Errorf("output size must be positive, got %d", s.Outputs)
	}
	return nil
}

// NumParams returns the total number of weights and biases of a network with this shape.
func (s Shape) NumParams() int {
	return s.Inputs*s.Hidden + s.Hidden + s.Hidden*s.Outputs + s.Outputs
}

func (s Shape) String() string {
	return fmt.Sprintf("%d-%d-%d", s.Inputs, s.Hidden, s.Outputs)
}

// Controller is a fixed-topology feedforward network with one hidden layer.
//
// Weights are stored as W1 (Inputs x Hidden) and W2 (Hidden x Outputs), so that
// hidden unit j receives sum_i x[i]*W1[i][j]. Each controller exclusively owns its
// parameter storage; use Clone to obtain an independent copy.
type Controller struct {
	shape Shape
	w1    *mat.Dense
	b1    *mat.VecDense
	w2    *mat.Dense
	b2    *mat.VecDense
}

// NewController creates a controller with every weight and bias drawn uniformly from [-1, 1].
// Parameters are drawn in the order W1, b1, W2, b2 (row-major), so a seeded rng
// always yields the same network.
func NewController(shape Shape, rng *rand.Rand) (*Controller, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	c := newZeroController(shape)
	for _, buf := range c.Params() {
		for i := range buf {
			buf[i] = rng.Float64()*2 - 1
		}
	}
	return c, nil
}

// NewControllerFromParams builds a controller from explicit row-major parameter slices.
// The slices are copied.
func NewControllerFromParams(shape Shape, w1, b1, w2, b2 []float64) (*Controller, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	c := newZeroController(shape)
	src := [][]float64{w1, b1, w2, b2}
	for i, dst := range c.Params() {
		if len(src[i]) != len(dst) {
			return nil, fmt.Errorf("%w: parameter block %d has %d values, want %d", ErrShapeMismatch, i, len(src[i]), len(dst))
		}
		copy(dst, src[i])
	}
	return c, nil
}

func newZeroController(shape Shape) *Controller {
	return &Controller{
		shape: shape,
		w1:    mat.NewDense(shape.Inputs, shape.Hidden, nil),
		b1:    mat.NewVecDense(shape.Hidden, nil),
		w2:    mat.NewDense(shape.Hidden, shape.Outputs, nil),
		b2:    mat.NewVecDense(shape.Outputs, nil),
	}
}

// Shape returns the layer sizes of the controller.
func (c *Controller) Shape() Shape {
	return c.shape
}

// Forward computes the network's output for a given input vector.
// Every output lies strictly inside (0, 1). The controller is not modified.
func (c *Controller) Forward(inputs []float64) ([]float64, error) {
	if len(inputs) != c.shape.Inputs {
		return nil, fmt.Errorf("%w: got %d inputs, network expects %d", ErrShapeMismatch, len(inputs), c.shape.Inputs)
	}

	// Copy the inputs so the caller's slice is never aliased by gonum.
	x := mat.NewVecDense(len(inputs), append([]float64(nil), inputs...))

	hidden := mat.NewVecDense(c.shape.Hidden, nil)
	hidden.MulVec(c.w1.T(), x)
	hidden.AddVec(hidden, c.b1)
	squash(hidden)

	out := mat.NewVecDense(c.shape.Outputs, nil)
	out.MulVec(c.w2.T(), hidden)
	out.AddVec(out, c.b2)
	squash(out)

	outputs := make([]float64, c.shape.Outputs)
	copy(outputs, out.RawVector().Data)
	return outputs, nil
}

func squash(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		v.SetVec(i, Sigmoid(v.AtVec(i)))
	}
}

// Params returns the flat backing buffers of W1, b1, W2 and b2, in that order.
// The slices alias the controller's storage: only the owner of a controller that is
// not under evaluation may write through them.
func (c *Controller) Params() [][]float64 {
	return [][]float64{
		c.w1.RawMatrix().Data,
		c.b1.RawVector().Data,
		c.w2.RawMatrix().Data,
		c.b2.RawVector().Data,
	}
}

// Clone returns a deep copy that shares no storage with c.
func (c *Controller) Clone() *Controller {
	return &Controller{
		shape: c.shape,
		w1:    mat.DenseCopyOf(c.w1),
		b1:    mat.VecDenseCopyOf(c.b1),
		w2:    mat.DenseCopyOf(c.w2),
		b2:    mat.VecDenseCopyOf(c.b2),
	}
}

// Equal reports whether both controllers have the same shape and identical parameters.
func (c *Controller) Equal(other *Controller) bool {
	if other == nil || c.shape != other.shape {
		return false
	}
	return mat.Equal(c.w1, other.w1) &&
		mat.Equal(c.b1, other.b1) &&
		mat.Equal(c.w2, other.w2) &&
		mat.Equal(c.b2, other.b2)
}

// SameShape returns an error wrapping ErrShapeMismatch if a and b differ in layer sizes.
func SameShape(a, b *Controller) error {
	if a.shape != b.shape {
		return fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, a.shape, b.shape)
	}
	return nil
}
