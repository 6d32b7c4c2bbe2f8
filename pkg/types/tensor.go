package types

import "fmt"

// Tensor is a minimal dense float64 tensor: just enough structure for workers
// to move numeric payloads around and answer shape queries. Anything richer
// (dtypes, strides, device placement) belongs to the compute layer, not here.
type Tensor struct {
	Shape Shape
	Data  []float64
}

// NewTensor builds a tensor and validates that data matches the shape.
func NewTensor(shape Shape, data []float64) (*Tensor, error) {
	if want := shape.Elems(); int64(len(data)) != want {
		return nil, fmt.Errorf("tensor: shape %s wants %d elements, got %d", shape, want, len(data))
	}
	return &Tensor{Shape: shape, Data: data}, nil
}

// Scalar wraps a single value as a rank-0 tensor.
func Scalar(v float64) *Tensor {
	return &Tensor{Shape: Shape{}, Data: []float64{v}}
}

// Equal reports element-wise equality including shape.
func (t *Tensor) Equal(o *Tensor) bool {
	if o == nil {
		return t == nil
	}
	if !t.Shape.Equal(o.Shape) || len(t.Data) != len(o.Data) {
		return false
	}
	for i := range t.Data {
		if t.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

func (t *Tensor) String() string {
	if len(t.Data) <= 8 {
		return fmt.Sprintf("Tensor%s%v", t.Shape, t.Data)
	}
	return fmt.Sprintf("Tensor%s[%d elems]", t.Shape, len(t.Data))
}
