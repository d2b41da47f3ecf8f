package surface_test

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-rf/stats/surface"
)

func ExampleCalculate() {
	m := mat.NewDense(2, 2, []float64{0.1, math.NaN(), 0.9, 0.3})
	s := surface.Calculate(m)
	fmt.Printf("valid=%d max=%.1f at (%d,%d)\n", s.Valid, s.Max, s.MaxRow, s.MaxCol)

	// Output:
	// valid=3 max=0.9 at (1,0)
}
