package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-rf/rf/core"
)

func ExampleSignedNthRoot() {
	r := core.SignedNthRoot(-27, 3)
	fmt.Printf("%.1f %.1f\n", r, core.SignedNthPower(r, 3))

	// Output:
	// -3.0 -27.0
}
