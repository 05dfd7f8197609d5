package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

// GoldenData represents a single test case in the golden file.
type GoldenData struct {
	Size     int       `json:"size"`
	LeafSize int       `json:"leaf_size"`
	A        []float64 `json:"a"`
	B        []float64 `json:"b"`
	C        []float64 `json:"c"`
}

func main() {
	outputDir := flag.String("out", "internal/strassen/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "strassen_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Each size is paired with a leaf size that exercises at least one
	// level of recursion. Operands are integer-valued and deterministic, so
	// the exact product is reproducible on any machine.
	targets := []struct{ size, leaf int }{
		{2, 1}, {4, 2}, {8, 4}, {16, 4}, {32, 8},
	}

	var data []GoldenData

	fmt.Println("Generating golden data...")

	for _, tc := range targets {
		a := fill(tc.size, func(i, j int) int64 { return int64((i*7+j*3)%11) - 5 })
		b := fill(tc.size, func(i, j int) int64 { return int64((i*5+j*2+1)%13) - 6 })
		data = append(data, GoldenData{
			Size:     tc.size,
			LeafSize: tc.leaf,
			A:        toFloats(a),
			B:        toFloats(b),
			C:        toFloats(exactProduct(tc.size, a, b)),
		})
		fmt.Printf("Generated %dx%d product\n", tc.size, tc.size)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
}

func fill(n int, f func(i, j int) int64) []*big.Int {
	out := make([]*big.Int, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*n+j] = big.NewInt(f(i, j))
		}
	}
	return out
}

// exactProduct multiplies with math/big so the oracle never rounds.
func exactProduct(n int, a, b []*big.Int) []*big.Int {
	c := make([]*big.Int, n*n)
	term := new(big.Int)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := new(big.Int)
			for p := 0; p < n; p++ {
				sum.Add(sum, term.Mul(a[i*n+p], b[p*n+j]))
			}
			c[i*n+j] = sum
		}
	}
	return c
}

func toFloats(values []*big.Int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v.Int64())
	}
	return out
}
