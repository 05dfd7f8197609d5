package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/strassen"
)

// REPLConfig holds the settings of an interactive session.
type REPLConfig struct {
	// DefaultAlgo is the initial multiplier; "all" or empty picks the first
	// registered name.
	DefaultAlgo string
	// Timeout bounds every multiplication.
	Timeout time.Duration
	// LeafSize is the initial recursion threshold.
	LeafSize int
	// Seed is the initial operand seed.
	Seed int64
	// Tolerance is the relative difference accepted by "compare".
	Tolerance float64
}

// REPL is an interactive session multiplying random matrices on demand.
type REPL struct {
	config      REPLConfig
	registry    map[string]strassen.Multiplier
	names       []string
	currentAlgo string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a session over the given multipliers.
func NewREPL(registry map[string]strassen.Multiplier, config REPLConfig) *REPL {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	currentAlgo := config.DefaultAlgo
	if (currentAlgo == "" || currentAlgo == "all") && len(names) > 0 {
		currentAlgo = names[0]
	}
	if config.LeafSize <= 0 {
		config.LeafSize = strassen.DefaultLeafSize
	}

	return &REPL{
		config:      config,
		registry:    registry,
		names:       names,
		currentAlgo: currentAlgo,
		in:          os.Stdin,
		out:         os.Stdout,
	}
}

// SetInput replaces the input reader.
func (r *REPL) SetInput(in io.Reader) { r.in = in }

// SetOutput replaces the output writer.
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// Start reads and executes commands until "exit" or EOF.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ColorGreen()+"strassen> "+ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ColorRed(), err, ColorReset())
			return
		}
		if line := strings.TrimSpace(input); line != "" {
			if !r.processCommand(line) {
				return
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s║%s   %sStrassen Matrix Multiplier - Interactive Mode%s          %s║%s\n",
		ColorCyan(), ColorReset(), ColorBold(), ColorReset(), ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ColorCyan(), ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ColorBold(), ColorReset())
	for _, c := range [][2]string{
		{"mul <n>", "Multiply two random n x n matrices with the current algorithm"},
		{"compare <n>", "Run every algorithm on the same n x n operands"},
		{"algo <name>", "Change algorithm (" + strings.Join(r.names, ", ") + ")"},
		{"leaf <n>", "Set the leaf size"},
		{"seed <n>", "Set the operand seed"},
		{"list", "List available algorithms"},
		{"status", "Display current settings"},
		{"help", "Display this help"},
		{"exit / quit", "Exit interactive mode"},
	} {
		fmt.Fprintf(r.out, "  %s%-12s%s - %s\n", ColorYellow(), c[0], ColorReset(), c[1])
	}
}

// processCommand executes one command line. It returns false on exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "mul", "m":
		if n, ok := r.intArg("mul <n>", args); ok {
			r.multiply(n)
		}
	case "compare", "cmp":
		if n, ok := r.intArg("compare <n>", args); ok {
			r.compare(n)
		}
	case "algo", "a":
		r.cmdAlgo(args)
	case "leaf":
		if n, ok := r.intArg("leaf <n>", args); ok {
			r.config.LeafSize = n
			fmt.Fprintf(r.out, "Leaf size set to %s%d%s\n", ColorGreen(), n, ColorReset())
		}
	case "seed":
		if len(args) == 0 {
			fmt.Fprintf(r.out, "%sUsage: seed <n>%s\n", ColorRed(), ColorReset())
			break
		}
		seed, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(r.out, "%sInvalid seed: %s%s\n", ColorRed(), args[0], ColorReset())
			break
		}
		r.config.Seed = seed
		fmt.Fprintf(r.out, "Seed set to %s%d%s\n", ColorGreen(), seed, ColorReset())
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ColorGreen(), ColorReset())
		return false
	default:
		if n, err := strconv.Atoi(cmd); err == nil {
			r.multiply(n)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ColorRed(), cmd, ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ColorYellow(), ColorReset())
		}
	}
	return true
}

// intArg parses the first argument as a positive integer.
func (r *REPL) intArg(usage string, args []string) (int, bool) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: %s%s\n", ColorRed(), usage, ColorReset())
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ColorRed(), args[0], ColorReset())
		return 0, false
	}
	return n, true
}

// operands builds the n x n operands of the current seed.
func (r *REPL) operands(n int) (*matrix.Matrix, *matrix.Matrix, error) {
	rng := rand.New(rand.NewSource(r.config.Seed))
	a, err := matrix.Random(n, rng)
	if err != nil {
		return nil, nil, err
	}
	b, err := matrix.Random(n, rng)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (r *REPL) options() strassen.Options {
	return strassen.Options{LeafSize: r.config.LeafSize}
}

func (r *REPL) multiply(n int) {
	m, ok := r.registry[r.currentAlgo]
	if !ok {
		fmt.Fprintf(r.out, "%sAlgorithm not found: %s%s\n", ColorRed(), r.currentAlgo, ColorReset())
		return
	}
	a, b, err := r.operands(n)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	fmt.Fprintf(r.out, "Multiplying %s%d x %d%s matrices with %s%s%s...\n",
		ColorMagenta(), n, n, ColorReset(), ColorCyan(), m.Name(), ColorReset())

	progressChan := make(chan strassen.ProgressUpdate, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, r.out)

	start := time.Now()
	result, err := m.Multiply(ctx, progressChan, 0, a, b, r.options())
	duration := time.Since(start)
	close(progressChan)
	wg.Wait()

	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	fmt.Fprintf(r.out, "\n%sResult:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Time:   %s%s%s\n", ColorGreen(), FormatExecutionDuration(duration), ColorReset())
	fmt.Fprintf(r.out, "  GFLOPS: %s%.3f%s\n", ColorMagenta(), Gflops(n, duration), ColorReset())
	fmt.Fprintf(r.out, "  Trace:  %s%.10g%s\n", ColorCyan(), matrix.Trace(result), ColorReset())
	fmt.Fprintf(r.out, "  Sum:    %s%.10g%s\n", ColorCyan(), matrix.Sum(result), ColorReset())
	if n <= PreviewLimit {
		FormatMatrix(r.out, result, n)
	}
	fmt.Fprintln(r.out)
}

// compare runs every multiplier on the same operands and checks them
// against the first successful product.
func (r *REPL) compare(n int) {
	a, b, err := r.operands(n)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	fmt.Fprintf(r.out, "\n%sComparison for %d x %d:%s\n", ColorBold(), n, n, ColorReset())
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n", ColorCyan(), ColorReset())

	var reference *matrix.Matrix
	for _, name := range r.names {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
		start := time.Now()
		result, err := r.registry[name].Multiply(ctx, nil, 0, a, b, r.options())
		duration := time.Since(start)
		cancel()

		if err != nil {
			fmt.Fprintf(r.out, "  %s%-10s%s: %sError - %v%s\n",
				ColorYellow(), name, ColorReset(), ColorRed(), err, ColorReset())
			continue
		}
		if reference == nil {
			reference = result
		}

		status := ColorGreen() + "✓" + ColorReset()
		diff, _ := matrix.MaxAbsDiff(result, reference)
		if diff > RelativeBound(reference, r.config.Tolerance) {
			status = fmt.Sprintf("%s✗ max diff %.3g%s", ColorRed(), diff, ColorReset())
		}
		fmt.Fprintf(r.out, "  %s%-10s%s: %s%12s%s %s\n",
			ColorYellow(), name, ColorReset(),
			ColorCyan(), FormatExecutionDuration(duration), ColorReset(),
			status)
	}
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n\n", ColorCyan(), ColorReset())
}

// RelativeBound scales tolerance by the largest magnitude of reference, with
// a floor of tolerance itself for all-zero products.
func RelativeBound(reference *matrix.Matrix, tolerance float64) float64 {
	scale := matrix.MaxAbs(reference)
	if scale < 1 {
		scale = 1
	}
	return tolerance * scale
}

func (r *REPL) cmdAlgo(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: algo <name>%s\n", ColorRed(), ColorReset())
		fmt.Fprintf(r.out, "Available algorithms: %s\n", strings.Join(r.names, ", "))
		return
	}
	name := strings.ToLower(args[0])
	m, ok := r.registry[name]
	if !ok {
		fmt.Fprintf(r.out, "%sUnknown algorithm: %s%s\n", ColorRed(), name, ColorReset())
		fmt.Fprintf(r.out, "Available algorithms: %s\n", strings.Join(r.names, ", "))
		return
	}
	r.currentAlgo = name
	fmt.Fprintf(r.out, "Algorithm changed to: %s%s%s\n", ColorGreen(), m.Name(), ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable algorithms:%s\n", ColorBold(), ColorReset())
	for _, name := range r.names {
		marker := "  "
		if name == r.currentAlgo {
			marker = ColorGreen() + "► " + ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s - %s\n", marker, ColorYellow(), name, ColorReset(), r.registry[name].Name())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent settings:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Algorithm:  %s%s%s\n", ColorCyan(), r.currentAlgo, ColorReset())
	fmt.Fprintf(r.out, "  Leaf size:  %s%d%s\n", ColorCyan(), r.config.LeafSize, ColorReset())
	fmt.Fprintf(r.out, "  Seed:       %s%d%s\n", ColorCyan(), r.config.Seed, ColorReset())
	fmt.Fprintf(r.out, "  Timeout:    %s%s%s\n", ColorCyan(), r.config.Timeout, ColorReset())
	fmt.Fprintf(r.out, "  Tolerance:  %s%g%s\n", ColorCyan(), r.config.Tolerance, ColorReset())
	fmt.Fprintln(r.out)
}
