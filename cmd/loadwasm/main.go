// Command loadwasm parses a Wasm binary module and prints a summary of
// its type, function, export, and code sections.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/hesforge/wasmloader/arena"
	"github.com/hesforge/wasmloader/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))
)

// exit codes per the loader's external contract: 0 success, 1 usage
// error, 2 parse failure.
const (
	exitOK        = 0
	exitUsage     = 1
	exitParseFail = 2
)

func main() {
	var (
		wasmFile   = flag.String("wasm", "", "path to a Wasm binary module")
		browse     = flag.Bool("browse", false, "launch an interactive export browser after parsing")
		quiet      = flag.Bool("quiet", false, "suppress logging output")
		arenaBytes = flag.Int("arena", 4<<20, "arena capacity in bytes")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: loadwasm -wasm <file.wasm> [-browse] [-arena bytes] [-quiet]")
		os.Exit(exitUsage)
	}

	if !*quiet {
		logger, err := zap.NewDevelopment()
		if err == nil {
			arena.SetLogger(logger)
			defer logger.Sync()
		}
	}

	code := run(*wasmFile, *arenaBytes, *browse)
	os.Exit(code)
}

func run(wasmFile string, arenaBytes int, browse bool) int {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("read %s: %v", wasmFile, err)))
		return exitUsage
	}

	m, a, err := wasm.ParseModule(data, arenaBytes)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("parse %s: %v", wasmFile, err)))
		return exitParseFail
	}
	defer a.Destroy()

	printSummary(wasmFile, m, a)

	if browse {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "not an interactive terminal, skipping -browse")
			return exitOK
		}
		p := tea.NewProgram(newBrowserModel(m))
		if _, err := p.Run(); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("browse: %v", err)))
			return exitParseFail
		}
	}

	return exitOK
}

func printSummary(path string, m *wasm.Module, a *arena.Arena) {
	fmt.Println(titleStyle.Render(path))
	fmt.Println(headingStyle.Render("types"), len(m.Types))
	fmt.Println(headingStyle.Render("functions"), len(m.Funcs))
	fmt.Println(headingStyle.Render("exports"), len(m.Exports))
	fmt.Println(headingStyle.Render("code entries"), len(m.Code))
	fmt.Println(headingStyle.Render("arena used"), fmt.Sprintf("%d / %d bytes", a.Used(), a.Capacity()))

	if len(m.Exports) > 0 {
		fmt.Println()
		fmt.Println(headingStyle.Render("exports:"))
		for _, exp := range m.Exports {
			fmt.Printf("  %s %s%s\n", okStyle.Render(exportKindName(exp.Kind)), trimCString(exp.Name), fmt.Sprintf(" -> idx %d", exp.Idx))
		}
	}
}

func exportKindName(kind byte) string {
	switch kind {
	case wasm.KindFunc:
		return "func"
	case wasm.KindTable:
		return "table"
	case wasm.KindMemory:
		return "memory"
	case wasm.KindGlobal:
		return "global"
	default:
		return "unknown"
	}
}

func trimCString(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == 0 {
		return string(b[:n-1])
	}
	return string(b)
}
