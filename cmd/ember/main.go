// Command ember is the scripting language's CLI: run a .em file, or drop
// into a line-buffered REPL when invoked with no arguments. Grounded on
// estevaofon-noxy/cmd/noxy/main.go's flag parsing and REPL loop shape.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/emberlang/ember/internal/ast"
	"github.com/emberlang/ember/internal/compiler"
	"github.com/emberlang/ember/internal/lexer"
	"github.com/emberlang/ember/internal/parser"
	"github.com/emberlang/ember/internal/stdlib"
	"github.com/emberlang/ember/internal/value"
	"github.com/emberlang/ember/internal/vm"
)

const version = "ember 0.1.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	showDisasm := flag.Bool("disassembly", false, "print bytecode disassembly before running")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [--disassembly] [--version] [script.em]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return
		}
		os.Exit(64)
	}

	if *showVersion {
		fmt.Println(version)
		return
	}

	args := flag.Args()
	if len(args) > 1 {
		flag.Usage()
		os.Exit(64)
	}
	if len(args) == 0 {
		startREPL(*showDisasm)
		return
	}

	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %s\n", filename, err)
		os.Exit(74)
	}
	runFile(filename, string(content), *showDisasm)
}

func runFile(filename, input string, showDisasm bool) {
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if p.Failed() {
		for _, msg := range p.Errors() {
			fmt.Fprintf(os.Stderr, "parse error: %s\n", msg)
		}
		os.Exit(65)
	}

	mod := value.NewModule(filename, "main")
	fn, errs, ok := compiler.Compile(program, mod)
	if !ok {
		for _, msg := range errs {
			fmt.Fprintf(os.Stderr, "compile error: %s\n", msg)
		}
		os.Exit(65)
	}

	if showDisasm {
		fmt.Fprintln(os.Stderr, fn.Chunk.Disassemble(filename))
	}

	machine := vm.New()
	stdlib.Register(machine)
	if err := machine.Interpret(fn); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", err)
		os.Exit(70)
	}
}

// startREPL runs a line-buffered read-eval-print loop on a single shared
// VM, so that globals defined on one line persist for the next one.
func startREPL(showDisasm bool) {
	machine := vm.New()
	stdlib.Register(machine)

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	scanner := bufio.NewScanner(os.Stdin)

	var inputBuffer strings.Builder
	lineNo := 0
	for {
		if interactive {
			if inputBuffer.Len() == 0 {
				fmt.Print("ember> ")
			} else {
				fmt.Print("...    ")
			}
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if inputBuffer.Len() == 0 && strings.TrimSpace(line) == "exit" {
			return
		}
		if inputBuffer.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		inputBuffer.WriteString(line)
		inputBuffer.WriteByte('\n')

		l := lexer.New(inputBuffer.String())
		p := parser.New(l)
		program := p.ParseProgram()

		if p.Failed() {
			if incompleteInput(p.Errors()) {
				continue
			}
			for _, msg := range p.Errors() {
				fmt.Fprintf(os.Stderr, "parse error: %s\n", msg)
			}
			inputBuffer.Reset()
			continue
		}

		echoBareExpression(program)

		lineNo++
		name := fmt.Sprintf("REPL:%d", lineNo)
		mod := value.NewModule(name, "main")
		fn, errs, ok := compiler.Compile(program, mod)
		if !ok {
			for _, msg := range errs {
				fmt.Fprintf(os.Stderr, "compile error: %s\n", msg)
			}
			inputBuffer.Reset()
			continue
		}

		if showDisasm {
			fmt.Fprintln(os.Stderr, fn.Chunk.Disassemble(name))
		}

		if err := machine.Interpret(fn); err != nil {
			fmt.Fprintf(os.Stderr, "runtime error: %s\n", err)
		}
		inputBuffer.Reset()
	}
}

// incompleteInput reports whether every parse error looks like it was
// caused by the input simply running out mid-construct, meaning the REPL
// should keep buffering lines rather than reporting a real syntax error.
func incompleteInput(errs []string) bool {
	if len(errs) == 0 {
		return false
	}
	for _, msg := range errs {
		if !strings.Contains(msg, "EOF") && !strings.Contains(msg, "end of file") {
			return false
		}
	}
	return true
}

// echoBareExpression rewrites a lone bare-expression line into print(expr)
// so the REPL behaves like an interactive calculator, mirroring the
// teacher's single-statement echo trick.
func echoBareExpression(program *ast.Program) {
	if len(program.Decls) != 1 {
		return
	}
	sd, ok := program.Decls[0].(*ast.StmtDecl)
	if !ok {
		return
	}
	es, ok := sd.Inner.(*ast.ExprStmt)
	if !ok {
		return
	}
	if _, isCall := es.X.(*ast.CallExpr); isCall {
		return
	}
	sd.Inner = &ast.PrintStmt{Line: es.Line, Value: es.X}
}
