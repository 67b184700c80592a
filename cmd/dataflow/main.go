package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/wbrown/janus-dataflow/dataflow/compiler"
	"github.com/wbrown/janus-dataflow/dataflow/parser"
	"github.com/wbrown/janus-dataflow/dataflow/plan"
	"github.com/wbrown/janus-dataflow/dataflow/schema"
	"github.com/wbrown/janus-dataflow/dataflow/trace"
)

func main() {
	var dbPath string
	var interactive bool
	var help bool
	var verbose bool
	var queryStr string
	var rulesStr string

	flag.StringVar(&dbPath, "db", "", "schema database path")
	flag.BoolVar(&interactive, "i", false, "interactive mode")
	flag.BoolVar(&help, "h", false, "show help")
	flag.BoolVar(&verbose, "verbose", false, "verbose mode (show compile stages)")
	flag.StringVar(&queryStr, "query", "", "compile a single query and exit")
	flag.StringVar(&rulesStr, "rules", "", "compile a rule set and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [schema_path]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Compiles Datalog queries into dataflow plans.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -query '[:find ?n :where [?p :person/name ?n]]'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -db schema.db -i        # Interactive mode with a persisted schema\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -rules '[[(older ?t1 ?t2) [(< ?t1 ?t2)]]]'\n", os.Args[0])
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	if dbPath == "" && flag.NArg() > 0 {
		dbPath = flag.Arg(0)
	}

	attrs, cleanup, err := openSchema(dbPath)
	if err != nil {
		log.Fatalf("Failed to open schema: %v", err)
	}
	defer cleanup()

	var handler trace.Handler
	if verbose {
		handler = trace.NewOutputFormatter(os.Stderr)
	}

	c := compiler.New(attrs, compiler.Options{Tracer: handler})

	switch {
	case queryStr != "":
		if err := compileQuery(c, queryStr); err != nil {
			log.Fatalf("%v", err)
		}
	case rulesStr != "":
		if err := compileRules(c, rulesStr); err != nil {
			log.Fatalf("%v", err)
		}
	case interactive:
		runInteractive(c)
	default:
		flag.Usage()
		os.Exit(1)
	}
}

// openSchema opens a persisted schema registry, or falls back to a
// small demo schema when no path is given.
func openSchema(path string) (schema.Resolver, func(), error) {
	if path == "" {
		fmt.Println("No schema database given, using demo schema.")
		return demoSchema(), func() {}, nil
	}

	reg, err := schema.OpenBadgerRegistry(path)
	if err != nil {
		return nil, nil, err
	}
	return reg, func() { reg.Close() }, nil
}

// demoSchema covers the attributes used by the usage examples
func demoSchema() *schema.Registry {
	return schema.NewRegistryFromMap(map[string]int{
		":person/name":   100,
		":person/age":    101,
		":person/friend": 102,
		":assign/time":   200,
		":assign/key":    201,
		":assign/value":  202,
	})
}

// compileQuery compiles one query and prints the plan and input map
func compileQuery(c *compiler.Compiler, input string) error {
	q, err := parser.ParseQuery(input)
	if err != nil {
		return err
	}

	compiled, err := c.CompileQuery(q)
	if err != nil {
		return err
	}

	fmt.Println(plan.NewRenderer(compiled.Symbols, true).Render(compiled.Plan))
	if len(compiled.Inputs) > 0 {
		fmt.Println(formatInputs(compiled.Inputs))
	}
	return nil
}

// compileRules compiles a rule set and prints one plan per rule head
func compileRules(c *compiler.Compiler, input string) error {
	rs, err := parser.ParseRules(input)
	if err != nil {
		return err
	}

	rules, err := c.CompileRules(rs)
	if err != nil {
		return err
	}

	for _, rule := range rules {
		fmt.Printf("rule %s:\n", rule.Name)
		fmt.Println(plan.NewRenderer(nil, true).Render(rule.Plan))
	}
	return nil
}

// formatInputs renders the input map as a markdown table
func formatInputs(inputs []plan.InputEntry) string {
	tableString := &strings.Builder{}

	alignment := make([]tw.Align, 3)
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"input", "kind", "value"})

	for _, entry := range inputs {
		if entry.Binding.IsConst() {
			table.Append([]string{entry.Var.String(), "const", entry.Binding.Const.String()})
		} else {
			table.Append([]string{entry.Var.String(), "param", fmt.Sprintf("$%d", entry.Binding.Input)})
		}
	}

	table.Render()
	return tableString.String()
}

// runInteractive reads queries from stdin and compiles them one by one
func runInteractive(c *compiler.Compiler) {
	fmt.Println("Enter queries (or 'rules <ruleset>'), blank line to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Print("dataflow> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}

		var err error
		if rest, ok := strings.CutPrefix(line, "rules "); ok {
			err = compileRules(c, rest)
		} else {
			err = compileQuery(c, line)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}
