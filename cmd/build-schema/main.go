package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wbrown/janus-dataflow/dataflow"
	"github.com/wbrown/janus-dataflow/dataflow/edn"
	"github.com/wbrown/janus-dataflow/dataflow/schema"
)

// build-schema populates a persistent schema registry from an EDN
// definition: a vector of attribute keywords, e.g.
//
//	[:person/name :person/age :assign/time]
//
// Ids are assigned in declaration order.
func main() {
	dbPath := flag.String("db", "schema.db", "schema database path")
	schemaFile := flag.String("schema", "", "EDN schema definition file")
	flag.Parse()

	if *schemaFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: build-schema -schema schema.edn [-db schema.db]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*schemaFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read schema file: %v\n", err)
		os.Exit(1)
	}

	node, err := edn.Parse(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse schema file: %v\n", err)
		os.Exit(1)
	}

	if node.Type != edn.NodeVector || len(node.Nodes) == 0 {
		fmt.Fprintln(os.Stderr, "Schema definition must be a non-empty vector of keywords")
		os.Exit(1)
	}

	reg, err := schema.OpenBadgerRegistry(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open registry: %v\n", err)
		os.Exit(1)
	}
	defer reg.Close()

	for i := range node.Nodes {
		kw, err := node.Nodes[i].AsKeyword()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Schema entry %d is not a keyword: %v\n", i, err)
			os.Exit(1)
		}
		id, err := reg.Define(dataflow.NewKeyword(kw))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to define %s: %v\n", kw, err)
			os.Exit(1)
		}
		fmt.Printf("  %s -> %d\n", kw, id)
	}

	fmt.Printf("Defined %d attributes in %s\n", len(node.Nodes), *dbPath)
}
