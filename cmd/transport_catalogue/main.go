package main

import (
	"bufio"
	"flag"
	"io"
	"log"
	"os"

	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/logging"
	"github.com/passbi/transport_catalogue/internal/reader"
)

func main() {
	inPath := flag.String("in", "", "Input document (default stdin)")
	outPath := flag.String("out", "", "Output file (default stdout)")
	rejectDuplicates := flag.Bool("reject-duplicates", false, "Fail on repeated stop names or bus numbers")
	flag.Parse()

	// stdout carries the response document
	logging.InitWithOutput(os.Stderr)

	var in io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			log.Fatalf("Failed to open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := run(bufio.NewReader(in), out, *rejectDuplicates); err != nil {
		log.Fatalf("Failed to process document: %v", err)
	}
}

func run(in io.Reader, out io.Writer, rejectDuplicates bool) error {
	doc, err := reader.Decode(in)
	if err != nil {
		return err
	}

	var opts []catalogue.Option
	if rejectDuplicates {
		opts = append(opts, catalogue.WithDuplicatePolicy(catalogue.RejectDuplicates))
	}

	h, err := reader.Build(doc, opts)
	if err != nil {
		return err
	}

	node, err := reader.ProcessRequests(h, doc.StatRequests)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	if err := reader.Print(w, node); err != nil {
		return err
	}
	return w.Flush()
}
