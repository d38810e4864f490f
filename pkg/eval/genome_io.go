package eval

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GenomeFormatError reports a malformed genome-file block (spec.md §7
// "Malformed genome data"), naming which kind of fault was found so a caller
// can react differently (e.g. abort vs. skip).
type GenomeFormatError struct {
	Gene string
	Line int
	Kind string // "missing key", "duplicate key", "unparseable value", "unrecognized gene name", "unrecognized key", or "gene block before ID line"
	Key  string
}

func (e *GenomeFormatError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("genome file line %d: gene %q: %s", e.Line, e.Gene, e.Kind)
	}
	return fmt.Sprintf("genome file line %d: gene %q: %s %q", e.Line, e.Gene, e.Kind, e.Key)
}

// WriteGenome writes g in the genome file format (spec.md §6): an "ID: <n>"
// line, then one blank-line-terminated block per gene in Genome.Genes
// order, each beginning with "Name: <gene name>" followed by its fields.
func WriteGenome(w io.Writer, g *Genome) error {
	if _, err := fmt.Fprintf(w, "ID: %d\n\n", g.ID); err != nil {
		return err
	}
	for _, gene := range g.Genes {
		if _, err := fmt.Fprintf(w, "Name: %s\n", gene.Name()); err != nil {
			return err
		}
		for _, f := range geneFields(gene) {
			if _, err := fmt.Fprintf(w, "%s: %s\n", f.key, f.value); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// ParseGenomes scans the full text of a genome file and returns every
// genome block found, keyed by ID. An append-only file may legitimately
// contain no more than one block per id, but later blocks win if more than
// one is present, matching "locating each id's most recent genome block"
// (spec.md §6).
func ParseGenomes(r io.Reader) (map[uint64]*Genome, error) {
	genomes := make(map[uint64]*Genome)

	var current *Genome
	var geneName string
	var fieldValues map[string]string
	var fieldOrder []string
	var duplicateKey string
	var geneLine int

	flushGene := func() error {
		if geneName == "" {
			return nil
		}
		defer func() { geneName = ""; fieldValues = nil; fieldOrder = nil; duplicateKey = "" }()

		var target Gene
		for _, gene := range current.Genes {
			if gene.Name() == geneName {
				target = gene
				break
			}
		}
		if target == nil {
			return &GenomeFormatError{Gene: geneName, Line: geneLine, Kind: "unrecognized gene name"}
		}
		if duplicateKey != "" {
			return &GenomeFormatError{Gene: geneName, Line: geneLine, Kind: "duplicate key", Key: duplicateKey}
		}

		for _, key := range fieldOrder {
			value := fieldValues[key]
			ok, err := loadGeneField(target, key, value)
			if err != nil {
				return &GenomeFormatError{Gene: geneName, Line: geneLine, Kind: "unparseable value", Key: key}
			}
			if !ok {
				return &GenomeFormatError{Gene: geneName, Line: geneLine, Kind: "unrecognized key", Key: key}
			}
		}
		for _, want := range geneFields(target) {
			if _, ok := fieldValues[want.key]; !ok {
				return &GenomeFormatError{Gene: geneName, Line: geneLine, Kind: "missing key", Key: want.key}
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			if geneName != "" {
				if err := flushGene(); err != nil {
					return nil, err
				}
			}
		case strings.HasPrefix(line, "Still Alive"):
			// Still-Alive bookkeeping belongs to genepool.Pool; ParseGenomes
			// only extracts genome blocks and ignores these lines.
			if geneName != "" {
				if err := flushGene(); err != nil {
					return nil, err
				}
			}
		case strings.HasPrefix(line, "ID:"):
			if geneName != "" {
				if err := flushGene(); err != nil {
					return nil, err
				}
			}
			idText := strings.TrimSpace(strings.TrimPrefix(line, "ID:"))
			id, err := strconv.ParseUint(idText, 10, 64)
			if err != nil {
				return nil, &GenomeFormatError{Gene: "", Line: lineNumber, Kind: "unparseable value", Key: "ID"}
			}
			current = NewGenome()
			current.ID = id
			genomes[id] = current
		case strings.HasPrefix(line, "Name:"):
			if current == nil {
				return nil, &GenomeFormatError{Line: lineNumber, Kind: "gene block before ID line"}
			}
			if geneName != "" {
				if err := flushGene(); err != nil {
					return nil, err
				}
			}
			geneName = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			fieldValues = make(map[string]string)
			fieldOrder = nil
			geneLine = lineNumber
		default:
			idx := strings.Index(line, ":")
			if idx < 0 || geneName == "" {
				continue
			}
			key := strings.TrimSpace(line[:idx])
			value := strings.TrimSpace(line[idx+1:])
			if _, exists := fieldValues[key]; exists && duplicateKey == "" {
				duplicateKey = key
			}
			fieldValues[key] = value
			fieldOrder = append(fieldOrder, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if geneName != "" {
		if err := flushGene(); err != nil {
			return nil, err
		}
	}

	return genomes, nil
}
