package asm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseText reads the line-based textual form of §4.6's assembly list:
// one "label <name>" or "<mnemonic> [operand...]" per line, blank lines
// and "#"-prefixed comments ignored. It has no notion of the `eval`
// directive's nested-script operand - a host feeds Assemble pre-tokenized
// ir.Token values for that case (Line.Eval), which a flat text file has no
// natural syntax for; callers that need `eval`-bearing bodies build Lines
// directly instead of going through this reader.
func ParseText(r io.Reader) ([]Line, error) {
	var lines []Line
	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if fields[0] == "label" {
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: label directive takes exactly one name", lineNo)
			}
			lines = append(lines, Line{Label: fields[1]})
			continue
		}
		lines = append(lines, Line{Op: fields[0], Args: fields[1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// FormatText renders lines back to the form ParseText reads, the inverse
// half of the textual round trip (§8).
func FormatText(w io.Writer, lines []Line) error {
	for _, ln := range lines {
		var err error
		switch {
		case ln.Label != "":
			_, err = fmt.Fprintf(w, "label %s\n", ln.Label)
		case len(ln.Args) == 0:
			_, err = fmt.Fprintf(w, "%s\n", ln.Op)
		default:
			_, err = fmt.Fprintf(w, "%s %s\n", ln.Op, strings.Join(ln.Args, " "))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
