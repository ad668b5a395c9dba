/*
Package source reads block lists from remote or local origins and reduces
them to the cleaned lines the block parser expects.
*/
package source

import (
	"bufio"
	"io"
	"strings"

	rnet "github.com/Ramzeth/cidrmerge/net"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1024 * 1024

// Source names one input list of a family.
type Source struct {
	Version rnet.IPVersion
	// Label is the provenance name written to output headers.
	Label string
	// Origin is a URL, a file path or "-" for stdin.
	Origin string
}

// CleanLines reads r line by line and returns the lines that may hold a
// CIDR block: surrounding whitespace trimmed, blank and comment lines
// dropped, inline " #" and " ;" comments cut. Lines longer than 1 MiB are
// dropped and counted in oversized.
func CleanLines(r io.Reader) (lines []string, oversized int, err error) {
	br := bufio.NewReader(r)
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, more, err := br.ReadLine()
		if err == io.EOF {
			return lines, oversized, nil
		}
		if err != nil {
			return lines, oversized, err
		}
		if !tooLong {
			if len(line)+len(chunk) > maxLineBytes {
				tooLong = true
				line = line[:0]
			} else {
				line = append(line, chunk...)
			}
		}
		if more {
			continue
		}
		if tooLong {
			oversized++
		} else if cleaned, ok := CleanLine(string(line)); ok {
			lines = append(lines, cleaned)
		}
		line = line[:0]
		tooLong = false
	}
}

// CleanLine cleans a single line. ok is false when nothing is left.
func CleanLine(line string) (string, bool) {
	line = trim(line)
	if isComment(line) {
		return "", false
	}
	if i := strings.Index(line, " #"); i >= 0 {
		line = trim(line[:i])
	}
	if i := strings.Index(line, " ;"); i >= 0 {
		line = trim(line[:i])
	}
	return line, line != ""
}

func trim(s string) string {
	return strings.Trim(s, " \t\r\n")
}

func isComment(line string) bool {
	return line == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "//") ||
		strings.HasPrefix(line, ";")
}
