package cidrmerge

import (
	"fmt"
	"strconv"
	"strings"

	rnet "github.com/Ramzeth/cidrmerge/net"
	"github.com/Ramzeth/cidrmerge/util/cidr"
	"github.com/Ramzeth/cidrmerge/util/ip"
)

// BlockError reports a line that could not be parsed as a CIDR block.
// errors.Is(err, ErrMalformedBlock) holds for every BlockError.
type BlockError struct {
	Line string
	Err  error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("malformed block %q: %v", e.Line, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

func (e *BlockError) Is(target error) bool { return target == ErrMalformedBlock }

// ParseCIDR parses a cleaned "address/prefixLength" line in the family of T
// and returns the block with host bits cleared.
func ParseCIDR[T rnet.Number[T]](line string) (Block[T], error) {
	b, err := parseCIDR[T](line)
	if err != nil {
		return b, err
	}
	return b, nil
}

// ParseBlock parses a cleaned "address/prefixLength" line in the family of T
// into the interval of addresses it covers.
func ParseBlock[T rnet.Number[T]](line string) (Interval[T], error) {
	b, err := parseCIDR[T](line)
	if err != nil {
		return Interval[T]{}, err
	}
	return b.Interval(), nil
}

// ParseBlocks parses every line. Unparsable lines are returned as errors and
// do not stop the remaining lines from being parsed.
func ParseBlocks[T rnet.Number[T]](lines []string) ([]Interval[T], []*BlockError) {
	var (
		intervals = make([]Interval[T], 0, len(lines))
		skipped   []*BlockError
	)
	for _, line := range lines {
		b, err := parseCIDR[T](line)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		intervals = append(intervals, b.Interval())
	}
	return intervals, skipped
}

func parseCIDR[T rnet.Number[T]](line string) (Block[T], *BlockError) {
	addrText, bitsText, found := strings.Cut(line, "/")
	if !found {
		return Block[T]{}, &BlockError{Line: line, Err: ErrMissingSeparator}
	}
	ones, err := strconv.Atoi(bitsText)
	if err != nil {
		return Block[T]{}, &BlockError{Line: line, Err: fmt.Errorf("prefix length: %w", err)}
	}
	mask, err := cidr.Mask[T](ones)
	if err != nil {
		return Block[T]{}, &BlockError{Line: line, Err: fmt.Errorf("%w: /%d", ErrInvalidPrefixRange, ones)}
	}
	n, err := ip.ParseAddr[T](addrText)
	if err != nil {
		return Block[T]{}, &BlockError{Line: line, Err: err}
	}
	return Block[T]{Base: n.And(mask), Bits: ones}, nil
}
