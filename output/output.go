/*
Package output renders a family's cover as a plain prefix list or as an
nftables named set, each preceded by a provenance header.
*/
package output

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"os"
	"path/filepath"
	"time"

	rnet "github.com/Ramzeth/cidrmerge/net"
	"github.com/Ramzeth/cidrmerge/source"
)

// TimeFormat is the layout of the generated_at header field.
const TimeFormat = "2006-01-02T15:04:05Z"

// Header is the provenance written at the top of every artifact.
type Header struct {
	GeneratedAt time.Time
	Sources     []source.Source
}

// write emits the generated_at line and one source line per source of the
// given family.
func (h Header) write(w io.Writer, version rnet.IPVersion) error {
	if _, err := fmt.Fprintf(w, "# generated_at=%s\n", h.GeneratedAt.UTC().Format(TimeFormat)); err != nil {
		return err
	}
	for _, s := range h.Sources {
		if s.Version != version {
			continue
		}
		if _, err := fmt.Fprintf(w, "# source[%s]=%s\n", s.Label, s.Origin); err != nil {
			return err
		}
	}
	return nil
}

// WriteList writes the header, a count line and one prefix per line.
func WriteList(w io.Writer, version rnet.IPVersion, hdr Header, prefixes []netip.Prefix) error {
	bw := bufio.NewWriter(w)
	if err := hdr.write(bw, version); err != nil {
		return err
	}
	fmt.Fprintf(bw, "# count=%d\n", len(prefixes))
	for _, p := range prefixes {
		fmt.Fprintf(bw, "%s\n", p)
	}
	return bw.Flush()
}

// WriteSet writes the header and an nftables named set holding prefixes.
// The elements block is left out for an empty cover since nft rejects an
// empty element list.
func WriteSet(w io.Writer, version rnet.IPVersion, name string, hdr Header, prefixes []netip.Prefix) error {
	bw := bufio.NewWriter(w)
	if err := hdr.write(bw, version); err != nil {
		return err
	}
	fmt.Fprintf(bw, "set %s {\n", name)
	fmt.Fprintf(bw, "  type %s;\n", version.AddrType())
	fmt.Fprintf(bw, "  flags interval;\n")
	if len(prefixes) > 0 {
		fmt.Fprintf(bw, "  elements = {\n")
		for i, p := range prefixes {
			sep := ","
			if i == len(prefixes)-1 {
				sep = ""
			}
			fmt.Fprintf(bw, "    %s%s\n", p, sep)
		}
		fmt.Fprintf(bw, "  }\n")
	}
	fmt.Fprintf(bw, "}\n")
	return bw.Flush()
}

// WriteFile creates path through a temporary file in the same directory,
// renamed into place once fn succeeds. The directory is created if needed.
func WriteFile(path string, fn func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fn(tmp); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
