package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
)

// ErrTooLarge is returned when an origin exceeds Config.MaxBytes.
var ErrTooLarge = fmt.Errorf("source exceeds size limit")

// ErrUnsupportedProxy is returned for a proxy URL scheme other than
// socks5, socks5h, http or https.
var ErrUnsupportedProxy = fmt.Errorf("unsupported proxy scheme")

// errorSnippetBytes bounds the response body quoted in a status error.
const errorSnippetBytes = 2048

// Config configures a Fetcher.
type Config struct {
	// Timeout bounds a whole HTTP request including the body.
	Timeout time.Duration
	// UserAgent is sent with every HTTP request.
	UserAgent string
	// MaxBytes caps the size of a single origin.
	MaxBytes int64
	// Proxy is an optional socks5:// or http(s):// proxy URL. When empty the
	// HTTP(S)_PROXY environment variables apply.
	Proxy string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig(version string) Config {
	return Config{
		Timeout:   60 * time.Second,
		UserAgent: "cidrmerge/" + version,
		MaxBytes:  64 << 20,
	}
}

// Fetcher loads origins over HTTP(S), from local files or from stdin.
type Fetcher struct {
	cfg    Config
	client *http.Client
	log    logrus.FieldLogger
	stdin  io.Reader
}

// NewFetcher returns a Fetcher for cfg. A nil logger discards log output.
func NewFetcher(cfg Config, logger logrus.FieldLogger) (*Fetcher, error) {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		log:    logger,
		stdin:  os.Stdin,
	}, nil
}

// WithStdin returns a copy of f that reads the "-" origin from r.
func (f *Fetcher) WithStdin(r io.Reader) *Fetcher {
	c := *f
	c.stdin = r
	return &c
}

func newTransport(cfg Config) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy == "" {
		return transport, nil
	}
	proxyURL, err := url.Parse(cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("parse proxy: %w", err)
	}
	switch proxyURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(proxyURL)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{Timeout: cfg.Timeout})
		if err != nil {
			return nil, fmt.Errorf("socks5 proxy: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxy, proxyURL.Scheme)
	}
	return transport, nil
}

// Fetch reads origin and returns its cleaned lines. origin is an http(s)
// URL, a file:// URL, a local path, or "-" for stdin.
func (f *Fetcher) Fetch(ctx context.Context, origin string) ([]string, error) {
	content, err := f.read(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", origin, err)
	}
	lines, oversized, err := CleanLines(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", origin, err)
	}
	if oversized > 0 {
		f.log.WithFields(logrus.Fields{
			"origin": origin,
			"lines":  oversized,
		}).Warn("skip oversized lines")
	}
	f.log.WithFields(logrus.Fields{
		"origin": origin,
		"size":   humanize.Bytes(uint64(len(content))),
		"lines":  len(lines),
	}).Debug("fetched source")
	return lines, nil
}

func (f *Fetcher) read(ctx context.Context, origin string) ([]byte, error) {
	if origin == "-" {
		return f.readLimited(f.stdin)
	}
	switch {
	case strings.HasPrefix(origin, "http://"), strings.HasPrefix(origin, "https://"):
		return f.readHTTP(ctx, origin)
	case strings.HasPrefix(origin, "file://"):
		u, err := url.Parse(origin)
		if err != nil {
			return nil, err
		}
		return f.readFile(u.Path)
	}
	return f.readFile(origin)
}

func (f *Fetcher) readHTTP(ctx context.Context, origin string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetBytes))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return f.readLimited(resp.Body)
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return f.readLimited(file)
}

// readLimited reads r whole, failing once more than MaxBytes arrive.
// MaxBytes <= 0 disables the limit.
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	if f.cfg.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	content, err := io.ReadAll(io.LimitReader(r, f.cfg.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > f.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.cfg.MaxBytes)
	}
	return content, nil
}
