package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Ramzeth/cidrmerge"
	rnet "github.com/Ramzeth/cidrmerge/net"
	"github.com/Ramzeth/cidrmerge/output"
	"github.com/Ramzeth/cidrmerge/source"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	envPrefix = "CIDRMERGE"

	defaultV4URL   = "https://chnroutes2.cdn.skk.moe/chnroutes.txt"
	defaultV4Label = "chnroutes2-optimized"
	defaultV6URL   = "https://ruleset.skk.moe/Clash/ip/china_ipv6.txt"
	defaultV6Label = "ruleset.skk.moe"
)

var log = logrus.New()

var rootConf = viper.New()

var rootCmd = &cobra.Command{
	Use:   "cidrmerge",
	Short: "Build minimal CIDR covers of IPv4 and IPv6 block lists",
	Long: `
cidrmerge downloads one block list per address family, merges overlapping and
adjacent blocks, and writes the shortest equivalent list of CIDR blocks to
ip4.txt / ip6.txt and to the nftables sets <set-prefix>4.nft / <set-prefix>6.nft.
An empty URL skips that family.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	RunE: func(cmd *cobra.Command, args []string) error {
		return build(cmd.Context())
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("cidrmerge failed")
		stop()
		os.Exit(1)
	}
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	pf := rootCmd.PersistentFlags()
	pf.String("config", "",
		"Configuration file. Takes precedence over default values, but is "+
			"overridden by environment variables and flags.")
	pf.String("log-level", "info", "Log level, one of [trace, debug, info, warn, error].")
	pf.Duration("timeout", 60*time.Second, "Timeout of a single download.")
	pf.String("user-agent", "cidrmerge/"+version, "User-Agent sent with downloads.")
	pf.String("max-bytes", "64MiB", "Size limit of a single source, e.g. 10MB or 64MiB.")
	pf.String("proxy", "", "Proxy URL (socks5://, http://). Defaults to HTTP(S)_PROXY.")

	f := rootCmd.Flags()
	f.String("v4-url", defaultV4URL, "IPv4 block list URL or path.")
	f.String("v4-label", defaultV4Label, "Provenance label of the IPv4 list.")
	f.String("v6-url", defaultV6URL, "IPv6 block list URL or path.")
	f.String("v6-label", defaultV6Label, "Provenance label of the IPv6 list.")
	f.String("out-dir", "dist", "Output directory.")
	f.String("set-prefix", "cn", "Name prefix of the nftables sets.")
	f.Bool("verify", false, "Cross-check every cover against its input before writing.")
	f.SetNormalizeFunc(legacyFlagNames)

	rootConf.BindPFlags(pf)
	rootConf.BindPFlags(f)
	bindEnv(rootConf)

	rootCmd.AddCommand(coverCmd, versionCmd)
	initCover(pf)

	cobra.OnInitialize(func() {
		cfg := rootConf.GetString("config")
		if cfg == "" {
			return
		}
		for _, conf := range []*viper.Viper{rootConf, coverConf} {
			conf.SetConfigFile(cfg)
			if err := conf.ReadInConfig(); err != nil {
				log.WithError(err).WithField("config", cfg).Fatal("reading config")
			}
		}
	})
}

func bindEnv(conf *viper.Viper) {
	conf.SetEnvPrefix(envPrefix)
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()
	conf.AllowEmptyEnv(true)
}

// legacyFlagNames accepts the --v4-proto / --v6-proto spelling of the label flags.
func legacyFlagNames(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "v4-proto":
		name = "v4-label"
	case "v6-proto":
		name = "v6-label"
	}
	return pflag.NormalizedName(name)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(rootConf.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(cmd.ErrOrStderr())
	return nil
}

// fetcherConfig reads the download settings shared by all commands.
func fetcherConfig(conf *viper.Viper) (source.Config, error) {
	cfg := source.DefaultConfig(version)
	cfg.Timeout = conf.GetDuration("timeout")
	if ua := conf.GetString("user-agent"); ua != "" {
		cfg.UserAgent = ua
	}
	maxBytes, err := humanize.ParseBytes(conf.GetString("max-bytes"))
	if err != nil {
		return cfg, fmt.Errorf("max-bytes: %w", err)
	}
	cfg.MaxBytes = int64(maxBytes)
	cfg.Proxy = conf.GetString("proxy")
	return cfg, nil
}

func build(ctx context.Context) error {
	cfg, err := fetcherConfig(rootConf)
	if err != nil {
		return err
	}
	fetcher, err := source.NewFetcher(cfg, log)
	if err != nil {
		return err
	}

	var sources []source.Source
	for _, s := range []source.Source{
		{Version: rnet.IPv4, Label: rootConf.GetString("v4-label"), Origin: rootConf.GetString("v4-url")},
		{Version: rnet.IPv6, Label: rootConf.GetString("v6-label"), Origin: rootConf.GetString("v6-url")},
	} {
		if s.Origin == "" {
			log.WithField("family", s.Version).Info("no source, family skipped")
			continue
		}
		sources = append(sources, s)
	}

	hdr := output.Header{GeneratedAt: time.Now(), Sources: sources}
	outDir := rootConf.GetString("out-dir")
	setPrefix := rootConf.GetString("set-prefix")
	verify := rootConf.GetBool("verify")

	// Nothing is written unless every family was covered.
	covers := make([]*cidrmerge.FamilyCover, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sources {
		g.Go(func() error {
			c, err := coverSource(gctx, fetcher, s, verify)
			if err != nil {
				return err
			}
			covers[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, c := range covers {
		if err := writeFamily(outDir, setPrefix, hdr, c); err != nil {
			return err
		}
	}
	log.WithField("out", outDir).Info("covers written")
	return nil
}

// coverSource fetches one source and computes its cover, logging every
// skipped line.
func coverSource(ctx context.Context, fetcher *source.Fetcher, s source.Source, verify bool) (*cidrmerge.FamilyCover, error) {
	flog := log.WithFields(logrus.Fields{"family": s.Version, "source": s.Label})
	lines, err := fetcher.Fetch(ctx, s.Origin)
	if err != nil {
		return nil, err
	}
	c, err := cidrmerge.Cover(s.Version, lines)
	if err != nil {
		return nil, err
	}
	logSkipped(flog, c.Skipped)
	if verify {
		if err := cidrmerge.Verify(c); err != nil {
			return nil, fmt.Errorf("verify %s: %w", s.Version, err)
		}
		flog.Debug("cover verified")
	}
	flog.WithFields(logrus.Fields{
		"parsed":    len(c.Inputs),
		"skipped":   len(c.Skipped),
		"intervals": c.Intervals,
		"blocks":    len(c.Prefixes),
	}).Info("cover built")
	return c, nil
}

func logSkipped(flog logrus.FieldLogger, skipped []*cidrmerge.BlockError) {
	for _, e := range skipped {
		flog.WithFields(logrus.Fields{
			"line":  e.Line,
			"error": e.Err,
		}).Warn("skip unparsable line")
	}
}

// writeFamily writes the list and the nftables set of one family.
func writeFamily(outDir, setPrefix string, hdr output.Header, c *cidrmerge.FamilyCover) error {
	digit := familyDigit(c.Version)
	setName := setPrefix + digit

	if err := output.WriteFile(filepath.Join(outDir, "ip"+digit+".txt"), func(w io.Writer) error {
		return output.WriteList(w, c.Version, hdr, c.Prefixes)
	}); err != nil {
		return err
	}
	return output.WriteFile(filepath.Join(outDir, setName+".nft"), func(w io.Writer) error {
		return output.WriteSet(w, c.Version, setName, hdr, c.Prefixes)
	})
}

func familyDigit(v rnet.IPVersion) string {
	if v == rnet.IPv6 {
		return "6"
	}
	return "4"
}
