package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Ramzeth/cidrmerge"
	rnet "github.com/Ramzeth/cidrmerge/net"
	"github.com/Ramzeth/cidrmerge/source"
)

var coverConf = viper.New()

var coverCmd = &cobra.Command{
	Use:   "cover [file|url|-]...",
	Short: "Print the minimal cover of block lists to stdout",
	Long: `
Reads every argument (a path, a file:// or http(s) URL, or - for stdin; stdin
when none is given) as one list of the selected family, and prints the
minimal cover, one block per line.`,
	RunE: runCover,
}

// initCover defines the cover flags and binds them, with the root's
// persistent flags, to coverConf.
func initCover(persistent *pflag.FlagSet) {
	f := coverCmd.Flags()
	f.String("family", "4", "Address family, 4 or 6.")
	f.Bool("verify", false, "Cross-check the cover against its input.")

	coverConf.BindPFlags(f)
	coverConf.BindPFlags(persistent)
	bindEnv(coverConf)
}

func runCover(cmd *cobra.Command, args []string) error {
	family, err := rnet.ParseIPVersion(coverConf.GetString("family"))
	if err != nil {
		return err
	}
	cfg, err := fetcherConfig(coverConf)
	if err != nil {
		return err
	}
	fetcher, err := source.NewFetcher(cfg, log)
	if err != nil {
		return err
	}
	fetcher = fetcher.WithStdin(cmd.InOrStdin())
	if len(args) == 0 {
		args = []string{"-"}
	}

	var lines []string
	for _, origin := range args {
		l, err := fetcher.Fetch(cmd.Context(), origin)
		if err != nil {
			return err
		}
		lines = append(lines, l...)
	}

	c, err := cidrmerge.Cover(family, lines)
	if err != nil {
		return err
	}
	logSkipped(log.WithField("family", family), c.Skipped)
	if coverConf.GetBool("verify") {
		if err := cidrmerge.Verify(c); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, p := range c.Prefixes {
		fmt.Fprintln(out, p)
	}
	log.WithFields(logrus.Fields{
		"family":  family,
		"sources": len(args),
		"blocks":  len(c.Prefixes),
	}).Debug("cover printed")
	return nil
}
