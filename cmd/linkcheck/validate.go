package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/linkchecker/internal/config"
	"github.com/hamed0406/linkchecker/internal/linkcheck"
)

var errInvalidLinks = errors.New("some links are invalid")

type validateFlags struct {
	json         bool
	timeout      time.Duration
	workers      int
	allowPrivate bool
	verbose      bool
}

func newValidateCmd() *cobra.Command {
	cfg := config.FromEnv()
	f := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate [urls...]",
		Short: "Validate URLs given as arguments or one per line on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if len(urls) == 0 {
				var err error
				if urls, err = readURLs(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if len(urls) == 0 {
				return errors.New("no URLs given")
			}

			logger := zap.NewNop()
			if f.verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
				defer func() { _ = l.Sync() }()
			}

			v := linkcheck.New(logger)
			v.Timeout = f.timeout
			v.Workers = f.workers
			v.MaxBatch = cfg.MaxBatch
			if f.allowPrivate {
				v.Guard = linkcheck.SchemeOnly
			}

			results, err := validateAll(cmd.Context(), v, urls)
			if err != nil {
				return err
			}
			if err := render(cmd.OutOrStdout(), results, f.json); err != nil {
				return err
			}
			for _, r := range results {
				if !r.IsValid {
					return errInvalidLinks
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.json, "json", false, "print results as JSON")
	cmd.Flags().DurationVar(&f.timeout, "timeout", cfg.ProbeTimeout, "per-probe timeout")
	cmd.Flags().IntVar(&f.workers, "workers", cfg.Workers, "concurrent probes")
	cmd.Flags().BoolVar(&f.allowPrivate, "allow-private", false, "probe loopback and private addresses")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log probe details to stderr")
	return cmd
}

// validateAll feeds urls to the validator in batch-sized chunks.
func validateAll(ctx context.Context, v *linkcheck.Validator, urls []string) ([]linkcheck.Result, error) {
	size := max(1, min(v.MaxBatch, linkcheck.DefaultMaxBatch))
	out := make([]linkcheck.Result, 0, len(urls))
	for start := 0; start < len(urls); start += size {
		res, err := v.ValidateBatch(ctx, urls[start:min(start+size, len(urls))])
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// readURLs returns the non-blank, non-comment lines of r.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}

func render(w io.Writer, results []linkcheck.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tCODE\tURL\tERROR")
	for _, r := range results {
		status := "OK"
		if !r.IsValid {
			status = "FAIL"
		}
		code := "-"
		if r.StatusCode != 0 {
			code = fmt.Sprint(r.StatusCode)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", status, code, r.URL, r.Error)
	}
	return tw.Flush()
}
