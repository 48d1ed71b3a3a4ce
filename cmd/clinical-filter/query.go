package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RuthEberhardt/clinical-filter/internal/store"
)

func newQueryCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query stored candidates in a results database",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "DuckDB results path")
	cmd.MarkPersistentFlagRequired("db")

	site := &cobra.Command{
		Use:   "site <chrom:pos>",
		Short: "Candidates at a genomic coordinate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chrom, pos, err := parseSite(args[0])
			if err != nil {
				return err
			}
			return withStore(dbPath, func(s *store.Store) error {
				candidates, err := s.LookupSite(chrom, pos)
				if err != nil {
					return err
				}
				return printCandidates(candidates)
			})
		},
	}

	gene := &cobra.Command{
		Use:   "gene <symbol>",
		Short: "Candidates in a gene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(dbPath, func(s *store.Store) error {
				candidates, err := s.SearchByGene(args[0])
				if err != nil {
					return err
				}
				return printCandidates(candidates)
			})
		},
	}

	proband := &cobra.Command{
		Use:   "proband <id>",
		Short: "Candidates for one proband",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(dbPath, func(s *store.Store) error {
				candidates, err := s.SearchByProband(args[0])
				if err != nil {
					return err
				}
				return printCandidates(candidates)
			})
		},
	}

	cmd.AddCommand(site, gene, proband)
	return cmd
}

func withStore(path string, fn func(*store.Store) error) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func parseSite(arg string) (string, int64, error) {
	chrom, posStr, ok := strings.Cut(arg, ":")
	if !ok {
		return "", 0, fmt.Errorf("expected chrom:pos, got %q", arg)
	}
	pos, err := strconv.ParseInt(posStr, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid position %q", posStr)
	}
	return chrom, pos, nil
}

func printCandidates(candidates []store.Candidate) error {
	if len(candidates) == 0 {
		fmt.Println("no candidates found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROBAND\tCHROM\tPOS\tREF\tALT\tGENE\tCONSEQUENCE\tTRIO_GT\tPP_DNM\tMAX_AF")
	for _, c := range candidates {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Proband, c.Chrom, c.Pos, c.Ref, c.Alt,
			c.Gene, c.Consequence, c.TrioGenotype, c.PPDNM, c.MaxAF)
	}
	return w.Flush()
}
