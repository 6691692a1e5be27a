package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	logpkg "github.com/kailas-cloud/curator/internal/logger"
	"github.com/kailas-cloud/curator/internal/transport/dto"
	"github.com/kailas-cloud/curator/internal/usecase/curation"
)

type curateOptions struct {
	file          string
	statuses      []string
	kinds         []string
	interests     []string
	exclude       []string
	requiredLevel string
	rank          string
	field         string
	halfLife      time.Duration
	rankInterests []string
	maxCount      int
	asOf          string
	output        string
}

func curateCmd(g *globalOptions) *cobra.Command {
	o := &curateOptions{}
	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Curate records from a YAML or JSON file",
		Long: `Reads records from --file and prints the curated list.

The file holds either a list of records or an object with "records" and
"query" keys. Flags override the query from the file.`,
		Example: `  curatectl curate -f users.yaml --statuses active --required-level member --rank composite --max 10
  curatectl curate -f posts.json --kinds post --rank interest_overlap --rank-interests go,db -o table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCurate(cmd, g, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "Records file (.yaml, .yml or .json); - reads JSON from stdin")
	f.StringSliceVar(&o.statuses, "statuses", nil, "Keep records with one of these statuses")
	f.StringSliceVar(&o.kinds, "kinds", nil, "Keep records of these kinds (user, post)")
	f.StringSliceVar(&o.interests, "interests", nil, "Keep records sharing a tag with these interests")
	f.StringSliceVar(&o.exclude, "exclude", nil, "Record IDs to drop")
	f.StringVar(&o.requiredLevel, "required-level", "", "Minimum permission level (number or name)")
	f.StringVar(&o.rank, "rank", "", "Ranking rule (see 'curatectl rules')")
	f.StringVar(&o.field, "field", "", "Numeric attribute for the numeric rule")
	f.DurationVar(&o.halfLife, "half-life", 0, "Recency half life, e.g. 72h")
	f.StringSliceVar(&o.rankInterests, "rank-interests", nil, "Interests for the interest_overlap rule")
	f.IntVarP(&o.maxCount, "max", "n", 0, "Maximum number of entries")
	f.StringVar(&o.asOf, "as-of", "", "Reference time (RFC 3339) for time based rules")
	f.StringVarP(&o.output, "output", "o", "json", "Output format: json or table")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runCurate(cmd *cobra.Command, g *globalOptions, o *curateOptions) error {
	st, err := g.resolve()
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger("local", g.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ctx := logpkg.ContextWithLogger(cmd.Context(), logger)

	req, err := readRequest(cmd.InOrStdin(), o.file)
	if err != nil {
		return err
	}
	if err := o.applyFlags(cmd, &req.Query); err != nil {
		return err
	}

	records, err := dto.ToRecords(st.domain, req.Records)
	if err != nil {
		return err
	}
	q, err := req.Query.ToQuery(st.limits)
	if err != nil {
		return err
	}
	c, err := q.Criteria(st.domain)
	if err != nil {
		return err
	}

	out, err := curation.New(nil).WithMaxRecords(st.maxRecords).Curate(ctx, records, c)
	if err != nil {
		return err
	}
	resp := dto.FromOutcome(st.domain, out, q.AsOf())

	switch o.output {
	case "table":
		return writeTable(cmd.OutOrStdout(), resp)
	case "json":
		return writeJSON(cmd.OutOrStdout(), resp)
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}

// applyFlags overrides query fields whose flags were set explicitly.
func (o *curateOptions) applyFlags(cmd *cobra.Command, q *dto.Query) error {
	f := cmd.Flags()
	if f.Changed("statuses") {
		q.Statuses = o.statuses
	}
	if f.Changed("kinds") {
		q.Kinds = o.kinds
	}
	if f.Changed("interests") {
		q.Interests = o.interests
	}
	if f.Changed("exclude") {
		q.ExcludeIDs = o.exclude
	}
	if f.Changed("required-level") {
		q.RequiredLevel = dto.LevelRef(o.requiredLevel)
	}
	if f.Changed("max") {
		n := o.maxCount
		q.MaxCount = &n
	}
	if f.Changed("as-of") {
		t, err := time.Parse(time.RFC3339, o.asOf)
		if err != nil {
			return fmt.Errorf("--as-of: %w", err)
		}
		q.AsOf = &t
	}

	if f.Changed("rank") || f.Changed("field") || f.Changed("half-life") || f.Changed("rank-interests") {
		if q.Rank == nil {
			q.Rank = &dto.Ranking{}
		}
		if f.Changed("rank") {
			q.Rank.Rule = o.rank
		}
		if f.Changed("field") {
			q.Rank.Field = o.field
		}
		if f.Changed("half-life") {
			q.Rank.HalfLife = o.halfLife.String()
		}
		if f.Changed("rank-interests") {
			q.Rank.Interests = o.rankInterests
		}
	}
	return nil
}

// readRequest loads a records file. A top-level list holds records only;
// an object carries records and a query.
func readRequest(stdin io.Reader, path string) (dto.CurateRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return dto.CurateRequest{}, fmt.Errorf("read records: %w", err)
	}

	var req dto.CurateRequest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &req)
	case ".json", "":
		err = decodeJSON(data, &req)
	default:
		return dto.CurateRequest{}, fmt.Errorf("unsupported records file extension %q", ext)
	}
	if err != nil {
		return dto.CurateRequest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return req, nil
}

func decodeYAML(data []byte, req *dto.CurateRequest) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		return root.Decode(&req.Records)
	}
	return root.Decode(req)
}

func decodeJSON(data []byte, req *dto.CurateRequest) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &req.Records)
	}
	return json.Unmarshal(trimmed, req)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, resp dto.CurateResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "POS\tID\tLABEL\tKIND\tLEVEL\tRANK")
	for _, e := range resp.Items {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.Position, e.ID, e.Label, e.Kind, e.Level, strconv.FormatFloat(e.Rank, 'g', 6, 64))
	}
	for _, d := range resp.Dropped {
		_, _ = fmt.Fprintf(tw, "-\t%s\t\t\t\tdropped: %s\n", d.ID, d.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	s := resp.Stats
	_, err := fmt.Fprintf(w, "\ninput=%d eligible=%d permitted=%d ranked=%d returned=%d\n",
		s.Input, s.Eligible, s.Permitted, s.Ranked, s.Returned)
	return err
}
