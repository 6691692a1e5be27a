package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/curator/internal/domain/rule"
	"github.com/kailas-cloud/curator/internal/transport/dto"
	"github.com/kailas-cloud/curator/internal/version"
)

func rulesCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List ranking rules, the permission domain and result limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := g.resolve()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.Rules{
				Rules:           rule.Names(),
				Permission:      dto.FromDomain(st.domain),
				DefaultMaxCount: st.limits.DefaultMaxCount,
				MaxCountCap:     st.limits.MaxCountCap,
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "curatectl %s\n", version.String())
		},
	}
}
