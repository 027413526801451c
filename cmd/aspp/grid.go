package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lucasjlepore/unevenness-grade/aspp"
)

func newGridCommand(ctx *commandContext) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Show the pipeline count of every configured complexity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := message.NewPrinter(language.English)
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(cfg.Grid.Complexities)+1)
			total := 0
			families := make([]*aspp.Family, 0, len(cfg.Grid.Complexities))
			for _, k := range cfg.Grid.Complexities {
				fam, err := aspp.NewFamily(cfg.Grid.Operations, cfg.Grid.Aggregations, k)
				if err != nil {
					return err
				}
				families = append(families, fam)
				total += fam.Count()
				rows = append(rows, []string{strconv.Itoa(k), p.Sprintf("%d", fam.Count())})
			}
			rows = append(rows, []string{"total", p.Sprintf("%d", total)})

			p.Fprintf(out, "%d operations x %d aggregations\n", len(cfg.Grid.Operations), len(cfg.Grid.Aggregations))
			fmt.Fprintln(out, renderTable([]string{"Complexity", "Pipelines"}, rows, []columnAlignment{alignRight, alignRight}))

			if !list {
				return nil
			}
			for _, fam := range families {
				pipelines, err := fam.Create()
				if err != nil {
					return err
				}
				for _, pl := range pipelines {
					fmt.Fprintln(out, pl.CanonicalID())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "Print every canonical feature id")
	return cmd
}
