package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/N3moAhead/pedigree/internal/db"
	"github.com/N3moAhead/pedigree/internal/family"
	"github.com/N3moAhead/pedigree/internal/logger"
	"github.com/N3moAhead/pedigree/internal/person"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print everyone in the relations file with their parents and spouses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := db.NewStore(a.cfg.YAMLFilename, logger.ForComponent(a.log, "db"))
			fam, err := store.Load()
			if err != nil {
				return checkMissing(a.cfg.YAMLFilename, err)
			}
			if fam.Len() == 0 {
				fmt.Fprintf(a.out, "%s lists nobody yet\n", a.cfg.YAMLFilename)
				return nil
			}
			writeTable(a.out, fam)
			return nil
		},
	}
}

func writeTable(w io.Writer, fam *family.Family) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Gender", "Father", "Mother", "Spouses", "Notes"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, p := range fam.Persons() {
		table.Append([]string{
			p.Name,
			p.Gender.String(),
			nameOf(fam.Father(p.Name)),
			nameOf(fam.Mother(p.Name)),
			names(fam.Partners(p.Name)),
			p.Notes,
		})
	}
	table.Render()
}

func nameOf(p *person.Person) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func names(people []*person.Person) string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return strings.Join(out, ", ")
}
