package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/editions"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/storage"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q: want table, json or yaml", format)
}

// writeStructured prints v as JSON or YAML. It reports false for table output.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = w.Write(data)
		return true, err
	}
	return false, nil
}

// PrintPage prints one page of publications followed by the paginator line.
func PrintPage(w io.Writer, page *editions.Page, format string) error {
	if done, err := writeStructured(w, format, page); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tCATEGORY\tCREATED\tMODIFIED")
	for _, p := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, dash(p.Status), dash(p.Category), dash(p.CreatedOn), dash(p.ModifiedOn))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s (%d items)\n", page.PageInfo(), page.TotalItems)
	return err
}

// PrintPublication prints one publication's details.
func PrintPublication(w io.Writer, pub *editions.Publication, format string) error {
	if done, err := writeStructured(w, format, pub); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", pub.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", pub.Name)
	fmt.Fprintf(tw, "Identifier:\t%s\n", dash(pub.Identifier))
	fmt.Fprintf(tw, "UID:\t%s\n", dash(pub.UID))
	fmt.Fprintf(tw, "Visible:\t%t\n", pub.IsVisible)
	fmt.Fprintf(tw, "Created:\t%s\n", dash(pub.CreatedOn))
	fmt.Fprintf(tw, "Modified:\t%s\n", dash(pub.ModifiedOn))
	for name, link := range pub.Links {
		fmt.Fprintf(tw, "Link %s:\t%s\n", name, link.Href)
	}
	return tw.Flush()
}

// PrintRuns prints the fetch log.
func PrintRuns(w io.Writer, runs []storage.FetchRun, format string) error {
	if done, err := writeStructured(w, format, runs); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tSTARTED\tDURATION\tITEMS\tTARGET")
	for _, r := range runs {
		target := r.Target
		if r.ErrorMessage != "" {
			target += " (" + r.ErrorMessage + ")"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			r.ID, r.Kind, r.Status,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration().Round(time.Millisecond),
			r.ItemCount, r.TotalItems, target)
	}
	return tw.Flush()
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
