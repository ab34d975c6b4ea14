package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/domain/fare"
	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// render writes v as JSON or YAML, or calls table for the default format
func render(cmd *cobra.Command, v interface{}, table func(w io.Writer)) error {
	format, _ := cmd.Flags().GetString("output")
	w := cmd.OutOrStdout()

	switch strings.ToLower(format) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		// round-trip through JSON so YAML keys match the API field names
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		enc.SetIndent(2)
		return enc.Encode(generic)
	case outputTable, "":
		table(w)
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

// driverTable prints drivers; with an origin it adds a distance column and
// lists the nearest first
func driverTable(w io.Writer, drivers []*driver.Record, origin *driver.Location) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "NAME\tVEHICLE\tPLATE\tSTATUS\tCAPACITY\tROUTE\tUPDATED"
	if origin != nil {
		drivers = append([]*driver.Record(nil), drivers...)
		driver.SortByDistance(drivers, *origin)
		header += "\tDISTANCE"
	}
	fmt.Fprintln(tw, header)
	for _, d := range drivers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s",
			d.Name, d.VehicleType, dash(d.PlateNumber), d.Status,
			dash(d.Capacity), dash(d.Route), since(d.LastUpdated),
		)
		if origin != nil {
			fmt.Fprintf(tw, "\t%.1fkm", origin.DistanceKM(d.Location))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
	if len(drivers) == 0 {
		fmt.Fprintln(w, "No drivers available right now.")
	}
}

func fareTable(w io.Writer, c *fare.Catalog) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VEHICLE\tROUTE\tFARE (PHP)\tDISTANCE")
	for _, vt := range []driver.VehicleType{driver.VehicleTricycle, driver.VehicleMulticab} {
		for _, e := range c.For(vt) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", vt, e.Route, e.Fare, e.Distance)
		}
	}
	tw.Flush()
}

func profileTable(w io.Writer, p *user.Profile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", p.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", p.Role)
	if p.Role == user.RoleDriver {
		fmt.Fprintf(tw, "Vehicle:\t%s\n", dash(string(p.VehicleType)))
		fmt.Fprintf(tw, "Plate:\t%s\n", dash(p.PlateNumber))
	}
	tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func since(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return time.Since(t).Round(time.Second).String() + " ago"
}
