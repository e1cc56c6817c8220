package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"airportcore/internal/blob"
	"airportcore/internal/core"
	"airportcore/internal/export"
)

type rootFlags struct {
	envFile     string
	showMetrics bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "airportctl",
		Short:        "Load airport datasets, print listings and export reports",
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Environment file read before AIRPORTCORE_* variables")
	cmd.PersistentFlags().BoolVar(&flags.showMetrics, "metrics", false, "Print operation counters to stderr on exit")

	cmd.AddCommand(loadCmd(flags), reportCmd(flags), exportCmd(flags), snapshotsCmd(flags))
	return cmd
}

// withApp builds the wiring, runs fn and tears everything down.
func withApp(cmd *cobra.Command, flags *rootFlags, fn func(*app) error) error {
	a, err := newApp(cmd.Context(), flags.envFile)
	if err != nil {
		return err
	}
	defer a.close()
	if err := fn(a); err != nil {
		return err
	}
	if flags.showMetrics {
		return a.writeMetrics(cmd.ErrOrStderr())
	}
	return nil
}

func loadCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load every dataset and print insert counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(a *app) error {
				return a.loadAll(cmd.Context(), cmd.OutOrStdout())
			})
		},
	}
}

func reportCmd(flags *rootFlags) *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:       "report <planes|locations|passengers|flights>",
		Short:     "Load every dataset and print one listing",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"planes", "locations", "passengers", "flights"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unknown format %q", format)
			}
			return withApp(cmd, flags, func(a *app) error {
				ctx := cmd.Context()
				if err := a.loadAll(ctx, io.Discard); err != nil {
					return err
				}
				var resp core.Response
				switch args[0] {
				case "planes":
					resp = a.svc.PlaneRows(ctx)
				case "locations":
					resp = a.svc.LocationRows(ctx)
				case "passengers":
					resp = a.svc.PassengerRows(ctx)
				case "flights":
					resp = a.svc.FlightRows(ctx)
				default:
					return fmt.Errorf("unknown listing %q", args[0])
				}
				if !resp.IsSuccess() {
					return fmt.Errorf("%s", resp.Message)
				}
				return printRows(cmd.OutOrStdout(), format, resp.Payload)
			})
		},
	}
	c.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	return c
}

func exportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Load every dataset and export a snapshot report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(a *app) error {
				ctx := cmd.Context()
				if err := a.loadAll(ctx, io.Discard); err != nil {
					return err
				}
				resp := a.svc.ExportReport(ctx)
				if !resp.IsSuccess() {
					return fmt.Errorf("%s", resp.Message)
				}
				res := resp.Payload.(export.Result)
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes, archived=%t)\n", res.Key, res.Size, res.Archived)
				return nil
			})
		},
	}
}

func snapshotsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List exported snapshot reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(a *app) error {
				resp := a.svc.ListReports(cmd.Context())
				if !resp.IsSuccess() {
					return fmt.Errorf("%s", resp.Message)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
				for _, info := range resp.Payload.([]blob.Info) {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Key, info.Size, info.LastModified.UTC().Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
}

func printRows(out io.Writer, format string, payload any) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	switch rows := payload.(type) {
	case []core.PlaneRow:
		fmt.Fprintln(tw, "ID\tBRAND\tMODEL\tCAPACITY\tAIRLINE\tFLIGHTS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Brand, r.Model, r.MaxCapacity, r.Airline, r.Flights)
		}
	case []core.LocationRow:
		fmt.Fprintln(tw, "ID\tNAME\tCITY\tCOUNTRY")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.AirportID, r.Name, r.City, r.Country)
		}
	case []core.PassengerRow:
		fmt.Fprintln(tw, "ID\tNAME\tBIRTH DATE\tAGE\tPHONE\tCOUNTRY\tFLIGHTS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.FullName, r.BirthDate, r.Age, r.Phone, r.Country, r.Flights)
		}
	case []core.FlightRow:
		fmt.Fprintln(tw, "ID\tDEPARTURE\tARRIVAL\tSCALE\tDEPARTS\tARRIVES\tPLANE\tPASSENGERS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Departure, r.Arrival, r.Scale, r.DepartsAt, r.ArrivesAt, r.PlaneID, r.Passengers)
		}
	default:
		return fmt.Errorf("unsupported rows %T", payload)
	}
	return tw.Flush()
}
