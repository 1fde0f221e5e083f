package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nerrad567/parkzone-core/internal/infrastructure/config"
	"github.com/nerrad567/parkzone-core/internal/parktrack"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// remoteClient loads configuration and returns a ParkTrack client for the
// one-shot commands. No observers are attached.
func remoteClient(configPath string) (*parktrack.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return parktrack.New(cfg.ParkTrack), nil
}

func newCamerasCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cameras",
		Short: "Inspect cameras on the ParkTrack server",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List cameras",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := remoteClient(*configPath)
			if err != nil {
				return err
			}
			cams, err := client.ListCameras(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing cameras: %s", parktrack.Message(err))
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cams)
			}
			return printCameras(cmd.OutOrStdout(), cams)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	cmd.AddCommand(list)
	return cmd
}

func newZonesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Inspect and export zones on the ParkTrack server",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list CAMERA_ID",
		Short: "List the zones of a camera",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cameraID, err := parseCameraID(args[0])
			if err != nil {
				return err
			}
			client, err := remoteClient(*configPath)
			if err != nil {
				return err
			}
			zones, err := client.ListZones(cmd.Context(), cameraID)
			if err != nil {
				return fmt.Errorf("listing zones: %s", parktrack.Message(err))
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), zones)
			}
			return printZones(cmd.OutOrStdout(), zones)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	var output string
	export := &cobra.Command{
		Use:   "export CAMERA_ID",
		Short: "Export the placed zones of a camera as GeoJSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cameraID, err := parseCameraID(args[0])
			if err != nil {
				return err
			}
			client, err := remoteClient(*configPath)
			if err != nil {
				return err
			}
			zones, err := client.ListZones(cmd.Context(), cameraID)
			if err != nil {
				return fmt.Errorf("listing zones: %s", parktrack.Message(err))
			}

			fc, skipped := zone.FeatureCollection(zones)
			data, err := fc.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encoding GeoJSON: %w", err)
			}
			if skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d zone(s) without coordinates\n", skipped)
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d zone(s) to %s\n", len(fc.Features), output)
			return nil
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	cmd.AddCommand(list, export)
	return cmd
}

func parseCameraID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid camera id %q", s)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCameras(w io.Writer, cams []zone.Camera) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLATITUDE\tLONGITUDE")
	for _, c := range cams {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Title, optFloat(c.Latitude), optFloat(c.Longitude))
	}
	return tw.Flush()
}

func printZones(w io.Writer, zones []zone.Zone) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tCAPACITY\tPAY\tLOTS\tPLACED")
	for _, z := range zones {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%t\n",
			z.ID, z.Type, z.Capacity, z.Pay, len(z.Lots), z.HasCompleteGeo())
	}
	return tw.Flush()
}

func optFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 6, 64)
}
