package main

import (
	"fmt"
	"io"

	"github.com/akmonengine/hedra/geom"
	"github.com/akmonengine/hedra/hull"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var hullCmd subCommand

func init() {
	hullCmd.Cmd = &cobra.Command{
		Use:   "hull",
		Short: "Build the convex hull of a point file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHull(cmd.OutOrStdout())
		},
	}
	hullCmd.EnvPrefix = "HEDRA_HULL"

	flag := hullCmd.Cmd.Flags()
	flag.String("points", "", "Point file, one 'x y z' triple per line")
	flag.String("out", "", "Write the hull triangles to this OBJ file")
	flag.Float64("dist_tol", hull.DefaultConfig().DistTol,
		"Distance, relative to the bounding box diagonal, a point must stand out of the hull to be added")
	flag.Int("max_vertex_count", 0, "Stop growing the hull after this many points, 0 for no limit")

	register(&hullCmd)
}

func runHull(w io.Writer) error {
	conf := hullCmd.Conf
	path := conf.GetString("points")
	if path == "" {
		return errors.New("hull: --points is required")
	}

	var cfg hull.Config
	if err := conf.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "hull: reading config")
	}

	verts, err := readPointFile(path)
	if err != nil {
		return err
	}
	h := hull.New(verts, cfg)
	if h.IsEmpty() {
		return errors.Errorf("hull: %s is degenerate, no hull built", path)
	}

	volume, area := h.CalculateVolumeAndSurfaceArea()
	fmt.Fprintf(w, "points:   %s\n", humanize.Comma(int64(verts.Len())))
	fmt.Fprintf(w, "vertices: %s\n", humanize.Comma(int64(h.VertexCount())))
	fmt.Fprintf(w, "faces:    %s\n", humanize.Comma(int64(len(h.Faces()))))
	fmt.Fprintf(w, "volume:   %s\n", humanize.CommafWithDigits(volume, 6))
	fmt.Fprintf(w, "area:     %s\n", humanize.CommafWithDigits(area, 6))

	out := conf.GetString("out")
	if out == "" {
		return nil
	}
	faces := make([][]int, len(h.Faces()))
	for i, tri := range h.Faces() {
		faces[i] = tri[:]
	}
	return writeOBJFile(out, geom.FromVec3(h.Vertices()), faces)
}
