package main

import (
	"fmt"
	"io"

	"github.com/akmonengine/hedra/mesh"
	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var simplifyCmd subCommand

func init() {
	simplifyCmd.Cmd = &cobra.Command{
		Use:   "simplify",
		Short: "Collapse the edges of an OBJ mesh within a distance tolerance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimplify(cmd.OutOrStdout())
		},
	}
	simplifyCmd.EnvPrefix = "HEDRA_SIMPLIFY"

	defaults := mesh.DefaultOptimizeConfig()
	flag := simplifyCmd.Cmd.Flags()
	flag.String("obj", "", "Input mesh, Wavefront OBJ")
	flag.String("out", "", "Simplified mesh output, Wavefront OBJ")
	flag.Float64("tolerance", defaults.Tolerance, "Largest distance a vertex may move off its planes")
	flag.Float64("min_aspect_ratio", defaults.MinAspectRatio, "Reject collapses producing triangles below this quality")
	flag.Float64("min_normal_dot", defaults.MinNormalDot, "Reject collapses rotating a triangle further than this")
	flag.Float64("min_area", 0, "Delete faces smaller than this area before simplifying")
	flag.Bool("convex", false, "Merge coplanar triangles back into convex polygons")

	register(&simplifyCmd)
}

func runSimplify(w io.Writer) error {
	conf := simplifyCmd.Conf
	in, out := conf.GetString("obj"), conf.GetString("out")
	if in == "" || out == "" {
		return errors.New("simplify: --obj and --out are required")
	}

	var cfg mesh.OptimizeConfig
	if err := conf.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "simplify: reading config")
	}

	verts, faces, err := readOBJFile(in)
	if err != nil {
		return err
	}
	p := buildPolyhedra(faces)
	before := p.GetFaceCount()

	degenerate := 0
	if minArea := conf.GetFloat64("min_area"); minArea > 0 {
		degenerate = p.DeleteDegenerateFaces(verts, minArea)
	}
	if leftovers := p.Triangulate(verts); len(leftovers) > 0 {
		glog.Warningf("%d faces of %s could not be triangulated and are kept as is", len(leftovers), in)
	}
	collapsed := p.OptimizeWith(verts, cfg)
	if conf.GetBool("convex") {
		p.ConvexPartition(verts)
	}
	if err := p.Validate(); err != nil {
		return errors.Wrap(err, "simplify")
	}
	rings := p.Faces()

	fmt.Fprintf(w, "faces:      %s -> %s\n", humanize.Comma(int64(before)), humanize.Comma(int64(len(rings))))
	fmt.Fprintf(w, "collapsed:  %s\n", humanize.Comma(int64(collapsed)))
	fmt.Fprintf(w, "degenerate: %s\n", humanize.Comma(int64(degenerate)))
	return writeOBJFile(out, verts, rings)
}
