package main

import (
	"fmt"
	"io"
	"os"

	"github.com/akmonengine/hedra/mesh"
	"github.com/akmonengine/hedra/soup"
	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var soupCmd subCommand

func init() {
	soupCmd.Cmd = &cobra.Command{
		Use:   "soup",
		Short: "Build and serialize the polygon soup of an OBJ mesh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSoup(cmd.OutOrStdout())
		},
	}
	soupCmd.EnvPrefix = "HEDRA_SOUP"

	flag := soupCmd.Cmd.Flags()
	flag.String("obj", "", "Input mesh, Wavefront OBJ")
	flag.String("out", "", "Serialized soup output file")
	flag.Bool("optimize", true, "Rotate the tree to minimize the total box surface")
	flag.Bool("compress", false, "Wrap the output in a snappy stream")

	register(&soupCmd)
}

func runSoup(w io.Writer) error {
	conf := soupCmd.Conf
	in, out := conf.GetString("obj"), conf.GetString("out")
	if in == "" || out == "" {
		return errors.New("soup: --obj and --out are required")
	}

	var cfg soup.Config
	if err := conf.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "soup: reading config")
	}

	verts, faces, err := readOBJFile(in)
	if err != nil {
		return err
	}
	p := buildPolyhedra(faces)
	s := soup.Create(soup.NewBuilderFromPolyhedra(p, verts), cfg)

	if err := writeSoupFile(out, s, conf.GetBool("compress")); err != nil {
		return err
	}
	info, err := os.Stat(out)
	if err != nil {
		return errors.Wrap(err, "soup")
	}

	printSoupStats(w, s)
	fmt.Fprintf(w, "size:    %s\n", humanize.IBytes(uint64(info.Size())))
	return nil
}

// buildPolyhedra links the faces into a mesh. Faces that would break the
// manifold structure are skipped.
func buildPolyhedra(faces [][]int) *mesh.Polyhedra {
	p := mesh.New()
	p.BeginFace()
	skipped := 0
	for _, face := range faces {
		if p.AddFace(face, nil) == mesh.NilEdge {
			skipped++
		}
	}
	p.EndFace()

	if skipped > 0 {
		glog.Warningf("%d of %d faces are not manifold and were skipped", skipped, len(faces))
	}
	return p
}

func writeSoupFile(path string, s *soup.Soup, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating soup file")
	}

	var dst io.Writer = f
	var sw *snappy.Writer
	if compress {
		sw = snappy.NewBufferedWriter(f)
		dst = sw
	}
	if err := s.Serialize(dst); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if sw != nil {
		if err := sw.Close(); err != nil {
			f.Close()
			return errors.Wrapf(err, "compressing %s", path)
		}
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

func soupFaceCount(s *soup.Soup) int {
	count := 0
	s.ForAllSectors(s.GetAABB(), func(soup.Face) soup.Status {
		count++
		return soup.Continue
	})
	return count
}

func printSoupStats(w io.Writer, s *soup.Soup) {
	box := s.GetAABB()
	fmt.Fprintf(w, "faces:   %s\n", humanize.Comma(int64(soupFaceCount(s))))
	fmt.Fprintf(w, "nodes:   %s\n", humanize.Comma(int64(s.NodeCount())))
	fmt.Fprintf(w, "indices: %s\n", humanize.Comma(int64(s.IndexCount())))
	fmt.Fprintf(w, "points:  %s\n", humanize.Comma(int64(s.PointCount())))
	if !box.IsEmpty() {
		fmt.Fprintf(w, "bounds:  %s - %s\n", formatVec(box.Min), formatVec(box.Max))
	}
}

func formatVec(v [3]float64) string {
	return fmt.Sprintf("(%s, %s, %s)", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
}
