package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/akmonengine/hedra/geom"
	"github.com/pkg/errors"
)

// readOBJ parses the v and f records of a Wavefront OBJ stream. Face corners
// may carry texture and normal references, which are dropped. Negative indices
// count back from the last vertex read.
func readOBJ(r io.Reader) (geom.VertexArray, [][]int, error) {
	var data []float64
	var faces [][]int

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return geom.VertexArray{}, nil, errors.Errorf("line %d: vertex with %d coordinates", line, len(fields)-1)
			}
			for _, field := range fields[1:4] {
				c, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return geom.VertexArray{}, nil, errors.Wrapf(err, "line %d", line)
				}
				data = append(data, c)
			}
		case "f":
			if len(fields) < 4 {
				return geom.VertexArray{}, nil, errors.Errorf("line %d: face with %d corners", line, len(fields)-1)
			}
			count := len(data) / 3
			face := make([]int, 0, len(fields)-1)
			for _, field := range fields[1:] {
				index, err := strconv.Atoi(strings.SplitN(field, "/", 2)[0])
				if err != nil {
					return geom.VertexArray{}, nil, errors.Wrapf(err, "line %d", line)
				}
				switch {
				case index > 0:
					index--
				case index < 0:
					index += count
				}
				if index < 0 || index >= count {
					return geom.VertexArray{}, nil, errors.Errorf("line %d: vertex %s out of range", line, field)
				}
				face = append(face, index)
			}
			faces = append(faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return geom.VertexArray{}, nil, errors.Wrap(err, "reading obj")
	}
	return geom.NewVertexArray(data, 3), faces, nil
}

func readOBJFile(path string) (geom.VertexArray, [][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return geom.VertexArray{}, nil, errors.Wrap(err, "opening obj")
	}
	defer f.Close()

	verts, faces, err := readOBJ(f)
	return verts, faces, errors.Wrapf(err, "%s", path)
}

// writeOBJ writes the vertices used by faces, renumbered in order of first use.
func writeOBJ(w io.Writer, verts geom.VertexArray, faces [][]int) error {
	bw := bufio.NewWriter(w)

	remap := make(map[int]int)
	for _, face := range faces {
		for _, v := range face {
			if _, ok := remap[v]; ok {
				continue
			}
			remap[v] = len(remap) + 1
			p := verts.At(v)
			fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
		}
	}
	for _, face := range faces {
		bw.WriteString("f")
		for _, v := range face {
			fmt.Fprintf(bw, " %d", remap[v])
		}
		bw.WriteString("\n")
	}
	return errors.Wrap(bw.Flush(), "writing obj")
}

func writeOBJFile(path string, verts geom.VertexArray, faces [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating obj")
	}
	if err := writeOBJ(f, verts, faces); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// readPoints parses one point per line, as 3 coordinates separated by spaces
// or commas. Blank lines and lines starting with # are skipped.
func readPoints(r io.Reader) (geom.VertexArray, error) {
	var data []float64

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) != 3 {
			return geom.VertexArray{}, errors.Errorf("line %d: %d coordinates, want 3", line, len(fields))
		}
		for _, field := range fields {
			c, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return geom.VertexArray{}, errors.Wrapf(err, "line %d", line)
			}
			data = append(data, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return geom.VertexArray{}, errors.Wrap(err, "reading points")
	}
	return geom.NewVertexArray(data, 3), nil
}

func readPointFile(path string) (geom.VertexArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return geom.VertexArray{}, errors.Wrap(err, "opening point file")
	}
	defer f.Close()

	verts, err := readPoints(f)
	return verts, errors.Wrapf(err, "%s", path)
}
