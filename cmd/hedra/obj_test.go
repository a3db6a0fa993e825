package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/akmonengine/hedra/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeOBJ = `# unit cube
v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
vn 0 0 1
f 1 4 3 2
f 5/1/1 6/2/1 7/3/1 8/4/1
f 1 2 6 5
f 3 4 8 7
f 1 5 8 4
f -7 -6 -2 -3
`

func TestReadOBJ(t *testing.T) {
	verts, faces, err := readOBJ(strings.NewReader(cubeOBJ))
	require.NoError(t, err)

	require.Equal(t, 8, verts.Len())
	assert.Equal(t, mgl64.Vec3{1, 1, -1}, verts.At(2))
	assert.Equal(t, mgl64.Vec3{-1, 1, 1}, verts.At(7))

	require.Len(t, faces, 6)
	assert.Equal(t, []int{0, 3, 2, 1}, faces[0])
	assert.Equal(t, []int{4, 5, 6, 7}, faces[1], "texture and normal references are dropped")
	assert.Equal(t, []int{1, 2, 6, 5}, faces[5], "negative indices count back from the last vertex")
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad coordinate", "v 1 two 3\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 x\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"negative index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -1 -2 -4\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readOBJ(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestWriteOBJ(t *testing.T) {
	verts := geom.FromVec3([]mgl64.Vec3{
		{9, 9, 9},
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0.5, 0.25, 2},
	})

	var buf bytes.Buffer
	require.NoError(t, writeOBJ(&buf, verts, [][]int{{1, 2, 3}, {2, 4, 3}}))

	want := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 0.5 0.25 2\nf 1 2 3\nf 2 4 3\n"
	assert.Equal(t, want, buf.String(), "unused vertices are dropped")

	read, faces, err := readOBJ(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, read.Len())
	assert.Equal(t, [][]int{{0, 1, 2}, {1, 3, 2}}, faces)
}

func TestReadPoints(t *testing.T) {
	input := `# corners
0 0 0
1,0,0

0, 1, 0
	0.5	0.5	1e1
`
	verts, err := readPoints(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 4, verts.Len())
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, verts.At(2))
	assert.Equal(t, mgl64.Vec3{0.5, 0.5, 10}, verts.At(3))

	_, err = readPoints(strings.NewReader("0 0\n"))
	assert.Error(t, err)
	_, err = readPoints(strings.NewReader("0 0 z\n"))
	assert.Error(t, err)
}
