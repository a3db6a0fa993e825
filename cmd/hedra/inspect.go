package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/akmonengine/hedra/soup"
	"github.com/dustin/go-humanize"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// snappyMagic opens every snappy framed stream.
var snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")

var inspectCmd subCommand

func init() {
	inspectCmd.Cmd = &cobra.Command{
		Use:   "inspect",
		Short: "Print the statistics of a serialized soup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout())
		},
	}
	inspectCmd.EnvPrefix = "HEDRA_INSPECT"

	inspectCmd.Cmd.Flags().String("soup", "", "Serialized soup file, plain or snappy compressed")

	register(&inspectCmd)
}

func runInspect(w io.Writer) error {
	path := inspectCmd.Conf.GetString("soup")
	if path == "" {
		return errors.New("inspect: --soup is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "inspect")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "inspect")
	}

	s, compressed, err := readSoup(f)
	if err != nil {
		return errors.Wrapf(err, "inspect %s", path)
	}

	printSoupStats(w, s)
	fmt.Fprintf(w, "size:    %s (compressed: %t)\n", humanize.IBytes(uint64(info.Size())), compressed)
	return nil
}

// readSoup deserializes a soup, unwrapping the snappy stream when present.
func readSoup(r io.Reader) (s *soup.Soup, compressed bool, err error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(snappyMagic))
	if err != nil && err != io.EOF {
		return nil, false, errors.Wrap(err, "reading header")
	}

	var src io.Reader = br
	if bytes.Equal(head, snappyMagic) {
		src = snappy.NewReader(br)
		compressed = true
	}
	s, err = soup.Deserialize(src)
	return s, compressed, err
}
