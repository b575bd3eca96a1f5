package testimage

import (
	"fmt"
	"strconv"
)

// TextContent returns the deterministic body of GPL_3_0.TXT: 1000 numbered lines of 50 bytes.
func TextContent() []byte {
	var out []byte
	for i := 0; i < 1000; i++ {
		out = append(out, fmt.Sprintf("%04d The quick brown fox jumps over the lazy dog.\n", i)...)
	}
	return out
}

// TextContentMD5 is the md5 digest of TextContent.
const TextContentMD5 = "2d7c74a2b4a774f3aa0b41627e18c14e"

// NumberedFiles returns count files named "1" to count, each holding its own name.
func NumberedFiles(count int) []*Node {
	nodes := make([]*Node, 0, count)
	for i := 1; i <= count; i++ {
		name := strconv.Itoa(i)
		nodes = append(nodes, File(name, []byte(name)))
	}
	return nodes
}

// StandardTree is the tree used across the test suites:
//
//	/a/b/c/1 .. /a/b/c/200
//	/gpl_3_0.txt
func StandardTree() *Node {
	return Dir("",
		Dir("a",
			Dir("b",
				Dir("c", NumberedFiles(200)...),
			),
		),
		File("gpl_3_0.txt", TextContent()),
	)
}

// Standard builds StandardTree with a Joliet descriptor.
func Standard() *Image {
	img, err := Build(StandardTree(), Options{Joliet: true, VolumeIdentifier: "CDROM"})
	if err != nil {
		panic(err)
	}
	return img
}

// MustBuild is Build that panics on error.
func MustBuild(root *Node, opts Options) *Image {
	img, err := Build(root, opts)
	if err != nil {
		panic(err)
	}
	return img
}
