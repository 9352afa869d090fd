// Package pathutil implements the purely-string path operations of
// spec.md §2 component 3: splitting a path into head/tail tokens and
// extracting a leaf name.
//
// Grounded on original_source/myfs_lib.c's path_split/path_file_name: the
// original strsep's the path in place and hands back pointers into the
// same buffer; this package instead produces immutable []string tokens
// (spec.md §9 "Path handling": operate on immutable views, don't mirror
// the source's in-place string splitting).
package pathutil

import "strings"

// Split tokenizes path on '/', skipping empty segments so that "/", "//",
// and "/a//b" normalize to [] and ["a", "b"] respectively (spec.md §4.5,
// §8 "Path normalization").
func Split(path string) []string {
	parts := strings.Split(path, "/")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

// Leaf returns the final path component, matching original_source's
// path_file_name: the basename after stripping any trailing slash. Returns
// "" for a path with no non-empty components (the root).
func Leaf(path string) string {
	tokens := Split(path)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

// Split1 splits path into its final component and the path of its
// containing directory ("/" prefixed, joined by "/"). It is the head/tail
// split spec.md §2 component 3 describes. The gateway's rename, link and
// unlink work from parent inodes and do not call it.
func Split1(path string) (dir string, leaf string) {
	tokens := Split(path)
	if len(tokens) == 0 {
		return "/", ""
	}
	leaf = tokens[len(tokens)-1]
	dir = "/" + strings.Join(tokens[:len(tokens)-1], "/")
	return dir, leaf
}
