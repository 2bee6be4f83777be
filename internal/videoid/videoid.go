package videoid

import "strings"

// Resolve extracts the canonical video id from a share link. Two shapes are
// recognized: short links (youtu.be/<id>, optionally with a query suffix)
// where the id is the final path segment, and watch links carrying a v=
// parameter, where the id runs until the next &. Anything else is not a
// video link; that is a normal outcome, not an error.
func Resolve(ref string) (string, bool) {
	switch {
	case strings.Contains(ref, "youtu.be"):
		id := ref[strings.LastIndex(ref, "/")+1:]
		if i := strings.Index(id, "?"); i >= 0 {
			id = id[:i]
		}
		if id == "" {
			return "", false
		}
		return id, true
	case strings.Contains(ref, "v="):
		id := ref[strings.LastIndex(ref, "v=")+2:]
		if i := strings.Index(id, "&"); i >= 0 {
			id = id[:i]
		}
		if id == "" {
			return "", false
		}
		return id, true
	}
	return "", false
}
