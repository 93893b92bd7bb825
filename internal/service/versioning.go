package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FirstVersion is the label of a client's first standards batch.
const FirstVersion = "V1"

var versionLabel = regexp.MustCompile(`^(.*?)(\d+)$`)

// NextVersion returns the successor of the highest-numbered label.
//
// A label is a prefix followed by trailing digits ("V3", "P01", "Rev 7"). The result
// keeps the prefix and zero-padded width of the highest label and adds one to its
// number, so "P09" is followed by "P10" and "V9" by "V10". Labels without trailing
// digits are ignored. With no usable label the result is FirstVersion.
func NextVersion(labels []string) string {
	var (
		found  bool
		prefix string
		width  int
		best   int
	)
	for _, l := range labels {
		m := versionLabel.FindStringSubmatch(strings.TrimSpace(l))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if !found || n > best {
			found, prefix, width, best = true, m[1], len(m[2]), n
		}
	}
	if !found {
		return FirstVersion
	}
	return fmt.Sprintf("%s%0*d", prefix, width, best+1)
}
