//go:build !unix && !windows

package psutil

func classifyOS(error) (Kind, rule, bool) {
	return Unclassified, ruleFinal, false
}
