package handler

import "strconv"

func formatSizeLimit(bytes int) string {
	const mb = 1024 * 1024
	if bytes < mb {
		return strconv.Itoa(bytes) + " bytes"
	}
	if bytes%mb != 0 {
		return strconv.FormatFloat(float64(bytes)/mb, 'f', 1, 64) + " MB"
	}
	return strconv.Itoa(bytes/mb) + " MB"
}
