package fs

import (
	"runtime"
	"strings"
	"unicode"
)

// NormalizeVolumePath turns a bare Windows drive reference ("C:", "c:\")
// into its raw volume path (\\.\C:). Any other path is returned unchanged.
func NormalizeVolumePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}
	return normalizeVolumePath(path)
}

func normalizeVolumePath(path string) string {
	p := strings.ReplaceAll(strings.TrimSpace(path), "/", `\`)
	upper := strings.ToUpper(p)

	if strings.HasPrefix(upper, `\\.\`) {
		return upper
	}

	drive := strings.TrimSuffix(upper, `\`)
	if len(drive) == 2 && drive[1] == ':' && unicode.IsLetter(rune(drive[0])) {
		return `\\.\` + drive
	}
	return path
}
