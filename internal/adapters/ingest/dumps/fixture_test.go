package dumps

import (
	"fmt"
	"strings"
	"testing"

	kit "pvcreek/internal/platform/testkit"
)

// sampleLines builds n rows cycling through a few domain codes
func sampleLines(n int) []string {
	codes := []string{"en", "en.m", "de", "no", "commons.m"}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s Page_%d %d 0", codes[i%len(codes)], i, i%23)
	}
	return out
}

func gz(t *testing.T, body string) []byte { return kit.Gzip(t, body) }

func writeFile(t *testing.T, name string, b []byte) string { return kit.WriteFile(t, name, b) }

func joinLines(lines []string) string { return strings.Join(lines, "\n") + "\n" }
