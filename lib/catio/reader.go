/*package catio reads the text particle catalogs that sit next to the binary
grid files of a snapshot. Orion sink and star particle files have a one-line
header followed by one space-separated particle record per line.
*/
package catio

import (
	"bytes"
	"os"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

// ZstdExt is the extension of zstd-compressed catalogs.
const ZstdExt = ".zst"

// ReadLines reads every line of a text file. Files ending in ZstdExt are
// decompressed first.
func ReadLines(fileName string) ([]string, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not read the catalog %s", fileName)
	}

	if strings.HasSuffix(fileName, ZstdExt) {
		b, err = zstd.Decompress(nil, b)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not decompress the "+
				"catalog %s", fileName)
		}
	}

	return Text(b), nil
}

// Text splits a block of text into lines. A trailing newline doesn't start a
// new line, and "\r\n" line endings are allowed.
func Text(text []byte) []string {
	if len(text) == 0 { return []string{ } }

	text = bytes.TrimSuffix(text, []byte("\n"))
	lines := strings.Split(string(text), "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines
}

// Fields splits a record into its entries. Entries are separated by single
// spaces after leading and trailing whitespace is removed.
func Fields(line string) []string {
	return strings.Split(strings.TrimSpace(line), " ")
}
