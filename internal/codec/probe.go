package codec

import (
	"bytes"
	"regexp"
	"strconv"
)

var (
	encryptRefPattern = regexp.MustCompile(`/Encrypt\s+(\d+)\s+(\d+)\s+R`)
	fileIDPattern     = regexp.MustCompile(`/ID\s*\[\s*<([0-9A-Fa-f]*)>`)
	versionPattern    = regexp.MustCompile(`/V\s+(\d+)`)
	lengthPattern     = regexp.MustCompile(`/Length\s+(\d+)`)
)

// encryptRef finds the object number of the encryption dictionary referenced
// by the last trailer (or cross-reference stream) in data.
func encryptRef(data []byte) (int, bool) {
	matches := encryptRefPattern.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(matches[len(matches)-1][1]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// probeEncryption reads the cipher and file identifier straight from the raw
// bytes. It serves documents that cannot be opened without their password.
func probeEncryption(data []byte) (method string, fileID string) {
	if ids := fileIDPattern.FindAllSubmatch(data, -1); len(ids) > 0 {
		fileID = string(bytes.ToLower(ids[len(ids)-1][1]))
	}

	num, ok := encryptRef(data)
	if !ok {
		return "", fileID
	}
	dict := encryptionObject(data, num)
	if dict == nil {
		return "", fileID
	}

	v := 0
	if m := versionPattern.FindSubmatch(dict); m != nil {
		v, _ = strconv.Atoi(string(m[1]))
	}
	length := 0
	for _, m := range lengthPattern.FindAllSubmatch(dict, -1) {
		if l, err := strconv.Atoi(string(m[1])); err == nil && l > length {
			length = l
		}
	}
	aes := bytes.Contains(dict, []byte("/AESV2")) || bytes.Contains(dict, []byte("/AESV3"))
	return encryptionMethod(v, length, aes), fileID
}

func encryptionObject(data []byte, num int) []byte {
	pattern, err := regexp.Compile(`(?s)(?:^|[^0-9])` + strconv.Itoa(num) + `\s+\d+\s+obj(.*?)endobj`)
	if err != nil {
		return nil
	}
	m := pattern.FindSubmatch(data)
	if m == nil {
		return nil
	}
	return m[1]
}
