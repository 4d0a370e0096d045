package source

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

const (
	textDetectionSampleSize      = 4096
	nonPrintableThresholdPercent = 30
)

type unicodeEncoding int

const (
	encodingUnknown unicodeEncoding = iota
	encodingUTF8BOM
	encodingUTF16LE
	encodingUTF16BE
)

var binaryExtensions = map[string]struct{}{
	".7z":   {},
	".bin":  {},
	".bmp":  {},
	".exe":  {},
	".gif":  {},
	".gz":   {},
	".jpeg": {},
	".jpg":  {},
	".pdf":  {},
	".png":  {},
	".so":   {},
	".tar":  {},
	".tiff": {},
	".wasm": {},
	".webp": {},
	".zip":  {},
}

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

func isXZ(content []byte) bool {
	return bytes.HasPrefix(content, xzMagic)
}

// isText sniffs the head of content. name is only used to reject obvious
// binary extensions before looking at the bytes.
func isText(name string, content []byte) bool {
	if looksBinaryByExtension(name) {
		return false
	}
	if len(content) == 0 {
		return true
	}

	sample := content
	if len(sample) > textDetectionSampleSize {
		sample = sample[:textDetectionSampleSize]
	}
	if detectUnicodeEncoding(sample) != encodingUnknown {
		return true
	}
	if bytes.IndexByte(sample, 0x00) != -1 {
		return false
	}
	if utf8.Valid(sample) {
		return true
	}

	nonPrintable := 0
	for _, b := range sample {
		if !isCommonTextByte(b) {
			nonPrintable++
		}
	}
	return nonPrintable*100/len(sample) < nonPrintableThresholdPercent
}

func looksBinaryByExtension(name string) bool {
	if name == "" {
		return false
	}
	_, ok := binaryExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func isCommonTextByte(b byte) bool {
	switch {
	case b == '\t' || b == '\n' || b == '\r':
		return true
	case b >= 0x20 && b <= 0x7E:
		return true
	case b >= 0x80:
		return true
	default:
		return false
	}
}

func detectUnicodeEncoding(sample []byte) unicodeEncoding {
	switch {
	case bytes.HasPrefix(sample, []byte{0xEF, 0xBB, 0xBF}):
		return encodingUTF8BOM
	case bytes.HasPrefix(sample, []byte{0xFF, 0xFE}):
		return encodingUTF16LE
	case bytes.HasPrefix(sample, []byte{0xFE, 0xFF}):
		return encodingUTF16BE
	default:
		return encodingUnknown
	}
}

// normalizeText converts BOM-marked content into a UTF-8 string without the BOM.
func normalizeText(content []byte) (string, error) {
	switch detectUnicodeEncoding(content) {
	case encodingUTF8BOM:
		return string(content[3:]), nil
	case encodingUTF16LE:
		return decodeUTF16(content, unicode.LittleEndian)
	case encodingUTF16BE:
		return decodeUTF16(content, unicode.BigEndian)
	default:
		return string(content), nil
	}
}

func decodeUTF16(content []byte, endian unicode.Endianness) (string, error) {
	out, err := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder().Bytes(content)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
