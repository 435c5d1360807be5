package repo

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// ReadSource returns the text of a source file. Files that are not valid
// UTF-8 are decoded with the sniffed legacy encoding (Windows-1252 when
// nothing better is detected), which is common in old PHP and C# code.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeSource(data), nil
}

// DecodeSource converts raw file bytes to a UTF-8 string.
func DecodeSource(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	enc, _, _ := charset.DetermineEncoding(data, "text/plain")
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
