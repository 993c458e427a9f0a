package internal

import (
	"os"
	"strings"
)

// SourceCode is a file split into lines, without line terminators.
type SourceCode struct {
	Lines []string
}

func NewSourceCode(content []byte) *SourceCode {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	return &SourceCode{Lines: strings.Split(text, "\n")}
}

// ReadSourceCode reads a file and splits it into lines.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}
