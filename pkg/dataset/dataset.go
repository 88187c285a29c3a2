// Package dataset produces the integer datasets a run scatters.
package dataset

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const DefaultBufferSize = 1024 * 1024 // 1MB

// Sequence returns the dataset 1, 2, ..., n.
func Sequence(n int) []int64 {
	if n <= 0 {
		return []int64{}
	}
	values := make([]int64, n)
	for i := range values {
		values[i] = int64(i + 1)
	}
	return values
}

// FindFiles returns the regular files matched by the given doublestar
// patterns, sorted and without duplicates.
func FindFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, name := range matches {
			info, err := os.Lstat(name)
			if err != nil {
				continue
			}
			if info.Mode().IsRegular() {
				files = append(files, name)
			}
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Load reads every integer from the files matched by pattern, in file
// name order. Values are separated by whitespace or commas; blank lines
// and lines starting with '#' are skipped.
func Load(pattern string) ([]int64, error) {
	files, err := FindFiles([]string{pattern})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files matched the input pattern: %s", pattern)
	}

	var values []int64
	for _, file := range files {
		values, err = readFile(file, values)
		if err != nil {
			return nil, err
		}
	}
	if values == nil {
		values = []int64{}
	}
	return values, nil
}

func readFile(path string, values []int64) ([]int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), DefaultBufferSize)

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		for _, field := range fields {
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: invalid integer %q", path, line, field)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// Save writes values to path, one per line.
func Save(path string, values []int64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	for _, v := range values {
		if _, err := w.WriteString(strconv.FormatInt(v, 10) + "\n"); err != nil {
			file.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
