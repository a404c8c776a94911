package misc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TableLoader reads the hex tables emitted by the quantization flow: one
// unsigned byte per line in two hex digits, reinterpreted two's-complement
// into int8. Labels are plain decimal lines.
type TableLoader struct {
	dirpath string
}

func (this *TableLoader) Init(dirpath string) {
	this.dirpath = dirpath
}

// LoadInt8 reads a hex table and checks it holds exactly expected values.
func (this *TableLoader) LoadInt8(filename string, expected int) ([]int8, error) {
	values, err := this.LoadAllInt8(filename)
	if err != nil {
		return nil, err
	}
	if len(values) != expected {
		return nil, fmt.Errorf("%s: expected %d values, got %d", filename, expected, len(values))
	}
	return values, nil
}

// LoadAllInt8 reads a hex table of any length.
func (this *TableLoader) LoadAllInt8(filename string) ([]int8, error) {
	filepath_ := filepath.Join(this.dirpath, filename)
	file, err := os.Open(filepath_)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	values := make([]int8, 0)
	scanner := bufio.NewScanner(file)
	line_number := 0
	for scanner.Scan() {
		line_number++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		raw, err := strconv.ParseUint(line, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %q is not a hex byte", filename, line_number, line)
		}
		values = append(values, int8(uint8(raw)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return values, nil
}

// LoadLabels reads one decimal class label (0-9) per line.
func (this *TableLoader) LoadLabels(filename string) ([]int, error) {
	filepath_ := filepath.Join(this.dirpath, filename)
	file, err := os.Open(filepath_)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	labels := make([]int, 0)
	scanner := bufio.NewScanner(file)
	line_number := 0
	for scanner.Scan() {
		line_number++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		label, err := strconv.Atoi(line)
		if err != nil || label < 0 || label > 9 {
			return nil, fmt.Errorf("%s line %d: %q is not a class label", filename, line_number, line)
		}
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return labels, nil
}
