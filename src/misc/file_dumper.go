package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDumper writes line-oriented reports. Failures here are environment
// problems, not simulation state, so they panic.
type FileDumper struct {
	filepath string
}

func (this *FileDumper) Init(filepath_ string) {
	this.filepath = filepath_
}

func (this *FileDumper) WriteLines(lines []string) {
	dirpath := filepath.Dir(this.filepath)
	if dirpath != "." {
		if err := os.MkdirAll(dirpath, 0o755); err != nil {
			panic(err)
		}
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(this.filepath, []byte(content), 0o644); err != nil {
		panic(err)
	}
}
