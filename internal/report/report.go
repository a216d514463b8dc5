// Package report renders the result of a verification run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/octans/frontcheck/pkg/models"
)

// SaveJSON writes an indented JSON export of the report to path.
func SaveJSON(r *models.Report, path string) error {
	content, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(content, '\n'), 0644)
}

// Outcome writes the console contract for a run: nothing when err is nil,
// otherwise exactly one "Error: ..." line.
func Outcome(w io.Writer, err error) {
	if err == nil {
		return
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	fmt.Fprintf(w, "Error: %s\n", msg)
}
