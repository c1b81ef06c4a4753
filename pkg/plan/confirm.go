package plan

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prompts for approval of the plan. Only an explicit "y" or
// "yes" (any case) accepts; everything else, including EOF, declines.
func Confirm(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, "Confirm the cleanup plan? [y/N]: ")
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
