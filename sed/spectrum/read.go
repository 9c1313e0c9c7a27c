package spectrum

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadColumns parses the first two numeric columns of a whitespace
// separated table. Blank lines and lines starting with '#' are skipped.
func ReadColumns(r io.Reader) (x, y []float64, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("%w: line %d: want 2 columns, got %d", ErrInvalidTable, line, len(fields))
		}
		a, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrInvalidTable, line, err)
		}
		b, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: line %d: %v", ErrInvalidTable, line, err)
		}
		x = append(x, a)
		y = append(y, b)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return x, y, nil
}
