package playback

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	echo "github.com/tphakala/go-audio-echo"
)

var errUsage = errors.New("usage: <param> <value> | show")

// ApplyCommand handles one control line of the form "<param> <value>".
// Toggles accept on/off, true/false or a number. "show" lists every value.
func ApplyCommand(params *echo.Params, line string) (string, error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 0:
		return "", nil
	case len(fields) == 1 && fields[0] == "show":
		return describeParams(params), nil
	case len(fields) != 2:
		return "", errUsage
	}

	id, ok := echo.LookupParam(strings.ToLower(fields[0]))
	if !ok {
		return "", fmt.Errorf("%w: %q", echo.ErrUnknownParam, fields[0])
	}
	info, _ := id.Info()

	value, err := parseValue(fields[1], info.Toggle)
	if err != nil {
		return "", fmt.Errorf("%s: %w", info.Key, err)
	}
	if err := params.SetValue(id, value); err != nil {
		return "", err
	}

	got, _ := params.Value(id)
	return formatParam(info, got), nil
}

func parseValue(s string, toggle bool) (float64, error) {
	if toggle {
		switch strings.ToLower(s) {
		case "on", "true", "yes":
			return 1, nil
		case "off", "false", "no":
			return 0, nil
		}
	}
	return strconv.ParseFloat(s, 64)
}

func describeParams(params *echo.Params) string {
	var b strings.Builder
	for i, info := range echo.ParamLayout() {
		if i > 0 {
			b.WriteString(", ")
		}
		v, _ := params.Value(info.ID)
		b.WriteString(formatParam(info, v))
	}
	return b.String()
}

func formatParam(info echo.ParamInfo, v float64) string {
	if info.Toggle {
		return fmt.Sprintf("%s=%v", info.Key, v > 0)
	}
	return fmt.Sprintf("%s=%.3f%s", info.Key, v, info.Label)
}

// ReadCommands applies control lines from r until EOF or ctx is done.
// Replies and errors go to logf.
func ReadCommands(ctx context.Context, r io.Reader, params *echo.Params, logf func(format string, args ...any)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		msg, err := ApplyCommand(params, scanner.Text())
		if err != nil {
			logf("%v", err)
			continue
		}
		if msg != "" {
			logf("%s", msg)
		}
	}
}
