package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pairtrack/pairtrack/internal/service"
)

const genericError = "Something went wrong. Please try again."

// failure turns a service error into the status and message shown inline.
// Errors caused by user input keep their message; anything else is logged.
func failure(err error, msg string, attrs ...any) (int, string) {
	if text, ok := service.UserMessage(err); ok {
		return http.StatusUnprocessableEntity, text
	}
	slog.Error(msg, append(attrs, "error", err)...)
	return http.StatusInternalServerError, genericError
}

// notices are the success messages admin pages show after a redirect.
var notices = map[string]string{
	"auto":    "Members were paired for this week.",
	"paired":  "Pair created.",
	"removed": "Pair removed.",
	"reset":   "Week reset to the current Monday..Sunday.",
	"started": "A new week has started.",
	"range":   "Week range updated.",
	"role":    "Role updated.",
}

func notice(r *http.Request) string {
	return notices[r.URL.Query().Get("notice")]
}

// formInt parses an optional integer form field. ok is false when the field
// is present but not a number.
func formInt(r *http.Request, name string) (value *int, ok bool) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil, true
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &i, true
}
