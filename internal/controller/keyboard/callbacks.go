package keyboard

import (
	"fmt"
	"strconv"
	"strings"
)

// Префиксы callback data. Формат: prefix:value
const (
	AcceptRequest      = "req_accept"
	RejectRequest      = "req_reject"
	DeleteDay          = "avail_del"
	ShowWeek           = "avail_week"
	CancelDialog       = "dialog_cancel"
	ConfirmInterpreter = "become_interpreter"
	Noop               = "noop"

	separator = ":"
)

// Data собирает callback data
func Data(prefix string, value int64) string {
	return prefix + separator + strconv.FormatInt(value, 10)
}

// Parse разбирает callback data на префикс и числовое значение.
// Для данных без значения возвращает 0.
func Parse(data string) (prefix string, value int64, err error) {
	prefix, raw, found := strings.Cut(data, separator)
	if !found {
		return data, 0, nil
	}
	value, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid callback data %q: %w", data, err)
	}
	return prefix, value, nil
}
