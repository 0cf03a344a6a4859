// Package params разбирает параметры строки запроса.
package params

import (
	"net/http"
	"strconv"
)

// Int возвращает целое значение параметра или def, если параметр пуст или не число.
func Int(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
