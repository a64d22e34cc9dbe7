package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

// Recovery перехватывает panic в handler'ах и отвечает 500
func Recovery(log *logger.Logger, onPanic func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// http.ErrAbortHandler используется для намеренного обрыва ответа
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				if onPanic != nil {
					onPanic()
				}

				log.Error("Panic recovered", fmt.Errorf("%v", rec),
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", RequestIDFromContext(r.Context()),
					"stack", string(debug.Stack()),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
