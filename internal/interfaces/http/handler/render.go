package handler

import (
	"bytes"
	"context"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dreschagin/ipo-quickread/internal/interfaces/http/middleware"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/view"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

// Состояния отрендеренной страницы для метрик
const (
	stateOK           = "ok"
	stateNoData       = "no_data"
	stateMissingParam = "missing_param"
	stateError        = "error"
)

// PageRecorder принимает факт рендеринга страницы (page, state)
type PageRecorder interface {
	PageRendered(page, state string)
}

// renderPage рендерит компонент в буфер и только потом пишет ответ,
// чтобы ошибка рендеринга не оставляла клиенту половину страницы
func renderPage(ctx context.Context, w http.ResponseWriter, status int, component templ.Component) error {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// renderError отвечает страницей ошибки. Используется для сетевых ошибок
// и ошибок разбора ответа upstream
func renderError(w http.ResponseWriter, r *http.Request, status int, log *logger.Logger) {
	requestID := middleware.RequestIDFromContext(r.Context())
	if err := renderPage(r.Context(), w, status, view.ErrorPage(status, requestID)); err != nil {
		log.Error("Failed to render error page", err, "request_id", requestID)
		http.Error(w, http.StatusText(status), status)
	}
}
