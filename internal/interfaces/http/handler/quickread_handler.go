package handler

import (
	"errors"
	"net/http"

	"github.com/dreschagin/ipo-quickread/internal/application/usecase"
	"github.com/dreschagin/ipo-quickread/internal/domain/valueobject"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/http/middleware"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/view"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

const pageQuickRead = "quickread"

// QuickReadHandler обрабатывает встраиваемую страницу QuickRead
type QuickReadHandler struct {
	getQuickReadUC *usecase.GetQuickReadUseCase
	pages          PageRecorder
	logger         *logger.Logger
}

// NewQuickReadHandler создает новый handler
func NewQuickReadHandler(
	getQuickReadUC *usecase.GetQuickReadUseCase,
	pages PageRecorder,
	logger *logger.Logger,
) *QuickReadHandler {
	return &QuickReadHandler{
		getQuickReadUC: getQuickReadUC,
		pages:          pages,
		logger:         logger,
	}
}

// ShowQuickRead отображает QuickRead для подачи из параметра ?acc=
func (h *QuickReadHandler) ShowQuickRead(w http.ResponseWriter, r *http.Request) {
	res, err := h.getQuickReadUC.Execute(r.Context(), r.URL.Query().Get("acc"))
	switch {
	case errors.Is(err, valueobject.ErrMissingAccession):
		if err := renderPage(r.Context(), w, http.StatusOK, view.MissingAccession()); err != nil {
			h.logger.Error("Failed to render missing accession page", err)
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
			return
		}
		h.pages.PageRendered(pageQuickRead, stateMissingParam)
		return
	case err != nil:
		h.logger.Error("Failed to load quickread", err,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		h.pages.PageRendered(pageQuickRead, stateError)
		renderError(w, r, http.StatusBadGateway, h.logger)
		return
	}

	state := stateOK
	if !res.Available {
		state = stateNoData
	}

	if err := renderPage(r.Context(), w, http.StatusOK, view.QuickReadPage(res)); err != nil {
		h.logger.Error("Failed to render quickread", err, "accession", res.Accession)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	h.pages.PageRendered(pageQuickRead, state)
}
