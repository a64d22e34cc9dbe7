package handler

import (
	"net/http"

	"github.com/dreschagin/ipo-quickread/internal/application/port"
	"github.com/dreschagin/ipo-quickread/internal/application/usecase"
	"github.com/dreschagin/ipo-quickread/internal/domain/valueobject"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/http/middleware"
	"github.com/dreschagin/ipo-quickread/internal/interfaces/view"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

const (
	pageHome      = "home"
	pageEmbedList = "embed_filings"
)

// FilingsHandler обрабатывает страницы со списком подач
type FilingsHandler struct {
	listFilingsUC *usecase.ListFilingsUseCase
	homeLookback  valueobject.Lookback
	pages         PageRecorder
	logger        *logger.Logger
}

// NewFilingsHandler создает новый handler
func NewFilingsHandler(
	listFilingsUC *usecase.ListFilingsUseCase,
	homeLookback valueobject.Lookback,
	pages PageRecorder,
	logger *logger.Logger,
) *FilingsHandler {
	if !homeLookback.IsSet() {
		homeLookback = 7
	}

	return &FilingsHandler{
		listFilingsUC: listFilingsUC,
		homeLookback:  homeLookback,
		pages:         pages,
		logger:        logger,
	}
}

// ShowHome отображает подачи за последние N дней.
// N можно переопределить параметром ?days=, фильтр форм параметром ?form=S-1,F-1
func (h *FilingsHandler) ShowHome(w http.ResponseWriter, r *http.Request) {
	query := port.FilingsQuery{
		Lookback: valueobject.ParseLookback(r.URL.Query().Get("days"), h.homeLookback),
		Forms:    valueobject.ParseFormFilter(r.URL.Query().Get("form")),
	}

	list, err := h.listFilingsUC.Execute(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to load filings", err,
			"page", pageHome,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		h.pages.PageRendered(pageHome, stateError)
		renderError(w, r, http.StatusBadGateway, h.logger)
		return
	}

	state := stateOK
	if !list.Available {
		state = stateNoData
	}

	if err := renderPage(r.Context(), w, http.StatusOK, view.Home(list)); err != nil {
		h.logger.Error("Failed to render home page", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	h.pages.PageRendered(pageHome, state)
}

// ShowEmbedList отображает встраиваемый список всех подач
func (h *FilingsHandler) ShowEmbedList(w http.ResponseWriter, r *http.Request) {
	list, err := h.listFilingsUC.Execute(r.Context(), port.FilingsQuery{
		Forms: valueobject.ParseFormFilter(r.URL.Query().Get("form")),
	})
	if err != nil {
		h.logger.Error("Failed to load filings", err,
			"page", pageEmbedList,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		h.pages.PageRendered(pageEmbedList, stateError)
		renderError(w, r, http.StatusBadGateway, h.logger)
		return
	}

	state := stateOK
	if !list.Available || list.IsEmpty() {
		state = stateNoData
	}

	if err := renderPage(r.Context(), w, http.StatusOK, view.FilingsEmbed(list)); err != nil {
		h.logger.Error("Failed to render embedded filings", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	h.pages.PageRendered(pageEmbedList, state)
}
