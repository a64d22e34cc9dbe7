package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/ipo-quickread/internal/application/dto"
	"github.com/dreschagin/ipo-quickread/internal/application/port"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

// ListFilingsUseCase возвращает список подач из внешнего API
type ListFilingsUseCase struct {
	api    port.FilingsAPI
	logger *logger.Logger
}

// NewListFilingsUseCase создает новый use case
func NewListFilingsUseCase(api port.FilingsAPI, logger *logger.Logger) *ListFilingsUseCase {
	return &ListFilingsUseCase{
		api:    api,
		logger: logger,
	}
}

// Execute выполняет выборку подач.
// Не-2xx ответ upstream превращается в результат с Available=false,
// сетевые ошибки и ошибки разбора возвращаются вызывающему
func (uc *ListFilingsUseCase) Execute(ctx context.Context, query port.FilingsQuery) (*dto.FilingListDTO, error) {
	result := &dto.FilingListDTO{
		LookbackDays: query.Lookback.Days(),
		Forms:        query.Forms.String(),
		Filings:      []*dto.FilingDTO{},
	}

	filings, err := uc.api.ListFilings(ctx, query)
	if err != nil {
		if errors.Is(err, port.ErrNoData) {
			uc.logger.Warn("Filings are not available upstream", "reason", err.Error())
			return result, nil
		}
		return nil, fmt.Errorf("failed to list filings: %w", err)
	}

	uc.logger.Debug("Fetched filings", "count", len(filings), "days", query.Lookback.Days())

	result.Available = true
	result.Filings = dto.ToFilingDTOs(filings)

	return result, nil
}
