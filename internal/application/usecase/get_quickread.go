package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/ipo-quickread/internal/application/dto"
	"github.com/dreschagin/ipo-quickread/internal/application/port"
	"github.com/dreschagin/ipo-quickread/internal/domain/valueobject"
	"github.com/dreschagin/ipo-quickread/pkg/logger"
)

// GetQuickReadUseCase возвращает QuickRead для одной подачи
type GetQuickReadUseCase struct {
	api    port.FilingsAPI
	logger *logger.Logger
}

// NewGetQuickReadUseCase создает новый use case
func NewGetQuickReadUseCase(api port.FilingsAPI, logger *logger.Logger) *GetQuickReadUseCase {
	return &GetQuickReadUseCase{
		api:    api,
		logger: logger,
	}
}

// Execute получает QuickRead по сырому значению параметра acc.
// Пустой acc возвращает valueobject.ErrMissingAccession
func (uc *GetQuickReadUseCase) Execute(ctx context.Context, rawAccession string) (*dto.QuickReadDTO, error) {
	accession, err := valueobject.NewAccession(rawAccession)
	if err != nil {
		return nil, err
	}

	result := &dto.QuickReadDTO{Accession: accession.String()}

	quickRead, err := uc.api.GetQuickRead(ctx, accession)
	if err != nil {
		if errors.Is(err, port.ErrNoData) {
			uc.logger.Info("QuickRead is not available", "accession", accession.String(), "reason", err.Error())
			return result, nil
		}
		return nil, fmt.Errorf("failed to get quickread for %s: %w", accession, err)
	}

	result.Available = true
	result.Summary = dto.FromQuickRead(quickRead)

	return result, nil
}
