package port

import (
	"context"
	"errors"
	"fmt"

	"github.com/dreschagin/ipo-quickread/internal/domain/entity"
	"github.com/dreschagin/ipo-quickread/internal/domain/valueobject"
)

// ErrNoData означает, что upstream ответил не-2xx статусом и данных нет
var ErrNoData = errors.New("no data available")

// FilingsQuery параметры выборки подач
type FilingsQuery struct {
	Lookback valueobject.Lookback
	Forms    valueobject.FormFilter
}

// FilingsAPI определяет интерфейс внешнего API подач и QuickRead.
type FilingsAPI interface {
	// ListFilings возвращает подачи в порядке, заданном API.
	ListFilings(ctx context.Context, query FilingsQuery) ([]entity.Filing, error)

	// GetQuickRead возвращает выжимку для одной подачи.
	GetQuickRead(ctx context.Context, accession valueobject.Accession) (*entity.QuickRead, error)
}

// StatusError upstream ответил не-2xx статусом
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Endpoint, e.StatusCode)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrNoData)
func (e *StatusError) Unwrap() error {
	return ErrNoData
}
