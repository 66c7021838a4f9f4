package biz

import (
	"github.com/DevRickLin/daily-digest/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Scanner    *usecase.ScannerUsecase
	Summarizer *usecase.SummarizerUsecase
	Digest     *usecase.DigestUsecase
}
