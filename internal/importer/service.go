package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/finco/internal/importer/finco"
	"github.com/MrJamesThe3rd/finco/internal/importer/statement"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type Service struct {
	fincoImporter     Importer
	statementImporter Importer
}

func NewService() *Service {
	return &Service{
		fincoImporter:     finco.NewParser(),
		statementImporter: statement.NewParser(),
	}
}

// Import parses r with the importer registered for format. An empty format means FinCo.
func (s *Service) Import(format Format, r io.Reader) ([]ledger.Transaction, error) {
	var importer Importer

	switch format {
	case FormatFinCo, "":
		importer = s.fincoImporter
	case FormatStatement:
		importer = s.statementImporter
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return importer.Parse(r)
}
