package parsers

import (
	"fmt"

	"github.com/username/recupera/backend/src/models"
	"github.com/username/recupera/backend/src/parsers/nfe"
	"github.com/username/recupera/backend/src/parsers/pgdas"
	"github.com/username/recupera/backend/src/parsers/sped"
)

// GetParser selects the parser for a declared document kind. Each
// government layout evolves independently, so parsers stay isolated
// behind this factory.
func GetParser(kind models.DocumentKind) (Parser, error) {
	switch kind {
	case models.KindSped:
		return sped.NewParser(), nil
	case models.KindPgdas:
		return pgdas.NewParser(), nil
	case models.KindNfe:
		return nfe.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for document kind: %s", kind)
	}
}
