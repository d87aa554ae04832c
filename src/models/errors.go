package models

import "errors"

// ErrMalformedDocument is returned when a mandatory header field cannot
// be located. The whole document is rejected; sibling documents in the
// same batch are unaffected. Individual bad lines never trigger it.
var ErrMalformedDocument = errors.New("documento malformado: campo obrigatório do cabeçalho ausente")
