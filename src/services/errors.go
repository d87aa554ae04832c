package services

import "errors"

var (
	ErrParsingFailed       = errors.New("falha ao interpretar o documento")
	ErrUnknownDocumentKind = errors.New("tipo de documento desconhecido")
	ErrNoAnalysisFound     = errors.New("nenhuma análise encontrada para a empresa")
	ErrInvalidSimulation   = errors.New("dados de simulação inválidos")
)
