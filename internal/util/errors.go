package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in PDF")

	ErrCorpusRootNotFound = errors.New("corpus root does not exist")
	ErrDatabaseNotFound   = errors.New("paper database not found")
)
