package repository

import "errors"

// ErrNotFound se devuelve cuando un registro no existe, sin importar el
// backend (CSV o Postgres).
var ErrNotFound = errors.New("record not found")
