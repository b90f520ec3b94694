//go:build !cgo

package main

import (
	"errors"

	"github.com/dusk-indust/codeshift/internal/graph"
)

func openTreeStore(string) (graph.Store, error) {
	return nil, errors.New("--kuzu requires a cgo build")
}
