// Package graph abstracts the Bolt-speaking graph database that backs the
// reference data service's contact store.
package graph

import (
	"context"
	"errors"
)

// Client is the minimal contract the record store needs from the graph
// engine.
type Client interface {
	Read(ctx context.Context, cypher string, params map[string]any) (Result, error)
	Write(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
