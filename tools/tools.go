//go:build tools

// Package tools pins build-time tool dependencies.
package tools

import (
	_ "google.golang.org/grpc/cmd/protoc-gen-go-grpc"
)
