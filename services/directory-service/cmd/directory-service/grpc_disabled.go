//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/d-okonkwo/slotly/libs/db"
	"github.com/d-okonkwo/slotly/services/directory-service/internal/storage"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ *db.Pool, _ *storage.Repository) error {
	return nil
}
