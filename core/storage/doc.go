// Package storage provides an abstraction layer for object storage services.
//
// Client is a narrow byte oriented view of MinIO (mocked in core/storage/mocks),
// and the package builds the snapshot Archive on top of it. Every applied
// import snapshot is stored as imports/<group>/<resolver>/<timestamp>-<uuid>.<ext>,
// which lets the CLI list the history of a namespace and replay an old snapshot.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	archive := storage.NewArchive(client, cfg.Storage.Bucket)
//	name, err := archive.Save(ctx, "grp", "res", "csv", content)
package storage
