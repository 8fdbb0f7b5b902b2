// Package storage provides the object storage client used for inventory
// snapshot archiving.
//
// It wraps the Minio SDK behind a narrow Client interface so the archiver can
// be tested against mocks and the backend can be any S3-compatible service.
package storage
