// Package hash provides the CRC32C checksum guarding cluster-state documents
// in the compression envelope and on S3 uploads.
package hash
