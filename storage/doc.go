// Package storage pins uploaded files on content-addressed storage.
//
// Every backend implements interfaces.StorageBackend: Store takes the file
// bytes and returns the content identifier (CID) under which the network
// keeps them. The identifier is what the file record stores and what users
// share.
//
// # Backends
//
//   - IPFSBackend adds content through the IPFS HTTP API (a local node or a
//     hosted pinning service) and returns the CID the node reports.
//   - S3Backend writes objects keyed by the locally computed CID.
//   - FileBackend writes files named by the locally computed CID; intended for
//     development and tests.
//   - MultiStorageBackend stores to every available backend and returns the
//     CID of the first success.
//   - UnconfiguredBackend stands in when a backend needs the pinning
//     credential and none was supplied; every Store fails.
//
// # Storage URI Format
//
// Backends are selected with location URIs:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Examples:
//
//   - file:///var/lib/dashboard/pins
//   - s3://bucket-name/prefix/?region=us-west-2&endpoint=minio.local:9000
//   - ipfs://api.pinning.example.com:443/?scheme=https&timeout=60s
//
// # Content Addressing
//
// Backends that cannot report a CID compute it locally with ComputeCID: a
// CIDv1 with the raw codec over the sha2-256 multihash of the data, rendered
// in base32. Identical bytes always map to the same CID, so re-uploading is
// idempotent at the storage layer.
//
// # Credentials
//
// The pinning credential is passed to the factory once. IPFS endpoints
// receive it as a bearer token; S3 endpoints accept it as
// "ACCESS_KEY:SECRET_KEY" unless the location URI carries user info.
package storage
