package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

const (
	defaultIPFSPort    = "5001"
	defaultIPFSTimeout = 60 * time.Second
)

// StorageBackendFactory creates storage backends from location URIs.
type StorageBackendFactory struct {
	log        *slog.Logger
	credential string
}

// NewStorageBackendFactory creates a factory. credential is the pinning
// service credential; it may be empty, in which case backends that need it
// are created as UnconfiguredBackend.
func NewStorageBackendFactory(logger *slog.Logger, credential string) *StorageBackendFactory {
	return &StorageBackendFactory{
		log:        logger,
		credential: credential,
	}
}

// StorageBackendFor creates a storage backend from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem storage
//   - s3:// - Amazon S3 or compatible object storage
//   - ipfs:// - IPFS HTTP API (node or pinning service)
func (sf *StorageBackendFactory) StorageBackendFor(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	switch {
	case location.IsIPFS():
		return sf.createIPFSBackend(location)
	case location.IsS3():
		return sf.createS3Backend(location)
	case location.IsFile():
		return sf.createFileBackend(location)
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme: %s", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// CreateMultiBackend creates a backend that pins to every location.
// Locations that fail to produce a backend are skipped with a warning;
// an error is returned only when none could be created.
func (sf *StorageBackendFactory) CreateMultiBackend(locations []interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	backends := make([]interfaces.StorageBackend, 0, len(locations))

	for _, location := range locations {
		backend, err := sf.StorageBackendFor(location)
		if err != nil {
			sf.log.Warn("Failed to create storage backend",
				"err", err,
				slog.String("locationURI", location.String()))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid storage backends created")
	}

	if len(backends) == 1 {
		return backends[0], nil
	}

	return NewMultiStorageBackend(backends, sf.log), nil
}

// createIPFSBackend creates an IPFS storage backend.
// URI format: ipfs://host[:port][/path]/?scheme=https&timeout=60s&noauth=true
// The pinning credential is sent as a bearer token; noauth=true targets a
// local node that needs none.
func (sf *StorageBackendFactory) createIPFSBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating IPFS backend", slog.String("uri", location.String()))

	noAuth := location.GetParamBool("noauth")
	if sf.credential == "" && !noAuth {
		sf.log.Warn("Pinning credential not configured, uploads to this backend will fail",
			slog.String("locationURI", location.String()))
		return NewUnconfiguredBackend(location.String()), nil
	}

	host := location.Host
	if host == "" {
		return nil, fmt.Errorf("%w: missing IPFS host in %s", interfaces.ErrInvalidLocationURI, location.String())
	}
	if !strings.Contains(host, ":") {
		host += ":" + defaultIPFSPort
	}

	scheme := location.GetParam("scheme")
	if scheme == "" {
		scheme = "http"
	}

	timeout := defaultIPFSTimeout
	if raw := location.GetParam("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid timeout %q: %v", interfaces.ErrInvalidLocationURI, raw, err)
		}
		timeout = parsed
	}

	apiURL := scheme + "://" + host + strings.TrimSuffix(location.Path, "/")

	token := sf.credential
	if noAuth {
		token = ""
	}

	return NewIPFSBackend(apiURL, token, timeout, sf.log)
}

// createS3Backend creates an S3 or S3-compatible storage backend.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com&path_style=true
// Without user info the pinning credential is used as ACCESS_KEY:SECRET_KEY.
func (sf *StorageBackendFactory) createS3Backend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating S3 backend", slog.String("bucket", location.Host))

	accessKey, secretKey, err := splitS3Credential(location.Auth)
	if err != nil {
		return nil, err
	}
	if accessKey == "" {
		accessKey, secretKey, err = splitS3Credential(sf.credential)
		if err != nil {
			return nil, err
		}
	}

	if accessKey == "" || secretKey == "" {
		sf.log.Warn("S3 credentials not configured, uploads to this backend will fail",
			slog.String("bucket", location.Host))
		return NewUnconfiguredBackend(fmt.Sprintf("s3://%s%s", location.Host, location.Path)), nil
	}

	return NewS3Backend(S3Options{
		Bucket:    location.Host,
		Prefix:    strings.TrimPrefix(location.Path, "/"),
		Region:    location.GetParam("region"),
		Endpoint:  location.GetParam("endpoint"),
		AccessKey: accessKey,
		SecretKey: secretKey,
		PathStyle: location.GetParamBool("path_style"),
	}, sf.log)
}

func splitS3Credential(raw string) (string, string, error) {
	if raw == "" {
		return "", "", nil
	}

	accessKey, secretKey, _ := strings.Cut(raw, ":")

	accessKey, err := url.PathUnescape(accessKey)
	if err != nil {
		return "", "", fmt.Errorf("%w: malformed S3 access key", interfaces.ErrInvalidLocationURI)
	}
	secretKey, err = url.PathUnescape(secretKey)
	if err != nil {
		return "", "", fmt.Errorf("%w: malformed S3 secret key", interfaces.ErrInvalidLocationURI)
	}

	return accessKey, secretKey, nil
}

// createFileBackend creates a file system storage backend.
// URI format: file:///absolute/path/ or file://./relative/path/
func (sf *StorageBackendFactory) createFileBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating file backend", slog.String("uri", location.String()))

	path := location.Path
	if location.Host != "" {
		path = location.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI: %s", interfaces.ErrInvalidLocationURI, location.String())
	}

	return NewFileBackend(path, sf.log)
}

var _ interfaces.StorageBackendFactory = (*StorageBackendFactory)(nil)
