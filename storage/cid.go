package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

// ComputeCID returns the CIDv1 (raw codec, sha2-256) of data. For content
// that fits in one chunk this is also what an IPFS node reports for a
// raw-leaves CIDv1 add.
func ComputeCID(data []byte) (interfaces.ContentID, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return interfaces.ContentID(cid.NewCidV1(cid.Raw, mh).String()), nil
}

// ValidateCID checks that id parses as a CID.
func ValidateCID(id interfaces.ContentID) error {
	if _, err := cid.Decode(string(id)); err != nil {
		return fmt.Errorf("invalid content id %q: %w", id, err)
	}
	return nil
}
