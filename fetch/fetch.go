/*
Package fetch retrieves content-addressed DAG-CBOR documents over HTTP and
verifies them against their CID.

A document identified by a CID is requested from each candidate host at
https://<host>/.well-known/dag-cbor/<cid>. All hosts are tried in parallel
and the first successful response is used. The returned data is verified
against the hash digest embedded in the CID while it is read out.
*/
package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/hyphacoop/go-dagcbor/dagcbor"
	"github.com/hyphacoop/go-dagcbor/value"
)

var (
	// ErrAllHostsFailed is returned when no host produced a usable response.
	ErrAllHostsFailed = errors.New("dagcbor/fetch: all hosts failed")

	// ErrDigestMismatch is returned on the final read when the fetched data
	// does not hash to the digest embedded in the CID.
	ErrDigestMismatch = errors.New("dagcbor/fetch: data doesn't match CID")

	// ErrUnsupportedHash is returned for CIDs whose multihash is not
	// sha2-256, the only hash this package can verify.
	ErrUnsupportedHash = errors.New("dagcbor/fetch: unsupported multihash, only sha2-256 is verifiable")
)

// Request identifies a document to retrieve.
type Request struct {
	// Cid identifies the content.
	Cid cid.Cid

	// Hosts are the candidate origins, as host or host:port.
	// Do not modify Hosts while a fetch is running.
	Hosts []string
}

// Fetch retrieves the raw content with http.DefaultClient.
//
// All hosts are attempted in parallel and the first successful response is
// used; the other requests are cancelled. If every host fails,
// ErrAllHostsFailed is returned.
//
// The data is streamed back and hashed as it is read. Verification can only
// conclude once all data has been read: if the digest does not match the
// CID, the last Read returns ErrDigestMismatch instead of io.EOF.
//
// Close the reader to clean up the network connection.
func (r *Request) Fetch() (io.ReadCloser, error) {
	return r.FetchWithClient(http.DefaultClient)
}

// FetchWithClient is Fetch with a custom http.Client, which can be used to
// set an overall timeout, custom certificates, and so on.
func (r *Request) FetchWithClient(client *http.Client) (io.ReadCloser, error) {
	if client == nil {
		return nil, errors.New("dagcbor/fetch: client cannot be nil")
	}
	decoded, err := multihash.Decode(r.Cid.Hash())
	if err != nil {
		return nil, fmt.Errorf("dagcbor/fetch: decoding CID multihash: %w", err)
	}
	if decoded.Code != multihash.SHA2_256 {
		return nil, ErrUnsupportedHash
	}
	if len(r.Hosts) == 0 {
		return nil, ErrAllHostsFailed
	}

	type result struct {
		host int
		resp *http.Response
		err  error
	}
	numReqs := len(r.Hosts)
	results := make(chan result, numReqs)

	cidStr := r.Cid.String()
	cancelers := make([]context.CancelFunc, numReqs)
	for i, host := range r.Hosts {
		ctx, cancel := context.WithCancel(context.Background())
		cancelers[i] = cancel
		go func() {
			req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("https://%s/.well-known/dag-cbor/%s", host, cidStr), nil)
			if err != nil {
				results <- result{i, nil, err}
				return
			}
			resp, err := client.Do(req)
			results <- result{i, resp, err}
		}()
	}

	seen := 0
	var body io.ReadCloser
	for res := range results {
		if res.err == nil && res.resp.StatusCode == http.StatusOK {
			// One host succeeded, continue with this one only.
			for j := range cancelers {
				if j != res.host {
					cancelers[j]()
				}
			}
			body = res.resp.Body
			seen++
			break
		} else if res.resp != nil {
			res.resp.Body.Close()
		}
		seen++
		if seen == numReqs {
			return nil, ErrAllHostsFailed
		}
	}

	// Drain the cancelled requests so their goroutines can exit.
	if seen < numReqs {
		go func() {
			for res := range results {
				if res.resp != nil {
					res.resp.Body.Close()
				}
				seen++
				if seen == numReqs {
					return
				}
			}
		}()
	}

	return &verifyReader{
		digest: decoded.Digest,
		rc:     body,
		hasher: sha256.New(),
	}, nil
}

// Value retrieves the document with http.DefaultClient, verifies it, and
// decodes it as DAG-CBOR. The CID's codec must be dag-cbor.
func (r *Request) Value() (value.Value, error) {
	return r.ValueWithClient(http.DefaultClient)
}

// ValueWithClient is Value with a custom http.Client.
func (r *Request) ValueWithClient(client *http.Client) (value.Value, error) {
	if r.Cid.Prefix().Codec != cid.DagCBOR {
		return value.Value{}, fmt.Errorf("dagcbor/fetch: CID codec 0x%02x is not dag-cbor", r.Cid.Prefix().Codec)
	}
	rc, err := r.FetchWithClient(client)
	if err != nil {
		return value.Value{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return value.Value{}, err
	}
	return dagcbor.Unmarshal(data)
}

// verifyReader hashes data as it passes through and compares the digest on
// EOF.
type verifyReader struct {
	digest []byte
	rc     io.ReadCloser
	hasher hash.Hash
}

func (vr *verifyReader) Read(p []byte) (n int, err error) {
	n, err = vr.rc.Read(p)
	if n > 0 {
		vr.hasher.Write(p[:n])
	}
	if err == io.EOF {
		if !bytes.Equal(vr.digest, vr.hasher.Sum(nil)) {
			return n, ErrDigestMismatch
		}
	}
	return n, err
}

func (vr *verifyReader) Close() error {
	return vr.rc.Close()
}
