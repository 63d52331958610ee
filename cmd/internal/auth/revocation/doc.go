// Package revocation is the revocable session store.
//
// A signed token is only honored while its key exists here. Deleting the key
// is the sole revocation mechanism and takes effect on the next request; no
// state from this store may be cached in-process across requests.
//
// Failure policy: any backend error other than "key absent" is reported as
// ErrUnavailable and callers must fail closed.
package revocation
