// Package txhash computes the chain-bound digest that transactions are signed
// over:
//
//	digest = H(chain id ‖ serialized transaction)
//
// H is SHA-256 unless replaced with txhash.Set. The transaction bytes are
// hashed as given; producing their canonical serialization is the caller's
// job.
//
// WARNING: every signer and verifier of a chain must agree on H. Replacing it
// after keys have signed transactions invalidates those signatures.
package txhash
